package affiliate

import (
	"crypto/rand"
	"math/big"

	"github.com/englishbooster/affiliate/internal/domain/shared"
)

const (
	// ReferralCodeLength is the number of characters in a generated code
	ReferralCodeLength   = 8
	referralCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// ReferralCodeGenerator produces candidate referral codes.
// Uniqueness is enforced by the store, not the generator.
type ReferralCodeGenerator interface {
	Generate() (string, error)
}

// RandomCodeGenerator draws codes uniformly from [A-Z0-9] using crypto/rand
type RandomCodeGenerator struct {
	Length int
}

// NewRandomCodeGenerator creates a generator for codes of the given length
func NewRandomCodeGenerator(length int) *RandomCodeGenerator {
	if length <= 0 {
		length = ReferralCodeLength
	}
	return &RandomCodeGenerator{Length: length}
}

func (g *RandomCodeGenerator) Generate() (string, error) {
	alphabetSize := big.NewInt(int64(len(referralCodeAlphabet)))
	buf := make([]byte, g.Length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		buf[i] = referralCodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// ValidateReferralCode checks the code is non-empty uppercase alphanumeric of at most 20 chars
func ValidateReferralCode(code string) error {
	if code == "" || len(code) > 20 {
		return shared.NewValidationError("Kode referral tidak valid.")
	}
	for _, c := range code {
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			return shared.NewValidationError("Kode referral tidak valid.")
		}
	}
	return nil
}
