package affiliate

import (
	"context"

	"github.com/englishbooster/affiliate/internal/domain/shared"
	"github.com/google/uuid"
)

// Errors reported by the registry
var (
	ErrDuplicateApplication = shared.NewDomainError(shared.CodeDuplicateApplication, "Anda sudah memiliki aplikasi afiliasi.")
	ErrDuplicateEmail       = shared.NewDomainError(shared.CodeAlreadyExists, "Email sudah digunakan oleh afiliasi lain.")
	ErrNotFound             = shared.NewNotFoundError("Afiliasi")
	// ErrReferralCodeTaken is returned by Create when the code collides
	ErrReferralCodeTaken = shared.NewDomainError("REFERRAL_CODE_TAKEN", "Kode referral sudah digunakan")
)

// Filter narrows affiliate listings
type Filter struct {
	shared.Filter
	Status *Status
}

// Repository persists affiliates
type Repository interface {
	// Create inserts a new affiliate. A unique violation is reported as
	// ErrReferralCodeTaken, ErrDuplicateEmail or ErrDuplicateApplication
	// depending on the colliding column.
	Create(ctx context.Context, a *Affiliate) error
	// Update saves a decision, failing with ErrConcurrencyConflict when
	// the stored version moved on.
	Update(ctx context.Context, a *Affiliate) error
	FindByID(ctx context.Context, id uuid.UUID) (*Affiliate, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Affiliate, error)
	FindByReferralCode(ctx context.Context, code string) (*Affiliate, error)
	ExistsByUserID(ctx context.Context, userID uuid.UUID) (bool, error)
	ExistsByReferralCode(ctx context.Context, code string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindAll(ctx context.Context, filter Filter) ([]*Affiliate, int64, error)
	CountByStatus(ctx context.Context, status Status) (int64, error)
}
