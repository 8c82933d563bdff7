package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PercentageScale matches the decimal(5,2) storage of commission rates
const PercentageScale int32 = 2

// ErrPercentageOutOfRange is returned for rates outside 0..100
var ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 100")

// Percentage is a rate such as 10.00 meaning ten percent
type Percentage struct {
	value decimal.Decimal
}

// NewPercentage validates the range and rounds to two places
func NewPercentage(value decimal.Decimal) (Percentage, error) {
	if value.IsNegative() || value.GreaterThan(hundred) {
		return Percentage{}, ErrPercentageOutOfRange
	}
	return Percentage{value: value.Round(PercentageScale)}, nil
}

// NewPercentageFromString parses "10.00"
func NewPercentageFromString(s string) (Percentage, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Percentage{}, fmt.Errorf("invalid percentage string: %w", err)
	}
	return NewPercentage(d)
}

// MustNewPercentage panics on an invalid rate
func MustNewPercentage(value decimal.Decimal) Percentage {
	p, err := NewPercentage(value)
	if err != nil {
		panic(err)
	}
	return p
}

// Decimal returns the underlying rate value
func (p Percentage) Decimal() decimal.Decimal {
	return p.value
}

func (p Percentage) Equals(other Percentage) bool {
	return p.value.Equal(other.value)
}

func (p Percentage) String() string {
	return p.value.StringFixed(PercentageScale)
}

func (p Percentage) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}
