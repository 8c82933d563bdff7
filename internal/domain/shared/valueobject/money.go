package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places stored for monetary amounts (decimal(10,2))
const MoneyScale int32 = 2

// Money is an immutable rupiah amount. The service is single-currency,
// so no currency code is carried.
type Money struct {
	amount decimal.Decimal
}

var ErrNegativeMoney = errors.New("amount cannot be negative")

// NewMoney creates Money from a non-negative decimal amount
func NewMoney(amount decimal.Decimal) (Money, error) {
	if amount.IsNegative() {
		return Money{}, ErrNegativeMoney
	}
	return Money{amount: amount}, nil
}

// MustNewMoney is NewMoney for constants and seed data
func MustNewMoney(amount decimal.Decimal) Money {
	m, err := NewMoney(amount)
	if err != nil {
		panic(err)
	}
	return m
}

// NewMoneyFromInt creates Money from a whole rupiah amount
func NewMoneyFromInt(amount int64) (Money, error) {
	return NewMoney(decimal.NewFromInt(amount))
}

// NewMoneyFromString parses a decimal string such as "2000000.00"
func NewMoneyFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d)
}

// ZeroMoney returns a zero amount
func ZeroMoney() Money {
	return Money{amount: decimal.Zero}
}

func (m Money) Amount() decimal.Decimal {
	return m.amount
}

func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

func (m Money) Equals(other Money) bool {
	return m.amount.Equal(other.amount)
}

// ApplyRate returns amount × rate / 100 rounded half-up to MoneyScale places
func (m Money) ApplyRate(rate Percentage) Money {
	return Money{amount: m.amount.Mul(rate.value).Div(hundred).Round(MoneyScale)}
}

// String returns the amount with two decimal places
func (m Money) String() string {
	return m.amount.StringFixed(MoneyScale)
}

// MarshalJSON encodes the amount as a fixed point string
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var d decimal.Decimal
		if err2 := json.Unmarshal(data, &d); err2 != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		m.amount = d
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	m.amount = d
	return nil
}

// Value implements driver.Valuer
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implements sql.Scanner
func (m *Money) Scan(value any) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("cannot scan %T into Money: %w", value, err)
	}
	m.amount = d
	return nil
}
