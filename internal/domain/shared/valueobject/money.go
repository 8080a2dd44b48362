package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	USD Currency = "USD" // US Dollar (default)
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = USD

// subunitExponent returns the number of decimal places between the major
// unit and the subunit of a currency (2 for USD: dollars to cents).
func subunitExponent(c Currency) int32 {
	switch c {
	default:
		return 2
	}
}

// String returns the ISO 4217 currency code
func (c Currency) String() string {
	return string(c)
}

// Exponent returns the number of decimal places between the currency's
// major unit and its subunit
func (c Currency) Exponent() int32 {
	return subunitExponent(c)
}

// Money is a value object representing a monetary amount as an exact count
// of currency subunits. It is immutable - all operations return new Money
// instances.
//
// The amount is carried twice: as an int64 and as a big.Int. The wide field
// exists for amounts beyond native integer range; for every currency the
// system supports today the two representations are always equal, and the
// invariant is enforced by the constructors.
type Money struct {
	subunits int64
	wide     *big.Int
	currency Currency
}

// ErrCurrencyMismatch indicates an operation across different currencies
var ErrCurrencyMismatch = errors.New("money: currency mismatch")

// NewMoneyFromSubunits creates a Money from an exact subunit count
func NewMoneyFromSubunits(subunits int64, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("money: currency cannot be empty")
	}
	return Money{
		subunits: subunits,
		wide:     big.NewInt(subunits),
		currency: currency,
	}, nil
}

// NewMoneyFromDecimal creates a Money from a major-unit decimal amount,
// e.g. "45.00" USD becomes 4500 subunits. Amounts with more precision than
// the currency's subunit are rejected rather than silently rounded.
func NewMoneyFromDecimal(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("money: currency cannot be empty")
	}
	exp := subunitExponent(currency)
	scaled := amount.Shift(exp)
	if !scaled.IsInteger() {
		return Money{}, fmt.Errorf("money: amount %s has sub-subunit precision for %s", amount, currency)
	}
	if !scaled.BigInt().IsInt64() {
		return Money{}, fmt.Errorf("money: amount %s out of range for %s", amount, currency)
	}
	return NewMoneyFromSubunits(scaled.IntPart(), currency)
}

// NewMoneyFromString creates a Money from a major-unit string amount
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("money: invalid amount string: %w", err)
	}
	return NewMoneyFromDecimal(d, currency)
}

// NewUSD creates a Money in USD from a subunit (cent) count
func NewUSD(cents int64) Money {
	m, _ := NewMoneyFromSubunits(cents, USD)
	return m
}

// Zero returns a zero-value Money in the specified currency
func Zero(currency Currency) Money {
	m, _ := NewMoneyFromSubunits(0, currency)
	return m
}

// ZeroUSD returns a zero-value Money in USD
func ZeroUSD() Money {
	return Zero(USD)
}

// Subunits returns the exact subunit count
func (m Money) Subunits() int64 {
	return m.subunits
}

// WideSubunits returns a copy of the wide-integer subunit count
func (m Money) WideSubunits() *big.Int {
	if m.wide == nil {
		return big.NewInt(m.subunits)
	}
	return new(big.Int).Set(m.wide)
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	if m.currency == "" {
		return DefaultCurrency
	}
	return m.currency
}

// Decimal returns the amount in major units as an exact decimal
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.subunits, -subunitExponent(m.Currency()))
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.subunits == 0
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.subunits < 0
}

// Add returns a new Money with the sum of both amounts.
// Returns ErrCurrencyMismatch if currencies don't match.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency() != other.Currency() {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.Currency(), other.Currency())
	}
	return NewMoneyFromSubunits(m.subunits+other.subunits, m.Currency())
}

// MustAdd adds two Money values, panics if currencies don't match
func (m Money) MustAdd(other Money) Money {
	result, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Subtract returns a new Money with the difference.
// Returns ErrCurrencyMismatch if currencies don't match.
func (m Money) Subtract(other Money) (Money, error) {
	if m.Currency() != other.Currency() {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.Currency(), other.Currency())
	}
	return NewMoneyFromSubunits(m.subunits-other.subunits, m.Currency())
}

// Equals returns true if both Money values have the same currency and the
// same exact subunit count. Comparison never goes through floating point.
func (m Money) Equals(other Money) bool {
	return m.Currency() == other.Currency() &&
		m.subunits == other.subunits &&
		m.WideSubunits().Cmp(other.WideSubunits()) == 0
}

// LessThan returns true if this Money is less than the other.
// Returns ErrCurrencyMismatch if currencies don't match.
func (m Money) LessThan(other Money) (bool, error) {
	if m.Currency() != other.Currency() {
		return false, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.Currency(), other.Currency())
	}
	return m.subunits < other.subunits, nil
}

// String returns a string representation of the Money
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Decimal().StringFixed(subunitExponent(m.Currency())), m.Currency())
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}{
		Amount:   m.Decimal().String(),
		Currency: m.Currency(),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
// The amount is a major-unit decimal string, the same shape MarshalJSON
// produces. Amounts finer than the currency subunit are a decode error.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Currency == "" {
		v.Currency = DefaultCurrency
	}
	parsed, err := NewMoneyFromString(v.Amount, v.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer for database storage.
// Stores the exact subunit count as an integer.
func (m Money) Value() (driver.Value, error) {
	return m.subunits, nil
}

// Scan implements sql.Scanner for database retrieval.
// Scans an integer subunit count; currency defaults to DefaultCurrency
// unless already set by the caller.
func (m *Money) Scan(value any) error {
	currency := m.currency
	if currency == "" {
		currency = DefaultCurrency
	}

	if value == nil {
		*m, _ = NewMoneyFromSubunits(0, currency)
		return nil
	}

	var subunits int64
	switch v := value.(type) {
	case int64:
		subunits = v
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil || !d.IsInteger() {
			return fmt.Errorf("money: invalid subunit value %q", string(v))
		}
		subunits = d.IntPart()
	default:
		return fmt.Errorf("money: cannot scan %T", value)
	}

	parsed, err := NewMoneyFromSubunits(subunits, currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
