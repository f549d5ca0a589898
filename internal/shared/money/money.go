// Package money holds currency amounts as integer minor units.
package money

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// Cents is an amount in minor units (1/100 of the currency unit).
type Cents int64

// MaxAmount is the largest amount accepted from a client: 10^13 currency units.
const MaxAmount Cents = 1_000_000_000_000_000

var (
	ErrNotANumber     = errors.New("amount must be a number")
	ErrTooPrecise     = errors.New("amount must have at most 2 decimal places")
	ErrAmountTooLarge = errors.New("amount is too large")
	ErrMissing        = errors.New("amount is required")
)

var maxDecimal = decimal.New(int64(MaxAmount), -2)

// Amounts whose exponent falls outside this window are rejected before any
// rescaling arithmetic.
const (
	minExponent = -18
	maxExponent = 18
)

// Parse reads an amount given either as a JSON number or a numeric JSON
// string. It does not check the sign; callers decide whether zero or negative
// amounts are acceptable.
func Parse(raw json.RawMessage) (Cents, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, ErrMissing
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, ErrNotANumber
		}
	} else {
		text = string(raw)
	}

	return ParseString(text)
}

// ParseString parses a decimal string such as "12.5" into cents.
func ParseString(s string) (Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrNotANumber
	}
	switch exp := d.Exponent(); {
	case d.Coefficient().Sign() == 0:
		return 0, nil
	case exp < minExponent:
		return 0, ErrTooPrecise
	case exp > maxExponent:
		return 0, ErrAmountTooLarge
	}
	if d.Abs().GreaterThan(maxDecimal) {
		return 0, ErrAmountTooLarge
	}
	if !d.Equal(d.Truncate(2)) {
		return 0, ErrTooPrecise
	}
	return Cents(d.Shift(2).IntPart()), nil
}

// Add returns a+b, reporting false when the sum would overflow.
func Add(a, b Cents) (Cents, bool) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, false
	}
	if b < 0 && a < math.MinInt64-b {
		return 0, false
	}
	return a + b, true
}

// Decimal returns the amount in currency units.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// MarshalJSON renders the amount as a JSON number with two decimals.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}
