package buvette

import (
	"bytes"
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency used for display. The stand operates in a single currency;
// amounts in the ledger are plain two-decimal numbers and carry no
// currency of their own.
var displayCurrency = "EUR"

// SetDisplayCurrency changes the currency used to format prices for
// display. It does not affect persisted values.
func SetDisplayCurrency(code string) { displayCurrency = code }

// Price represents a monetary value with exact decimal arithmetic.
type Price struct {
	value decimal.Decimal
}

func P[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T) Price {
	return Price{value: newDecimal(value)}
}

func newDecimal[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case decimal.Decimal:
		return v
	}
	panic("unreachable")
}

// ParsePrice parses a decimal amount like "1.50".
func ParsePrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Price{value: d}, nil
}

func (p Price) Add(q Price) Price  { return Price{value: p.value.Add(q.value)} }
func (p Price) Sub(q Price) Price  { return Price{value: p.value.Sub(q.value)} }
func (p Price) MulInt(n int) Price { return Price{value: p.value.Mul(decimal.NewFromInt(int64(n)))} }
func (p Price) Div(q Price) decimal.Decimal { return p.value.Div(q.value) }

func (p Price) Equal(q Price) bool    { return p.value.Equal(q.value) }
func (p Price) LessThan(q Price) bool { return p.value.LessThan(q.value) }
func (p Price) IsZero() bool          { return p.value.IsZero() }
func (p Price) IsNegative() bool      { return p.value.IsNegative() }

// Fixed returns the amount as a fixed two-decimal string, the form
// written to the ledger ("3.00").
func (p Price) Fixed() string { return p.value.StringFixed(2) }

// String formats the price for display in the configured currency.
func (p Price) String() string {
	cur := *money.New(0, displayCurrency).Currency()
	dec := p.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.Round(0).IntPart())
}

// MarshalJSON writes the price as a bare JSON number rounded to two
// decimals, so products.json files written by earlier versions of the
// application round-trip unchanged.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.value.Round(2).String()), nil
}

// UnmarshalJSON accepts both a JSON number and a quoted decimal string.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("invalid price %s: %w", data, err)
	}
	p.value = d
	return nil
}
