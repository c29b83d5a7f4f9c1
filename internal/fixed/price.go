// Package fixed converts between textual decimal prices and scaled integer
// price units. All prices carry four decimal digits.
package fixed

import (
	"errors"

	"github.com/shopspring/decimal"

	"main/internal/schema"
)

var ErrMalformedPrice = errors.New("malformed price")

// ParsePrice converts a textual decimal price into integer price units.
// More than four fractional digits is a malformed price, not a rounding
// opportunity.
func ParsePrice(s string) (schema.Price, error) {
	if s == "" {
		return 0, ErrMalformedPrice
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrMalformedPrice
	}
	scaled := d.Shift(schema.PriceScale)
	if !scaled.IsInteger() {
		return 0, ErrMalformedPrice
	}
	if !scaled.BigInt().IsInt64() {
		return 0, ErrMalformedPrice
	}
	return schema.Price(scaled.IntPart()), nil
}

// FormatPrice renders integer price units with four decimal digits.
func FormatPrice(p schema.Price) string {
	return decimal.New(int64(p), -schema.PriceScale).StringFixed(schema.PriceScale)
}
