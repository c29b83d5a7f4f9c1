package strategy

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrMalformedOption is returned for option strings or values that cannot
// be parsed. Malformed configuration is fatal at load time, before any
// simulation proceeds.
var ErrMalformedOption = errors.New("malformed strategy option")

// Options is a flat mapping of option name to raw value. Each strategy
// applies the keys it recognizes and ignores the rest.
type Options map[string]string

// ParseOptions parses a "name=value;name=value" option string. Empty
// segments are skipped.
func ParseOptions(s string) (Options, error) {
	opts := make(Options)
	for _, part := range strings.Split(s, ";") {
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok || key == "" {
			return nil, ErrMalformedOption
		}
		opts[key] = value
	}
	return opts, nil
}

// Int64 coerces a recognized option into an integer field, truncating any
// fractional component. Absent keys leave the field untouched.
func (o Options) Int64(key string, field *int64) error {
	raw, ok := o[key]
	if !ok {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return ErrMalformedOption
	}
	*field = d.IntPart()
	return nil
}
