package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptions(t *testing.T) {
	opts, err := ParseOptions("max_position=500;min_cents=3000")
	require.NoError(t, err)
	assert.Equal(t, Options{"max_position": "500", "min_cents": "3000"}, opts)
}

func TestParseOptionsSkipsEmptySegments(t *testing.T) {
	opts, err := ParseOptions(";max_position=500;;")
	require.NoError(t, err)
	assert.Equal(t, Options{"max_position": "500"}, opts)
}

func TestParseOptionsMalformed(t *testing.T) {
	for _, s := range []string{"max_position", "=500", "a=1;bogus"} {
		_, err := ParseOptions(s)
		assert.ErrorIs(t, err, ErrMalformedOption, "input %q", s)
	}
}

func TestOptionsInt64(t *testing.T) {
	opts := Options{"max_position": "500", "cooldown": "1500.9"}

	var field int64 = 1000
	require.NoError(t, opts.Int64("max_position", &field))
	assert.Equal(t, int64(500), field)

	// Fractional values truncate.
	require.NoError(t, opts.Int64("cooldown", &field))
	assert.Equal(t, int64(1500), field)

	// Absent keys leave the field untouched.
	require.NoError(t, opts.Int64("missing", &field))
	assert.Equal(t, int64(1500), field)

	opts["bad"] = "not-a-number"
	assert.ErrorIs(t, opts.Int64("bad", &field), ErrMalformedOption)
}

func TestMomentumConfigApply(t *testing.T) {
	cfg := DefaultMomentumConfig()
	opts, err := ParseOptions("max_position=250;min_cents=5000;unknown_key=7")
	require.NoError(t, err)

	require.NoError(t, cfg.Apply(opts))
	assert.Equal(t, int64(250), cfg.MaxPosition)
	assert.Equal(t, int64(5000), cfg.MinCents)
	// Untouched fields keep their defaults.
	assert.Equal(t, DefaultMomentumConfig().Cooldown, cfg.Cooldown)
}

func TestMomentumConfigApplyMalformedValue(t *testing.T) {
	cfg := DefaultMomentumConfig()
	assert.ErrorIs(t, cfg.Apply(Options{"max_position": "lots"}), ErrMalformedOption)
}
