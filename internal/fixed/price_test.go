package fixed

import (
	"testing"

	"main/internal/schema"
)

func TestParsePrice(t *testing.T) {
	testCases := []struct {
		desc    string
		input   string
		want    schema.Price
		wantErr bool
	}{
		{"whole dollars", "123", 1230000, false},
		{"four decimals", "123.4500", 1234500, false},
		{"short fraction", "0.5", 5000, false},
		{"negative", "-2.25", -22500, false},
		{"zero", "0", 0, false},
		{"fraction only", ".5", 5000, false},
		{"too many decimals", "1.00001", 0, true},
		{"empty", "", 0, true},
		{"garbage", "12a.50", 0, true},
		{"double dot", "1.2.3", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := ParsePrice(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %d", tc.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", tc.input, err)
			}
			if got != tc.want {
				t.Fatalf("parse mismatch! should be %d but got %d", tc.want, got)
			}
		})
	}
}

func TestFormatPrice(t *testing.T) {
	testCases := []struct {
		input schema.Price
		want  string
	}{
		{1234500, "123.4500"},
		{5000, "0.5000"},
		{-22500, "-2.2500"},
		{0, "0.0000"},
		{1, "0.0001"},
	}

	for _, tc := range testCases {
		if got := FormatPrice(tc.input); got != tc.want {
			t.Fatalf("format mismatch! should be %s but got %s", tc.want, got)
		}
	}
}

func TestPriceRoundTrip(t *testing.T) {
	for _, text := range []string{"123.4500", "0.0001", "99999.9999", "-1.2345"} {
		p, err := ParsePrice(text)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", text, err)
		}
		if got := FormatPrice(p); got != text {
			t.Fatalf("round-trip mismatch! should be %s but got %s", text, got)
		}
	}
}
