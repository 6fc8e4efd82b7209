package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0", "0", true},
		{"1.005", "1.01", true}, // half-up rounding
		{" 2.50 ", "2.5", true},
		{"-1", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
		{"1000000000000", "1000000000000", true},
		{"1000000000000.01", "", false},
		{"100000000000000000", "", false},
		{"1e17", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
	}{
		{"0", 0},
		{"1.5", 150},
		{"12.34", 1234},
		{"0.005", 1},
		{"99999999.99", 9999999999},
		{"1000000000000", 100000000000000},
	}
	for _, tc := range cases {
		d := decimal.RequireFromString(tc.in)
		if got := ToMinorUnits(d); got != tc.cents {
			t.Errorf("ToMinorUnits(%s) = %d, want %d", tc.in, got, tc.cents)
		}
	}
	if got := FromMinorUnits(1234); !got.Equal(decimal.RequireFromString("12.34")) {
		t.Errorf("FromMinorUnits(1234) = %s", got)
	}
}

func TestParseAmountErrors(t *testing.T) {
	cases := map[string]error{
		"":      ErrEmptyAmount,
		"-0.01": ErrNegativeAmount,
		"1e17":  ErrAmountTooLarge,
	}
	for in, want := range cases {
		if _, err := ParseAmount(in); !errors.Is(err, want) {
			t.Errorf("ParseAmount(%q) err = %v, want %v", in, err, want)
		}
	}
}
