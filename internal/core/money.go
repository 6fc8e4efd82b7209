// Package core provides money parsing and handling utilities.
//
// Amounts travel as decimal.Decimal and are persisted as integer minor units
// (two fractional digits).
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MinorUnitExponent is the number of fractional digits kept for every amount.
const MinorUnitExponent = 2

// MaxAmount is the largest single amount accepted. Its minor units, and sums
// of millions of them, stay within int64.
var MaxAmount = decimal.New(1, 12)

func checkAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return ErrNegativeAmount
	}
	if d.GreaterThan(MaxAmount) {
		return ErrAmountTooLarge
	}
	return nil
}

// ParseAmount converts a decimal string to a non-negative amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half-up to two fractional digits.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,345") -> 12.35, nil
//	ParseAmount("-1")     -> 0, ErrNegativeAmount
//	ParseAmount("1e13")   -> 0, ErrAmountTooLarge
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if err := checkAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d.Round(MinorUnitExponent), nil
}

// ToMinorUnits returns the amount in cents, rounding half away from zero.
func ToMinorUnits(d decimal.Decimal) int64 {
	return d.Shift(MinorUnitExponent).Round(0).IntPart()
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.New(cents, -MinorUnitExponent)
}
