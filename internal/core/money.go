// Package core provides the transaction domain model and money handling.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between paise and rupee representations.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in integer paise (1/100 rupee). Calculations always use
// paise; rupee floats exist only for display and JSON.
type Money struct {
	Paise int64
}

// ParseDecimalToPaise converts a decimal rupee string to paise with proper
// rounding.
//
// Comma group separators ("1,23,456.00") are stripped before parsing, the way
// amounts appear in bank SMS text. Half-up rounding is applied on the third
// decimal place. The result is always positive paise; invalid formats,
// negative values and zero amounts return an error.
//
// Examples:
//
//	ParseDecimalToPaise("1250.00")   -> 125000, nil
//	ParseDecimalToPaise("35,000.00") -> 3500000, nil
//	ParseDecimalToPaise("12.346")    -> 1235, nil (rounds up)
func ParseDecimalToPaise(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Group separators carry no information
	s = strings.ReplaceAll(s, ",", "")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take first two fractional digits; then half-up rounding on third
	var fracPaise int64 = 0
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracPaise = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracPaise += d2
			if len(fracPart) > 2 {
				if fracPart[2] >= '5' {
					fracPaise++
				}
			}
		}
	}
	paise := iv*100 + fracPaise
	if paise <= 0 {
		return 0, ErrInvalidAmount
	}
	return paise, nil
}

func (m Money) Validate() error {
	if m.Paise <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Rupees returns the rupee value as a float64 for display purposes.
// Note: use paise for calculations to avoid floating-point precision issues.
func (m Money) Rupees() float64 {
	return float64(m.Paise) / 100.0
}

// String renders the amount as a plain decimal, e.g. "1250.00".
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d", m.Paise/100, m.Paise%100)
}
