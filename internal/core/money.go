// Package core holds the domain model for the finance tracker.
//
// This file contains the fixed-point money representation used everywhere
// amounts are parsed, stored, or summed. Amounts are kept as integer
// thousandths (millis) so that summaries over thousands of records stay
// exact for currencies with up to three decimal places.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is a fixed-point amount with three decimal places.
// 1.000 currency unit == 1000 millis.
type Money struct {
	Millis int64
}

// ParseDecimalToMillis converts a decimal string to millis with half-up
// rounding on the fourth decimal place.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Returns ErrInvalidAmount for invalid formats or non-positive values.
//
// Examples:
//
//	ParseDecimalToMillis("12.34")  -> 12340, nil
//	ParseDecimalToMillis("12,345") -> 12345, nil
//	ParseDecimalToMillis("1.0004") -> 1000, nil (rounds down)
//	ParseDecimalToMillis("1.0005") -> 1001, nil (rounds up)
func ParseDecimalToMillis(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
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
	// Prevent overflow when multiplying by 1000
	const maxSafeInt64 = (1<<63 - 1) / 1000
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take the first three fractional digits; half-up rounding on the fourth.
	var fracMillis int64
	scale := int64(100)
	for i := 0; i < len(fracPart) && i < 3; i++ {
		fracMillis += int64(fracPart[i]-'0') * scale
		scale /= 10
	}
	if len(fracPart) > 3 && fracPart[3] >= '5' {
		fracMillis++
	}
	millis := iv*1000 + fracMillis
	if millis <= 0 {
		return 0, ErrInvalidAmount
	}
	return millis, nil
}

// FormatMillis renders millis as a plain decimal string with trailing
// zeros trimmed, e.g. 1000 -> "1", 49990 -> "49.99", -1500 -> "-1.5".
func FormatMillis(m int64) string {
	neg := m < 0
	if neg {
		m = -m
	}
	whole := strconv.FormatInt(m/1000, 10)
	frac := m % 1000
	s := whole
	if frac != 0 {
		digits := strconv.FormatInt(frac+1000, 10)[1:] // zero-padded to 3
		s = whole + "." + strings.TrimRight(digits, "0")
	}
	if neg {
		return "-" + s
	}
	return s
}

// Validate reports whether the amount is acceptable for a transaction.
func (m Money) Validate() error {
	if m.Millis <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// MarshalJSON renders the amount as an exact decimal JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(FormatMillis(m.Millis)), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
// Parsing goes through ParseDecimalToMillis so no float64 conversion is
// ever involved.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	millis, err := ParseDecimalToMillis(s)
	if err != nil {
		return err
	}
	m.Millis = millis
	return nil
}
