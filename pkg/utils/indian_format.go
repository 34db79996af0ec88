// Package utils holds small formatting and market-calendar helpers for
// Indian equities.
package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatINR formats an amount with the rupee glyph and Indian digit grouping
// (last three digits, then pairs): 1234567.5 -> "₹12,34,567.50".
func FormatINR(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = math.Abs(amount)
	}
	fixed := strconv.FormatFloat(amount, 'f', 2, 64)
	intPart, frac, _ := strings.Cut(fixed, ".")
	return sign + "₹" + groupIndian(intPart) + "." + frac
}

// FormatINRCompact formats large rupee amounts using lakh/crore units,
// e.g. 1500000 -> "₹15 L", 13823000000000 -> "₹13.82 L Cr".
func FormatINRCompact(amount float64) string {
	prefix := "₹"
	if amount < 0 {
		prefix = "-₹"
		amount = math.Abs(amount)
	}

	units := []struct {
		scale float64
		label string
	}{
		{1e12, "L Cr"},
		{1e7, "Cr"},
		{1e5, "L"},
		{1e3, "K"},
	}
	for _, u := range units {
		if amount >= u.scale {
			return fmt.Sprintf("%s%s %s", prefix, trimDecimals(amount/u.scale), u.label)
		}
	}
	return fmt.Sprintf("%s%.2f", prefix, amount)
}

// FormatPct formats a percentage with an explicit sign: 2.45 -> "+2.45%".
func FormatPct(pct float64) string {
	return FormatSigned(pct) + "%"
}

// FormatSigned formats a number with two decimals and an explicit sign.
func FormatSigned(v float64) string {
	if v >= 0 {
		return fmt.Sprintf("+%.2f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

// groupIndian inserts Indian-style separators into a string of digits.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(append(parts, tail), ",")
}

// trimDecimals renders n with at most two decimals and no trailing zeros.
func trimDecimals(n float64) string {
	s := strconv.FormatFloat(n, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
