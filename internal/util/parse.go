package util

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var currencyCodeRegex = regexp.MustCompile(`^[A-Za-z]{3}$`)

// NormalizeCurrency trims and upper-cases a currency code, returning it
// and whether it is exactly three ASCII letters.
func NormalizeCurrency(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !currencyCodeRegex.MatchString(s) {
		return "", false
	}
	return strings.ToUpper(s), true
}

// ParsePrice tolerates formatted model output like "1,299.00" or "$120"
// and returns the numeric value. Returns false for anything that does
// not contain a parseable positive number.
func ParsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimLeft(s, "$€£")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// Truncate shortens text to at most n runes, appending an ellipsis when
// anything was cut.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
