package document

import "strings"

// romanNumerals maps values to lowercase roman numeral atoms, largest first.
var romanNumerals = []struct {
	value  int
	symbol string
}{
	{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"},
	{100, "c"}, {90, "xc"}, {50, "l"}, {40, "xl"},
	{10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"},
}

var romanValues = map[byte]int{
	'i': 1, 'v': 5, 'x': 10, 'l': 50, 'c': 100, 'd': 500, 'm': 1000,
}

// LetterLabel returns the part label for a 1-based position: a, b, ..., z, aa, ab, ...
func LetterLabel(n int) string {
	if n <= 0 {
		return ""
	}
	var sb strings.Builder
	for n > 0 {
		n--
		sb.WriteByte(byte('a' + n%26))
		n /= 26
	}
	// Digits were produced least significant first
	s := sb.String()
	runes := []byte(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

// RomanLabel returns the sub-part label for a 1-based position: i, ii, iii, iv, ...
func RomanLabel(n int) string {
	if n <= 0 {
		return ""
	}
	var sb strings.Builder
	for _, r := range romanNumerals {
		for n >= r.value {
			sb.WriteString(r.symbol)
			n -= r.value
		}
	}
	return sb.String()
}

// ParseRoman parses a lowercase roman numeral. It returns 0 for strings that
// are not well-formed roman numerals.
func ParseRoman(s string) int {
	if s == "" {
		return 0
	}
	total := 0
	prev := 0
	for i := len(s) - 1; i >= 0; i-- {
		v, ok := romanValues[s[i]]
		if !ok {
			return 0
		}
		if v < prev {
			total -= v
		} else {
			total += v
			prev = v
		}
	}
	// Reject malformed sequences like "iiii" by round-tripping
	if RomanLabel(total) != s {
		return 0
	}
	return total
}

// IsRoman reports whether s is a well-formed lowercase roman numeral.
func IsRoman(s string) bool {
	return ParseRoman(s) > 0
}
