// Package phone normalizes Brazilian WhatsApp numbers and matches numbers
// stored in different formats.
package phone

import (
	"strings"
)

// CountryCode is prefixed to national numbers.
const CountryCode = "55"

const (
	minNational = 10 // DDD + 8-digit landline
	maxNational = 11 // DDD + 9-digit mobile
)

var suffixLengths = []int{8, 9, 10, 11, 12}

// Digits drops every non-digit rune.
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// national strips the country code and any trunk zeros.
func national(raw string) string {
	d := Digits(raw)
	if strings.HasPrefix(d, CountryCode) && len(d) >= len(CountryCode)+minNational {
		d = d[len(CountryCode):]
	}
	return strings.TrimLeft(d, "0")
}

// Normalize returns the canonical form: 55 + DDD + subscriber number.
// ok is false when the input cannot be a Brazilian number.
func Normalize(raw string) (string, bool) {
	n := national(raw)
	if len(n) < minNational || len(n) > maxNational {
		return "", false
	}
	return CountryCode + n, true
}

// SuffixVariants returns the trailing 8..12 digits of the raw number and of
// its national form.
func SuffixVariants(raw string) map[string]struct{} {
	out := make(map[string]struct{}, 2*len(suffixLengths))
	for _, s := range []string{Digits(raw), national(raw)} {
		for _, l := range suffixLengths {
			if len(s) >= l {
				out[s[len(s)-l:]] = struct{}{}
			}
		}
	}
	return out
}

// Match reports whether any suffix variant of a equals one of b.
func Match(a, b string) bool {
	va := SuffixVariants(a)
	if len(va) == 0 {
		return false
	}
	for v := range SuffixVariants(b) {
		if _, ok := va[v]; ok {
			return true
		}
	}
	return false
}

// Tail returns the last n digits, or every digit when there are fewer.
func Tail(raw string, n int) string {
	d := Digits(raw)
	if len(d) <= n {
		return d
	}
	return d[len(d)-n:]
}

// Mask hides the last four digits for logging.
func Mask(raw string) string {
	d := Digits(raw)
	if len(d) <= 4 {
		return d
	}
	return d[:len(d)-4] + "****"
}
