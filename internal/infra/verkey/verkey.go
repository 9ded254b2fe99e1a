// Package verkey provides order-preserving sort keys for dotted version
// strings, plus build/variant extraction from variant suffixes.
package verkey

import (
	"strconv"
	"strings"
)

// numericWidth is the zero-pad width for numeric components; fixed-width
// lexical comparison then reproduces numeric comparison.
const numericWidth = 10

// Key converts a version string into its sortable key. Numeric dot
// components are left-padded with zeros, everything else is kept as-is.
// The key is always derived fresh from the raw version string.
func Key(version string) []string {
	if version == "" {
		return nil
	}
	parts := strings.Split(version, ".")
	key := make([]string, len(parts))
	for i, part := range parts {
		if isDigits(part) && len(part) < numericWidth {
			key[i] = strings.Repeat("0", numericWidth-len(part)) + part
		} else {
			key[i] = part
		}
	}
	return key
}

// Compare orders two keys element by element; a shorter key sorts before
// a longer key sharing its prefix.
func Compare(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// SplitVariant extracts the variant label and build number from a variant
// suffix. With an underscore the label precedes it and the build is the
// leading digit run after it; without one, a digit-led suffix is a bare
// build number and anything else is a bare label. The leading digit run
// is the build number in every branch.
func SplitVariant(variant string) (label string, build int) {
	if variant == "" {
		return "", 0
	}
	if idx := strings.LastIndex(variant, "_"); idx >= 0 {
		return variant[:idx], leadingDigits(variant[idx+1:])
	}
	if variant[0] >= '0' && variant[0] <= '9' {
		return "", leadingDigits(variant)
	}
	return variant, 0
}

// LatestLabel reduces a version string to its first three purely numeric
// dot components; non-numeric components are skipped.
func LatestLabel(version string) string {
	var numeric []string
	for _, part := range strings.Split(version, ".") {
		if !isDigits(part) {
			continue
		}
		numeric = append(numeric, part)
		if len(numeric) == 3 {
			break
		}
	}
	return strings.Join(numeric, ".")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func leadingDigits(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
