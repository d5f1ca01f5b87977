package state

import (
	"math"
	"strings"
)

func mathPow(base, exp float64) float64 {
	return math.Pow(base, exp)
}

// indexFold returns the byte index of the first case-insensitive
// occurrence of needle in haystack, or -1 if absent.
func indexFold(haystack, needle string) int {
	return strings.Index(strings.ToLower(haystack), strings.ToLower(needle))
}
