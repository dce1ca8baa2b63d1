package util

import (
	"github.com/dustin/go-humanize"
)

// FormatBytes renders a byte count in SI units ("1.2 MB")
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// FormatCount renders a count with thousands separators ("12,345")
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// Truncate shortens s to at most max runes, marking the cut with "..."
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 3 || len(r) <= max {
		return s
	}
	return "..." + string(r[len(r)-max+3:])
}
