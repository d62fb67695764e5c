package utils

import (
	"strconv"
	"strings"
)

// TakaSymbol prefixes every displayed price
const TakaSymbol = "৳"

// FormatTaka formats a whole Taka amount as a string like "৳12,500".
// Uses comma as thousands separator, matching the storefront display.
func FormatTaka(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	s := strconv.FormatInt(amount, 10)
	var b strings.Builder
	b.Grow(len(s) + len(s)/3 + len(TakaSymbol) + 1)
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(TakaSymbol)

	if len(s) <= 3 {
		b.WriteString(s)
		return b.String()
	}

	// Insert separators from the left.
	rem := len(s) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(s[:rem])
	for i := rem; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}

	return b.String()
}
