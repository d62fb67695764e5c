package utils

import "strings"

// NormalizeVariant trims and upper-cases a size or color for comparison
func NormalizeVariant(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// MatchVariant finds value among options ignoring case and surrounding spaces.
// Returns the option as spelled in the catalog so cart keys stay canonical.
func MatchVariant(options []string, value string) (string, bool) {
	wanted := NormalizeVariant(value)
	if wanted == "" {
		return "", false
	}
	for _, option := range options {
		if NormalizeVariant(option) == wanted {
			return option, true
		}
	}
	return "", false
}
