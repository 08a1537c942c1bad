package validate

import "strings"

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// NormalizeEmail trims and lowercases an email address the way the
// upstream login endpoint expects it before encryption.
func NormalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
