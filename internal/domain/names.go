package domain

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MaxNameLength bounds customer and product names, in runes.
const MaxNameLength = 255

// validID matches caller-supplied identifiers. The browser client sends
// UUIDs; readable ids ("order-1") are accepted as well.
var validID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]{0,63}$`)

// NormalizeName trims surrounding whitespace and applies NFC normalization,
// so visually identical names compare equal in storage.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// ValidName reports whether a normalized name is non-empty and within bounds.
func ValidName(s string) bool {
	n := len([]rune(s))
	return n > 0 && n <= MaxNameLength
}

// ValidID reports whether s is an acceptable identifier.
func ValidID(s string) bool {
	return validID.MatchString(s)
}
