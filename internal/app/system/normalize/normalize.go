// Package normalize canonicalizes user-entered values before they are
// stored or compared.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims, applies NFC and collapses runs of whitespace. Case is kept.
func Name(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// AuthMethod trims and lowercases an auth method value.
func AuthMethod(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status trims and lowercases a status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Role trims and lowercases a role value.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Country trims and uppercases an ISO country code.
func Country(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Phone trims a phone number and collapses inner whitespace.
func Phone(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
