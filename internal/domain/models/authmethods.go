// internal/domain/models/authmethods.go
package models

import "strings"

// AuthMethod represents an authentication method option for the UI.
type AuthMethod struct {
	Value string // The value stored in the database
	Label string // The display label in the UI
}

// Sign-in methods.
const (
	AuthMethodPassword = "password"
	AuthMethodGoogle   = "google"
)

// AllAuthMethods lists the sign-in methods an account can use.
var AllAuthMethods = []AuthMethod{
	{Value: AuthMethodPassword, Label: "Password"},
	{Value: AuthMethodGoogle, Label: "Google"},
}

// IsValidAuthMethod reports whether method is one of AllAuthMethods.
func IsValidAuthMethod(method string) bool {
	method = strings.ToLower(strings.TrimSpace(method))
	for _, m := range AllAuthMethods {
		if m.Value == method {
			return true
		}
	}
	return false
}

// AuthMethodLabel returns the display label for method, or method itself
// when it is unknown.
func AuthMethodLabel(method string) string {
	for _, m := range AllAuthMethods {
		if m.Value == method {
			return m.Label
		}
	}
	return method
}
