// Package fieldkeys parses the administrator's list of profile fields that
// must be filled in.
//
// A field key is either "core:<name>" for a built-in user field or
// "custom:<shortname>" for an administrator-defined profile field. Keys are
// compared by their text form. Resolving a raw list never fails: malformed
// keys and unknown core names are dropped, duplicates keep their first
// position.
package fieldkeys

import (
	"regexp"
	"strings"
)

// Kind separates built-in fields from custom profile fields.
type Kind string

const (
	Core   Kind = "core"
	Custom Kind = "custom"
)

// CoreFields are the built-in user fields that can be required, in the
// order they are offered on the settings page.
var CoreFields = []string{"firstname", "lastname", "email", "city", "country", "phone1"}

var coreLabels = map[string]string{
	"firstname": "First name",
	"lastname":  "Last name",
	"email":     "Email address",
	"city":      "City/town",
	"country":   "Country",
	"phone1":    "Phone",
}

var keyPattern = regexp.MustCompile(`^(core|custom):([a-z0-9_]+)$`)

// Key identifies one configured field.
type Key struct {
	Kind Kind
	Name string // core field name or custom shortname
}

// String returns the canonical "kind:name" form.
func (k Key) String() string {
	return string(k.Kind) + ":" + k.Name
}

// IsCore reports whether k names a built-in field.
func (k Key) IsCore() bool { return k.Kind == Core }

// CoreKey builds the key for a built-in field.
func CoreKey(name string) Key { return Key{Kind: Core, Name: name} }

// CustomKey builds the key for a custom profile field.
func CustomKey(shortname string) Key { return Key{Kind: Custom, Name: shortname} }

// IsCoreField reports whether name is one of CoreFields.
func IsCoreField(name string) bool {
	_, ok := coreLabels[name]
	return ok
}

// CoreLabel returns the display label for a built-in field, or the name
// itself when it is not a known core field.
func CoreLabel(name string) string {
	if l, ok := coreLabels[name]; ok {
		return l
	}
	return name
}

// Parse converts s into a Key. Surrounding whitespace is not trimmed;
// callers that read user input should use Resolve.
func Parse(s string) (Key, bool) {
	m := keyPattern.FindStringSubmatch(s)
	if m == nil {
		return Key{}, false
	}
	k := Key{Kind: Kind(m[1]), Name: m[2]}
	if k.Kind == Core && !IsCoreField(k.Name) {
		return Key{}, false
	}
	return k, true
}

// IsValid reports whether s is a well-formed key. Custom shortnames are not
// checked against the field catalog.
func IsValid(s string) bool {
	_, ok := Parse(s)
	return ok
}

// Resolve splits a comma separated list and returns the valid keys in
// first-seen order.
func Resolve(raw string) []Key {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return ResolveList(strings.Split(raw, ","))
}

// ResolveList is Resolve for settings that were stored as a list.
func ResolveList(items []string) []Key {
	var out []Key
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		k, ok := Parse(strings.TrimSpace(item))
		if !ok {
			continue
		}
		s := k.String()
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Strings returns the text form of each key.
func Strings(keys []Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}

// Split partitions keys by kind, keeping relative order.
func Split(keys []Key) (core, custom []Key) {
	for _, k := range keys {
		if k.IsCore() {
			core = append(core, k)
		} else {
			custom = append(custom, k)
		}
	}
	return core, custom
}
