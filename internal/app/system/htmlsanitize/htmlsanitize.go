// Package htmlsanitize cleans user-supplied markup.
//
// Admin-entered descriptions keep a safe subset of HTML (bluemonday UGC
// policy). Free-text profile values keep no markup at all.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	once   sync.Once
	ugc    *bluemonday.Policy
	strict *bluemonday.Policy
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	once.Do(func() {
		ugc = bluemonday.UGCPolicy()
		ugc.AllowAttrs("class").OnElements("p", "span", "div")
		ugc.RequireNoFollowOnLinks(true)
		strict = bluemonday.StrictPolicy()
	})
	return ugc, strict
}

// Sanitize removes dangerous markup and keeps formatting.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	p, _ := policies()
	return p.Sanitize(s)
}

// SanitizeToHTML is Sanitize returning template.HTML.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// StripTags removes every tag and returns plain text. Entities are
// decoded so "A &amp; B" round-trips to "A & B".
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	_, p := policies()
	return strings.TrimSpace(html.UnescapeString(p.Sanitize(s)))
}

// IsPlainText reports whether s contains no tag-like markup.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}

// PlainTextToHTML escapes s and turns newlines into <br>.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := html.EscapeString(s)
	return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>"
}

// PrepareForDisplay renders either plain text or sanitized HTML.
func PrepareForDisplay(s string) template.HTML {
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return template.HTML(PlainTextToHTML(s))
	}
	return SanitizeToHTML(s)
}
