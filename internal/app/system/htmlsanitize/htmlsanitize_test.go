package htmlsanitize_test

import (
	"html/template"
	"strings"
	"testing"

	"github.com/dalemusser/profilecompletion/internal/app/system/htmlsanitize"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text", "Hello, World!", "Hello, World!"},
		{"safe html", "<p><strong>Bold</strong> and <em>italic</em></p>", "<p><strong>Bold</strong> and <em>italic</em></p>"},
		{"script removed", "<p>Hello</p><script>alert('xss')</script>", "<p>Hello</p>"},
		{"style removed", "<style>p{}</style><p>Hi</p>", "<p>Hi</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitize_RemovesHandlers(t *testing.T) {
	for _, input := range []string{
		`<button onclick="alert('xss')">Click</button>`,
		`<img src="x" onerror="alert('xss')">`,
		`<a href="javascript:alert('xss')">Click</a>`,
	} {
		got := htmlsanitize.Sanitize(input)
		if strings.Contains(got, "onclick") || strings.Contains(got, "onerror") || strings.Contains(got, "javascript:") {
			t.Errorf("Sanitize(%q) kept dangerous content: %q", input, got)
		}
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"Hermione", "Hermione"},
		{"<b>Hermione</b>", "Hermione"},
		{"  Ron <script>x</script> ", "Ron"},
		{"A & B", "A & B"},
		{"O'Brien", "O'Brien"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := htmlsanitize.StripTags(tt.input); got != tt.want {
				t.Errorf("StripTags(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsPlainText(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"Hello, World!", true},
		{"<p>Hello</p>", false},
		{"5 < 10", true},
		{"5 > 3", true},
	}
	for _, tt := range tests {
		if got := htmlsanitize.IsPlainText(tt.input); got != tt.want {
			t.Errorf("IsPlainText(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestPlainTextToHTML(t *testing.T) {
	if got := htmlsanitize.PlainTextToHTML("Line 1\nLine 2"); got != "<p>Line 1<br>Line 2</p>" {
		t.Errorf("got %q", got)
	}
	if got := htmlsanitize.PlainTextToHTML("A & B"); got != "<p>A &amp; B</p>" {
		t.Errorf("got %q", got)
	}
	if got := htmlsanitize.PlainTextToHTML("<script>"); strings.Contains(got, "<script>") {
		t.Errorf("expected escaping, got %q", got)
	}
}

func TestPrepareForDisplay(t *testing.T) {
	tests := []struct {
		input string
		want  template.HTML
	}{
		{"", ""},
		{"Hello, World!", "<p>Hello, World!</p>"},
		{"<p>Hello</p>", "<p>Hello</p>"},
		{"<p>Hello</p><script>alert('xss')</script>", "<p>Hello</p>"},
		{"Line 1\nLine 2", "<p>Line 1<br>Line 2</p>"},
	}
	for _, tt := range tests {
		if got := htmlsanitize.PrepareForDisplay(tt.input); got != tt.want {
			t.Errorf("PrepareForDisplay(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
