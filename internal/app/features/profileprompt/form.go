package profileprompt

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/dalemusser/profilecompletion/internal/app/system/completion"
	"github.com/dalemusser/profilecompletion/internal/app/system/countries"
	"github.com/dalemusser/profilecompletion/internal/app/system/fieldkeys"
	"github.com/dalemusser/profilecompletion/internal/app/system/htmlsanitize"
	"github.com/dalemusser/profilecompletion/internal/app/system/inputval"
	"github.com/dalemusser/profilecompletion/internal/app/system/profilefield"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
)

// Length limits for the built-in text inputs.
const (
	nameMaxLen  = 100
	cityMaxLen  = 120
	emailMaxLen = 100
	phoneMaxLen = 20
)

// Submission is a validated form post, split by where each value is stored.
type Submission struct {
	Core   map[string]string // core field name -> value
	Custom map[string]string // shortname -> normalized value
	Errors map[string]string // input name -> message
}

// Valid reports whether nothing failed validation.
func (s Submission) Valid() bool { return len(s.Errors) == 0 }

// Controls builds one input per missing entry, in configuration order.
// With a nil form the inputs start from the user's stored values;
// otherwise they echo the submitted values. errs are attached by input name.
func Controls(missing completion.Missing, u *models.User, form url.Values, errs map[string]string) []profilefield.Control {
	entries := missing.Entries()
	out := make([]profilefield.Control, 0, len(entries))
	for _, e := range entries {
		var c profilefield.Control
		if e.Kind == fieldkeys.Core {
			value := u.CoreValue(e.Name)
			if form != nil {
				value = form.Get(e.Name)
			}
			c = coreControl(e.Name, e.Label, value)
		} else {
			if e.Field == nil {
				continue
			}
			value := e.Field.Default()
			if form != nil {
				value = e.Field.Normalize(form.Get(e.Field.InputName()))
			}
			c = e.Field.Control(value, true)
		}
		c.Error = errs[c.Name]
		out = append(out, c)
	}
	return out
}

func coreControl(name, label, value string) profilefield.Control {
	c := profilefield.Control{
		Name:     name,
		Label:    label,
		Type:     "text",
		Value:    value,
		Required: true,
	}
	switch name {
	case "firstname", "lastname":
		c.MaxLength = nameMaxLen
	case "city":
		c.MaxLength = cityMaxLen
	case "email":
		c.Type = "email"
		c.MaxLength = emailMaxLen
	case "country":
		c.Type = "select"
		c.Options = append(c.Options, profilefield.Option{Value: "", Label: "", Selected: value == ""})
		for _, ct := range countries.All() {
			c.Options = append(c.Options, profilefield.Option{Value: ct.Code, Label: ct.Name, Selected: ct.Code == value})
		}
	case "phone1":
		c.MaxLength = phoneMaxLen
		c.Size = 25
		c.Dir = "ltr"
	}
	return c
}

// Validate checks form against the missing entries only. Fields that are
// not missing are ignored even when posted.
func Validate(missing completion.Missing, form url.Values) Submission {
	sub := Submission{
		Core:   map[string]string{},
		Custom: map[string]string{},
		Errors: map[string]string{},
	}
	for _, e := range missing.Entries() {
		if e.Kind == fieldkeys.Core {
			value, msg := cleanCore(e.Name, form.Get(e.Name))
			if msg != "" {
				sub.Errors[e.Name] = msg
				continue
			}
			sub.Core[e.Name] = value
			continue
		}
		if e.Field == nil {
			continue
		}
		input := e.Field.InputName()
		value := e.Field.Normalize(form.Get(input))
		if msg := e.Field.Validate(value, true); msg != "" {
			sub.Errors[input] = msg
			continue
		}
		sub.Custom[e.Name] = value
	}
	return sub
}

// cleanCore returns the value to store or a message.
func cleanCore(name, raw string) (string, string) {
	value := strings.TrimSpace(raw)
	switch name {
	case "firstname", "lastname", "city":
		value = htmlsanitize.StripTags(value)
	case "country":
		value = strings.ToUpper(value)
	}
	if value == "" {
		return "", msgRequired
	}

	switch name {
	case "firstname", "lastname":
		if utf8.RuneCountInString(value) > nameMaxLen {
			return "", msgTooLong
		}
	case "city":
		if utf8.RuneCountInString(value) > cityMaxLen {
			return "", msgTooLong
		}
	case "email":
		if utf8.RuneCountInString(value) > emailMaxLen || !inputval.IsValidEmail(value) {
			return "", msgInvalidEmail
		}
	case "country":
		if !countries.IsValid(value) {
			return "", msgCountry
		}
	case "phone1":
		if utf8.RuneCountInString(value) > phoneMaxLen {
			return "", msgTooLong
		}
	}
	return value, ""
}
