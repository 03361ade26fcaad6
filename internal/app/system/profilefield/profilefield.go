// Package profilefield gives each custom profile field data type its own
// rules for emptiness, form control, default value and validation.
//
// A Descriptor pairs a catalog entry with one user's stored value. Callers
// never switch on the data type themselves; they ask the descriptor.
package profilefield

import (
	"fmt"
	"html/template"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dalemusser/profilecompletion/internal/app/system/htmlsanitize"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
)

// InputPrefix is prepended to a shortname to form the form input name.
const InputPrefix = "profile_field_"

// DateLayout is how datetime fields are stored and submitted.
const DateLayout = "2006-01-02"

// Descriptor is one custom field as seen by one user.
type Descriptor struct {
	Field   models.ProfileField
	Value   string
	HasData bool // a profile_field_data record exists
}

// New builds a descriptor from a catalog entry and the user's data record
// (nil when the user never saved a value).
func New(f models.ProfileField, data *models.ProfileFieldData) Descriptor {
	d := Descriptor{Field: f}
	if data != nil {
		d.Value = data.Data
		d.HasData = true
	}
	return d
}

// Shortname returns the field's shortname.
func (d Descriptor) Shortname() string { return d.Field.Shortname }

// Name returns the display name.
func (d Descriptor) Name() string { return d.Field.Name }

// InputName is the form input name for this field.
func (d Descriptor) InputName() string { return InputName(d.Field.Shortname) }

// InputName returns the form input name for shortname.
func InputName(shortname string) string { return InputPrefix + shortname }

// IsEmpty reports whether the user's value counts as missing.
func (d Descriptor) IsEmpty() bool {
	v := strings.TrimSpace(d.Value)
	switch d.Field.DataType {
	case models.FieldCheckbox:
		// A stored "0" (explicitly unticked) is missing too. Validate
		// demands a ticked box for a configured checkbox, so only "1"
		// can ever satisfy the prompt.
		return v != "1"
	case models.FieldMenu:
		return v == "" || !slices.Contains(d.Field.Options, v)
	case models.FieldDatetime:
		if v == "" || v == "0" {
			return true
		}
		_, err := time.Parse(DateLayout, v)
		return err != nil
	default:
		return v == ""
	}
}

// Default is the value the form starts with.
func (d Descriptor) Default() string {
	if d.HasData {
		return d.Value
	}
	return d.Field.DefaultData
}

// Normalize converts a submitted value into its stored form.
func (d Descriptor) Normalize(value string) string {
	switch d.Field.DataType {
	case models.FieldCheckbox:
		if value == "1" || strings.EqualFold(value, "on") || strings.EqualFold(value, "true") {
			return "1"
		}
		return "0"
	case models.FieldTextarea:
		return strings.TrimSpace(strings.ReplaceAll(value, "\r\n", "\n"))
	default:
		return strings.TrimSpace(value)
	}
}

// Validate checks a normalized value. When required is true a blank value
// is rejected regardless of the field's own Required flag. The returned
// string is a user-facing message, empty when the value is acceptable.
func (d Descriptor) Validate(value string, required bool) string {
	required = required || d.Field.Required
	blank := strings.TrimSpace(value) == ""

	switch d.Field.DataType {
	case models.FieldCheckbox:
		if required && value != "1" {
			return "Required"
		}
		return ""
	case models.FieldMenu:
		if blank {
			if required {
				return "Required"
			}
			return ""
		}
		if !slices.Contains(d.Field.Options, value) {
			return "Select one of the listed options."
		}
		return ""
	case models.FieldDatetime:
		if blank {
			if required {
				return "Required"
			}
			return ""
		}
		if _, err := time.Parse(DateLayout, value); err != nil {
			return "Enter a valid date."
		}
		return ""
	default:
		if blank {
			if required {
				return "Required"
			}
			return ""
		}
		if limit := d.Field.MaxLength; limit > 0 && utf8.RuneCountInString(value) > limit {
			return fmt.Sprintf("Must be at most %d characters.", limit)
		}
		return ""
	}
}

// Option is one choice of a select control.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Control is a rendered form input.
type Control struct {
	Name        string
	Label       string
	Type        string // text | email | textarea | checkbox | select | date
	Value       string
	Checked     bool
	Options     []Option
	MaxLength   int
	Size        int
	Dir         string
	Required    bool
	Description template.HTML
	Error       string
}

// Control builds the form input for this field with the given value.
func (d Descriptor) Control(value string, required bool) Control {
	c := Control{
		Name:        d.InputName(),
		Label:       d.Field.Name,
		Value:       value,
		Required:    required || d.Field.Required,
		Description: htmlsanitize.PrepareForDisplay(d.Field.Description),
	}
	switch d.Field.DataType {
	case models.FieldTextarea:
		c.Type = "textarea"
	case models.FieldCheckbox:
		c.Type = "checkbox"
		c.Checked = value == "1"
	case models.FieldMenu:
		c.Type = "select"
		c.Options = append(c.Options, Option{Value: "", Label: "Choose...", Selected: value == ""})
		for _, o := range d.Field.Options {
			c.Options = append(c.Options, Option{Value: o, Label: o, Selected: o == value})
		}
	case models.FieldDatetime:
		c.Type = "date"
	default:
		c.Type = "text"
		c.MaxLength = d.Field.MaxLength
	}
	return c
}

// IsValidDataType reports whether t is a supported data type.
func IsValidDataType(t string) bool {
	return slices.Contains(models.ProfileFieldTypes, t)
}
