// internal/domain/models/completionsettings.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CompletionSettingsID is the _id of the profile completion document in
// the plugin_settings collection.
const CompletionSettingsID = "profilecompletion"

// CompletionSettings is the admin setting pair that drives the profile
// completion prompt.
//
// FieldKeys holds the raw list as it was stored. Older documents store a
// comma separated string; documents written by the settings page store an
// array. Both shapes are kept verbatim and resolved on read.
type CompletionSettings struct {
	Enabled bool

	// FieldKeysText is set when the stored value is a string.
	FieldKeysText string
	// FieldKeysList is set when the stored value is an array.
	FieldKeysList []string
	// IsList reports which of the two shapes was stored.
	IsList bool

	UpdatedAt     *time.Time
	UpdatedByID   *primitive.ObjectID
	UpdatedByName string
}

// DefaultCompletionSettings is used when no document exists yet.
func DefaultCompletionSettings() CompletionSettings {
	return CompletionSettings{Enabled: true}
}

// DefaultSiteName is shown in the page header.
const DefaultSiteName = "Profile Completion"
