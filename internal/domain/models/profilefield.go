// internal/domain/models/profilefield.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Data types an administrator can give a custom profile field.
const (
	FieldText     = "text"
	FieldTextarea = "textarea"
	FieldCheckbox = "checkbox"
	FieldMenu     = "menu"
	FieldDatetime = "datetime"
)

// ProfileFieldTypes lists the supported custom field data types in UI order.
var ProfileFieldTypes = []string{FieldText, FieldTextarea, FieldCheckbox, FieldMenu, FieldDatetime}

// ProfileField is one administrator-defined custom profile field.
type ProfileField struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Shortname   string             `bson:"shortname" json:"shortname"` // [a-z0-9_]+, unique
	Name        string             `bson:"name" json:"name"`
	DataType    string             `bson:"datatype" json:"datatype"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Required    bool               `bson:"required" json:"required"`
	DefaultData string             `bson:"default_data,omitempty" json:"default_data,omitempty"`

	// Options holds menu choices (menu fields only), in display order.
	Options []string `bson:"options,omitempty" json:"options,omitempty"`
	// MaxLength bounds text input (text fields only); 0 means unbounded.
	MaxLength int `bson:"max_length,omitempty" json:"max_length,omitempty"`

	SortOrder int       `bson:"sort_order" json:"sort_order"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ProfileFieldData stores one user's value for one custom field.
type ProfileFieldData struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	FieldID   primitive.ObjectID `bson:"field_id" json:"field_id"`
	Data      string             `bson:"data" json:"data"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
