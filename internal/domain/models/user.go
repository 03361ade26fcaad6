// internal/domain/models/user.go
package models

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The human-readable string users type to log in

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user record may carry. Guest is the shared anonymous account;
// it can browse but never owns a profile.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleGuest  = "guest"
)

// Account statuses. Disabled accounts cannot sign in.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleMember, RoleGuest:
		return true
	}
	return false
}

// User is a signed-in account together with its built-in profile fields.
//
// The profile fields (FirstName through Phone1) are the ones the completion
// prompt can require. Custom profile fields live in profile_field_data.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LoginID      *string            `bson:"login_id,omitempty" json:"login_id,omitempty"`
	LoginIDCI    *string            `bson:"login_id_ci,omitempty" json:"login_id_ci,omitempty"` // folded for lookup
	PasswordHash *string            `bson:"password_hash,omitempty" json:"-"`
	AuthMethod   string             `bson:"auth_method,omitempty" json:"auth_method,omitempty"` // password | google
	AuthReturnID *string            `bson:"auth_return_id,omitempty" json:"auth_return_id,omitempty"`
	Role         string             `bson:"role" json:"role"` // admin | member | guest
	Status       string             `bson:"status,omitempty" json:"status,omitempty"`

	FirstName string `bson:"first_name" json:"first_name"`
	LastName  string `bson:"last_name" json:"last_name"`
	Email     string `bson:"email" json:"email"`
	City      string `bson:"city" json:"city"`
	Country   string `bson:"country" json:"country"` // ISO 3166-1 alpha-2
	Phone1    string `bson:"phone1" json:"phone1"`

	// CanUpdateUsers grants a non-admin the right to edit other users' profiles.
	CanUpdateUsers bool `bson:"can_update_users,omitempty" json:"can_update_users,omitempty"`
	// ProfileLocked removes the right to edit one's own profile.
	ProfileLocked bool `bson:"profile_locked,omitempty" json:"profile_locked,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsGuest reports whether u is the shared guest account.
func (u *User) IsGuest() bool {
	return u != nil && u.Role == RoleGuest
}

// FullName joins first and last name, skipping blanks.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// CoreValue returns the stored value of a built-in profile field by its
// short name (firstname, lastname, email, city, country, phone1).
// Unknown names return "".
func (u *User) CoreValue(name string) string {
	switch name {
	case "firstname":
		return u.FirstName
	case "lastname":
		return u.LastName
	case "email":
		return u.Email
	case "city":
		return u.City
	case "country":
		return u.Country
	case "phone1":
		return u.Phone1
	}
	return ""
}

// CoreBSONField maps a built-in profile field short name to its bson key.
func CoreBSONField(name string) (string, bool) {
	switch name {
	case "firstname":
		return "first_name", true
	case "lastname":
		return "last_name", true
	case "email":
		return "email", true
	case "city":
		return "city", true
	case "country":
		return "country", true
	case "phone1":
		return "phone1", true
	}
	return "", false
}
