package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/dalemusser/profilecompletion/internal/app/system/auth"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID             string
	Name           string
	LoginID        string
	Role           string
	CanUpdateUsers bool
	ProfileLocked  bool
}

// AdminUser returns a TestUser with admin role.
func AdminUser() TestUser {
	return TestUser{
		ID:      primitive.NewObjectID().Hex(),
		Name:    "Test Admin",
		LoginID: "admin@test.com",
		Role:    models.RoleAdmin,
	}
}

// MemberUser returns a TestUser with member role.
func MemberUser() TestUser {
	return TestUser{
		ID:      primitive.NewObjectID().Hex(),
		Name:    "Test Member",
		LoginID: "member@test.com",
		Role:    models.RoleMember,
	}
}

// GuestUser returns a TestUser for the shared guest account.
func GuestUser() TestUser {
	return TestUser{
		ID:      primitive.NewObjectID().Hex(),
		Name:    "Guest",
		LoginID: "guest",
		Role:    models.RoleGuest,
	}
}

// AsTestUser converts a stored user into a TestUser with the same id.
func AsTestUser(u models.User) TestUser {
	login := ""
	if u.LoginID != nil {
		login = *u.LoginID
	}
	return TestUser{
		ID:             u.ID.Hex(),
		Name:           u.FullName(),
		LoginID:        login,
		Role:           u.Role,
		CanUpdateUsers: u.CanUpdateUsers,
		ProfileLocked:  u.ProfileLocked,
	}
}

// WithUser adds a user to the request context for testing authenticated handlers.
// This bypasses the session middleware and injects the user directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	sessionUser := &auth.SessionUser{
		ID:             user.ID,
		Name:           user.Name,
		LoginID:        user.LoginID,
		Role:           user.Role,
		CanUpdateUsers: user.CanUpdateUsers,
		ProfileLocked:  user.ProfileLocked,
	}
	return auth.WithTestUser(r, sessionUser)
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return WithUser(req, user)
}

// NewFormRequest creates a urlencoded POST request carrying form.
func NewFormRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
