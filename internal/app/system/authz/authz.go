// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/profilecompletion/internal/app/system/auth"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "visitor", "", NilObjectID, false. This ensures callers can trust that
// ok=true means a valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session; fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleAdmin
}

// IsGuest reports whether the request has no usable account: either nobody
// is signed in or the signed-in account is the guest account.
func IsGuest(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return !ok || role == models.RoleGuest
}

// CanEditOwnProfile reports whether the signed-in user may change their own
// profile fields. Guests and locked profiles may not.
func CanEditOwnProfile(r *http.Request) bool {
	if IsGuest(r) {
		return false
	}
	user, _ := auth.CurrentUser(r)
	return !user.ProfileLocked
}

// CanUpdateUsers reports whether the signed-in user may update any user's
// profile. Admins always can; other roles need the explicit grant.
func CanUpdateUsers(r *http.Request) bool {
	if IsGuest(r) {
		return false
	}
	if IsAdmin(r) {
		return true
	}
	user, _ := auth.CurrentUser(r)
	return user.CanUpdateUsers
}

// CanCompleteProfile reports whether the signed-in user may submit the
// profile completion form for their own account.
func CanCompleteProfile(r *http.Request) bool {
	return !IsGuest(r) && (CanEditOwnProfile(r) || CanUpdateUsers(r))
}

// Checker exposes the request capability checks as a value so handlers can
// take it as a dependency and tests can swap it out.
type Checker interface {
	CanCompleteProfile(r *http.Request) bool
}

// RequestChecker is the Checker backed by the session user in r.Context().
type RequestChecker struct{}

// CanCompleteProfile implements Checker.
func (RequestChecker) CanCompleteProfile(r *http.Request) bool { return CanCompleteProfile(r) }
