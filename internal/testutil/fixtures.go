package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/profilecompletion/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// CreateUser inserts a password user with the given login id and role and
// no profile fields filled in.
func (f *Fixtures) CreateUser(ctx context.Context, loginID, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	login := loginID
	loginIDCI := text.Fold(loginID)
	user := models.User{
		ID:         primitive.NewObjectID(),
		LoginID:    &login,
		LoginIDCI:  &loginIDCI,
		AuthMethod: "password",
		Role:       role,
		Status:     models.StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateMember creates a test member user.
func (f *Fixtures) CreateMember(ctx context.Context, loginID string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, loginID, models.RoleMember)
}

// CreateGuest creates the shared guest account.
func (f *Fixtures) CreateGuest(ctx context.Context) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, "guest", models.RoleGuest)
}

// CreateCompleteMember creates a member whose built-in profile fields are
// all filled in.
func (f *Fixtures) CreateCompleteMember(ctx context.Context, loginID string) models.User {
	f.t.Helper()
	u := f.CreateMember(ctx, loginID)
	u.FirstName, u.LastName = "Ada", "Lovelace"
	u.Email, u.City, u.Country, u.Phone1 = "ada@example.com", "London", "GB", "+44 20 7946 0000"
	f.setCore(ctx, u)
	return u
}

// SetPassword stores a bcrypt hash of password on the user.
func (f *Fixtures) SetPassword(ctx context.Context, userID primitive.ObjectID, password string) {
	f.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash password: %v", err)
	}
	_, err = f.db.Collection("users").UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"password_hash": string(hash)}})
	if err != nil {
		f.t.Fatalf("failed to set password: %v", err)
	}
}

// SetStatus changes the user's account status.
func (f *Fixtures) SetStatus(ctx context.Context, userID primitive.ObjectID, status string) {
	f.t.Helper()
	_, err := f.db.Collection("users").UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		f.t.Fatalf("failed to set status: %v", err)
	}
}

func (f *Fixtures) setCore(ctx context.Context, u models.User) {
	f.t.Helper()
	_, err := f.db.Collection("users").UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": bson.M{
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"email":      u.Email,
		"city":       u.City,
		"country":    u.Country,
		"phone1":     u.Phone1,
	}})
	if err != nil {
		f.t.Fatalf("failed to set profile fields: %v", err)
	}
}

// CreateProfileField adds a custom field to the catalog.
func (f *Fixtures) CreateProfileField(ctx context.Context, shortname, name, datatype string) models.ProfileField {
	f.t.Helper()

	now := time.Now().UTC()
	field := models.ProfileField{
		ID:        primitive.NewObjectID(),
		Shortname: shortname,
		Name:      name,
		DataType:  datatype,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if datatype == models.FieldMenu {
		field.Options = []string{"Red", "Green", "Blue"}
	}

	if _, err := f.db.Collection("profile_fields").InsertOne(ctx, field); err != nil {
		f.t.Fatalf("failed to create profile field: %v", err)
	}
	return field
}

// SetProfileFieldValue stores a user's value for a custom field.
func (f *Fixtures) SetProfileFieldValue(ctx context.Context, userID, fieldID primitive.ObjectID, value string) {
	f.t.Helper()

	_, err := f.db.Collection("profile_field_data").InsertOne(ctx, models.ProfileFieldData{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		FieldID:   fieldID,
		Data:      value,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		f.t.Fatalf("failed to set profile field value: %v", err)
	}
}

// ConfigureCompletion writes the completion settings document with the
// field keys stored as an array.
func (f *Fixtures) ConfigureCompletion(ctx context.Context, enabled bool, keys ...string) {
	f.t.Helper()

	if keys == nil {
		keys = []string{}
	}
	_, err := f.db.Collection("plugin_settings").ReplaceOne(ctx,
		bson.M{"_id": models.CompletionSettingsID},
		bson.M{"_id": models.CompletionSettingsID, "enabled": enabled, "fieldkeys": keys},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		f.t.Fatalf("failed to configure completion: %v", err)
	}
}
