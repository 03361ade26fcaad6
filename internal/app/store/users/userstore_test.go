package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/dalemusser/profilecompletion/internal/app/store/users"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
	"github.com/dalemusser/profilecompletion/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func strPtr(s string) *string { return &s }

func TestStore_Create_Member(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		LoginID:   strPtr("Ada.Lovelace"),
		Role:      "Member",
		FirstName: "  Ada  ",
		Email:     " ADA@Example.com ",
		Country:   "gb",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.LoginIDCI == nil || *created.LoginIDCI != "ada.lovelace" {
		t.Errorf("LoginIDCI: got %v", created.LoginIDCI)
	}
	if created.Role != "member" || created.Status != "active" || created.AuthMethod != "password" {
		t.Errorf("defaults: role=%q status=%q auth=%q", created.Role, created.Status, created.AuthMethod)
	}
	if created.FirstName != "Ada" || created.Email != "ada@example.com" || created.Country != "GB" {
		t.Errorf("normalization: %q %q %q", created.FirstName, created.Email, created.Country)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_InvalidRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.User{LoginID: strPtr("x"), Role: "owner"}); err == nil {
		t.Error("expected error for invalid role")
	}
	if _, err := store.Create(ctx, models.User{Role: "member"}); err == nil {
		t.Error("expected error for missing login id")
	}
}

func TestStore_Create_DuplicateLoginID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.User{LoginID: strPtr("sam"), Role: "member"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.User{LoginID: strPtr("SAM"), Role: "member"})
	if !errors.Is(err, userstore.ErrDuplicateLoginID) {
		t.Errorf("expected ErrDuplicateLoginID, got %v", err)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_GetByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, err := store.Create(ctx, models.User{LoginID: strPtr("a"), Role: "member"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	b, err := store.Create(ctx, models.User{LoginID: strPtr("b"), Role: "member"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.GetByIDs(ctx, []primitive.ObjectID{a.ID, b.ID, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("GetByIDs failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 users, got %d", len(got))
	}

	none, err := store.GetByIDs(ctx, nil)
	if err != nil || none != nil {
		t.Errorf("GetByIDs(nil) = %v, %v", none, err)
	}
}

func TestStore_GetByLoginID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateMember(ctx, "Grace")

	got, err := store.GetByLoginID(ctx, " grace", "password")
	if err != nil {
		t.Fatalf("GetByLoginID failed: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("got user %v, want %v", got.ID, u.ID)
	}

	if _, err := store.GetByLoginID(ctx, "grace", "google"); err != mongo.ErrNoDocuments {
		t.Errorf("expected no match for other auth method, got %v", err)
	}
}

func TestStore_UpdateCoreFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateMember(ctx, "lin")

	err := store.UpdateCoreFields(ctx, u.ID, map[string]string{
		"firstname": " Lin ",
		"email":     "LIN@EXAMPLE.COM",
		"country":   "nz",
		"phone1":    " 021  555 ",
	})
	if err != nil {
		t.Fatalf("UpdateCoreFields failed: %v", err)
	}

	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.FirstName != "Lin" || got.Email != "lin@example.com" || got.Country != "NZ" || got.Phone1 != "021 555" {
		t.Errorf("unexpected values: %+v", got)
	}
	if got.LastName != "" || got.City != "" {
		t.Error("fields not in the map must stay untouched")
	}
}

func TestStore_UpdateCoreFields_Errors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateMember(ctx, "kim")

	err := store.UpdateCoreFields(ctx, u.ID, map[string]string{"nickname": "K"})
	if !errors.Is(err, userstore.ErrUnknownCoreField) {
		t.Errorf("expected ErrUnknownCoreField, got %v", err)
	}
	err = store.UpdateCoreFields(ctx, primitive.NewObjectID(), map[string]string{"city": "Oslo"})
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
	if err := store.UpdateCoreFields(ctx, u.ID, nil); err != nil {
		t.Errorf("empty update should be a no-op, got %v", err)
	}
}

func TestCheckCoreFields(t *testing.T) {
	if err := userstore.CheckCoreFields(map[string]string{"city": "Riyadh", "phone1": "555"}); err != nil {
		t.Errorf("core keys rejected: %v", err)
	}
	if err := userstore.CheckCoreFields(nil); err != nil {
		t.Errorf("empty map rejected: %v", err)
	}
	err := userstore.CheckCoreFields(map[string]string{"city": "Riyadh", "house": "Gryffindor"})
	if !errors.Is(err, userstore.ErrUnknownCoreField) {
		t.Errorf("expected ErrUnknownCoreField, got %v", err)
	}
}

func TestStore_EnsureAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.EnsureAdmin(ctx, "Boss@Example.com", "google", "")
	if err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}
	if !created {
		t.Error("expected a new admin to be created")
	}
	admin, err := store.GetByLoginID(ctx, "boss@example.com", "google")
	if err != nil {
		t.Fatalf("GetByLoginID failed: %v", err)
	}
	if admin.Role != models.RoleAdmin || admin.Email != "boss@example.com" {
		t.Errorf("unexpected admin: %+v", admin)
	}

	created, err = store.EnsureAdmin(ctx, "boss@example.com", "google", "")
	if err != nil || created {
		t.Errorf("second EnsureAdmin: created=%v err=%v", created, err)
	}

	// An existing member is promoted in place.
	m := fixtures.CreateMember(ctx, "lead@example.com")
	if _, err := store.EnsureAdmin(ctx, "lead@example.com", "password", "hash"); err != nil {
		t.Fatalf("EnsureAdmin promote failed: %v", err)
	}
	got, _ := store.GetByID(ctx, m.ID)
	if got.Role != models.RoleAdmin || got.PasswordHash == nil || *got.PasswordHash != "hash" {
		t.Errorf("expected promotion, got %+v", got)
	}
}

func TestFetcher_FetchUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateCompleteMember(ctx, "ada")
	f := userstore.NewFetcher(db)

	su := f.FetchUser(ctx, u.ID.Hex())
	if su == nil {
		t.Fatal("expected session user")
	}
	if su.Name != "Ada Lovelace" || su.Role != "member" || su.LoginID != "ada" {
		t.Errorf("unexpected session user: %+v", su)
	}

	if f.FetchUser(ctx, "not-an-id") != nil {
		t.Error("expected nil for malformed id")
	}
	if f.FetchUser(ctx, primitive.NewObjectID().Hex()) != nil {
		t.Error("expected nil for unknown id")
	}
}
