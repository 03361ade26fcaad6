package indexes_test

import (
	"context"
	"testing"

	"github.com/dalemusser/profilecompletion/internal/app/system/indexes"
	"github.com/dalemusser/profilecompletion/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func indexNames(t *testing.T, ctx context.Context, coll *mongo.Collection) map[string]bool {
	t.Helper()
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	expected := map[string][]string{
		"users":              {"uniq_users_loginidci_auth", "idx_users_auth_return_id", "idx_users_role_status"},
		"profile_fields":     {"uniq_profile_fields_shortname", "idx_profile_fields_sort"},
		"profile_field_data": {"uniq_profile_field_data_user_field", "idx_profile_field_data_field"},
		"oauth_states":       {"uniq_oauth_state", "idx_oauth_expires_ttl"},
		"login_records":      {"idx_login_records_user_created"},
		"audit_events":       {"idx_audit_timestamp", "idx_audit_user_timestamp", "idx_audit_category_type_timestamp"},
	}
	for coll, want := range expected {
		names := indexNames(t, ctx, db.Collection(coll))
		for _, name := range want {
			if !names[name] {
				t.Errorf("expected index %q to exist on %s collection", name, coll)
			}
		}
	}
}

func TestEnsureAll_RenamesMisnamedIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// SetupTestDB already created the index; replace it with a legacy name.
	if _, err := db.Collection("profile_fields").Indexes().DropOne(ctx, "uniq_profile_fields_shortname"); err != nil {
		t.Fatalf("drop index: %v", err)
	}
	_, err := db.Collection("profile_fields").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "shortname", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("legacy_shortname"),
	})
	if err != nil {
		t.Fatalf("create legacy index: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names := indexNames(t, ctx, db.Collection("profile_fields"))
	if names["legacy_shortname"] {
		t.Error("expected legacy index to be replaced")
	}
	if !names["uniq_profile_fields_shortname"] {
		t.Error("expected uniq_profile_fields_shortname to exist")
	}
}

func TestEnsureAll_UniqueIndexEnforced(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err := db.Collection("profile_fields").InsertOne(ctx, bson.M{"shortname": "school", "name": "School"})
	if err != nil {
		t.Fatalf("Insert field failed: %v", err)
	}
	_, err = db.Collection("profile_fields").InsertOne(ctx, bson.M{"shortname": "school", "name": "Other"})
	if err == nil {
		t.Error("expected duplicate key error for unique index on profile_fields.shortname")
	}
}
