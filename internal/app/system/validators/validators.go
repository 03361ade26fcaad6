// internal/app/system/validators/validators.go
package validators

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The human-readable string users type to log in

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/profilecompletion/internal/app/store/audit"
	"github.com/dalemusser/profilecompletion/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("profile_fields", profileFieldsSchema())
	ensure("profile_field_data", profileFieldDataSchema())
	ensure("plugin_settings", pluginSettingsSchema())
	ensure("login_records", loginRecordsSchema())
	ensure("audit_events", auditEventsSchema())

	// TTL-managed; documents come and go too fast to be worth a schema.
	ensure("oauth_states", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Debug("collection exists", zap.String("collection", name))
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func enumOf(values []string) bson.A {
	out := make(bson.A, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

var (
	nonBlank     = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	optionalText = bson.M{"bsonType": bson.A{"string", "null"}}
)

func usersSchema() bson.M {
	methods := make([]string, 0, len(models.AllAuthMethods))
	for _, m := range models.AllAuthMethods {
		methods = append(methods, m.Value)
	}
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"role"},
			"properties": bson.M{
				"login_id":       optionalText,
				"login_id_ci":    optionalText,
				"auth_return_id": optionalText,
				"role":           bson.M{"enum": bson.A{models.RoleAdmin, models.RoleMember, models.RoleGuest}},
				"status":         bson.M{"enum": bson.A{models.StatusActive, models.StatusDisabled}},
				"auth_method":    bson.M{"enum": enumOf(methods)},
				"first_name":     bson.M{"bsonType": "string"},
				"last_name":      bson.M{"bsonType": "string"},
				"email":          bson.M{"bsonType": "string"},
				"city":           bson.M{"bsonType": "string"},
				"country":        bson.M{"bsonType": "string", "maxLength": 2},
				"phone1":         bson.M{"bsonType": "string", "maxLength": 20},
			},
		},
	}
}

func profileFieldsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"shortname", "name", "datatype"},
			"properties": bson.M{
				"shortname": bson.M{"bsonType": "string", "pattern": "^[a-z0-9_]+$"},
				"name":      nonBlank,
				"datatype":  bson.M{"enum": enumOf(models.ProfileFieldTypes)},
				"required":  bson.M{"bsonType": "bool"},
				"options":   bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
			},
		},
	}
}

func profileFieldDataSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "field_id", "data"},
			"properties": bson.M{
				"user_id":  bson.M{"bsonType": "objectId"},
				"field_id": bson.M{"bsonType": "objectId"},
				"data":     bson.M{"bsonType": "string"},
			},
		},
	}
}

// pluginSettingsSchema only pins the field-key shapes the settings store
// can read; enabled stays loose because older documents store it as a
// string or a number.
func pluginSettingsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"properties": bson.M{
				"fieldkeys":     bson.M{"bsonType": bson.A{"string", "array", "null"}},
				"updated_by_id": bson.M{"bsonType": bson.A{"objectId", "null"}},
			},
		},
	}
}

func loginRecordsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "created_at"},
			"properties": bson.M{
				"user_id":        bson.M{"bsonType": "objectId"},
				"auth_method":    bson.M{"bsonType": "string"},
				"prompt_pending": bson.M{"bsonType": "bool"},
				"created_at":     bson.M{"bsonType": "date"},
			},
		},
	}
}

func auditEventsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"timestamp", "category", "event_type", "success"},
			"properties": bson.M{
				"timestamp":  bson.M{"bsonType": "date"},
				"category":   bson.M{"enum": bson.A{audit.CategoryAuth, audit.CategoryAdmin}},
				"event_type": nonBlank,
				"success":    bson.M{"bsonType": "bool"},
				"user_id":    bson.M{"bsonType": "objectId"},
				"actor_id":   bson.M{"bsonType": "objectId"},
			},
		},
	}
}
