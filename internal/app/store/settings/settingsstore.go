// internal/app/store/settings/settingsstore.go
package settingsstore

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/profilecompletion/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the profile completion document in the
// plugin_settings collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new settings store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("plugin_settings")}
}

// doc is the stored shape. enabled and fieldkeys are read raw because
// older documents hold them as strings.
type doc struct {
	ID            string              `bson:"_id"`
	Enabled       bson.RawValue       `bson:"enabled,omitempty"`
	FieldKeys     bson.RawValue       `bson:"fieldkeys,omitempty"`
	UpdatedAt     *time.Time          `bson:"updated_at,omitempty"`
	UpdatedByID   *primitive.ObjectID `bson:"updated_by_id,omitempty"`
	UpdatedByName string              `bson:"updated_by_name,omitempty"`
}

// Get returns the completion settings. If no document exists the defaults
// are returned (enabled, no field keys).
func (s *Store) Get(ctx context.Context) (models.CompletionSettings, error) {
	var d doc
	err := s.c.FindOne(ctx, bson.M{"_id": models.CompletionSettingsID}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return models.DefaultCompletionSettings(), nil
	}
	if err != nil {
		return models.CompletionSettings{}, err
	}

	out := models.CompletionSettings{
		Enabled:       decodeEnabled(d.Enabled),
		UpdatedAt:     d.UpdatedAt,
		UpdatedByID:   d.UpdatedByID,
		UpdatedByName: d.UpdatedByName,
	}
	switch d.FieldKeys.Type {
	case bsontype.Array:
		out.IsList = true
		out.FieldKeysList = decodeStrings(d.FieldKeys)
	case bsontype.String:
		out.FieldKeysText = d.FieldKeys.StringValue()
	}
	return out, nil
}

// decodeEnabled treats a missing or null value as true. Strings "0",
// "false" and "" and numeric zero are false.
func decodeEnabled(v bson.RawValue) bool {
	switch v.Type {
	case bsontype.Boolean:
		return v.Boolean()
	case bsontype.Int32:
		return v.Int32() != 0
	case bsontype.Int64:
		return v.Int64() != 0
	case bsontype.String:
		switch strings.ToLower(strings.TrimSpace(v.StringValue())) {
		case "", "0", "false", "no", "off":
			return false
		}
		return true
	}
	return true
}

// decodeStrings keeps the string items of an array value and drops the rest.
func decodeStrings(v bson.RawValue) []string {
	arr, ok := v.ArrayOK()
	if !ok {
		return nil
	}
	vals, err := arr.Values()
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(vals))
	for _, item := range vals {
		if s, ok := item.StringValueOK(); ok {
			out = append(out, s)
		}
	}
	return out
}

// Save writes the settings. Field keys are always stored as an array.
// Uses upsert so it works whether settings exist or not.
func (s *Store) Save(ctx context.Context, enabled bool, fieldKeys []string, byID *primitive.ObjectID, byName string) error {
	if fieldKeys == nil {
		fieldKeys = []string{}
	}
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"enabled":         enabled,
			"fieldkeys":       fieldKeys,
			"updated_at":      now,
			"updated_by_id":   byID,
			"updated_by_name": byName,
		},
	}
	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": models.CompletionSettingsID}, update, opts)
	return err
}
