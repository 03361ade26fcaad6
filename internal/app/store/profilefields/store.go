// internal/app/store/profilefields/store.go
package profilefieldstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/profilecompletion/internal/app/system/inputval"
	"github.com/dalemusser/profilecompletion/internal/app/system/profilefield"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound           = errors.New("profile field not found")
	ErrDuplicateShortname = errors.New("a profile field with this shortname already exists")
	ErrBadShortname       = errors.New("shortname must contain only a-z, 0-9 and _")
	ErrBadDataType        = errors.New("unsupported profile field data type")
	ErrNameRequired       = errors.New("profile field name is required")
	ErrMenuNeedsOptions   = errors.New("menu fields need at least one option")
)

// Store wraps the custom field catalog (profile_fields) and the per-user
// values (profile_field_data).
type Store struct {
	fields *mongo.Collection
	data   *mongo.Collection
}

// New creates a profile field store.
func New(db *mongo.Database) *Store {
	return &Store{
		fields: db.Collection("profile_fields"),
		data:   db.Collection("profile_field_data"),
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Catalog                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// List returns every catalog field in display order.
func (s *Store) List(ctx context.Context) ([]models.ProfileField, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sort_order", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.fields.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ProfileField
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByShortname loads one catalog field. Returns ErrNotFound if absent.
func (s *Store) GetByShortname(ctx context.Context, shortname string) (models.ProfileField, error) {
	var f models.ProfileField
	err := s.fields.FindOne(ctx, bson.M{"shortname": shortname}).Decode(&f)
	if err == mongo.ErrNoDocuments {
		return models.ProfileField{}, ErrNotFound
	}
	return f, err
}

// Create validates and inserts a catalog field. New fields sort after the
// existing ones.
func (s *Store) Create(ctx context.Context, f models.ProfileField) (models.ProfileField, error) {
	f.Shortname = strings.TrimSpace(f.Shortname)
	f.Name = strings.TrimSpace(f.Name)
	f.DataType = strings.ToLower(strings.TrimSpace(f.DataType))

	if !inputval.IsValidShortname(f.Shortname) {
		return models.ProfileField{}, ErrBadShortname
	}
	if f.Name == "" {
		return models.ProfileField{}, ErrNameRequired
	}
	if !profilefield.IsValidDataType(f.DataType) {
		return models.ProfileField{}, ErrBadDataType
	}
	f.Options = cleanOptions(f.Options)
	if f.DataType == models.FieldMenu && len(f.Options) == 0 {
		return models.ProfileField{}, ErrMenuNeedsOptions
	}
	if f.DataType != models.FieldMenu {
		f.Options = nil
	}
	if f.DataType != models.FieldText {
		f.MaxLength = 0
	}

	n, err := s.fields.CountDocuments(ctx, bson.M{})
	if err != nil {
		return models.ProfileField{}, err
	}
	now := time.Now().UTC()
	f.ID = primitive.NewObjectID()
	f.SortOrder = int(n)
	f.CreatedAt = now
	f.UpdatedAt = now

	if _, err := s.fields.InsertOne(ctx, f); err != nil {
		if wafflemongo.IsDup(err) {
			return models.ProfileField{}, ErrDuplicateShortname
		}
		return models.ProfileField{}, err
	}
	return f, nil
}

// Delete removes a catalog field and every user's value for it.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.fields.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	_, err = s.data.DeleteMany(ctx, bson.M{"field_id": id})
	return err
}

func cleanOptions(in []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, o := range in {
		o = strings.TrimSpace(o)
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	return out
}

/*─────────────────────────────────────────────────────────────────────────────*
| Per-user values                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// FieldsWithUserValues returns one descriptor per catalog field, carrying
// the user's stored value when there is one. Two queries, no matter how
// many fields exist.
func (s *Store) FieldsWithUserValues(ctx context.Context, userID primitive.ObjectID) ([]profilefield.Descriptor, error) {
	fields, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	cur, err := s.data.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.ProfileFieldData
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	byField := make(map[primitive.ObjectID]*models.ProfileFieldData, len(rows))
	for i := range rows {
		byField[rows[i].FieldID] = &rows[i]
	}

	out := make([]profilefield.Descriptor, 0, len(fields))
	for _, f := range fields {
		out = append(out, profilefield.New(f, byField[f.ID]))
	}
	return out, nil
}

// SaveUserValues upserts the user's values keyed by field shortname.
// Shortnames that are no longer in the catalog return ErrNotFound before
// anything is written.
func (s *Store) SaveUserValues(ctx context.Context, userID primitive.ObjectID, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}

	cur, err := s.fields.Find(ctx, bson.M{"shortname": bson.M{"$in": names}},
		options.Find().SetProjection(bson.M{"_id": 1, "shortname": 1}))
	if err != nil {
		return err
	}
	var found []models.ProfileField
	if err := cur.All(ctx, &found); err != nil {
		return err
	}
	if len(found) != len(names) {
		return ErrNotFound
	}

	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, 0, len(found))
	for _, f := range found {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"user_id": userID, "field_id": f.ID}).
			SetUpdate(bson.M{
				"$set":         bson.M{"data": values[f.Shortname], "updated_at": now},
				"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
			}).
			SetUpsert(true))
	}
	_, err = s.data.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}
