// Package completion decides which required profile fields a user has
// left empty and drives the per-session "complete your profile" prompt.
package completion

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/profilecompletion/internal/app/system/fieldkeys"
	"github.com/dalemusser/profilecompletion/internal/app/system/profilefield"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserSource loads user records. A missing user is reported as
// mongo.ErrNoDocuments.
type UserSource interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// FieldSource returns every catalog field paired with the user's value.
type FieldSource interface {
	FieldsWithUserValues(ctx context.Context, userID primitive.ObjectID) ([]profilefield.Descriptor, error)
}

// SettingsSource reads the admin setting pair.
type SettingsSource interface {
	Get(ctx context.Context) (models.CompletionSettings, error)
}

// ConfiguredKeys resolves the stored field key list in whichever shape
// it was saved.
func ConfiguredKeys(s models.CompletionSettings) []fieldkeys.Key {
	if s.IsList {
		return fieldkeys.ResolveList(s.FieldKeysList)
	}
	return fieldkeys.Resolve(s.FieldKeysText)
}

// Evaluator computes missing fields. Settings are read on every call.
type Evaluator struct {
	Users    UserSource
	Fields   FieldSource
	Settings SettingsSource
}

// NewEvaluator wires an Evaluator to its stores.
func NewEvaluator(users UserSource, fields FieldSource, settings SettingsSource) *Evaluator {
	return &Evaluator{Users: users, Fields: fields, Settings: settings}
}

// Missing evaluates u against the current configuration.
func (e *Evaluator) Missing(ctx context.Context, u *models.User) (Missing, error) {
	if u == nil || u.IsGuest() {
		return Missing{}, nil
	}
	s, err := e.Settings.Get(ctx)
	if err != nil {
		return Missing{}, err
	}
	return e.MissingFor(ctx, u, ConfiguredKeys(s))
}

// MissingForID loads the user and evaluates it. Malformed and unknown ids
// yield an empty result.
func (e *Evaluator) MissingForID(ctx context.Context, userID string) (Missing, error) {
	u, err := e.lookup(ctx, userID)
	if err != nil || u == nil {
		return Missing{}, err
	}
	return e.Missing(ctx, u)
}

// MissingFor evaluates u against an already resolved key list.
func (e *Evaluator) MissingFor(ctx context.Context, u *models.User, keys []fieldkeys.Key) (Missing, error) {
	var out Missing
	if u == nil || u.IsGuest() || len(keys) == 0 {
		return out, nil
	}

	var custom map[string]profilefield.Descriptor
	if _, customKeys := fieldkeys.Split(keys); len(customKeys) > 0 {
		descs, err := e.Fields.FieldsWithUserValues(ctx, u.ID)
		if err != nil {
			return Missing{}, err
		}
		custom = make(map[string]profilefield.Descriptor, len(descs))
		for _, d := range descs {
			custom[d.Shortname()] = d
		}
	}

	for _, k := range keys {
		if k.IsCore() {
			if strings.TrimSpace(u.CoreValue(k.Name)) == "" {
				out.add(Entry{Key: k, Kind: k.Kind, Name: k.Name, Label: fieldkeys.CoreLabel(k.Name)})
			}
			continue
		}
		d, ok := custom[k.Name]
		if !ok {
			// Deleted from the catalog after it was configured.
			continue
		}
		if d.IsEmpty() {
			d := d
			out.add(Entry{Key: k, Kind: k.Kind, Name: k.Name, Label: d.Name(), Field: &d})
		}
	}
	return out, nil
}

// lookup returns nil without error for ids that do not name a user.
func (e *Evaluator) lookup(ctx context.Context, userID string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil || oid.IsZero() {
		return nil, nil
	}
	u, err := e.Users.GetByID(ctx, oid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	return u, err
}
