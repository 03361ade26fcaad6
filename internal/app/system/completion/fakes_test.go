package completion_test

import (
	"context"
	"errors"

	"github.com/dalemusser/profilecompletion/internal/app/system/profilefield"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeUsers map[primitive.ObjectID]*models.User

func (f fakeUsers) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *u
	return &cp, nil
}

// fakeFields keeps a catalog and per-user values and counts batch loads.
type fakeFields struct {
	catalog []models.ProfileField
	values  map[primitive.ObjectID]map[string]string
	calls   int
	err     error
}

func (f *fakeFields) FieldsWithUserValues(_ context.Context, userID primitive.ObjectID) ([]profilefield.Descriptor, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []profilefield.Descriptor
	for _, pf := range f.catalog {
		var data *models.ProfileFieldData
		if v, ok := f.values[userID][pf.Shortname]; ok {
			data = &models.ProfileFieldData{UserID: userID, FieldID: pf.ID, Data: v}
		}
		out = append(out, profilefield.New(pf, data))
	}
	return out, nil
}

func (f *fakeFields) save(userID primitive.ObjectID, shortname, value string) {
	if f.values == nil {
		f.values = map[primitive.ObjectID]map[string]string{}
	}
	if f.values[userID] == nil {
		f.values[userID] = map[string]string{}
	}
	f.values[userID][shortname] = value
}

type fakeSettings struct {
	s   models.CompletionSettings
	err error
}

func (f *fakeSettings) Get(context.Context) (models.CompletionSettings, error) {
	return f.s, f.err
}

func listSettings(enabled bool, keys ...string) *fakeSettings {
	return &fakeSettings{s: models.CompletionSettings{Enabled: enabled, IsList: true, FieldKeysList: keys}}
}

var errBoom = errors.New("boom")
