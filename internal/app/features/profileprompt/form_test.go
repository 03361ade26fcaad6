package profileprompt

import (
	"context"
	"net/url"
	"testing"

	"github.com/dalemusser/profilecompletion/internal/app/system/completion"
	"github.com/dalemusser/profilecompletion/internal/app/system/fieldkeys"
	"github.com/dalemusser/profilecompletion/internal/app/system/profilefield"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type catalog []models.ProfileField

func (c catalog) FieldsWithUserValues(context.Context, primitive.ObjectID) ([]profilefield.Descriptor, error) {
	out := make([]profilefield.Descriptor, 0, len(c))
	for _, f := range c {
		out = append(out, profilefield.New(f, nil))
	}
	return out, nil
}

var colour = models.ProfileField{
	ID:        primitive.NewObjectID(),
	Shortname: "colour",
	Name:      "Favourite colour",
	DataType:  models.FieldMenu,
	Options:   []string{"Red", "Green"},
}

func member() *models.User {
	return &models.User{
		ID:        primitive.NewObjectID(),
		Role:      models.RoleMember,
		FirstName: "Ada",
		Email:     "ada@example.com",
	}
}

func missingFor(t *testing.T, u *models.User, keys ...string) completion.Missing {
	t.Helper()
	eval := completion.NewEvaluator(nil, catalog{colour}, nil)
	m, err := eval.MissingFor(context.Background(), u, fieldkeys.ResolveList(keys))
	require.NoError(t, err)
	return m
}

func TestControls_FollowConfiguredOrder(t *testing.T) {
	u := member()
	m := missingFor(t, u, "custom:colour", "core:firstname", "core:phone1", "core:country")

	got := Controls(m, u, nil, nil)
	require.Len(t, got, 3)
	assert.Equal(t, profilefield.InputName("colour"), got[0].Name)
	assert.Equal(t, "select", got[0].Type)
	assert.Equal(t, "phone1", got[1].Name)
	assert.Equal(t, "country", got[2].Name)
}

func TestControls_CoreInputAttributes(t *testing.T) {
	u := member()
	u.Email = ""
	m := missingFor(t, u, "core:phone1", "core:country", "core:email")

	got := Controls(m, u, nil, nil)
	require.Len(t, got, 3)

	phone := got[0]
	assert.Equal(t, "text", phone.Type)
	assert.Equal(t, 20, phone.MaxLength)
	assert.Equal(t, 25, phone.Size)
	assert.Equal(t, "ltr", phone.Dir)
	assert.True(t, phone.Required)

	country := got[1]
	assert.Equal(t, "select", country.Type)
	require.NotEmpty(t, country.Options)
	assert.Equal(t, "", country.Options[0].Value)
	assert.True(t, country.Options[0].Selected)

	assert.Equal(t, "email", got[2].Type)
}

func TestControls_EchoSubmittedValuesAndErrors(t *testing.T) {
	u := member()
	m := missingFor(t, u, "core:city")

	form := url.Values{"city": {"Paris"}}
	got := Controls(m, u, form, map[string]string{"city": "Too long."})
	require.Len(t, got, 1)
	assert.Equal(t, "Paris", got[0].Value)
	assert.Equal(t, "Too long.", got[0].Error)
}

func TestValidate_OnlyMissingFieldsAreRead(t *testing.T) {
	u := member()
	m := missingFor(t, u, "core:firstname", "core:city")

	sub := Validate(m, url.Values{
		"city":      {"  Lyon "},
		"firstname": {"Mallory"},
		"email":     {"not-an-email"},
	})
	require.True(t, sub.Valid(), "errors: %v", sub.Errors)
	assert.Equal(t, map[string]string{"city": "Lyon"}, sub.Core)
	assert.Empty(t, sub.Custom)
}

func TestValidate_CoreRules(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   string
		wantErr string
		want    string
	}{
		{"blank is required", "city", "   ", msgRequired, ""},
		{"tags stripped", "lastname", "<b>Lovelace</b>", "", "Lovelace"},
		{"only tags is required", "lastname", "<i></i>", msgRequired, ""},
		{"bad email", "email", "nobody@", msgInvalidEmail, ""},
		{"good email", "email", "ada@example.com", "", "ada@example.com"},
		{"country uppercased", "country", "gb", "", "GB"},
		{"unknown country", "country", "ZZ", msgCountry, ""},
		{"phone too long", "phone1", "+1 555 555 5555 5555 5", msgTooLong, ""},
		{"phone ok", "phone1", "+1 555 0100", "", "+1 555 0100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &models.User{ID: primitive.NewObjectID(), Role: models.RoleMember}
			m := missingFor(t, u, "core:"+tt.field)

			sub := Validate(m, url.Values{tt.field: {tt.value}})
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, sub.Errors[tt.field])
				assert.NotContains(t, sub.Core, tt.field)
				return
			}
			require.True(t, sub.Valid(), "errors: %v", sub.Errors)
			assert.Equal(t, tt.want, sub.Core[tt.field])
		})
	}
}

func TestValidate_CustomMenu(t *testing.T) {
	u := member()
	m := missingFor(t, u, "custom:colour")
	input := profilefield.InputName("colour")

	sub := Validate(m, url.Values{input: {"Purple"}})
	assert.False(t, sub.Valid())
	assert.NotEmpty(t, sub.Errors[input])

	sub = Validate(m, url.Values{})
	assert.Equal(t, msgRequired, sub.Errors[input])

	sub = Validate(m, url.Values{input: {"Green"}})
	require.True(t, sub.Valid())
	assert.Equal(t, map[string]string{"colour": "Green"}, sub.Custom)
}

func TestNewPromptVM(t *testing.T) {
	a := NewPromptVM(2)
	b := NewPromptVM(2)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, PromptTitle, a.Title)
	assert.Equal(t, PromptDelayMS, a.DelayMS)
	assert.Equal(t, FormURL, a.FormURL)
	assert.Equal(t, 2, a.MissingCount)
}
