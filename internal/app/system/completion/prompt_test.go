package completion_test

import (
	"context"
	"testing"

	"github.com/dalemusser/profilecompletion/internal/app/system/completion"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newPrompt(w *world) *completion.Prompt {
	return completion.NewPrompt(w.eval, zap.NewNop())
}

func login(w *world, interactive bool) completion.LoginEvent {
	return completion.LoginEvent{UserID: w.student.ID.Hex(), Interactive: interactive}
}

func TestOnLogin_SetsFlagWhenFieldsMissing(t *testing.T) {
	w := newWorld("core:city")
	flags := completion.MapFlags{}

	pending, err := newPrompt(w).OnLogin(context.Background(), flags, login(w, true))
	require.NoError(t, err)
	assert.True(t, pending)
	assert.True(t, flags.Get(completion.PendingKey))
}

func TestOnLogin_ClearsFlagWhenComplete(t *testing.T) {
	w := newWorld("core:country", "core:email")
	flags := completion.MapFlags{completion.PendingKey: true}

	pending, err := newPrompt(w).OnLogin(context.Background(), flags, login(w, true))
	require.NoError(t, err)
	assert.False(t, pending)
	assert.False(t, flags.Get(completion.PendingKey))
}

func TestOnLogin_DisabledAlwaysClears(t *testing.T) {
	w := newWorld("core:city")
	w.settings.s.Enabled = false
	flags := completion.MapFlags{completion.PendingKey: true}

	pending, err := newPrompt(w).OnLogin(context.Background(), flags, login(w, true))
	require.NoError(t, err)
	assert.False(t, pending)
	assert.False(t, flags.Get(completion.PendingKey))
}

func TestOnLogin_NonInteractiveClears(t *testing.T) {
	w := newWorld("core:city")
	flags := completion.MapFlags{completion.PendingKey: true}

	pending, err := newPrompt(w).OnLogin(context.Background(), flags, login(w, false))
	require.NoError(t, err)
	assert.False(t, pending)
	assert.False(t, flags.Get(completion.PendingKey))
}

func TestOnLogin_GuestAndUnknownClear(t *testing.T) {
	w := newWorld("core:city")
	guest := &models.User{ID: primitive.NewObjectID(), Role: models.RoleGuest}
	w.users[guest.ID] = guest
	p := newPrompt(w)

	for _, id := range []string{guest.ID.Hex(), primitive.NewObjectID().Hex(), "0"} {
		flags := completion.MapFlags{completion.PendingKey: true}
		pending, err := p.OnLogin(context.Background(), flags, completion.LoginEvent{UserID: id, Interactive: true})
		require.NoError(t, err, id)
		assert.False(t, pending, id)
		assert.False(t, flags.Get(completion.PendingKey), id)
	}
}

func TestOnLogin_ErrorClears(t *testing.T) {
	w := newWorld("custom:house")
	w.fields.err = errBoom
	flags := completion.MapFlags{completion.PendingKey: true}

	pending, err := newPrompt(w).OnLogin(context.Background(), flags, login(w, true))
	assert.ErrorIs(t, err, errBoom)
	assert.False(t, pending)
	assert.False(t, flags.Get(completion.PendingKey))
}

func TestOnPageRender_NoFlagSkipsEvaluation(t *testing.T) {
	w := newWorld("custom:house")
	flags := completion.MapFlags{}

	got, err := newPrompt(w).OnPageRender(context.Background(), flags, w.student)
	require.NoError(t, err)
	assert.True(t, got.Empty())
	assert.Equal(t, 0, w.fields.calls)
}

func TestOnPageRender_ReturnsFreshEntries(t *testing.T) {
	w := newWorld("core:city", "custom:house")
	p := newPrompt(w)
	ctx := context.Background()
	flags := completion.MapFlags{}

	_, err := p.OnLogin(ctx, flags, login(w, true))
	require.NoError(t, err)

	// City filled elsewhere after login.
	w.student.City = "Riyadh"

	got, err := p.OnPageRender(ctx, flags, w.student)
	require.NoError(t, err)
	assert.Equal(t, []string{"custom:house"}, got.Keys())
	assert.True(t, flags.Get(completion.PendingKey))
}

func TestOnPageRender_ClearsWhenNothingMissing(t *testing.T) {
	w := newWorld("core:city")
	flags := completion.MapFlags{completion.PendingKey: true}
	w.student.City = "Riyadh"

	got, err := newPrompt(w).OnPageRender(context.Background(), flags, w.student)
	require.NoError(t, err)
	assert.True(t, got.Empty())
	assert.False(t, flags.Get(completion.PendingKey))
}

func TestOnPageRender_ClearsWhenDisabled(t *testing.T) {
	w := newWorld("core:city")
	w.settings.s.Enabled = false
	flags := completion.MapFlags{completion.PendingKey: true}

	got, err := newPrompt(w).OnPageRender(context.Background(), flags, w.student)
	require.NoError(t, err)
	assert.True(t, got.Empty())
	assert.False(t, flags.Get(completion.PendingKey))
}

func TestOnPageRender_ErrorKeepsFlag(t *testing.T) {
	w := newWorld("custom:house")
	w.fields.err = errBoom
	flags := completion.MapFlags{completion.PendingKey: true}

	got, err := newPrompt(w).OnPageRender(context.Background(), flags, w.student)
	assert.ErrorIs(t, err, errBoom)
	assert.True(t, got.Empty())
	assert.True(t, flags.Get(completion.PendingKey))
}

func TestAfterSubmit(t *testing.T) {
	w := newWorld("core:city", "custom:house")
	p := newPrompt(w)
	ctx := context.Background()
	flags := completion.MapFlags{completion.PendingKey: true}

	w.student.City = "Riyadh"
	still, err := p.AfterSubmit(ctx, flags, w.student.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []string{"custom:house"}, still.Keys())
	assert.True(t, flags.Get(completion.PendingKey))

	w.fields.save(w.student.ID, "house", "Gryffindor")
	still, err = p.AfterSubmit(ctx, flags, w.student.ID.Hex())
	require.NoError(t, err)
	assert.True(t, still.Empty())
	assert.False(t, flags.Get(completion.PendingKey))
}
