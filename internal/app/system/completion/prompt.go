package completion

import (
	"context"

	"github.com/dalemusser/profilecompletion/internal/domain/models"
	"go.uber.org/zap"
)

// PendingKey is the session attribute that marks a pending prompt.
// Absence means no prompt.
const PendingKey = "profilecompletion_prompt_pending"

// FlagStore is the session-scoped boolean store the prompt state lives in.
type FlagStore interface {
	Get(key string) bool
	Set(key string)
	Clear(key string)
}

// LoginEvent describes a completed sign-in.
type LoginEvent struct {
	UserID string
	// Interactive is false for sign-ins that no person will see, such as
	// API clients. Those never get a prompt.
	Interactive bool
}

// Prompt moves a session between "no prompt" and "pending".
type Prompt struct {
	Eval *Evaluator
	Log  *zap.Logger
}

// NewPrompt returns a Prompt backed by eval.
func NewPrompt(eval *Evaluator, logger *zap.Logger) *Prompt {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prompt{Eval: eval, Log: logger}
}

// OnLogin sets the pending flag when the feature is enabled and the user
// has missing fields; in every other case it clears it. It reports the
// resulting state. On error the flag is left cleared.
func (p *Prompt) OnLogin(ctx context.Context, flags FlagStore, ev LoginEvent) (bool, error) {
	s, err := p.Eval.Settings.Get(ctx)
	if err != nil {
		flags.Clear(PendingKey)
		return false, err
	}
	if !s.Enabled || !ev.Interactive {
		flags.Clear(PendingKey)
		return false, nil
	}

	u, err := p.Eval.lookup(ctx, ev.UserID)
	if err != nil {
		flags.Clear(PendingKey)
		return false, err
	}
	if u == nil || u.IsGuest() {
		flags.Clear(PendingKey)
		return false, nil
	}

	missing, err := p.Eval.MissingFor(ctx, u, ConfiguredKeys(s))
	if err != nil {
		flags.Clear(PendingKey)
		return false, err
	}
	if missing.Empty() {
		flags.Clear(PendingKey)
		return false, nil
	}

	flags.Set(PendingKey)
	p.Log.Debug("profile completion prompt pending",
		zap.String("user_id", ev.UserID),
		zap.Strings("missing", missing.Keys()))
	return true, nil
}

// OnPageRender re-evaluates a pending session and returns the entries the
// notification should offer. An empty result means no notification; the
// flag is cleared when the feature is off or nothing is missing anymore.
// Errors leave the flag untouched.
func (p *Prompt) OnPageRender(ctx context.Context, flags FlagStore, u *models.User) (Missing, error) {
	if !flags.Get(PendingKey) {
		return Missing{}, nil
	}
	if u == nil || u.IsGuest() {
		return Missing{}, nil
	}

	s, err := p.Eval.Settings.Get(ctx)
	if err != nil {
		return Missing{}, err
	}
	if !s.Enabled {
		flags.Clear(PendingKey)
		return Missing{}, nil
	}

	missing, err := p.Eval.MissingFor(ctx, u, ConfiguredKeys(s))
	if err != nil {
		return Missing{}, err
	}
	if missing.Empty() {
		flags.Clear(PendingKey)
	}
	return missing, nil
}

// AfterSubmit reloads the user once the form was saved and clears the flag
// when nothing is missing. It returns what is still missing.
func (p *Prompt) AfterSubmit(ctx context.Context, flags FlagStore, userID string) (Missing, error) {
	s, err := p.Eval.Settings.Get(ctx)
	if err != nil {
		return Missing{}, err
	}
	if !s.Enabled {
		flags.Clear(PendingKey)
		return Missing{}, nil
	}

	u, err := p.Eval.lookup(ctx, userID)
	if err != nil {
		return Missing{}, err
	}
	missing, err := p.Eval.MissingFor(ctx, u, ConfiguredKeys(s))
	if err != nil {
		return Missing{}, err
	}
	if missing.Empty() {
		flags.Clear(PendingKey)
	}
	return missing, nil
}

// MapFlags is an in-memory FlagStore.
type MapFlags map[string]bool

func (m MapFlags) Get(key string) bool { return m[key] }
func (m MapFlags) Set(key string)      { m[key] = true }
func (m MapFlags) Clear(key string)    { delete(m, key) }
