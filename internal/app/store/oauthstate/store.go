// internal/app/store/oauthstate/store.go
package oauthstate

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/gorilla/securecookie"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// TTL is how long an issued state stays redeemable.
const TTL = 10 * time.Minute

var errNoEntropy = errors.New("oauthstate: random source failed")

// State is one pending sign-in round trip to an identity provider.
type State struct {
	State     string    `bson:"state"`
	ReturnURL string    `bson:"return_url,omitempty"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// Store keeps issued states until they are redeemed or the TTL index
// removes them.
type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("oauth_states"), now: func() time.Time { return time.Now().UTC() }}
}

// Issue stores a fresh random state remembering returnURL and returns it.
func (s *Store) Issue(ctx context.Context, returnURL string) (string, error) {
	key := securecookie.GenerateRandomKey(32)
	if key == nil {
		return "", errNoEntropy
	}
	state := base64.RawURLEncoding.EncodeToString(key)

	now := s.now()
	_, err := s.c.InsertOne(ctx, State{
		State:     state,
		ReturnURL: returnURL,
		ExpiresAt: now.Add(TTL),
		CreatedAt: now,
	})
	if err != nil {
		return "", err
	}
	return state, nil
}

// Redeem consumes state. ok is false for unknown, expired or already
// redeemed states.
func (s *Store) Redeem(ctx context.Context, state string) (returnURL string, ok bool, err error) {
	if state == "" {
		return "", false, nil
	}
	var st State
	err = s.c.FindOneAndDelete(ctx, bson.M{
		"state":      state,
		"expires_at": bson.M{"$gt": s.now()},
	}).Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return st.ReturnURL, true, nil
}
