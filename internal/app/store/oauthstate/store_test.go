package oauthstate_test

import (
	"testing"
	"time"

	"github.com/dalemusser/profilecompletion/internal/app/store/oauthstate"
	"github.com/dalemusser/profilecompletion/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestStore_IssueAndRedeem(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	state, err := store.Issue(ctx, "/profile-completion")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if len(state) < 40 {
		t.Errorf("state %q looks too short", state)
	}

	var doc oauthstate.State
	if err := db.Collection("oauth_states").FindOne(ctx, bson.M{"state": state}).Decode(&doc); err != nil {
		t.Fatalf("stored state not found: %v", err)
	}
	if ttl := doc.ExpiresAt.Sub(doc.CreatedAt); ttl != oauthstate.TTL {
		t.Errorf("expiry: got %v after creation, want %v", ttl, oauthstate.TTL)
	}

	ret, ok, err := store.Redeem(ctx, state)
	if err != nil {
		t.Fatalf("Redeem failed: %v", err)
	}
	if !ok {
		t.Fatal("expected issued state to redeem")
	}
	if ret != "/profile-completion" {
		t.Errorf("return url: got %q", ret)
	}

	// single use
	if _, ok, err := store.Redeem(ctx, state); err != nil || ok {
		t.Errorf("second redeem: ok=%v err=%v, want rejected", ok, err)
	}
}

func TestStore_Issue_Unique(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		s, err := store.Issue(ctx, "")
		if err != nil {
			t.Fatalf("Issue %d failed: %v", i, err)
		}
		if seen[s] {
			t.Fatalf("duplicate state %q", s)
		}
		seen[s] = true
	}
}

func TestStore_Redeem_Rejects(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	past := time.Now().UTC().Add(-time.Minute)
	_, err := db.Collection("oauth_states").InsertOne(ctx, oauthstate.State{
		State:     "expired-state",
		ReturnURL: "/",
		ExpiresAt: past,
		CreatedAt: past.Add(-oauthstate.TTL),
	})
	if err != nil {
		t.Fatalf("insert expired state: %v", err)
	}

	for _, state := range []string{"", "never-issued", "expired-state"} {
		t.Run(state, func(t *testing.T) {
			ret, ok, err := store.Redeem(ctx, state)
			if err != nil {
				t.Fatalf("Redeem: %v", err)
			}
			if ok || ret != "" {
				t.Errorf("got (%q, %v), want rejection", ret, ok)
			}
		})
	}
}
