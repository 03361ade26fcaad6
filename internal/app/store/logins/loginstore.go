// internal/app/store/logins/loginstore.go

// Package loginstore keeps the sign-in history.
package loginstore

import (
	"context"
	"time"

	"github.com/dalemusser/profilecompletion/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("login_records")}
}

// Create inserts rec. A zero CreatedAt is set to now.
func (s *Store) Create(ctx context.Context, rec models.LoginRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, rec)
	return err
}

// Record stores a sign-in of userID from ip.
func (s *Store) Record(ctx context.Context, userID primitive.ObjectID, method, ip string, pending bool) error {
	return s.Create(ctx, models.LoginRecord{
		UserID:        userID,
		AuthMethod:    method,
		IP:            ip,
		PromptPending: pending,
	})
}

// Recent returns up to limit sign-ins of userID, newest first.
func (s *Store) Recent(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.LoginRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.LoginRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
