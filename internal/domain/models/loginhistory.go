// internal/domain/models/loginhistory.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoginRecord is one completed sign-in. PromptPending records whether the
// profile completion prompt was armed by that sign-in.
type LoginRecord struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	UserID        primitive.ObjectID `bson:"user_id"`
	AuthMethod    string             `bson:"auth_method"`
	IP            string             `bson:"ip"`
	PromptPending bool               `bson:"prompt_pending"`
	CreatedAt     time.Time          `bson:"created_at"`
}
