package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MatchRecord is one AI-scored candidate pairing between a lost item and a
// found item, stored in MongoDB for the matches history view.
type MatchRecord struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ItemID      string             `json:"item_id" bson:"item_id"`
	CandidateID string             `json:"candidate_id" bson:"candidate_id"`
	Score       float64            `json:"score" bson:"score"` // 0-100
	Reason      string             `json:"reason" bson:"reason"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}
