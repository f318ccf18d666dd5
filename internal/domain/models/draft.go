// internal/domain/models/draft.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DraftSnapshot is the locally persisted partial registration.
// Field values are either string (text controls) or bool (checkboxes).
type DraftSnapshot struct {
	Fields           map[string]any `bson:"fields" json:"fields"`
	LastSavedSection int            `bson:"last_saved_section" json:"lastSavedSection"`
	SavedAt          time.Time      `bson:"saved_at" json:"savedAt"`
}

// Draft is the Mongo document wrapping a snapshot for one anonymous applicant.
type Draft struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	DraftID   string             `bson:"draft_id"`
	Snapshot  DraftSnapshot      `bson:"snapshot"`
	UpdatedAt time.Time          `bson:"updated_at"`
}
