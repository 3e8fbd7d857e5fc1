package models

import "time"

// ScheduledInterview is a planned future practice slot. It is an
// independent record: deleting it or letting it lapse never touches
// any InterviewSession.
type ScheduledInterview struct {
	ID           string    `bson:"_id" json:"id"`
	OwnerID      string    `bson:"owner_id" json:"owner_id"`
	Category     string    `bson:"category" json:"category"`
	ScheduledFor time.Time `bson:"scheduled_for" json:"scheduled_for"`
	Notes        string    `bson:"notes" json:"notes,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}
