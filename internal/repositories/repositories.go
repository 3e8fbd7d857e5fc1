package repositories

import (
	"context"
	"errors"
	"time"

	"prepwise/interview/internal/models"
)

// ErrNotFound is returned when a looked-up document does not exist.
// Store implementations translate their own sentinel into this one.
var ErrNotFound = errors.New("document not found")

// SessionRepository is the persistence boundary for interview
// sessions. Update applies a partial field patch; no cross-document
// transactions are required.
type SessionRepository interface {
	Insert(ctx context.Context, session *models.InterviewSession) error
	Get(ctx context.Context, id string) (*models.InterviewSession, error)
	Update(ctx context.Context, id string, patch map[string]interface{}) error
	// ListByOwner returns the owner's sessions newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]models.InterviewSession, error)
}

// ScheduleRepository is the persistence boundary for scheduled
// interviews.
type ScheduleRepository interface {
	Insert(ctx context.Context, schedule *models.ScheduledInterview) error
	Get(ctx context.Context, id string) (*models.ScheduledInterview, error)
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.ScheduledInterview, error)
	// ListDueBetween returns schedules whose slot falls in [from, to),
	// used by the reminder job.
	ListDueBetween(ctx context.Context, from, to time.Time) ([]models.ScheduledInterview, error)
}
