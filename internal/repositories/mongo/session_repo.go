package mongo

import (
	"context"
	"errors"
	"os"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"prepwise/interview/internal/models"
	"prepwise/interview/internal/repositories"
)

// SessionRepo wraps the interview sessions collection
type SessionRepo struct{ col *mongo.Collection }

// NewSessionRepo connects to Mongo and ensures an index on the owner id
func NewSessionRepo(c *Client) (*SessionRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}

	colName := os.Getenv("SESSIONS_COLLECTION")
	if colName == "" {
		colName = "interview_sessions"
	}

	col := db.Collection(colName)
	r := &SessionRepo{col: col}

	_, _ = r.col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
	})

	return r, nil
}

// Insert stores a new session document
func (r *SessionRepo) Insert(ctx context.Context, session *models.InterviewSession) error {
	if session.ID == "" {
		return errors.New("session id required")
	}
	_, err := r.col.InsertOne(ctx, session)
	return err
}

// Get retrieves a session by id
func (r *SessionRepo) Get(ctx context.Context, id string) (*models.InterviewSession, error) {
	var session models.InterviewSession
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&session); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// Update applies a partial field patch to an existing session
func (r *SessionRepo) Update(ctx context.Context, id string, patch map[string]interface{}) error {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.InterviewSession
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": patch}, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repositories.ErrNotFound
	}
	return err
}

// ListByOwner retrieves all sessions owned by a user, newest first
func (r *SessionRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.InterviewSession, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.InterviewSession
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
