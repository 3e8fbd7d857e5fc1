package mongo

import (
	"context"
	"errors"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"prepwise/interview/internal/models"
	"prepwise/interview/internal/repositories"
)

// ScheduleRepo wraps the scheduled interviews collection
type ScheduleRepo struct{ col *mongo.Collection }

// NewScheduleRepo connects to Mongo and ensures an index on the slot time
func NewScheduleRepo(c *Client) (*ScheduleRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}

	colName := os.Getenv("SCHEDULES_COLLECTION")
	if colName == "" {
		colName = "scheduled_interviews"
	}

	col := db.Collection(colName)
	r := &ScheduleRepo{col: col}

	_, _ = r.col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "scheduled_for", Value: 1}},
	})

	return r, nil
}

// Insert stores a new scheduled interview
func (r *ScheduleRepo) Insert(ctx context.Context, schedule *models.ScheduledInterview) error {
	if schedule.ID == "" {
		return errors.New("schedule id required")
	}
	_, err := r.col.InsertOne(ctx, schedule)
	return err
}

// Get retrieves a scheduled interview by id
func (r *ScheduleRepo) Get(ctx context.Context, id string) (*models.ScheduledInterview, error) {
	var schedule models.ScheduledInterview
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&schedule); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

// Delete removes a scheduled interview by id
func (r *ScheduleRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// ListByOwner retrieves all schedules owned by a user, soonest first
func (r *ScheduleRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.ScheduledInterview, error) {
	opts := options.Find().SetSort(bson.D{{Key: "scheduled_for", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ScheduledInterview
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListDueBetween retrieves schedules with a slot in [from, to)
func (r *ScheduleRepo) ListDueBetween(ctx context.Context, from, to time.Time) ([]models.ScheduledInterview, error) {
	filter := bson.M{"scheduled_for": bson.M{"$gte": from, "$lt": to}}
	opts := options.Find().SetSort(bson.D{{Key: "scheduled_for", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ScheduledInterview
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
