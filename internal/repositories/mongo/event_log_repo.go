package mongo

import (
	"context"
	"time"

	"github.com/oakline/callbridge/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EventLogRepository interface {
	Insert(ctx context.Context, e *models.EventLog) error
	ListByCallID(ctx context.Context, callID string, limit int) ([]models.EventLog, error)
}

type eventLogRepo struct {
	col *mongo.Collection
}

func NewEventLogRepo(db *mongo.Database) EventLogRepository {
	return &eventLogRepo{col: db.Collection("call_events")}
}

func (r *eventLogRepo) Insert(ctx context.Context, e *models.EventLog) error {
	if e.ReceivedAt.IsZero() {
		e.ReceivedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, e)
	return err
}

func (r *eventLogRepo) ListByCallID(ctx context.Context, callID string, limit int) ([]models.EventLog, error) {
	if limit <= 0 {
		limit = 100
	}
	cur, err := r.col.Find(ctx,
		bson.M{"call_id": callID},
		options.Find().SetSort(bson.D{{Key: "received_at", Value: 1}}).SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.EventLog
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
