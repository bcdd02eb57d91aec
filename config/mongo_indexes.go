package config

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultEventRetentionDays = 90

// EnsureMongoIndexes prepares the call_events audit collection: replay
// lookups by call, and a TTL so archived payloads age out instead of
// accumulating raw PII forever.
func EnsureMongoIndexes() error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}
	db := MongoDatabase()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	retention := defaultEventRetentionDays
	if v := os.Getenv("CALL_EVENT_TTL_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			retention = n
		}
	}

	events := db.Collection("call_events")
	_, err := events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "call_id", Value: 1}, {Key: "received_at", Value: 1}},
			Options: options.Index().SetName("by_call_received"),
		},
		{
			Keys: bson.D{{Key: "received_at", Value: 1}},
			Options: options.Index().
				SetName("ttl_received_at").
				SetExpireAfterSeconds(int32(retention * 24 * 60 * 60)),
		},
		{
			Keys: bson.D{{Key: "delivery_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_delivery_id").
				SetUnique(true),
		},
	})
	return err
}
