package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventLog is one archived webhook delivery, kept in Mongo for replay and
// debugging. Payload is the raw body as delivered, before any parsing.
type EventLog struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DeliveryID string             `bson:"delivery_id" json:"delivery_id"`
	CallID     string             `bson:"call_id" json:"call_id"`
	Type       string             `bson:"type" json:"type"`
	Payload    string             `bson:"payload" json:"payload"`
	ReceivedAt time.Time          `bson:"received_at" json:"received_at"`
}
