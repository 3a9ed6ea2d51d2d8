package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/farmskeleton/backend/internal/core/domain"
	"github.com/farmskeleton/backend/internal/core/ports"
)

const collectionAuthEvents = "auth_events"

var _ ports.AuthEventRepository = (*EventRepository)(nil)

// EventRepository implements ports.AuthEventRepository using MongoDB.
type EventRepository struct {
	col *mongo.Collection
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{col: db.Collection(collectionAuthEvents)}
}

// Insert appends an event to the auth_events audit collection.
func (r *EventRepository) Insert(ctx context.Context, event *domain.AuthEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"type":         string(event.Type),
		"timestamp":    event.Timestamp.UTC(),
		"processed_at": time.Now().UTC(),
	}
	if event.Subject != "" {
		doc["subject"] = event.Subject
	}
	if event.Email != "" {
		doc["email"] = event.Email
	}
	if event.ActorID != "" {
		doc["actor_id"] = event.ActorID
	}
	if event.ClientIP != "" {
		doc["client_ip"] = event.ClientIP
	}
	if event.Detail != "" {
		doc["detail"] = event.Detail
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}

// EnsureIndexes indexes the audit trail by account and time.
func (r *EventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "subject", Value: 1}}},
		{Keys: bson.D{{Key: "timestamp", Value: -1}}, Options: options.Index().SetName("timestamp_desc")},
	})
	return err
}
