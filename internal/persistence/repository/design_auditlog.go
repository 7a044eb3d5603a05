package repository

import (
	"context"
	"time"

	"github.com/inkwell-hq/inkwell/internal/domain"
	"github.com/inkwell-hq/inkwell/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type designAuditLogRepository struct {
	db *mongo.Database
}

func NewDesignAuditLogRepository(database *mongo.Database) domain.DesignAuditRepository {
	return &designAuditLogRepository{
		db: database,
	}
}

func (r *designAuditLogRepository) collection() *mongo.Collection {
	return r.db.Collection(db.DesignAuditLogsCollection)
}

func (r *designAuditLogRepository) Log(ctx context.Context, log *domain.DesignAuditLog) error {
	_, err := r.collection().InsertOne(ctx, log)
	return err
}

func (r *designAuditLogRepository) GetByDesignID(ctx context.Context, designID string, limit int) ([]domain.DesignAuditLog, error) {
	filter := bson.M{"design_id": designID}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []domain.DesignAuditLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}

	return logs, nil
}

func (r *designAuditLogRepository) GetByEventType(ctx context.Context, eventType domain.DesignEventType, from time.Time, to time.Time) ([]domain.DesignAuditLog, error) {
	filter := bson.M{
		"event_type": eventType,
		"timestamp": bson.M{
			"$gte": from,
			"$lte": to,
		},
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	cursor, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []domain.DesignAuditLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}

	return logs, nil
}

func (r *designAuditLogRepository) DeleteOlderThan(ctx context.Context, before time.Time) error {
	filter := bson.M{
		"timestamp": bson.M{
			"$lt": before,
		},
	}

	_, err := r.collection().DeleteMany(ctx, filter)
	return err
}

func (r *designAuditLogRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "design_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "event_type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys:    bson.D{{Key: "timestamp", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(7776000), // 90 days TTL
		},
	}

	_, err := r.collection().Indexes().CreateMany(ctx, indexes)
	return err
}
