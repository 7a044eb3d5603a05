package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type DesignEventType string

const (
	EventDesignCreated DesignEventType = "design_created"
	EventDesignUpdated DesignEventType = "design_updated"
	EventDesignDeleted DesignEventType = "design_deleted"
	EventCommentAdded  DesignEventType = "comment_added"
)

type DesignAuditLog struct {
	ID        string          `bson:"_id" json:"id"`
	DesignID  string          `bson:"design_id" json:"designId"`
	EventType DesignEventType `bson:"event_type" json:"eventType"`
	Timestamp time.Time       `bson:"timestamp" json:"timestamp"`
	Metadata  map[string]any  `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

type DesignAuditRepository interface {
	Log(ctx context.Context, log *DesignAuditLog) error
	GetByDesignID(ctx context.Context, designID string, limit int) ([]DesignAuditLog, error)
	GetByEventType(ctx context.Context, eventType DesignEventType, from, to time.Time) ([]DesignAuditLog, error)
	DeleteOlderThan(ctx context.Context, before time.Time) error
	EnsureIndexes(ctx context.Context) error
}

func NewDesignCreatedLog(designID, name string) *DesignAuditLog {
	return &DesignAuditLog{
		ID:        uuid.NewString(),
		DesignID:  designID,
		EventType: EventDesignCreated,
		Timestamp: time.Now(),
		Metadata: map[string]any{
			"name": name,
		},
	}
}

func NewDesignUpdatedLog(designID string, elementCount int) *DesignAuditLog {
	return &DesignAuditLog{
		ID:        uuid.NewString(),
		DesignID:  designID,
		EventType: EventDesignUpdated,
		Timestamp: time.Now(),
		Metadata: map[string]any{
			"element_count": elementCount,
		},
	}
}

func NewDesignDeletedLog(designID string) *DesignAuditLog {
	return &DesignAuditLog{
		ID:        uuid.NewString(),
		DesignID:  designID,
		EventType: EventDesignDeleted,
		Timestamp: time.Now(),
		Metadata:  map[string]any{},
	}
}

func NewCommentAddedLog(designID, authorName string, mentionCount int) *DesignAuditLog {
	return &DesignAuditLog{
		ID:        uuid.NewString(),
		DesignID:  designID,
		EventType: EventCommentAdded,
		Timestamp: time.Now(),
		Metadata: map[string]any{
			"author_name":   authorName,
			"mention_count": mentionCount,
		},
	}
}
