package events

import (
	"context"
	"encoding/json"

	"github.com/inkwell-hq/inkwell/internal/domain"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/contracts"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/messaging"
)

// DesignPublisher emits design lifecycle events to the broker. A nil
// broker turns every publish into a no-op.
type DesignPublisher struct {
	rabbitmq *messaging.RabbitMQ
}

func NewDesignPublisher(rabbitmq *messaging.RabbitMQ) *DesignPublisher {
	return &DesignPublisher{
		rabbitmq: rabbitmq,
	}
}

func (p *DesignPublisher) PublishDesignCreated(ctx context.Context, design domain.Design) error {
	return p.publishDesign(ctx, contracts.EventDesignCreated, design)
}

func (p *DesignPublisher) PublishDesignUpdated(ctx context.Context, design domain.Design) error {
	return p.publishDesign(ctx, contracts.EventDesignUpdated, design)
}

func (p *DesignPublisher) PublishDesignDeleted(ctx context.Context, design domain.Design) error {
	return p.publishDesign(ctx, contracts.EventDesignDeleted, design)
}

func (p *DesignPublisher) PublishCommentAdded(ctx context.Context, comment domain.Comment) error {
	if p.rabbitmq == nil {
		return nil
	}

	payload := messaging.CommentEventData{
		Comment: comment,
	}

	eventJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, contracts.EventCommentAdded, contracts.AmqpMessage{
		Data: eventJSON,
	})
}

func (p *DesignPublisher) publishDesign(ctx context.Context, routingKey string, design domain.Design) error {
	if p.rabbitmq == nil {
		return nil
	}

	payload := messaging.DesignEventData{
		Design: design,
	}

	eventJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, routingKey, contracts.AmqpMessage{
		Data: eventJSON,
	})
}
