package events

import (
	"context"
	"encoding/json"

	"github.com/inkwell-hq/inkwell/internal/domain"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/contracts"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/logging"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/messaging"
	"github.com/rabbitmq/amqp091-go"
)

// designConsumer turns design lifecycle events into audit log entries.
type designConsumer struct {
	rabbitmq  *messaging.RabbitMQ
	auditRepo domain.DesignAuditRepository
	logger    logging.Logger
}

func NewDesignConsumer(rabbitmq *messaging.RabbitMQ, auditRepo domain.DesignAuditRepository, logger logging.Logger) *designConsumer {
	return &designConsumer{
		rabbitmq:  rabbitmq,
		auditRepo: auditRepo,
		logger:    logger,
	}
}

func (c *designConsumer) Listen() error {
	return c.rabbitmq.ConsumeMessages(messaging.DesignsQueue, func(ctx context.Context, msg amqp091.Delivery) error {
		var message contracts.AmqpMessage
		if err := json.Unmarshal(msg.Body, &message); err != nil {
			c.logger.Error(logging.RabbitMQ, logging.ExternalService, "failed to unmarshal amqp envelope", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
			return err
		}

		auditLog, err := c.buildAuditLog(message)
		if err != nil {
			c.logger.Error(logging.RabbitMQ, logging.ExternalService, "failed to decode event payload", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
				logging.EventName:    message.Type,
			})
			return err
		}

		return c.auditRepo.Log(ctx, auditLog)
	})
}

func (c *designConsumer) buildAuditLog(message contracts.AmqpMessage) (*domain.DesignAuditLog, error) {
	if message.Type == contracts.EventCommentAdded {
		var payload messaging.CommentEventData
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			return nil, err
		}

		comment := payload.Comment
		return domain.NewCommentAddedLog(comment.DesignID, comment.AuthorName, len(comment.Mentions)), nil
	}

	var payload messaging.DesignEventData
	if err := json.Unmarshal(message.Data, &payload); err != nil {
		return nil, err
	}

	design := payload.Design
	switch message.Type {
	case contracts.EventDesignCreated:
		return domain.NewDesignCreatedLog(design.ID, design.Name), nil
	case contracts.EventDesignUpdated:
		return domain.NewDesignUpdatedLog(design.ID, len(design.Elements)), nil
	default:
		return domain.NewDesignDeletedLog(design.ID), nil
	}
}
