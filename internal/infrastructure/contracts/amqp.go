package contracts

import "encoding/json"

const (
	EventDesignCreated = "design.created"
	EventDesignUpdated = "design.updated"
	EventDesignDeleted = "design.deleted"
	EventCommentAdded  = "comment.added"
)

// AmqpMessage is the wire envelope shared by every queue: a routing-level
// type plus the event-specific JSON body.
type AmqpMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}
