package messaging

import "github.com/inkwell-hq/inkwell/internal/domain"

const (
	DesignsQueue    = "designs"
	DeadLetterQueue = "dead_letter_queue"
)

type DesignEventData struct {
	Design domain.Design `json:"design"`
}

type CommentEventData struct {
	Comment domain.Comment `json:"comment"`
}
