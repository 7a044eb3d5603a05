package domain

import (
	"context"
	"regexp"
	"time"

	"github.com/samber/lo"
)

type Mention struct {
	UserID   string `bson:"userId,omitempty" json:"userId,omitempty"`
	Username string `bson:"username" json:"username"`
}

type Comment struct {
	ID         string    `bson:"_id,omitempty" json:"_id"`
	DesignID   string    `bson:"designId" json:"designId"`
	AuthorName string    `bson:"authorName" json:"authorName"`
	Text       string    `bson:"text" json:"text"`
	Mentions   []Mention `bson:"mentions" json:"mentions"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

type CommentRepository interface {
	FindByDesignID(ctx context.Context, designID string) ([]Comment, error)
	Create(ctx context.Context, comment *Comment) (*Comment, error)
	EnsureIndexes(ctx context.Context) error
}

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_]+)`)

// ExtractMentions pulls @username references out of a comment body.
func ExtractMentions(text string) []Mention {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)

	return lo.Map(matches, func(m []string, _ int) Mention {
		return Mention{Username: m[1]}
	})
}
