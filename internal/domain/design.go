package domain

import (
	"context"
	"time"
)

type ElementType string

const (
	ElementText   ElementType = "text"
	ElementImage  ElementType = "image"
	ElementRect   ElementType = "rect"
	ElementCircle ElementType = "circle"
)

// DesignElement is the flattened union of the four canvas element kinds.
// Which optional fields apply depends on Type; the storage layer keeps
// whatever the validated payload carried.
type DesignElement struct {
	ID       string      `bson:"id" json:"id" validate:"required"`
	Type     ElementType `bson:"type" json:"type" validate:"required,oneof=text image rect circle"`
	X        float64     `bson:"x" json:"x"`
	Y        float64     `bson:"y" json:"y"`
	Width    float64     `bson:"width" json:"width"`
	Height   float64     `bson:"height" json:"height"`
	Rotation float64     `bson:"rotation" json:"rotation"`
	ZIndex   int         `bson:"zIndex" json:"zIndex"`
	Opacity  float64     `bson:"opacity" json:"opacity" validate:"gte=0,lte=1"`
	Locked   bool        `bson:"locked,omitempty" json:"locked,omitempty"`

	// text
	Text       string `bson:"text,omitempty" json:"text,omitempty"`
	FontFamily string `bson:"fontFamily,omitempty" json:"fontFamily,omitempty"`
	FontSize   float64 `bson:"fontSize,omitempty" json:"fontSize,omitempty"`
	FontWeight string `bson:"fontWeight,omitempty" json:"fontWeight,omitempty" validate:"omitempty,oneof=normal bold"`
	Align      string `bson:"align,omitempty" json:"align,omitempty" validate:"omitempty,oneof=left center right"`

	// image
	Src string `bson:"src,omitempty" json:"src,omitempty" validate:"omitempty,url"`
	Fit string `bson:"fit,omitempty" json:"fit,omitempty" validate:"omitempty,oneof=contain cover"`

	// shapes
	Fill        string  `bson:"fill,omitempty" json:"fill,omitempty"`
	Stroke      string  `bson:"stroke,omitempty" json:"stroke,omitempty"`
	StrokeWidth float64 `bson:"strokeWidth,omitempty" json:"strokeWidth,omitempty"`
	Radius      float64 `bson:"radius,omitempty" json:"radius,omitempty"`
}

type Design struct {
	ID           string          `bson:"_id,omitempty" json:"_id"`
	Name         string          `bson:"name" json:"name"`
	Width        float64         `bson:"width" json:"width"`
	Height       float64         `bson:"height" json:"height"`
	Elements     []DesignElement `bson:"elements" json:"elements"`
	ThumbnailURL string          `bson:"thumbnailUrl,omitempty" json:"thumbnailUrl,omitempty"`
	CreatedAt    time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// DesignUpdate carries the replaceable fields of a design; nil means
// leave the stored value untouched.
type DesignUpdate struct {
	Name         *string
	Width        *float64
	Height       *float64
	Elements     []DesignElement
	ThumbnailURL *string
}

// FindOptions narrows list queries. Summary projections omit the
// elements array, which dominates document size.
type FindOptions struct {
	Limit   int64
	Offset  int64
	Summary bool
}

type DesignRepository interface {
	Create(ctx context.Context, design *Design) (*Design, error)
	FindAll(ctx context.Context, opts FindOptions) ([]Design, error)
	FindByID(ctx context.Context, id string) (*Design, error)
	UpdateByID(ctx context.Context, id string, update DesignUpdate) (*Design, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	EnsureIndexes(ctx context.Context) error
}
