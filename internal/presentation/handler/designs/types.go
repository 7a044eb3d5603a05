package designs

import "github.com/inkwell-hq/inkwell/internal/domain"

// createDesignRequest creates an empty canvas; elements arrive later
// over the realtime channel or through updates.
type createDesignRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=200"`
	Width        float64 `json:"width" validate:"required,gt=0,lte=10000"`
	Height       float64 `json:"height" validate:"required,gt=0,lte=10000"`
	ThumbnailURL string  `json:"thumbnailUrl" validate:"omitempty,url"`
}

// updateDesignRequest replaces the provided fields; absent fields keep
// their stored value.
type updateDesignRequest struct {
	Name         *string                `json:"name" validate:"omitempty,min=1,max=200"`
	Width        *float64               `json:"width" validate:"omitempty,gt=0,lte=10000"`
	Height       *float64               `json:"height" validate:"omitempty,gt=0,lte=10000"`
	Elements     []domain.DesignElement `json:"elements" validate:"omitempty,dive"`
	ThumbnailURL *string                `json:"thumbnailUrl" validate:"omitempty,url"`
}

type deleteDesignResponse struct {
	Deleted bool `json:"deleted"`
}
