package designs

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell-hq/inkwell/internal/domain"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/events"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/json"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/logging"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/validate"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type Handler struct {
	designRepository domain.DesignRepository
	publisher        *events.DesignPublisher
	logger           logging.Logger
}

func NewHandler(
	designRepository domain.DesignRepository,
	publisher *events.DesignPublisher,
	logger logging.Logger,
) *Handler {
	return &Handler{
		designRepository: designRepository,
		publisher:        publisher,
		logger:           logger,
	}
}

// ListDesignsHandler returns designs newest-first. summary=true strips
// the elements array from each document.
func (h *Handler) ListDesignsHandler(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptionsFromQuery(r)
	if err != nil {
		json.WriteValidationError(w, err)
		return
	}

	designs, err := h.designRepository.FindAll(r.Context(), opts)
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, designs)
}

func (h *Handler) GetDesignHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "designId")

	design, err := h.designRepository.FindByID(r.Context(), id)
	if err != nil {
		h.writeDesignError(w, err)
		return
	}

	json.Write(w, http.StatusOK, design)
}

func (h *Handler) CreateDesignHandler(w http.ResponseWriter, r *http.Request) {
	var req createDesignRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	ctx := r.Context()
	design, err := h.designRepository.Create(ctx, &domain.Design{
		Name:         req.Name,
		Width:        req.Width,
		Height:       req.Height,
		Elements:     []domain.DesignElement{},
		ThumbnailURL: req.ThumbnailURL,
	})
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	if err := h.publisher.PublishDesignCreated(ctx, *design); err != nil {
		h.logger.Error(logging.RabbitMQ, logging.ExternalService, "failed to publish design created", map[logging.ExtraKey]any{
			logging.DesignID:     design.ID,
			logging.ErrorMessage: err.Error(),
		})
	}

	json.Write(w, http.StatusCreated, design)
}

func (h *Handler) UpdateDesignHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "designId")

	var req updateDesignRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	ctx := r.Context()
	design, err := h.designRepository.UpdateByID(ctx, id, domain.DesignUpdate{
		Name:         req.Name,
		Width:        req.Width,
		Height:       req.Height,
		Elements:     req.Elements,
		ThumbnailURL: req.ThumbnailURL,
	})
	if err != nil {
		h.writeDesignError(w, err)
		return
	}

	if err := h.publisher.PublishDesignUpdated(ctx, *design); err != nil {
		h.logger.Error(logging.RabbitMQ, logging.ExternalService, "failed to publish design updated", map[logging.ExtraKey]any{
			logging.DesignID:     design.ID,
			logging.ErrorMessage: err.Error(),
		})
	}

	json.Write(w, http.StatusOK, design)
}

func (h *Handler) DeleteDesignHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "designId")

	ctx := r.Context()
	design, err := h.designRepository.FindByID(ctx, id)
	if err != nil {
		h.writeDesignError(w, err)
		return
	}

	deleted, err := h.designRepository.DeleteByID(ctx, id)
	if err != nil {
		h.writeDesignError(w, err)
		return
	}

	if deleted {
		if err := h.publisher.PublishDesignDeleted(ctx, *design); err != nil {
			h.logger.Error(logging.RabbitMQ, logging.ExternalService, "failed to publish design deleted", map[logging.ExtraKey]any{
				logging.DesignID:     design.ID,
				logging.ErrorMessage: err.Error(),
			})
		}
	}

	json.Write(w, http.StatusOK, deleteDesignResponse{Deleted: deleted})
}

func (h *Handler) writeDesignError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrDesignNotFound):
		json.WriteError(w, http.StatusNotFound, "Design not found")
	case errors.Is(err, domain.ErrInvalidID):
		json.WriteError(w, http.StatusBadRequest, "Invalid design id")
	default:
		json.WriteInternalError(w, err)
	}
}

func listOptionsFromQuery(r *http.Request) (domain.FindOptions, error) {
	opts := domain.FindOptions{Limit: defaultListLimit}
	q := r.URL.Query()

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 1 {
			return opts, errors.New("limit must be a positive integer")
		}
		if limit > maxListLimit {
			limit = maxListLimit
		}
		opts.Limit = limit
	}

	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || offset < 0 {
			return opts, errors.New("offset must be a non-negative integer")
		}
		opts.Offset = offset
	}

	if raw := q.Get("summary"); raw != "" {
		summary, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, errors.New("summary must be a boolean")
		}
		opts.Summary = summary
	}

	return opts, nil
}
