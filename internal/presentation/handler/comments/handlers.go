package comments

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell-hq/inkwell/internal/domain"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/events"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/json"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/logging"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/validate"
)

type Handler struct {
	commentRepository domain.CommentRepository
	designRepository  domain.DesignRepository
	publisher         *events.DesignPublisher
	logger            logging.Logger
}

func NewHandler(
	commentRepository domain.CommentRepository,
	designRepository domain.DesignRepository,
	publisher *events.DesignPublisher,
	logger logging.Logger,
) *Handler {
	return &Handler{
		commentRepository: commentRepository,
		designRepository:  designRepository,
		publisher:         publisher,
		logger:            logger,
	}
}

func (h *Handler) ListCommentsHandler(w http.ResponseWriter, r *http.Request) {
	designID := chi.URLParam(r, "designId")

	ctx := r.Context()
	if _, err := h.designRepository.FindByID(ctx, designID); err != nil {
		h.writeLookupError(w, err)
		return
	}

	comments, err := h.commentRepository.FindByDesignID(ctx, designID)
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, comments)
}

// CreateCommentHandler persists a comment with its extracted @mentions
// and notifies the audit pipeline.
func (h *Handler) CreateCommentHandler(w http.ResponseWriter, r *http.Request) {
	designID := chi.URLParam(r, "designId")

	var req createCommentRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	ctx := r.Context()
	if _, err := h.designRepository.FindByID(ctx, designID); err != nil {
		h.writeLookupError(w, err)
		return
	}

	comment, err := h.commentRepository.Create(ctx, &domain.Comment{
		DesignID:   designID,
		AuthorName: req.AuthorName,
		Text:       req.Text,
		Mentions:   domain.ExtractMentions(req.Text),
	})
	if err != nil {
		json.WriteInternalError(w, err)
		return
	}

	if err := h.publisher.PublishCommentAdded(ctx, *comment); err != nil {
		h.logger.Error(logging.RabbitMQ, logging.ExternalService, "failed to publish comment added", map[logging.ExtraKey]any{
			logging.DesignID:     designID,
			logging.ErrorMessage: err.Error(),
		})
	}

	json.Write(w, http.StatusCreated, comment)
}

func (h *Handler) writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrDesignNotFound):
		json.WriteError(w, http.StatusNotFound, "Design not found")
	case errors.Is(err, domain.ErrInvalidID):
		json.WriteError(w, http.StatusBadRequest, "Invalid design id")
	default:
		json.WriteInternalError(w, err)
	}
}
