package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/modlog-backend/internal/domain"
	"github.com/heartmarshall/modlog-backend/internal/service/feedback"
)

// maxFeedbackBody bounds the submission body.
const maxFeedbackBody = 64 << 10

type feedbackSubmitter interface {
	Submit(ctx context.Context, input feedback.SubmitInput) (*domain.UserFeedback, error)
}

// FeedbackHandler accepts feedback from dashboard users. Anonymous
// submissions are allowed.
type FeedbackHandler struct {
	svc feedbackSubmitter
	log *slog.Logger
}

// NewFeedbackHandler creates a FeedbackHandler.
func NewFeedbackHandler(svc feedbackSubmitter, logger *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{svc: svc, log: logger.With("handler", "feedback")}
}

type submitFeedbackRequest struct {
	Category     string         `json:"category"`
	Content      string         `json:"content"`
	ContactEmail *string        `json:"contact_email"`
	Metadata     map[string]any `json:"metadata"`
}

// Submit handles POST /api/feedback.
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitFeedbackRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFeedbackBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fb, err := h.svc.Submit(r.Context(), feedback.SubmitInput{
		Category:     req.Category,
		Content:      req.Content,
		ContactEmail: req.ContactEmail,
		Metadata:     req.Metadata,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toFeedbackResponse(*fb))
}
