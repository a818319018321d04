// Package rest serves the dashboard and admin HTTP API.
package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/heartmarshall/modlog-backend/internal/domain"
	"github.com/heartmarshall/modlog-backend/internal/identity"
	"github.com/heartmarshall/modlog-backend/pkg/ctxutil"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleError maps domain errors to status codes. Retrieval failures carry
// the store's message in details; other unknown errors are logged and
// reported as 500 without detail.
func handleError(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, validationResponse{
			Error:  "validation failed",
			Fields: toFieldErrors(verr.Errors),
		})
	case errors.Is(err, domain.ErrMissingIdentity):
		writeError(w, http.StatusBadRequest, "identity is missing")
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrRetrievalFailed):
		details := err.Error()
		var rerr *domain.RetrievalError
		if errors.As(err, &rerr) {
			details = rerr.Detail()
		}
		log.ErrorContext(r.Context(), "retrieval failed",
			slog.String("request_id", ctxutil.RequestIDFromCtx(r.Context())),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, retrievalFailedResponse{
			Error:   fetchFailedMessage,
			Details: details,
		})
	default:
		log.ErrorContext(r.Context(), "internal error",
			slog.String("request_id", ctxutil.RequestIDFromCtx(r.Context())),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

type retrievalFailedResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

type validationResponse struct {
	Error  string       `json:"error"`
	Fields []fieldError `json:"fields"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func toFieldErrors(errs []domain.FieldError) []fieldError {
	out := make([]fieldError, len(errs))
	for i, e := range errs {
		out[i] = fieldError{Field: e.Field, Message: e.Message}
	}
	return out
}

// requestIdentity prefers the identity stored by the Identity middleware and
// falls back to resolving the request directly.
func requestIdentity(r *http.Request) (string, bool) {
	if id, ok := ctxutil.IdentityFromCtx(r.Context()); ok {
		return id, true
	}
	return identity.Resolve(r)
}

// ---------------------------------------------------------------------------
// Query parameters
// ---------------------------------------------------------------------------

// parseRange reads minConfidence and maxConfidence. Unparseable bounds are
// treated as absent; an inverted range is passed through and matches nothing.
func parseRange(q url.Values) domain.ConfidenceRange {
	return domain.NewConfidenceRange(parseFloat(q, "minConfidence"), parseFloat(q, "maxConfidence"))
}

func parseFloat(q url.Values, key string) *float64 {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

// parsePositiveInt returns the value of key, or 0 when absent, malformed or
// not positive.
func parsePositiveInt(q url.Values, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(q.Get(key)))
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// logResponse mirrors the detection_logs columns.
type logResponse struct {
	ID            int64          `json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	TextContent   string         `json:"text_content"`
	Confidence    float64        `json:"confidence"`
	ThresholdUsed float64        `json:"threshold_used"`
	ModelVersion  *string        `json:"model_version"`
	IsHarmful     bool           `json:"is_harmful"`
	UserID        *string        `json:"user_id"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

func toLogResponses(logs []domain.DetectionLog) []logResponse {
	out := make([]logResponse, len(logs))
	for i, l := range logs {
		out[i] = logResponse{
			ID:            l.ID,
			CreatedAt:     l.CreatedAt,
			TextContent:   l.TextContent,
			Confidence:    l.Confidence,
			ThresholdUsed: l.ThresholdUsed,
			ModelVersion:  l.ModelVersion,
			IsHarmful:     l.IsHarmful,
			UserID:        l.UserID,
			Metadata:      l.Metadata,
		}
	}
	return out
}

type rangeResponse struct {
	Min float64 `json:"minConfidence"`
	Max float64 `json:"maxConfidence"`
}

type pageResponse struct {
	Logs       []logResponse `json:"logs"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalCount int           `json:"totalCount"`
	TotalPages int           `json:"totalPages"`
	Range      rangeResponse `json:"range"`
}

type feedbackResponse struct {
	ID           int64          `json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UserID       *string        `json:"user_id"`
	Category     string         `json:"category"`
	Content      string         `json:"content"`
	ContactEmail *string        `json:"contact_email"`
	Status       string         `json:"status"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	// HarmfulLogs is the author's harmful log count, set on admin lists only.
	HarmfulLogs *int `json:"harmful_logs,omitempty"`
}

func toFeedbackResponse(fb domain.UserFeedback) feedbackResponse {
	return feedbackResponse{
		ID:           fb.ID,
		CreatedAt:    fb.CreatedAt,
		UserID:       fb.UserID,
		Category:     fb.Category,
		Content:      fb.Content,
		ContactEmail: fb.ContactEmail,
		Status:       fb.Status.String(),
		Metadata:     fb.Metadata,
	}
}

type settingResponse struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description *string   `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toSettingResponses(settings []domain.AppSetting) []settingResponse {
	out := make([]settingResponse, len(settings))
	for i, s := range settings {
		out[i] = toSettingResponse(s)
	}
	return out
}

func toSettingResponse(s domain.AppSetting) settingResponse {
	return settingResponse{Key: s.Key, Value: s.Value, Description: s.Description, UpdatedAt: s.UpdatedAt}
}
