package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/heartmarshall/modlog-backend/internal/config"
	"github.com/heartmarshall/modlog-backend/internal/domain"
	"github.com/heartmarshall/modlog-backend/internal/identity"
	"github.com/heartmarshall/modlog-backend/internal/logquery"
	"github.com/heartmarshall/modlog-backend/internal/service/retrieval"
)

const (
	missingIdentityMessage = "UUID header is missing"
	missingIdentityHint    = `Send the identity in the "uuid" header or the "uuid" / "userId" query parameter.`

	fetchFailedMessage = "Failed to fetch detection logs"
	privilegedHint     = "The service credential could not read detection_logs. Check DATABASE_SERVICE_DSN and that the table exists."
	directHint         = "The restricted credential is subject to row-level security. Check the modlog_client policy on detection_logs or configure DATABASE_SERVICE_DSN."

	redacted = "[redacted]"
)

// Headers whose values never appear in error bodies.
var sensitiveHeaders = map[string]bool{
	"authorization": true,
	"cookie":        true,
}

type logService interface {
	FetchScoped(ctx context.Context, identity string, rng domain.ConfidenceRange, page domain.PageRequest) (logquery.Result, error)
	FetchDashboard(ctx context.Context, identity string, rng domain.ConfidenceRange, n, size int) (retrieval.Page, error)
	ScopedLimit() int
	Kind() string
}

// LogHandler serves the identity-scoped detection log endpoints.
type LogHandler struct {
	svc logService
	log *slog.Logger
}

// NewLogHandler creates a LogHandler.
func NewLogHandler(svc logService, logger *slog.Logger) *LogHandler {
	return &LogHandler{svc: svc, log: logger.With("handler", "logs")}
}

type userIDResponse struct {
	UserID *string `json:"userId"`
}

// UserID echoes the resolved caller identity, or null when anonymous.
// GET /api/user-id
func (h *LogHandler) UserID(w http.ResponseWriter, r *http.Request) {
	var resp userIDResponse
	if id, ok := requestIdentity(r); ok {
		resp.UserID = &id
	}
	writeJSON(w, http.StatusOK, resp)
}

type missingIdentityResponse struct {
	Error           string            `json:"error"`
	ReceivedHeaders map[string]string `json:"receivedHeaders"`
	Hint            string            `json:"hint"`
}

type fetchFailedResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
	UserID  string `json:"userId"`
	Hint    string `json:"hint"`
}

type detectionLogsResponse struct {
	Success    bool          `json:"success"`
	UserID     string        `json:"userId"`
	Count      int           `json:"count"`
	TotalCount int           `json:"totalCount"`
	Logs       []logResponse `json:"logs"`
	Debug      logsDebug     `json:"debug"`
}

// logsDebug is diagnostic only; clients must not depend on it.
type logsDebug struct {
	UserIDLength              int     `json:"userIdLength"`
	IdentitySource            string  `json:"identitySource"`
	FirstLogUserID            *string `json:"firstLogUserId"`
	UsingPrivilegedCredential bool    `json:"usingPrivilegedCredential"`
	Gateway                   string  `json:"gateway"`
}

// DetectionLogs returns the caller's logs, newest first.
// GET /api/detection-logs?minConfidence=&maxConfidence=&page=&pageSize=
//
// Without page parameters the response holds at most ScopedLimit logs and
// the exact total.
func (h *LogHandler) DetectionLogs(w http.ResponseWriter, r *http.Request) {
	id, src := identity.ResolveWithSource(r)
	if src == identity.SourceNone {
		writeJSON(w, http.StatusBadRequest, missingIdentityResponse{
			Error:           missingIdentityMessage,
			ReceivedHeaders: receivedHeaders(r.Header),
			Hint:            missingIdentityHint,
		})
		return
	}

	q := r.URL.Query()
	page := domain.PageRequest{Limit: parsePositiveInt(q, "pageSize"), WithCount: true}
	if n := parsePositiveInt(q, "page"); n > 0 {
		limit := page.Limit
		if limit == 0 {
			limit = h.svc.ScopedLimit()
		}
		// The offset must use the limit the store will apply.
		limit = min(limit, domain.MaxPageLimit)
		page = domain.OffsetPage(n, limit)
	}

	res, err := h.svc.FetchScoped(r.Context(), id, parseRange(q), page)
	if err != nil {
		h.fetchFailed(w, r, id, err)
		return
	}

	debug := logsDebug{
		UserIDLength:              len(id),
		IdentitySource:            string(src),
		UsingPrivilegedCredential: h.svc.Kind() == config.GatewayPrivileged,
		Gateway:                   h.svc.Kind(),
	}
	if len(res.Logs) > 0 {
		debug.FirstLogUserID = res.Logs[0].UserID
	}

	writeJSON(w, http.StatusOK, detectionLogsResponse{
		Success:    true,
		UserID:     id,
		Count:      len(res.Logs),
		TotalCount: res.Total(),
		Logs:       toLogResponses(res.Logs),
		Debug:      debug,
	})
}

func (h *LogHandler) fetchFailed(w http.ResponseWriter, r *http.Request, id string, err error) {
	if errors.Is(err, domain.ErrMissingIdentity) {
		writeJSON(w, http.StatusBadRequest, missingIdentityResponse{
			Error:           missingIdentityMessage,
			ReceivedHeaders: receivedHeaders(r.Header),
			Hint:            missingIdentityHint,
		})
		return
	}

	details := err.Error()
	var rerr *domain.RetrievalError
	if errors.As(err, &rerr) {
		details = rerr.Detail()
	}
	hint := directHint
	if h.svc.Kind() == config.GatewayPrivileged {
		hint = privilegedHint
	}
	writeJSON(w, http.StatusInternalServerError, fetchFailedResponse{
		Error:   fetchFailedMessage,
		Details: details,
		UserID:  id,
		Hint:    hint,
	})
}

// Dashboard returns one page of the caller's logs for the public dashboard.
// Anonymous callers get an empty first page.
// GET /api/dashboard/logs?page=&pageSize=&minConfidence=&maxConfidence=
func (h *LogHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	id, _ := requestIdentity(r)
	q := r.URL.Query()

	page, err := h.svc.FetchDashboard(r.Context(), id, parseRange(q),
		parsePositiveInt(q, "page"), parsePositiveInt(q, "pageSize"))
	if err != nil {
		h.fetchFailed(w, r, id, err)
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(page))
}

func toPageResponse(p retrieval.Page) pageResponse {
	return pageResponse{
		Logs:       toLogResponses(p.Logs),
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalCount: p.TotalCount,
		TotalPages: p.TotalPages,
		Range:      rangeResponse{Min: p.Range.Min, Max: p.Range.Max},
	}
}

// receivedHeaders flattens h with lower-cased names for the missing
// identity response. Credentials are redacted.
func receivedHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vals := range h {
		name := strings.ToLower(k)
		if sensitiveHeaders[name] {
			out[name] = redacted
			continue
		}
		out[name] = strings.Join(vals, ", ")
	}
	return out
}
