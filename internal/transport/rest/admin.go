package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/heartmarshall/modlog-backend/internal/auth"
	"github.com/heartmarshall/modlog-backend/internal/domain"
	"github.com/heartmarshall/modlog-backend/internal/service/admin"
	"github.com/heartmarshall/modlog-backend/internal/service/feedback"
	"github.com/heartmarshall/modlog-backend/internal/service/retrieval"
	"github.com/heartmarshall/modlog-backend/internal/transport/dataloader"
	"github.com/heartmarshall/modlog-backend/internal/transport/middleware"
)

const maxAdminBody = 16 << 10

type sessionIssuer interface {
	Issue(subject string) (string, time.Time, error)
}

type adminLogPager interface {
	PageAll(ctx context.Context, rng domain.ConfidenceRange, n, size int) (retrieval.Page, error)
}

type adminFeedbackService interface {
	ListPage(ctx context.Context, n, size int) (feedback.Page, error)
	UpdateStatus(ctx context.Context, id int64, status domain.FeedbackStatus) (*domain.UserFeedback, error)
}

type adminSettingService interface {
	List(ctx context.Context) ([]domain.AppSetting, error)
	Update(ctx context.Context, key, value string) (*domain.AppSetting, error)
}

type auditLister interface {
	List(ctx context.Context, limit int) ([]domain.AuditRecord, error)
}

type overviewService interface {
	Overview(ctx context.Context) (*admin.Overview, error)
}

// AdminCookie configures the session cookie set on login.
type AdminCookie struct {
	Name   string
	Secure bool
}

// AdminDeps holds the services the admin handler calls.
type AdminDeps struct {
	Sessions     sessionIssuer
	PasswordHash string
	Cookie       AdminCookie
	Logs         adminLogPager
	Feedback     adminFeedbackService
	Settings     adminSettingService
	Overview     overviewService
	Audit        auditLister
}

// AdminHandler serves the admin REST endpoints. Every route except Login and
// Logout expects the AdminSession middleware in front of it.
type AdminHandler struct {
	deps AdminDeps
	log  *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(deps AdminDeps, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{deps: deps, log: logger.With("handler", "admin")}
}

// ---------------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------------

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login checks the shared admin password and sets the session cookie.
// POST /admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAdminBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Password == "" {
		handleError(h.log, w, r, domain.NewValidationError("password", "required"))
		return
	}

	if err := auth.CheckPassword(h.deps.PasswordHash, req.Password); err != nil {
		h.log.WarnContext(r.Context(), "admin login failed", slog.String("error", err.Error()))
		handleError(h.log, w, r, err)
		return
	}

	token, expiresAt, err := h.deps.Sessions.Issue(auth.AdminSubject)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.deps.Cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.deps.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	h.log.InfoContext(r.Context(), "admin logged in")
	writeJSON(w, http.StatusOK, loginResponse{Status: "ok", ExpiresAt: expiresAt})
}

// Logout clears the session cookie.
// POST /admin/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.deps.Cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.deps.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---------------------------------------------------------------------------
// Logs
// ---------------------------------------------------------------------------

// Logs returns one page of every owner's logs.
// GET /admin/logs?page=&pageSize=&minConfidence=&maxConfidence=
func (h *AdminHandler) Logs(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	q := r.URL.Query()
	page, err := h.deps.Logs.PageAll(r.Context(), parseRange(q),
		parsePositiveInt(q, "page"), parsePositiveInt(q, "pageSize"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(page))
}

// ---------------------------------------------------------------------------
// Feedback
// ---------------------------------------------------------------------------

type feedbackPageResponse struct {
	Items    []feedbackResponse `json:"items"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
	HasMore  bool               `json:"hasMore"`
}

// Feedback returns one page of the accumulating feedback list. Items whose
// author is known carry the author's harmful log count.
// GET /admin/feedback?page=&pageSize=
func (h *AdminHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	q := r.URL.Query()
	page, err := h.deps.Feedback.ListPage(r.Context(), parsePositiveInt(q, "page"), parsePositiveInt(q, "pageSize"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp, err := h.toFeedbackPage(r.Context(), page)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) toFeedbackPage(ctx context.Context, page feedback.Page) (feedbackPageResponse, error) {
	items := make([]feedbackResponse, len(page.Items))
	authors := make([]string, 0, len(page.Items))
	for i, fb := range page.Items {
		items[i] = toFeedbackResponse(fb)
		if fb.UserID != nil {
			authors = append(authors, *fb.UserID)
		}
	}

	if loaders := dataloader.FromContext(ctx); loaders != nil && len(authors) > 0 {
		counts, err := loaders.HarmfulCounts(ctx, authors)
		if err != nil {
			return feedbackPageResponse{}, err
		}
		for i := range items {
			if items[i].UserID == nil {
				continue
			}
			if n, ok := counts[*items[i].UserID]; ok {
				items[i].HarmfulLogs = &n
			}
		}
	}

	return feedbackPageResponse{
		Items:    items,
		Page:     page.Page,
		PageSize: page.PageSize,
		HasMore:  page.HasMore,
	}, nil
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateFeedbackStatus changes the status of one feedback entry.
// PATCH /admin/feedback/{id}/status
func (h *AdminHandler) UpdateFeedbackStatus(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		handleError(h.log, w, r, domain.NewValidationError("id", "must be an integer"))
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAdminBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fb, err := h.deps.Feedback.UpdateStatus(r.Context(), id, domain.FeedbackStatus(strings.TrimSpace(req.Status)))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	h.log.InfoContext(r.Context(), "feedback status updated",
		slog.Int64("id", fb.ID),
		slog.String("status", fb.Status.String()),
	)
	writeJSON(w, http.StatusOK, toFeedbackResponse(*fb))
}

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

// Settings lists every setting ordered by key.
// GET /admin/settings
func (h *AdminHandler) Settings(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	settings, err := h.deps.Settings.List(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingResponses(settings))
}

type updateSettingRequest struct {
	Value *string `json:"value"`
}

// UpdateSetting sets the value of an existing setting. Unknown keys are 404.
// PUT /admin/settings/{key}
func (h *AdminHandler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req updateSettingRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAdminBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Value == nil {
		handleError(h.log, w, r, domain.NewValidationError("value", "required"))
		return
	}

	s, err := h.deps.Settings.Update(r.Context(), r.PathValue("key"), *req.Value)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	h.log.InfoContext(r.Context(), "setting updated", slog.String("key", s.Key))
	writeJSON(w, http.StatusOK, toSettingResponse(*s))
}

// ---------------------------------------------------------------------------
// Overview
// ---------------------------------------------------------------------------

type statsResponse struct {
	Total           int `json:"total"`
	Harmful         int `json:"harmful"`
	DistinctUserIDs int `json:"distinctUserIds"`
}

type overviewResponse struct {
	Settings       []settingResponse    `json:"settings"`
	Feedback       feedbackPageResponse `json:"feedback"`
	FeedbackCounts map[string]int       `json:"feedbackCounts"`
	Logs           pageResponse         `json:"logs"`
	Stats          statsResponse        `json:"stats"`
}

// Overview returns everything the admin page shows on first load.
// GET /admin/overview
func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	ov, err := h.deps.Overview.Overview(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	fb, err := h.toFeedbackPage(r.Context(), ov.Feedback)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	counts := make(map[string]int, len(ov.FeedbackCounts))
	for status, n := range ov.FeedbackCounts {
		counts[status.String()] = n
	}

	writeJSON(w, http.StatusOK, overviewResponse{
		Settings:       toSettingResponses(ov.Settings),
		Feedback:       fb,
		FeedbackCounts: counts,
		Logs:           toPageResponse(ov.Logs),
		Stats: statsResponse{
			Total:           ov.Stats.Total,
			Harmful:         ov.Stats.Harmful,
			DistinctUserIDs: ov.Stats.DistinctIDs,
		},
	})
}

// ---------------------------------------------------------------------------
// Audit
// ---------------------------------------------------------------------------

type auditResponse struct {
	ID         int64          `json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	Actor      string         `json:"actor"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Action     string         `json:"action"`
	Changes    map[string]any `json:"changes"`
}

// Audit lists the most recent admin actions, newest first.
// GET /admin/audit?limit=
func (h *AdminHandler) Audit(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	records, err := h.deps.Audit.List(r.Context(), parsePositiveInt(r.URL.Query(), "limit"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]auditResponse, len(records))
	for i, rec := range records {
		out[i] = auditResponse{
			ID:         rec.ID,
			CreatedAt:  rec.CreatedAt,
			Actor:      rec.Actor,
			EntityType: string(rec.EntityType),
			EntityID:   rec.EntityID,
			Action:     string(rec.Action),
			Changes:    rec.Changes,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if err := middleware.RequireAdmin(r.Context()); err != nil {
		handleError(h.log, w, r, err)
		return false
	}
	return true
}
