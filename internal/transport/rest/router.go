package rest

import (
	"log/slog"
	"net/http"

	"github.com/heartmarshall/modlog-backend/internal/config"
	"github.com/heartmarshall/modlog-backend/internal/transport/dataloader"
	"github.com/heartmarshall/modlog-backend/internal/transport/middleware"
)

type sessionValidator interface {
	Validate(token string) (string, error)
}

// RouterDeps holds everything NewRouter mounts.
type RouterDeps struct {
	Health   *HealthHandler
	Logs     *LogHandler
	Feedback *FeedbackHandler
	Admin    *AdminHandler

	Sessions    sessionValidator
	CookieName  string
	Loaders     *dataloader.Repos
	RateLimiter *middleware.RateLimiter
	RateLimit   config.RateLimitConfig
	CORS        config.CORSConfig
	// Metrics serves /metrics. Nil leaves the route unmounted.
	Metrics http.Handler
	Logger  *slog.Logger
}

// NewRouter builds the HTTP handler. Public routes resolve the caller
// identity; admin routes additionally require a session cookie and get
// per-request loaders.
func NewRouter(d RouterDeps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", d.Health.Live)
	mux.HandleFunc("GET /ready", d.Health.Ready)
	mux.HandleFunc("GET /health", d.Health.Health)
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics)
	}

	mux.HandleFunc("GET /api/user-id", d.Logs.UserID)
	mux.HandleFunc("GET /api/detection-logs", d.Logs.DetectionLogs)
	mux.HandleFunc("GET /api/dashboard/logs", d.Logs.Dashboard)
	mux.Handle("POST /api/feedback", limit(d, "feedback", d.RateLimit.FeedbackPerMinute)(http.HandlerFunc(d.Feedback.Submit)))

	mux.Handle("POST /admin/login", limit(d, "login", d.RateLimit.LoginPerMinute)(http.HandlerFunc(d.Admin.Login)))
	mux.HandleFunc("POST /admin/logout", d.Admin.Logout)

	adminOnly := middleware.Chain(
		middleware.AdminSession(d.Sessions, d.CookieName, d.Logger),
		dataloader.Middleware(d.Loaders),
	)
	mux.Handle("GET /admin/logs", adminOnly(http.HandlerFunc(d.Admin.Logs)))
	mux.Handle("GET /admin/feedback", adminOnly(http.HandlerFunc(d.Admin.Feedback)))
	mux.Handle("PATCH /admin/feedback/{id}/status", adminOnly(http.HandlerFunc(d.Admin.UpdateFeedbackStatus)))
	mux.Handle("GET /admin/settings", adminOnly(http.HandlerFunc(d.Admin.Settings)))
	mux.Handle("PUT /admin/settings/{key}", adminOnly(http.HandlerFunc(d.Admin.UpdateSetting)))
	mux.Handle("GET /admin/overview", adminOnly(http.HandlerFunc(d.Admin.Overview)))
	mux.Handle("GET /admin/audit", adminOnly(http.HandlerFunc(d.Admin.Audit)))

	return middleware.Chain(
		middleware.RequestID,
		middleware.Identity,
		middleware.Logger(d.Logger),
		middleware.Recovery(d.Logger),
		middleware.CORS(d.CORS),
	)(mux)
}

func limit(d RouterDeps, route string, perMinute int) middleware.Middleware {
	if d.RateLimiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return d.RateLimiter.Limit(route, perMinute)
}
