package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/modlog-backend/internal/adapter/postgres"
	"github.com/heartmarshall/modlog-backend/internal/adapter/postgres/audit"
	"github.com/heartmarshall/modlog-backend/internal/adapter/postgres/detectionlog"
	feedbackrepo "github.com/heartmarshall/modlog-backend/internal/adapter/postgres/feedback"
	settingrepo "github.com/heartmarshall/modlog-backend/internal/adapter/postgres/setting"
	"github.com/heartmarshall/modlog-backend/internal/auth"
	"github.com/heartmarshall/modlog-backend/internal/config"
	"github.com/heartmarshall/modlog-backend/internal/logquery"
	"github.com/heartmarshall/modlog-backend/internal/metrics"
	"github.com/heartmarshall/modlog-backend/internal/service/admin"
	"github.com/heartmarshall/modlog-backend/internal/service/feedback"
	"github.com/heartmarshall/modlog-backend/internal/service/retrieval"
	"github.com/heartmarshall/modlog-backend/internal/service/setting"
	"github.com/heartmarshall/modlog-backend/internal/transport/dataloader"
	"github.com/heartmarshall/modlog-backend/internal/transport/middleware"
	"github.com/heartmarshall/modlog-backend/internal/transport/rest"
)

// Gateway is a retrieval path over detection logs.
type Gateway interface {
	Fetch(ctx context.Context, d logquery.Descriptor) (logquery.Result, error)
	Kind() string
}

// NewGateway picks the retrieval path. The privileged path needs the
// service pool; Validate has already rejected that combination without one.
func NewGateway(kind string, pools *postgres.Pools) (Gateway, error) {
	switch kind {
	case config.GatewayPrivileged:
		if !pools.HasService() {
			return nil, fmt.Errorf("gateway %q: no service pool", kind)
		}
		return detectionlog.NewPrivilegedGateway(pools.Service), nil
	case config.GatewayDirect:
		return detectionlog.NewDirectGateway(pools.Client), nil
	}
	return nil, fmt.Errorf("unknown gateway %q", kind)
}

// NewHandler builds repositories, services and the HTTP router. The returned
// cleanup stops background work started here.
func NewHandler(cfg *config.Config, pools *postgres.Pools, m *metrics.Metrics, logger *slog.Logger) (http.Handler, func(), error) {
	gw, err := NewGateway(cfg.ResolvedGateway(), pools)
	if err != nil {
		return nil, nil, err
	}

	// Repositories. Feedback, settings and aggregate counts are not
	// identity-scoped, so they run on the primary pool.
	primary := pools.Primary()
	logRepo := detectionlog.NewRepo(primary)
	feedbackRepo := feedbackrepo.New(primary)
	settingRepo := settingrepo.New(primary)
	auditRepo := audit.New(primary)
	txm := postgres.NewTxManager(primary)

	// Services.
	retrievalService := retrieval.NewService(logger, gw, m, cfg.Retrieval)
	feedbackService := feedback.NewService(logger, feedbackRepo, m, cfg.Retrieval.FeedbackPageSize).
		WithAudit(txm, auditRepo)
	settingService := setting.NewService(logger, settingRepo, m, cfg.Settings.CacheTTL).
		WithAudit(txm, auditRepo)
	adminService := admin.NewService(logger, settingService, feedbackService, retrievalService, logRepo)
	sessions := auth.NewSessionManager(cfg.Admin.SessionSecret, cfg.Admin.SessionIssuer, cfg.Admin.SessionTTL)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)

	handler := rest.NewRouter(rest.RouterDeps{
		Health:   rest.NewHealthHandler(pools, BuildVersion(), gw.Kind()),
		Logs:     rest.NewLogHandler(retrievalService, logger),
		Feedback: rest.NewFeedbackHandler(feedbackService, logger),
		Admin: rest.NewAdminHandler(rest.AdminDeps{
			Sessions:     sessions,
			PasswordHash: cfg.Admin.PasswordHash,
			Cookie:       rest.AdminCookie{Name: cfg.Admin.CookieName, Secure: cfg.Admin.CookieSecure},
			Logs:         retrievalService,
			Feedback:     feedbackService,
			Settings:     settingService,
			Overview:     adminService,
			Audit:        auditRepo,
		}, logger),
		Sessions:    sessions,
		CookieName:  cfg.Admin.CookieName,
		Loaders:     &dataloader.Repos{DetectionLog: logRepo},
		RateLimiter: limiter,
		RateLimit:   cfg.RateLimit,
		CORS:        cfg.CORS,
		Metrics:     m.Handler(),
		Logger:      logger,
	})

	return handler, limiter.Stop, nil
}
