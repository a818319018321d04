// Package retrieval runs detection log queries through the configured gateway.
package retrieval

import (
	"context"
	"log/slog"
	"time"

	"github.com/heartmarshall/modlog-backend/internal/config"
	"github.com/heartmarshall/modlog-backend/internal/logquery"
)

type gateway interface {
	Fetch(ctx context.Context, d logquery.Descriptor) (logquery.Result, error)
	Kind() string
}

type recorder interface {
	ObserveRetrieval(gateway, scope, outcome string, d time.Duration, rows int)
}

// Service is the single entry point for reading detection logs. Every call
// builds its descriptor from a typed scope, so a scoped caller cannot reach
// the gateway without an identity.
type Service struct {
	log     *slog.Logger
	gw      gateway
	metrics recorder
	cfg     config.RetrievalConfig
}

// NewService creates a retrieval service. metrics may be nil.
func NewService(logger *slog.Logger, gw gateway, metrics recorder, cfg config.RetrievalConfig) *Service {
	return &Service{
		log:     logger.With("service", "retrieval", "gateway", gw.Kind()),
		gw:      gw,
		metrics: metrics,
		cfg:     cfg,
	}
}

// Kind returns the kind of the configured gateway.
func (s *Service) Kind() string { return s.gw.Kind() }

// ScopedLimit is the default bound for the scoped endpoint.
func (s *Service) ScopedLimit() int {
	if s.cfg.ScopedLimit <= 0 {
		return 50
	}
	return s.cfg.ScopedLimit
}

// PageSize is the default offset pager page size.
func (s *Service) PageSize() int {
	if s.cfg.PageSize <= 0 {
		return 10
	}
	return s.cfg.PageSize
}

func (s *Service) observe(scope, outcome string, start time.Time, rows int) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveRetrieval(s.gw.Kind(), scope, outcome, time.Since(start), rows)
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.QueryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.QueryTimeout)
}
