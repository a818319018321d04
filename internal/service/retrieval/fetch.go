package retrieval

import (
	"context"
	"errors"
	"time"

	"github.com/heartmarshall/modlog-backend/internal/domain"
	"github.com/heartmarshall/modlog-backend/internal/logquery"
	"github.com/heartmarshall/modlog-backend/internal/metrics"
)

// FetchScoped returns the logs owned by identity. A blank identity fails with
// domain.ErrMissingIdentity before the gateway is called. A zero page limit
// falls back to ScopedLimit.
func (s *Service) FetchScoped(ctx context.Context, identity string, rng domain.ConfidenceRange, page domain.PageRequest) (logquery.Result, error) {
	start := time.Now()
	scope, err := logquery.Scoped(identity)
	if err != nil {
		s.observe(metrics.ScopeUser, metrics.OutcomeMissingIdentity, start, 0)
		return logquery.Result{}, err
	}
	return s.fetch(ctx, scope, metrics.ScopeUser, rng, page.Normalize(s.ScopedLimit()))
}

// FetchAll returns logs of every owner. Only admin handlers call it.
func (s *Service) FetchAll(ctx context.Context, rng domain.ConfidenceRange, page domain.PageRequest) (logquery.Result, error) {
	return s.fetch(ctx, logquery.Unscoped(), metrics.ScopeAll, rng, page.Normalize(s.PageSize()))
}

func (s *Service) fetch(ctx context.Context, scope logquery.Scope, label string, rng domain.ConfidenceRange, page domain.PageRequest) (logquery.Result, error) {
	start := time.Now()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.gw.Fetch(ctx, logquery.Build(scope, rng, page))
	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, domain.ErrMissingIdentity) {
			outcome = metrics.OutcomeMissingIdentity
		}
		s.observe(label, outcome, start, 0)
		s.log.ErrorContext(ctx, "fetch detection logs",
			"scope", label,
			"offset", page.Offset,
			"limit", page.Limit,
			"error", err,
		)
		return logquery.Result{}, err
	}
	if res.Logs == nil {
		res.Logs = []domain.DetectionLog{}
	}

	s.observe(label, metrics.OutcomeSuccess, start, len(res.Logs))
	s.log.DebugContext(ctx, "fetched detection logs",
		"scope", label,
		"count", len(res.Logs),
		"total", res.Total(),
	)
	return res, nil
}
