// Package admin assembles the admin dashboard overview.
package admin

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/modlog-backend/internal/domain"
	"github.com/heartmarshall/modlog-backend/internal/service/feedback"
	"github.com/heartmarshall/modlog-backend/internal/service/retrieval"
)

type settingLister interface {
	List(ctx context.Context) ([]domain.AppSetting, error)
}

type feedbackLister interface {
	ListPage(ctx context.Context, n, size int) (feedback.Page, error)
	CountByStatus(ctx context.Context) (map[domain.FeedbackStatus]int, error)
}

type logPager interface {
	PageAll(ctx context.Context, rng domain.ConfidenceRange, n, size int) (retrieval.Page, error)
}

type statsReader interface {
	Stats(ctx context.Context) (domain.LogStats, error)
}

// Overview is everything the admin page renders on first load.
type Overview struct {
	Settings       []domain.AppSetting
	Feedback       feedback.Page
	FeedbackCounts map[domain.FeedbackStatus]int
	Logs           retrieval.Page
	Stats          domain.LogStats
}

// Service builds admin views.
type Service struct {
	log      *slog.Logger
	settings settingLister
	feedback feedbackLister
	logs     logPager
	stats    statsReader
}

// NewService creates an admin service.
func NewService(
	logger *slog.Logger,
	settings settingLister,
	fb feedbackLister,
	logs logPager,
	stats statsReader,
) *Service {
	return &Service{
		log:      logger.With("service", "admin"),
		settings: settings,
		feedback: fb,
		logs:     logs,
		stats:    stats,
	}
}

// Overview loads settings, the first feedback page, feedback counts, the
// first page of all logs and log stats concurrently. The first error cancels
// the rest.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	var out Overview
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		settings, err := s.settings.List(gctx)
		if err != nil {
			return fmt.Errorf("settings: %w", err)
		}
		out.Settings = settings
		return nil
	})
	g.Go(func() error {
		page, err := s.feedback.ListPage(gctx, 1, 0)
		if err != nil {
			return fmt.Errorf("feedback: %w", err)
		}
		out.Feedback = page
		return nil
	})
	g.Go(func() error {
		counts, err := s.feedback.CountByStatus(gctx)
		if err != nil {
			return fmt.Errorf("feedback counts: %w", err)
		}
		out.FeedbackCounts = counts
		return nil
	})
	g.Go(func() error {
		page, err := s.logs.PageAll(gctx, domain.FullConfidenceRange(), 1, 0)
		if err != nil {
			return fmt.Errorf("logs: %w", err)
		}
		out.Logs = page
		return nil
	})
	g.Go(func() error {
		stats, err := s.stats.Stats(gctx)
		if err != nil {
			return fmt.Errorf("log stats: %w", err)
		}
		out.Stats = stats
		return nil
	})

	if err := g.Wait(); err != nil {
		s.log.ErrorContext(ctx, "admin overview", "error", err)
		return nil, err
	}
	return &out, nil
}
