// Package feedback handles user feedback submission and admin triage.
package feedback

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/modlog-backend/internal/domain"
)

type feedbackRepo interface {
	List(ctx context.Context, page domain.PageRequest) ([]domain.UserFeedback, error)
	CountByStatus(ctx context.Context) (map[domain.FeedbackStatus]int, error)
	Create(ctx context.Context, fb domain.UserFeedback) (*domain.UserFeedback, error)
	UpdateStatus(ctx context.Context, id int64, status domain.FeedbackStatus) (*domain.UserFeedback, error)
}

type recorder interface {
	ObserveFeedback(operation string, err error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type auditLogger interface {
	Log(ctx context.Context, rec domain.AuditRecord) error
}

// Service provides feedback operations.
type Service struct {
	log      *slog.Logger
	repo     feedbackRepo
	metrics  recorder
	pageSize int
	tx       txManager
	audit    auditLogger
}

// NewService creates a feedback service. metrics may be nil.
func NewService(logger *slog.Logger, repo feedbackRepo, metrics recorder, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Service{
		log:      logger.With("service", "feedback"),
		repo:     repo,
		metrics:  metrics,
		pageSize: pageSize,
	}
}

// WithAudit makes status updates append an audit record in the same
// transaction as the update.
func (s *Service) WithAudit(tx txManager, audit auditLogger) *Service {
	s.tx = tx
	s.audit = audit
	return s
}

// PageSize is the default accumulating page size.
func (s *Service) PageSize() int { return s.pageSize }

func (s *Service) observe(op string, err error) {
	if s.metrics != nil {
		s.metrics.ObserveFeedback(op, err)
	}
}
