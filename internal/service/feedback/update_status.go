package feedback

import (
	"context"
	"fmt"
	"strconv"

	"github.com/heartmarshall/modlog-backend/internal/domain"
	"github.com/heartmarshall/modlog-backend/pkg/ctxutil"
)

// UpdateStatus moves an entry to status. Only the status column changes.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status domain.FeedbackStatus) (*domain.UserFeedback, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("id", "must be positive")
	}
	if !status.IsValid() {
		return nil, domain.NewValidationError("status", "must be one of new, read, resolved")
	}

	var updated *domain.UserFeedback
	err := s.inTx(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.repo.UpdateStatus(ctx, id, status)
		if err != nil {
			return err
		}
		return s.record(ctx, id, status)
	})
	s.observe("update_status", err)
	if err != nil {
		return nil, fmt.Errorf("update feedback status: %w", err)
	}

	s.log.InfoContext(ctx, "feedback status updated",
		"feedback_id", id,
		"status", status,
	)
	return updated, nil
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.RunInTx(ctx, fn)
}

func (s *Service) record(ctx context.Context, id int64, status domain.FeedbackStatus) error {
	if s.audit == nil {
		return nil
	}
	err := s.audit.Log(ctx, domain.AuditRecord{
		Actor:      ctxutil.AdminFromCtx(ctx),
		EntityType: domain.AuditEntityFeedback,
		EntityID:   strconv.FormatInt(id, 10),
		Action:     domain.AuditActionStatusChange,
		Changes:    map[string]any{"status": status.String()},
	})
	if err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	return nil
}
