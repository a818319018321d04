package feedback

import (
	"context"
	"fmt"
	"strings"

	"github.com/heartmarshall/modlog-backend/internal/domain"
	"github.com/heartmarshall/modlog-backend/pkg/ctxutil"
)

// Submit stores a new feedback entry. The status is always new and the
// category defaults to general. The author is the context identity, if any.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*domain.UserFeedback, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = domain.DefaultFeedbackCategory
	}

	fb := domain.UserFeedback{
		Category:     category,
		Content:      strings.TrimSpace(input.Content),
		ContactEmail: trimOrNil(input.ContactEmail),
		Status:       domain.FeedbackStatusNew,
		Metadata:     input.Metadata,
	}
	if id, ok := ctxutil.IdentityFromCtx(ctx); ok {
		fb.UserID = &id
	}

	created, err := s.repo.Create(ctx, fb)
	s.observe("submit", err)
	if err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}

	s.log.InfoContext(ctx, "feedback submitted",
		"feedback_id", created.ID,
		"category", created.Category,
		"anonymous", created.UserID == nil,
	)
	return created, nil
}
