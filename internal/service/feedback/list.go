package feedback

import (
	"context"
	"fmt"

	"github.com/heartmarshall/modlog-backend/internal/domain"
)

// Page is one page of an accumulating feedback list.
type Page struct {
	Items    []domain.UserFeedback
	Page     int
	PageSize int
	// HasMore is false once a page comes back shorter than PageSize.
	HasMore bool
}

// ListPage returns the n-th page of feedback, newest first. A size of zero
// uses the configured page size.
func (s *Service) ListPage(ctx context.Context, n, size int) (Page, error) {
	if n < 1 {
		n = 1
	}
	if size <= 0 {
		size = s.pageSize
	}
	if size > domain.MaxPageLimit {
		size = domain.MaxPageLimit
	}

	items, err := s.repo.List(ctx, domain.ForwardPage(n, size))
	s.observe("list", err)
	if err != nil {
		return Page{}, fmt.Errorf("list feedback: %w", err)
	}
	if items == nil {
		items = []domain.UserFeedback{}
	}

	return Page{
		Items:    items,
		Page:     n,
		PageSize: size,
		HasMore:  len(items) == size,
	}, nil
}

// CountByStatus returns the number of entries per status.
func (s *Service) CountByStatus(ctx context.Context) (map[domain.FeedbackStatus]int, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count feedback: %w", err)
	}
	return counts, nil
}
