package retrieval

import (
	"context"
	"strings"

	"github.com/heartmarshall/modlog-backend/internal/domain"
	"github.com/heartmarshall/modlog-backend/internal/pager"
)

// Page is one offset-paged view of detection logs.
type Page struct {
	Logs       []domain.DetectionLog
	Page       int
	PageSize   int
	TotalCount int
	TotalPages int
	Range      domain.ConfidenceRange
}

// emptyPage is what an anonymous dashboard sees.
func emptyPage(size int, rng domain.ConfidenceRange) Page {
	return Page{Logs: []domain.DetectionLog{}, Page: 1, PageSize: size, TotalPages: 1, Range: rng}
}

// FetchDashboard returns page n of the caller's logs. An anonymous caller
// gets an empty first page, not an error. n is clamped to the available
// pages.
func (s *Service) FetchDashboard(ctx context.Context, identity string, rng domain.ConfidenceRange, n, size int) (Page, error) {
	size = s.normalizeSize(size)
	if strings.TrimSpace(identity) == "" {
		return emptyPage(size, rng), nil
	}
	return s.page(ctx, rng, n, size, func(ctx context.Context, rng domain.ConfidenceRange, page domain.PageRequest) ([]domain.DetectionLog, int, error) {
		res, err := s.FetchScoped(ctx, identity, rng, page)
		return res.Logs, res.Total(), err
	})
}

// PageAll returns page n of every owner's logs for the admin table.
func (s *Service) PageAll(ctx context.Context, rng domain.ConfidenceRange, n, size int) (Page, error) {
	size = s.normalizeSize(size)
	return s.page(ctx, rng, n, size, func(ctx context.Context, rng domain.ConfidenceRange, page domain.PageRequest) ([]domain.DetectionLog, int, error) {
		res, err := s.FetchAll(ctx, rng, page)
		return res.Logs, res.Total(), err
	})
}

func (s *Service) page(ctx context.Context, rng domain.ConfidenceRange, n, size int, fetch pager.OffsetFetchFunc) (Page, error) {
	p := pager.NewOffset(size, fetch)
	if err := p.Restore(ctx, rng, n); err != nil {
		return Page{}, err
	}
	snap := p.Snapshot()
	logs := snap.Logs
	if logs == nil {
		logs = []domain.DetectionLog{}
	}
	return Page{
		Logs:       logs,
		Page:       snap.Page,
		PageSize:   snap.PageSize,
		TotalCount: snap.TotalCount,
		TotalPages: snap.TotalPages,
		Range:      snap.Range,
	}, nil
}

func (s *Service) normalizeSize(size int) int {
	if size <= 0 {
		return s.PageSize()
	}
	if size > domain.MaxPageLimit {
		return domain.MaxPageLimit
	}
	return size
}
