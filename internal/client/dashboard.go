package client

import (
	"context"
	"sync"

	"github.com/heartmarshall/modlog-backend/internal/domain"
	"github.com/heartmarshall/modlog-backend/internal/filter"
	"github.com/heartmarshall/modlog-backend/internal/pager"
)

type logFetcher interface {
	FetchLogs(ctx context.Context, identity string, q LogsQuery) (*LogsResult, error)
}

// DashboardView is the public dashboard built on the server endpoint. It
// downloads the caller's logs once, filters them by confidence in memory and
// pages the filtered set with an offset pager. An anonymous view shows no
// logs and never contacts the server.
type DashboardView struct {
	src       logFetcher
	identity  string
	fetchSize int
	pager     *pager.Offset

	mu     sync.Mutex
	all    []domain.DetectionLog
	loaded bool
}

// NewDashboardView creates a view showing pageSize logs per page.
func NewDashboardView(src logFetcher, identity string, pageSize int) *DashboardView {
	v := &DashboardView{
		src:       src,
		identity:  identity,
		fetchSize: domain.MaxPageLimit,
	}
	v.pager = pager.NewOffset(pageSize, v.fetchPage)
	return v
}

// SetPage shows page n, clamped to the pages that exist.
func (v *DashboardView) SetPage(ctx context.Context, n int) error { return v.pager.SetPage(ctx, n) }

// SetRange changes the confidence bounds and returns to page 1.
func (v *DashboardView) SetRange(ctx context.Context, rng domain.ConfidenceRange) error {
	return v.pager.SetRange(ctx, rng)
}

// Next shows the following page.
func (v *DashboardView) Next(ctx context.Context) error { return v.pager.Next(ctx) }

// Prev shows the preceding page.
func (v *DashboardView) Prev(ctx context.Context) error { return v.pager.Prev(ctx) }

// Refresh drops the downloaded logs and reloads the current page.
func (v *DashboardView) Refresh(ctx context.Context) error {
	v.mu.Lock()
	v.all, v.loaded = nil, false
	v.mu.Unlock()
	return v.pager.Refresh(ctx)
}

// Snapshot returns the current page state.
func (v *DashboardView) Snapshot() pager.OffsetSnapshot { return v.pager.Snapshot() }

func (v *DashboardView) fetchPage(ctx context.Context, rng domain.ConfidenceRange, page domain.PageRequest) ([]domain.DetectionLog, int, error) {
	if v.identity == "" {
		return nil, 0, nil
	}
	all, err := v.download(ctx)
	if err != nil {
		return nil, 0, err
	}

	matched := filter.Apply(all, rng)
	lo := min(page.Offset, len(matched))
	hi := min(lo+page.Limit, len(matched))
	return matched[lo:hi], len(matched), nil
}

// download walks the endpoint page by page until a short page.
func (v *DashboardView) download(ctx context.Context) ([]domain.DetectionLog, error) {
	v.mu.Lock()
	if v.loaded {
		all := v.all
		v.mu.Unlock()
		return all, nil
	}
	v.mu.Unlock()

	acc := pager.NewAccumulating(v.fetchSize, func(ctx context.Context, pr domain.PageRequest) ([]domain.DetectionLog, error) {
		res, err := v.src.FetchLogs(ctx, v.identity, LogsQuery{
			Page:     pr.Offset/pr.Limit + 1,
			PageSize: pr.Limit,
		})
		if err != nil {
			return nil, err
		}
		return res.Logs, nil
	})
	for {
		if _, err := acc.LoadMore(ctx); err != nil {
			return nil, err
		}
		snap := acc.Snapshot()
		if !snap.HasMore() {
			v.mu.Lock()
			v.all, v.loaded = snap.Items, true
			v.mu.Unlock()
			return snap.Items, nil
		}
	}
}
