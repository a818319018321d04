package pager

import (
	"context"
	"sync"

	"github.com/heartmarshall/modlog-backend/internal/domain"
)

// OffsetFetchFunc loads one page of logs for rng and reports the exact total
// number of logs matching rng.
type OffsetFetchFunc func(ctx context.Context, rng domain.ConfidenceRange, page domain.PageRequest) ([]domain.DetectionLog, int, error)

// OffsetSnapshot is a copy of the pager state.
type OffsetSnapshot struct {
	State      State
	Page       int
	PageSize   int
	TotalPages int
	TotalCount int
	Range      domain.ConfidenceRange
	Logs       []domain.DetectionLog
	Err        error
}

// Offset pages through logs by explicit page number. totalPages is derived
// from the last reported total and is never below 1.
type Offset struct {
	fetch OffsetFetchFunc
	size  int

	flight sync.Mutex

	mu         sync.Mutex
	gen        uint64
	state      State
	page       int
	totalPages int
	totalCount int
	known      bool
	rng        domain.ConfidenceRange
	logs       []domain.DetectionLog
	err        error
}

// NewOffset creates an idle offset pager on page 1 with the full confidence range.
func NewOffset(size int, fetch OffsetFetchFunc) *Offset {
	if size <= 0 {
		size = 10
	}
	return &Offset{
		fetch:      fetch,
		size:       size,
		page:       1,
		totalPages: 1,
		rng:        domain.FullConfidenceRange(),
	}
}

// SetPage loads page n. n is clamped to [1, totalPages] once a total is known.
func (p *Offset) SetPage(ctx context.Context, n int) error {
	return p.load(ctx, func() { p.page = p.clamp(n) })
}

// SetRange changes the confidence bounds and returns to page 1.
func (p *Offset) SetRange(ctx context.Context, rng domain.ConfidenceRange) error {
	return p.load(ctx, func() {
		p.rng = rng
		p.page = 1
		p.known = false
		p.totalPages = 1
	})
}

// Restore loads page n under rng in one step, as when a view is rebuilt from
// request parameters. n is clamped to the last page after the total is known.
func (p *Offset) Restore(ctx context.Context, rng domain.ConfidenceRange, n int) error {
	return p.load(ctx, func() {
		p.rng = rng
		p.known = false
		p.totalPages = 1
		p.page = p.clamp(n)
	})
}

// Refresh reloads the current page.
func (p *Offset) Refresh(ctx context.Context) error {
	return p.load(ctx, func() {})
}

// Next loads the following page, staying on the last one.
func (p *Offset) Next(ctx context.Context) error {
	p.mu.Lock()
	n := p.page + 1
	p.mu.Unlock()
	return p.SetPage(ctx, n)
}

// Prev loads the preceding page, staying on the first one.
func (p *Offset) Prev(ctx context.Context) error {
	p.mu.Lock()
	n := p.page - 1
	p.mu.Unlock()
	return p.SetPage(ctx, n)
}

// Snapshot returns a copy of the current state.
func (p *Offset) Snapshot() OffsetSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return OffsetSnapshot{
		State:      p.state,
		Page:       p.page,
		PageSize:   p.size,
		TotalPages: p.totalPages,
		TotalCount: p.totalCount,
		Range:      p.rng,
		Logs:       append([]domain.DetectionLog(nil), p.logs...),
		Err:        p.err,
	}
}

func (p *Offset) clamp(n int) int {
	if n < 1 {
		n = 1
	}
	if p.known && n > p.totalPages {
		n = p.totalPages
	}
	return n
}

// load applies mutate under the state lock, then fetches the resulting page.
// Fetches are serialised; a result is dropped if a newer request was issued
// while it was in flight.
func (p *Offset) load(ctx context.Context, mutate func()) error {
	p.mu.Lock()
	mutate()
	p.gen++
	p.state = StateLoading
	p.err = nil
	p.mu.Unlock()

	p.flight.Lock()
	defer p.flight.Unlock()

	// A total that shrank under us can leave the page past the end; retry once
	// on the new last page. If it shrinks again the page is only clamped.
	for attempt := 0; attempt < 2; attempt++ {
		p.mu.Lock()
		gen, page, rng := p.gen, p.page, p.rng
		p.mu.Unlock()

		logs, total, err := p.fetch(ctx, rng, domain.OffsetPage(page, p.size))

		p.mu.Lock()
		if gen != p.gen {
			p.mu.Unlock()
			return nil
		}
		if err != nil {
			p.state = StateFailed
			p.err = err
			p.mu.Unlock()
			return err
		}
		p.totalCount = total
		p.totalPages = domain.TotalPages(total, p.size)
		p.known = true
		if page > p.totalPages {
			p.page = p.totalPages
			if attempt == 0 {
				p.mu.Unlock()
				continue
			}
		}
		p.logs = logs
		p.state = StateLoaded
		p.mu.Unlock()
		return nil
	}
	return nil
}
