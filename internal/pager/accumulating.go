package pager

import (
	"context"
	"sync"

	"github.com/heartmarshall/modlog-backend/internal/domain"
)

// ForwardFetchFunc loads the records described by page.
type ForwardFetchFunc[T any] func(ctx context.Context, page domain.PageRequest) ([]T, error)

// AccumulatingSnapshot is a copy of the pager state.
type AccumulatingSnapshot[T any] struct {
	State State
	// Pages is the number of pages appended so far.
	Pages int
	Items []T
	Err   error
}

// HasMore reports whether another page may exist.
func (s AccumulatingSnapshot[T]) HasMore() bool {
	return s.State != StateExhausted
}

// Accumulating appends successive pages to one list. A page shorter than the
// page size marks the list exhausted and stops further fetches.
type Accumulating[T any] struct {
	fetch ForwardFetchFunc[T]
	size  int

	// flight is held for the duration of a fetch, including one whose
	// result Reset will discard.
	flight sync.Mutex

	mu    sync.Mutex
	gen   uint64
	state State
	next  int
	items []T
	err   error

	wg sync.WaitGroup
}

// NewAccumulating creates an idle pager whose next fetch is page 1.
func NewAccumulating[T any](size int, fetch ForwardFetchFunc[T]) *Accumulating[T] {
	if size <= 0 {
		size = 10
	}
	return &Accumulating[T]{fetch: fetch, size: size, next: 1}
}

// LoadMore fetches the next page and waits for it. It is a no-op returning
// false while a fetch is in flight or once the list is exhausted. A failed
// pager retries the same page.
func (p *Accumulating[T]) LoadMore(ctx context.Context) (bool, error) {
	gen, page, ok := p.claim(true)
	if !ok {
		return false, nil
	}
	return true, p.run(ctx, gen, page)
}

// Trigger is the visibility signal on the last rendered item: it starts the
// next fetch in the background when one may be needed. Unlike LoadMore it
// does not retry after a failure.
func (p *Accumulating[T]) Trigger(ctx context.Context) bool {
	gen, page, ok := p.claim(false)
	if !ok {
		return false
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		_ = p.run(ctx, gen, page)
	}()
	return true
}

// Wait blocks until every fetch started by Trigger has finished.
func (p *Accumulating[T]) Wait() {
	p.wg.Wait()
}

// Reset clears the accumulator and restarts from page 1. A fetch still in
// flight completes but its result is discarded; the next fetch waits for it.
func (p *Accumulating[T]) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	p.state = StateIdle
	p.next = 1
	p.items = nil
	p.err = nil
}

// Snapshot returns a copy of the current state.
func (p *Accumulating[T]) Snapshot() AccumulatingSnapshot[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return AccumulatingSnapshot[T]{
		State: p.state,
		Pages: p.next - 1,
		Items: append([]T(nil), p.items...),
		Err:   p.err,
	}
}

func (p *Accumulating[T]) claim(retryFailed bool) (uint64, int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case StateLoading, StateExhausted:
		return 0, 0, false
	case StateFailed:
		if !retryFailed {
			return 0, 0, false
		}
	}
	p.state = StateLoading
	p.err = nil
	return p.gen, p.next, true
}

func (p *Accumulating[T]) run(ctx context.Context, gen uint64, page int) error {
	p.flight.Lock()
	defer p.flight.Unlock()

	p.mu.Lock()
	stale := gen != p.gen
	p.mu.Unlock()
	if stale {
		return nil
	}

	items, err := p.fetch(ctx, domain.ForwardPage(page, p.size))

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		return nil
	}
	if err != nil {
		p.state = StateFailed
		p.err = err
		return err
	}
	p.items = append(p.items, items...)
	p.next = page + 1
	if len(items) < p.size {
		p.state = StateExhausted
	} else {
		p.state = StateHasMore
	}
	return nil
}
