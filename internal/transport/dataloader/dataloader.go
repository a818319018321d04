// Package dataloader provides per-request loaders that batch lookups made
// while rendering a list into single SQL calls. Loaders call repositories
// directly, bypassing the service layer, and are mounted only on admin
// routes.
package dataloader

import (
	"context"
	"net/http"
	"time"

	"github.com/graph-gophers/dataloader/v7"
)

const (
	maxBatch = 100
	wait     = 2 * time.Millisecond
)

// ---------------------------------------------------------------------------
// Repository interfaces (consumer-defined)
// ---------------------------------------------------------------------------

type detectionLogRepo interface {
	CountHarmfulByUserIDs(ctx context.Context, userIDs []string) (map[string]int, error)
}

// Repos holds all repositories required by the loaders.
type Repos struct {
	DetectionLog detectionLogRepo
}

// ---------------------------------------------------------------------------
// Loaders
// ---------------------------------------------------------------------------

// Loaders contains the per-request loaders. Created per-request via NewLoaders.
type Loaders struct {
	HarmfulCountByUserID *dataloader.Loader[string, int]
}

// NewLoaders creates a new set of loaders backed by the given repositories.
// Must be called per-request (loaders cache results within a single request).
func NewLoaders(repos *Repos) *Loaders {
	return &Loaders{
		HarmfulCountByUserID: newLoader(newHarmfulCountBatchFn(repos.DetectionLog)),
	}
}

func newLoader[K comparable, V any](batchFn dataloader.BatchFunc[K, V]) *dataloader.Loader[K, V] {
	return dataloader.NewBatchedLoader(
		batchFn,
		dataloader.WithWait[K, V](wait),
		dataloader.WithBatchCapacity[K, V](maxBatch),
	)
}

// ---------------------------------------------------------------------------
// Harmful log count by user id
// ---------------------------------------------------------------------------

func newHarmfulCountBatchFn(repo detectionLogRepo) dataloader.BatchFunc[string, int] {
	return func(ctx context.Context, keys []string) []*dataloader.Result[int] {
		counts, err := repo.CountHarmfulByUserIDs(ctx, keys)
		if err != nil {
			return errorResults[int](len(keys), err)
		}
		results := make([]*dataloader.Result[int], len(keys))
		for i, key := range keys {
			results[i] = &dataloader.Result[int]{Data: counts[key]}
		}
		return results
	}
}

// HarmfulCounts loads the harmful log count for each distinct id in one
// batch. Keys are loaded concurrently so the loader sees them together.
func (l *Loaders) HarmfulCounts(ctx context.Context, userIDs []string) (map[string]int, error) {
	keys := dedupe(userIDs)
	values, errs := l.HarmfulCountByUserID.LoadMany(ctx, keys)()
	out := make(map[string]int, len(keys))
	for i, id := range keys {
		if len(errs) > i && errs[i] != nil {
			return nil, errs[i]
		}
		out[id] = values[i]
	}
	return out, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// errorResults returns a slice of error results for all keys.
func errorResults[V any](n int, err error) []*dataloader.Result[V] {
	results := make([]*dataloader.Result[V], n)
	for i := range results {
		results[i] = &dataloader.Result[V]{Error: err}
	}
	return results
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type contextKey string

const loadersKey contextKey = "dataloaders"

// WithLoaders stores Loaders in the context.
func WithLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, l)
}

// FromContext retrieves Loaders from the context, or nil when the
// middleware is not mounted.
func FromContext(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}

// Middleware instantiates per-request loaders and stores them in the
// request context.
func Middleware(repos *Repos) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLoaders(r.Context(), NewLoaders(repos))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
