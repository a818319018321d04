package retrieval

import (
	"context"
	"sort"

	"github.com/heartmarshall/modlog-backend/internal/domain"
	"github.com/heartmarshall/modlog-backend/internal/pager"
)

// Summary describes every log matching a range.
type Summary struct {
	Total   int
	Harmful int
	// UserIDs holds each distinct owner, sorted. Unowned logs are counted in
	// Unowned instead.
	UserIDs []string
	Unowned int
	Pages   int
}

// ScanAll walks every owner's logs page by page with an accumulating pager
// and summarises them. It stops at the first failed page.
func (s *Service) ScanAll(ctx context.Context, rng domain.ConfidenceRange, size int) (Summary, error) {
	size = s.normalizeSize(size)
	p := pager.NewAccumulating(size, func(ctx context.Context, page domain.PageRequest) ([]domain.DetectionLog, error) {
		res, err := s.FetchAll(ctx, rng, page)
		return res.Logs, err
	})

	for {
		snap := p.Snapshot()
		if !snap.HasMore() {
			break
		}
		if _, err := p.LoadMore(ctx); err != nil {
			return Summary{}, err
		}
	}

	snap := p.Snapshot()
	sum := Summary{Total: len(snap.Items), Pages: snap.Pages}
	seen := make(map[string]struct{})
	for _, l := range snap.Items {
		if l.IsHarmful {
			sum.Harmful++
		}
		if l.UserID == nil {
			sum.Unowned++
			continue
		}
		if _, ok := seen[*l.UserID]; !ok {
			seen[*l.UserID] = struct{}{}
			sum.UserIDs = append(sum.UserIDs, *l.UserID)
		}
	}
	sort.Strings(sum.UserIDs)
	return sum, nil
}
