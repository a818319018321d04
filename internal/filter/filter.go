// Package filter applies confidence-range bounds to detection logs, either in
// memory after a fetch or as a SQL predicate pushed to the store. Both forms
// select exactly the same records for the same range.
package filter

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/heartmarshall/modlog-backend/internal/domain"
)

// ConfidenceColumn is the column the predicate is built against.
const ConfidenceColumn = "confidence"

// Apply returns the logs whose confidence lies within rng, preserving order.
// The input slice is not modified.
func Apply(logs []domain.DetectionLog, rng domain.ConfidenceRange) []domain.DetectionLog {
	out := make([]domain.DetectionLog, 0, len(logs))
	if rng.IsEmpty() {
		return out
	}
	for _, l := range logs {
		if rng.Contains(l.Confidence) {
			out = append(out, l)
		}
	}
	return out
}

// Predicate returns the SQL form of rng. An inverted range compiles to a
// predicate no row can satisfy.
func Predicate(rng domain.ConfidenceRange) sq.Sqlizer {
	return sq.And{
		sq.GtOrEq{ConfidenceColumn: rng.Min},
		sq.LtOrEq{ConfidenceColumn: rng.Max},
	}
}
