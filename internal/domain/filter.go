package domain

import "math"

const (
	MinConfidence = 0.0
	MaxConfidence = 1.0

	// MaxPageLimit caps any single fetch.
	MaxPageLimit = 200
)

// ConfidenceRange is an inclusive [Min, Max] bound on DetectionLog.Confidence.
// Min > Max is accepted and matches nothing.
type ConfidenceRange struct {
	Min float64
	Max float64
}

// FullConfidenceRange returns [0, 1].
func FullConfidenceRange() ConfidenceRange {
	return ConfidenceRange{Min: MinConfidence, Max: MaxConfidence}
}

// NewConfidenceRange builds a range, defaulting absent bounds to 0 and 1.
func NewConfidenceRange(min, max *float64) ConfidenceRange {
	r := FullConfidenceRange()
	if min != nil && !math.IsNaN(*min) {
		r.Min = *min
	}
	if max != nil && !math.IsNaN(*max) {
		r.Max = *max
	}
	return r
}

// Contains reports whether c lies within the range, bounds included.
func (r ConfidenceRange) Contains(c float64) bool {
	return c >= r.Min && c <= r.Max
}

// IsEmpty reports whether no confidence value can satisfy the range.
func (r ConfidenceRange) IsEmpty() bool {
	return r.Min > r.Max
}

// IsFull reports whether the range admits every valid confidence.
func (r ConfidenceRange) IsFull() bool {
	return r.Min <= MinConfidence && r.Max >= MaxConfidence
}

// PageRequest bounds a fetch. Offset is zero for forward accumulation;
// WithCount asks the store for an exact total.
type PageRequest struct {
	Offset    int
	Limit     int
	WithCount bool
}

// OffsetPage returns the request for 1-based page n of the given size, with a total count.
func OffsetPage(n, size int) PageRequest {
	if n < 1 {
		n = 1
	}
	return PageRequest{Offset: (n - 1) * size, Limit: size, WithCount: true}
}

// ForwardPage returns a request for the n-th page of an accumulating list, without a count.
func ForwardPage(n, size int) PageRequest {
	if n < 1 {
		n = 1
	}
	return PageRequest{Offset: (n - 1) * size, Limit: size}
}

// Normalize applies defaults: limit falls back to def and is capped at MaxPageLimit,
// offset is never negative.
func (p PageRequest) Normalize(def int) PageRequest {
	if p.Limit <= 0 {
		p.Limit = def
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// TotalPages returns max(1, ceil(total/size)).
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}
