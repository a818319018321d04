package domain

import "time"

// DetectionLog is one harmful-content classification decision.
// Logs are written by the external classifier and never mutated here.
type DetectionLog struct {
	ID            int64
	CreatedAt     time.Time
	TextContent   string
	Confidence    float64
	ThresholdUsed float64
	ModelVersion  *string
	IsHarmful     bool
	UserID        *string
	Metadata      map[string]any
}

// OwnedBy reports whether the log belongs to the given identity.
func (l *DetectionLog) OwnedBy(identity string) bool {
	return l.UserID != nil && *l.UserID == identity
}

// UserIDCount pairs an identity with a number of logs.
type UserIDCount struct {
	UserID string
	Count  int
}

// LogStats summarises the log store.
type LogStats struct {
	Total       int
	Harmful     int
	DistinctIDs int
}
