package domain

import "time"

// FeedbackStatus is the triage state of a feedback entry.
type FeedbackStatus string

const (
	FeedbackStatusNew      FeedbackStatus = "new"
	FeedbackStatusRead     FeedbackStatus = "read"
	FeedbackStatusResolved FeedbackStatus = "resolved"
)

func (s FeedbackStatus) String() string { return string(s) }

func (s FeedbackStatus) IsValid() bool {
	switch s {
	case FeedbackStatusNew, FeedbackStatusRead, FeedbackStatusResolved:
		return true
	}
	return false
}

// DefaultFeedbackCategory is used when a submission omits the category.
const DefaultFeedbackCategory = "general"

// UserFeedback is free-text feedback left by a dashboard user.
// Only Status changes after creation.
type UserFeedback struct {
	ID           int64
	CreatedAt    time.Time
	UserID       *string
	Category     string
	Content      string
	ContactEmail *string
	Status       FeedbackStatus
	Metadata     map[string]any
}
