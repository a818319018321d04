package domain

import "time"

// AppSetting is a pre-seeded key/value pair edited by administrators.
type AppSetting struct {
	Key         string
	Value       string
	Description *string
	UpdatedAt   time.Time
}
