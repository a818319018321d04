package domain

import "time"

// AuditEntity names the kind of record an admin action touched.
type AuditEntity string

const (
	AuditEntityFeedback AuditEntity = "feedback"
	AuditEntitySetting  AuditEntity = "setting"
)

// AuditAction names an admin action.
type AuditAction string

const (
	AuditActionStatusChange AuditAction = "status_change"
	AuditActionUpdate       AuditAction = "update"
)

// AuditRecord is one append-only entry in the admin audit trail.
type AuditRecord struct {
	ID         int64
	CreatedAt  time.Time
	Actor      string
	EntityType AuditEntity
	EntityID   string
	Action     AuditAction
	Changes    map[string]any
}
