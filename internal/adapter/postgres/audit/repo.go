// Package audit implements the admin audit trail using PostgreSQL.
// It provides append-only operations for audit records.
package audit

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/heartmarshall/modlog-backend/internal/adapter/postgres"
	"github.com/heartmarshall/modlog-backend/internal/domain"
)

const (
	table        = "admin_audit"
	defaultLimit = 50
)

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type auditRow struct {
	ID         int64          `db:"id"`
	CreatedAt  time.Time      `db:"created_at"`
	Actor      string         `db:"actor"`
	EntityType string         `db:"entity_type"`
	EntityID   string         `db:"entity_id"`
	Action     string         `db:"action"`
	Changes    map[string]any `db:"changes"`
}

func (r auditRow) toDomain() domain.AuditRecord {
	changes := r.Changes
	if changes == nil {
		changes = map[string]any{}
	}
	return domain.AuditRecord{
		ID:         r.ID,
		CreatedAt:  r.CreatedAt,
		Actor:      r.Actor,
		EntityType: domain.AuditEntity(r.EntityType),
		EntityID:   r.EntityID,
		Action:     domain.AuditAction(r.Action),
		Changes:    changes,
	}
}

// Repo provides audit persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new audit repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Log appends one record. It joins the transaction in ctx, if any, so the
// record commits or rolls back with the change it describes.
func (r *Repo) Log(ctx context.Context, rec domain.AuditRecord) error {
	changes := rec.Changes
	if changes == nil {
		changes = map[string]any{}
	}

	query, args, err := builder.Insert(table).
		Columns("actor", "entity_type", "entity_id", "action", "changes").
		Values(rec.Actor, string(rec.EntityType), rec.EntityID, string(rec.Action), changes).
		ToSql()
	if err != nil {
		return fmt.Errorf("build audit insert: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, table, nil)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// List returns the most recent records, newest first. A non-positive limit
// uses the default.
func (r *Repo) List(ctx context.Context, limit int) ([]domain.AuditRecord, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > domain.MaxPageLimit {
		limit = domain.MaxPageLimit
	}

	query, args, err := builder.
		Select("id", "created_at", "actor", "entity_type", "entity_id", "action", "changes").
		From(table).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build audit list query: %w", err)
	}

	var rows []auditRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, postgres.MapError(err, table, nil)
	}

	out := make([]domain.AuditRecord, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}
