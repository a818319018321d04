// Package feedback implements UserFeedback persistence using PostgreSQL.
package feedback

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/heartmarshall/modlog-backend/internal/adapter/postgres"
	"github.com/heartmarshall/modlog-backend/internal/domain"
)

const table = "user_feedback"

var (
	builder   = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	columns   = []string{"id", "created_at", "user_id", "category", "content", "contact_email", "status", "metadata"}
	returning = "RETURNING " + strings.Join(columns, ", ")
)

type feedbackRow struct {
	ID           int64          `db:"id"`
	CreatedAt    time.Time      `db:"created_at"`
	UserID       *string        `db:"user_id"`
	Category     string         `db:"category"`
	Content      string         `db:"content"`
	ContactEmail *string        `db:"contact_email"`
	Status       string         `db:"status"`
	Metadata     map[string]any `db:"metadata"`
}

func (r feedbackRow) toDomain() domain.UserFeedback {
	md := r.Metadata
	if md == nil {
		md = map[string]any{}
	}
	return domain.UserFeedback{
		ID:           r.ID,
		CreatedAt:    r.CreatedAt,
		UserID:       r.UserID,
		Category:     r.Category,
		Content:      r.Content,
		ContactEmail: r.ContactEmail,
		Status:       domain.FeedbackStatus(r.Status),
		Metadata:     md,
	}
}

// Repo provides feedback persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new feedback repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// List returns feedback newest first, bounded by page. Offset beyond the end
// yields an empty slice.
func (r *Repo) List(ctx context.Context, page domain.PageRequest) ([]domain.UserFeedback, error) {
	q := builder.Select(columns...).From(table).OrderBy("created_at DESC")
	if page.Limit > 0 {
		q = q.Limit(uint64(page.Limit))
	}
	if page.Offset > 0 {
		q = q.Offset(uint64(page.Offset))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build feedback list query: %w", err)
	}

	var rows []feedbackRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, postgres.MapError(err, table, nil)
	}

	items := make([]domain.UserFeedback, len(rows))
	for i, row := range rows {
		items[i] = row.toDomain()
	}
	return items, nil
}

// CountByStatus returns the number of feedback entries per status.
func (r *Repo) CountByStatus(ctx context.Context) (map[domain.FeedbackStatus]int, error) {
	query, args, err := builder.Select("status", "count(*) AS count").From(table).GroupBy("status").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build feedback count query: %w", err)
	}

	var rows []struct {
		Status string `db:"status"`
		Count  int64  `db:"count"`
	}
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, postgres.MapError(err, table, nil)
	}

	out := map[domain.FeedbackStatus]int{
		domain.FeedbackStatusNew:      0,
		domain.FeedbackStatusRead:     0,
		domain.FeedbackStatusResolved: 0,
	}
	for _, row := range rows {
		out[domain.FeedbackStatus(row.Status)] = int(row.Count)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts fb and returns the persisted row.
func (r *Repo) Create(ctx context.Context, fb domain.UserFeedback) (*domain.UserFeedback, error) {
	md := fb.Metadata
	if md == nil {
		md = map[string]any{}
	}
	query, args, err := builder.Insert(table).
		Columns("user_id", "category", "content", "contact_email", "status", "metadata").
		Values(fb.UserID, fb.Category, fb.Content, fb.ContactEmail, string(fb.Status), md).
		Suffix(returning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build feedback insert: %w", err)
	}

	var row feedbackRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, query, args...); err != nil {
		return nil, postgres.MapError(err, table, nil)
	}
	out := row.toDomain()
	return &out, nil
}

// UpdateStatus sets the status of one entry and returns the updated row.
// No other column is touched. Returns domain.ErrNotFound for an unknown id.
func (r *Repo) UpdateStatus(ctx context.Context, id int64, status domain.FeedbackStatus) (*domain.UserFeedback, error) {
	query, args, err := builder.Update(table).
		Set("status", string(status)).
		Where(sq.Eq{"id": id}).
		Suffix(returning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build feedback status update: %w", err)
	}

	var row feedbackRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("%s %d: %w", table, id, domain.ErrNotFound)
		}
		return nil, postgres.MapError(err, table, id)
	}
	out := row.toDomain()
	return &out, nil
}
