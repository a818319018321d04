package detectionlog

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/modlog-backend/internal/adapter/postgres"
	"github.com/heartmarshall/modlog-backend/internal/domain"
	"github.com/heartmarshall/modlog-backend/internal/logquery"
)

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides the non-paged detection log operations: seeding, aggregate
// counts and batched lookups.
type Repo struct {
	db postgres.Querier
}

// NewRepo creates a new detection log repository.
func NewRepo(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// CountHarmfulByUserIDs returns the number of harmful logs per identity.
// Identities without harmful logs are present with a zero count.
func (r *Repo) CountHarmfulByUserIDs(ctx context.Context, userIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	for _, id := range userIDs {
		out[id] = 0
	}

	query, args, err := builder.
		Select(logquery.UserIDColumn, "count(*) AS count").
		From(logquery.Table).
		Where(sq.Eq{logquery.UserIDColumn: userIDs, "is_harmful": true}).
		GroupBy(logquery.UserIDColumn).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build harmful count query: %w", err)
	}

	var rows []struct {
		UserID string `db:"user_id"`
		Count  int64  `db:"count"`
	}
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, postgres.MapError(err, "detection_logs", nil)
	}
	for _, row := range rows {
		out[row.UserID] = int(row.Count)
	}
	return out, nil
}

const statsSQL = `SELECT count(*),
       count(*) FILTER (WHERE is_harmful),
       count(DISTINCT user_id)
  FROM detection_logs`

// Stats returns store-wide totals.
func (r *Repo) Stats(ctx context.Context) (domain.LogStats, error) {
	var total, harmful, distinct int64
	err := postgres.QuerierFromCtx(ctx, r.db).
		QueryRow(ctx, statsSQL).
		Scan(&total, &harmful, &distinct)
	if err != nil {
		return domain.LogStats{}, postgres.MapError(err, "detection_logs", nil)
	}
	return domain.LogStats{Total: int(total), Harmful: int(harmful), DistinctIDs: int(distinct)}, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

const insertLogSQL = `INSERT INTO detection_logs
    (text_content, confidence, threshold_used, model_version, is_harmful, user_id, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at`

// InsertMany stores logs in one batch and fills in their ID and CreatedAt.
// Logs are produced by the classifier; this exists for seeding and tests.
func (r *Repo) InsertMany(ctx context.Context, logs []domain.DetectionLog) error {
	if len(logs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, l := range logs {
		md := l.Metadata
		if md == nil {
			md = map[string]any{}
		}
		batch.Queue(insertLogSQL,
			l.TextContent, l.Confidence, l.ThresholdUsed, l.ModelVersion, l.IsHarmful, l.UserID, md)
	}

	br := postgres.QuerierFromCtx(ctx, r.db).SendBatch(ctx, batch)
	defer br.Close()

	for i := range logs {
		if err := br.QueryRow().Scan(&logs[i].ID, &logs[i].CreatedAt); err != nil {
			return postgres.MapError(err, "detection_log", i)
		}
	}
	return br.Close()
}
