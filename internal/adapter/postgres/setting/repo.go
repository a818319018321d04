// Package setting implements AppSetting persistence using PostgreSQL.
// Settings are pre-seeded by migrations; this package never inserts or deletes.
package setting

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/heartmarshall/modlog-backend/internal/adapter/postgres"
	"github.com/heartmarshall/modlog-backend/internal/domain"
)

const table = "app_settings"

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type settingRow struct {
	Key         string    `db:"key"`
	Value       string    `db:"value"`
	Description *string   `db:"description"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r settingRow) toDomain() domain.AppSetting {
	return domain.AppSetting{
		Key:         r.Key,
		Value:       r.Value,
		Description: r.Description,
		UpdatedAt:   r.UpdatedAt,
	}
}

// Repo provides settings persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new settings repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// List returns every setting ordered by key.
func (r *Repo) List(ctx context.Context) ([]domain.AppSetting, error) {
	query, args, err := builder.
		Select("key", "value", "description", "updated_at").
		From(table).
		OrderBy("key").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build settings query: %w", err)
	}

	var rows []settingRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, postgres.MapError(err, table, nil)
	}

	out := make([]domain.AppSetting, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

// UpdateValue sets value and updated_at for key and returns the updated row.
// Returns domain.ErrNotFound for an unknown key.
func (r *Repo) UpdateValue(ctx context.Context, key, value string) (*domain.AppSetting, error) {
	query, args, err := builder.Update(table).
		Set("value", value).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"key": key}).
		Suffix("RETURNING key, value, description, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build settings update: %w", err)
	}

	var row settingRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("%s %s: %w", table, key, domain.ErrNotFound)
		}
		return nil, postgres.MapError(err, table, key)
	}
	out := row.toDomain()
	return &out, nil
}
