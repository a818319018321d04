package detectionlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/modlog-backend/internal/domain"
	"github.com/heartmarshall/modlog-backend/internal/logquery"
)

const (
	countQuery = `SELECT count\(\*\) FROM detection_logs WHERE`
	pageQuery  = `SELECT id, created_at, text_content, confidence, threshold_used, model_version, is_harmful, user_id, metadata FROM detection_logs WHERE`
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func logRows(userID string, ids ...int64) *pgxmock.Rows {
	rows := pgxmock.NewRows(logquery.Columns)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	model := "koelectra-v1"
	for _, id := range ids {
		uid := userID
		rows.AddRow(id, base.Add(time.Duration(id)*time.Minute), "text", 0.5, 0.5,
			&model, true, &uid, map[string]any{"source": "test"})
	}
	return rows
}

func scoped(t *testing.T, id string) logquery.Scope {
	t.Helper()
	s, err := logquery.Scoped(id)
	require.NoError(t, err)
	return s
}

// ---------------------------------------------------------------------------
// PrivilegedGateway
// ---------------------------------------------------------------------------

func TestPrivilegedGateway_FetchWithCount(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	mock.ExpectQuery(countQuery+` \(user_id = \$1`).
		WithArgs("U1", 0.0, 1.0).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(25)))
	mock.ExpectQuery(pageQuery+`.*ORDER BY created_at DESC LIMIT 10 OFFSET 10`).
		WithArgs("U1", 0.0, 1.0).
		WillReturnRows(logRows("U1", 15, 14, 13))

	g := NewPrivilegedGateway(mock)
	d := logquery.Build(scoped(t, "U1"), domain.FullConfidenceRange(), domain.OffsetPage(2, 10))

	res, err := g.Fetch(context.Background(), d)
	require.NoError(t, err)
	require.NotNil(t, res.TotalCount)
	assert.Equal(t, 25, *res.TotalCount)
	require.Len(t, res.Logs, 3)
	assert.Equal(t, int64(15), res.Logs[0].ID)
	assert.True(t, res.Logs[0].OwnedBy("U1"))
	assert.Equal(t, "test", res.Logs[0].Metadata["source"])
	assert.Equal(t, KindPrivileged, g.Kind())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrivilegedGateway_FetchWithoutCount(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	mock.ExpectQuery(pageQuery+` \(\(confidence >= \$1 AND confidence <= \$2\)\) ORDER BY created_at DESC LIMIT 10`).
		WithArgs(0.2, 0.8).
		WillReturnRows(logRows("U2", 3))

	g := NewPrivilegedGateway(mock)
	d := logquery.Build(logquery.Unscoped(), domain.ConfidenceRange{Min: 0.2, Max: 0.8}, domain.ForwardPage(1, 10))

	res, err := g.Fetch(context.Background(), d)
	require.NoError(t, err)
	assert.Nil(t, res.TotalCount)
	assert.Len(t, res.Logs, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrivilegedGateway_ZeroScopeNoIO(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	g := NewPrivilegedGateway(mock)

	_, err := g.Fetch(context.Background(), logquery.Descriptor{Page: domain.OffsetPage(1, 10)})
	assert.ErrorIs(t, err, domain.ErrMissingIdentity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrivilegedGateway_StoreErrorSurfaces(t *testing.T) {
	t.Parallel()

	storeErr := &pgconn.PgError{Code: "42P01", Message: `relation "detection_logs" does not exist`}

	mock := newMock(t)
	mock.ExpectQuery(countQuery).
		WithArgs("U1", 0.0, 1.0).
		WillReturnError(storeErr)

	g := NewPrivilegedGateway(mock)
	d := logquery.Build(scoped(t, "U1"), domain.FullConfidenceRange(), domain.OffsetPage(1, 10))

	_, err := g.Fetch(context.Background(), d)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRetrievalFailed)

	var re *domain.RetrievalError
	require.True(t, errors.As(err, &re))
	assert.Contains(t, re.Detail(), `relation "detection_logs" does not exist`)
	require.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// DirectGateway
// ---------------------------------------------------------------------------

func TestDirectGateway_SetsIdentityInReadOnlyTx(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadOnly})
	mock.ExpectExec(`SELECT set_config\('app.user_id', \$1, true\)`).
		WithArgs("U1").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(countQuery).
		WithArgs("U1", 0.5, 1.0).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))
	mock.ExpectQuery(pageQuery).
		WithArgs("U1", 0.5, 1.0).
		WillReturnRows(logRows("U1", 2, 1))
	mock.ExpectCommit()

	g := NewDirectGateway(mock)
	d := logquery.Build(scoped(t, "U1"), domain.ConfidenceRange{Min: 0.5, Max: 1}, domain.OffsetPage(1, 10))

	res, err := g.Fetch(context.Background(), d)
	require.NoError(t, err)
	require.NotNil(t, res.TotalCount)
	assert.Equal(t, 2, *res.TotalCount)
	assert.Len(t, res.Logs, 2)
	assert.Equal(t, KindDirect, g.Kind())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDirectGateway_UnscopedSkipsIdentity(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadOnly})
	mock.ExpectQuery(pageQuery).
		WithArgs(0.0, 1.0).
		WillReturnRows(logRows("U1"))
	mock.ExpectCommit()

	g := NewDirectGateway(mock)
	res, err := g.Fetch(context.Background(),
		logquery.Build(logquery.Unscoped(), domain.FullConfidenceRange(), domain.ForwardPage(1, 10)))
	require.NoError(t, err)
	assert.Empty(t, res.Logs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDirectGateway_StoreErrorRollsBack(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadOnly})
	mock.ExpectExec(`SELECT set_config`).
		WithArgs("U1").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(pageQuery).
		WithArgs("U1", 0.0, 1.0).
		WillReturnError(errors.New("permission denied for table detection_logs"))
	mock.ExpectRollback()

	g := NewDirectGateway(mock)
	_, err := g.Fetch(context.Background(),
		logquery.Build(scoped(t, "U1"), domain.FullConfidenceRange(), domain.ForwardPage(1, 10)))

	assert.ErrorIs(t, err, domain.ErrRetrievalFailed)
	assert.Contains(t, err.Error(), "permission denied for table detection_logs")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDirectGateway_BeginFailureIsRetrievalError(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadOnly}).
		WillReturnError(errors.New("dial tcp: connection refused"))

	g := NewDirectGateway(mock)
	_, err := g.Fetch(context.Background(),
		logquery.Build(scoped(t, "U1"), domain.FullConfidenceRange(), domain.ForwardPage(1, 10)))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRetrievalFailed)
	var re *domain.RetrievalError
	require.True(t, errors.As(err, &re))
	assert.Contains(t, re.Detail(), "connection refused")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDirectGateway_CommitFailureIsRetrievalError(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadOnly})
	mock.ExpectQuery(pageQuery).
		WithArgs(0.0, 1.0).
		WillReturnRows(logRows("U1", 1))
	mock.ExpectCommit().WillReturnError(errors.New("conn closed"))

	g := NewDirectGateway(mock)
	_, err := g.Fetch(context.Background(),
		logquery.Build(logquery.Unscoped(), domain.FullConfidenceRange(), domain.ForwardPage(1, 10)))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRetrievalFailed)
	var re *domain.RetrievalError
	require.True(t, errors.As(err, &re))
	assert.Contains(t, re.Detail(), "conn closed")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDirectGateway_RollbackFailureKeepsStoreError(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadOnly})
	mock.ExpectExec(`SELECT set_config`).
		WithArgs("U1").
		WillReturnError(errors.New("conn closed"))
	mock.ExpectRollback().WillReturnError(errors.New("conn busy"))

	g := NewDirectGateway(mock)
	_, err := g.Fetch(context.Background(),
		logquery.Build(scoped(t, "U1"), domain.FullConfidenceRange(), domain.ForwardPage(1, 10)))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRetrievalFailed)
	var re *domain.RetrievalError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "conn closed", re.Detail())
	assert.Contains(t, err.Error(), "rollback failed: conn busy")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDirectGateway_ZeroScopeNoIO(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	g := NewDirectGateway(mock)

	_, err := g.Fetch(context.Background(), logquery.Descriptor{})
	assert.ErrorIs(t, err, domain.ErrMissingIdentity)
	require.NoError(t, mock.ExpectationsWereMet())
}
