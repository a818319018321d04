// Package detectionlog reads and writes detection logs in PostgreSQL.
//
// Two gateways execute the same logquery.Descriptor. PrivilegedGateway runs on
// the service credential, which bypasses row-level security, so the
// descriptor's scope is the only thing limiting what it returns.
// DirectGateway runs on the restricted credential inside a read-only
// transaction and leaves row visibility to the store's policies.
package detectionlog

import (
	"context"
	"errors"

	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/heartmarshall/modlog-backend/internal/adapter/postgres"
	"github.com/heartmarshall/modlog-backend/internal/domain"
	"github.com/heartmarshall/modlog-backend/internal/logquery"
)

const (
	KindPrivileged = "privileged"
	KindDirect     = "direct"
)

// setIdentitySQL exposes the caller identity to row-level policies for the
// rest of the current transaction.
const setIdentitySQL = `SELECT set_config('app.user_id', $1, true)`

// ---------------------------------------------------------------------------
// Privileged path
// ---------------------------------------------------------------------------

// PrivilegedGateway fetches logs with the elevated service credential.
type PrivilegedGateway struct {
	db postgres.Querier
}

// NewPrivilegedGateway creates a gateway over the service pool.
func NewPrivilegedGateway(db postgres.Querier) *PrivilegedGateway {
	return &PrivilegedGateway{db: db}
}

// Kind returns KindPrivileged.
func (g *PrivilegedGateway) Kind() string { return KindPrivileged }

// Fetch executes d. A descriptor without a valid scope is refused before any I/O.
func (g *PrivilegedGateway) Fetch(ctx context.Context, d logquery.Descriptor) (logquery.Result, error) {
	if !d.Scope.Valid() {
		return logquery.Result{}, domain.ErrMissingIdentity
	}
	return fetch(ctx, postgres.QuerierFromCtx(ctx, g.db), d, KindPrivileged)
}

// ---------------------------------------------------------------------------
// Direct path
// ---------------------------------------------------------------------------

// DirectGateway fetches logs with the restricted credential.
type DirectGateway struct {
	db postgres.Querier
	tx *postgres.TxManager
}

// DirectDB is what DirectGateway needs from its pool.
type DirectDB interface {
	postgres.Querier
	postgres.TxBeginner
}

// NewDirectGateway creates a gateway over the restricted pool.
func NewDirectGateway(db DirectDB) *DirectGateway {
	return &DirectGateway{db: db, tx: postgres.NewTxManager(db)}
}

// Kind returns KindDirect.
func (g *DirectGateway) Kind() string { return KindDirect }

// Fetch executes d in a read-only transaction. For a scoped descriptor the
// identity is published to row-level policies with set_config before the
// queries run.
func (g *DirectGateway) Fetch(ctx context.Context, d logquery.Descriptor) (logquery.Result, error) {
	if !d.Scope.Valid() {
		return logquery.Result{}, domain.ErrMissingIdentity
	}

	var res logquery.Result
	err := g.tx.RunReadOnly(ctx, func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, g.db)
		if id, ok := d.Scope.Identity(); ok {
			if _, err := q.Exec(ctx, setIdentitySQL, id); err != nil {
				return domain.NewRetrievalError(KindDirect+" set identity", err)
			}
		}
		var err error
		res, err = fetch(ctx, q, d, KindDirect)
		return err
	})
	if err != nil {
		return logquery.Result{}, classifyTxError(err)
	}
	return res, nil
}

// classifyTxError reports begin, commit and rollback failures as retrieval
// failures, like the store errors raised inside the transaction.
func classifyTxError(err error) error {
	var re *domain.RetrievalError
	if errors.As(err, &re) || errors.Is(err, domain.ErrMissingIdentity) {
		return err
	}
	return domain.NewRetrievalError(KindDirect+" tx", err)
}

// ---------------------------------------------------------------------------
// Shared execution
// ---------------------------------------------------------------------------

// fetch runs the optional count and the page query for d on q. Store errors
// are returned as *domain.RetrievalError carrying the driver's message.
func fetch(ctx context.Context, q postgres.Querier, d logquery.Descriptor, kind string) (logquery.Result, error) {
	var res logquery.Result

	if d.WantsCount() {
		countSQL, countArgs, err := d.CountSQL()
		if err != nil {
			return res, err
		}
		var total int64
		if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
			return res, domain.NewRetrievalError(kind+" count", err)
		}
		n := int(total)
		res.TotalCount = &n
	}

	pageSQL, pageArgs, err := d.ToSQL()
	if err != nil {
		return res, err
	}
	var rows []logRow
	if err := pgxscan.Select(ctx, q, &rows, pageSQL, pageArgs...); err != nil {
		return res, domain.NewRetrievalError(kind+" select", err)
	}
	res.Logs = toDomainLogs(rows)
	return res, nil
}

