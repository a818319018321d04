// Package logquery builds side-effect-free query descriptors for detection logs.
//
// A Descriptor always carries a Scope. The zero Scope is invalid and refuses to
// compile, so a descriptor that should be limited to one identity can never
// silently read every user's logs.
package logquery

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/heartmarshall/modlog-backend/internal/domain"
	"github.com/heartmarshall/modlog-backend/internal/filter"
)

const (
	Table        = "detection_logs"
	UserIDColumn = "user_id"
	OrderBy      = "created_at DESC"
)

// Columns selected for every detection log query.
var Columns = []string{
	"id", "created_at", "text_content", "confidence", "threshold_used",
	"model_version", "is_harmful", "user_id", "metadata",
}

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type scopeKind uint8

const (
	scopeInvalid scopeKind = iota
	scopeUser
	scopeAll
)

// Scope decides which owners' logs a query may read.
type Scope struct {
	kind     scopeKind
	identity string
}

// Scoped restricts a query to one identity. It fails with
// domain.ErrMissingIdentity when id is blank.
func Scoped(id string) (Scope, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Scope{}, domain.ErrMissingIdentity
	}
	return Scope{kind: scopeUser, identity: id}, nil
}

// Unscoped reads logs of every owner. Only admin views use it.
func Unscoped() Scope {
	return Scope{kind: scopeAll}
}

// Identity returns the scoped identity, if any.
func (s Scope) Identity() (string, bool) {
	return s.identity, s.kind == scopeUser
}

// IsUnscoped reports whether the scope was explicitly opened to all owners.
func (s Scope) IsUnscoped() bool { return s.kind == scopeAll }

// Valid reports whether the scope was built by Scoped or Unscoped.
func (s Scope) Valid() bool { return s.kind != scopeInvalid }

func (s Scope) String() string {
	switch s.kind {
	case scopeUser:
		return "user:" + s.identity
	case scopeAll:
		return "all"
	}
	return "invalid"
}

// Result is what a gateway returns for one descriptor. TotalCount is nil
// unless the descriptor asked for a count.
type Result struct {
	Logs       []domain.DetectionLog
	TotalCount *int
}

// Total returns the reported count, or the number of logs when none was requested.
func (r Result) Total() int {
	if r.TotalCount != nil {
		return *r.TotalCount
	}
	return len(r.Logs)
}

// Descriptor fully specifies one detection log fetch.
type Descriptor struct {
	Scope Scope
	Range domain.ConfidenceRange
	Page  domain.PageRequest
}

// Build assembles a descriptor. It performs no I/O and no validation beyond
// what ToSQL enforces.
func Build(scope Scope, rng domain.ConfidenceRange, page domain.PageRequest) Descriptor {
	return Descriptor{Scope: scope, Range: rng, Page: page}
}

// WantsCount reports whether the caller needs an exact total.
func (d Descriptor) WantsCount() bool { return d.Page.WithCount }

// Where returns the filter shared by the page and count queries.
func (d Descriptor) Where() (sq.Sqlizer, error) {
	conds := sq.And{}
	switch d.Scope.kind {
	case scopeUser:
		conds = append(conds, sq.Eq{UserIDColumn: d.Scope.identity})
	case scopeAll:
	default:
		return nil, fmt.Errorf("logquery: %w: descriptor has no scope", domain.ErrMissingIdentity)
	}
	conds = append(conds, filter.Predicate(d.Range))
	return conds, nil
}

// ToSQL compiles the page query.
func (d Descriptor) ToSQL() (string, []any, error) {
	where, err := d.Where()
	if err != nil {
		return "", nil, err
	}
	q := builder.Select(Columns...).
		From(Table).
		Where(where).
		OrderBy(OrderBy)
	if d.Page.Limit > 0 {
		q = q.Limit(uint64(d.Page.Limit))
	}
	if d.Page.Offset > 0 {
		q = q.Offset(uint64(d.Page.Offset))
	}
	return q.ToSql()
}

// CountSQL compiles the exact-count query for the same filter.
func (d Descriptor) CountSQL() (string, []any, error) {
	where, err := d.Where()
	if err != nil {
		return "", nil, err
	}
	return builder.Select("count(*)").From(Table).Where(where).ToSql()
}
