// Package identity resolves the caller identity token carried by an inbound request.
//
// Precedence: header "uuid" (any letter-casing), then query parameter "uuid",
// then query parameter "userId". The first present non-empty value wins.
package identity

import (
	"net/http"
	"strings"

	"github.com/heartmarshall/modlog-backend/internal/domain"
)

const (
	HeaderName      = "uuid"
	QueryParam      = "uuid"
	QueryParamAlias = "userId"
)

// Source names where an identity was found.
type Source string

const (
	SourceNone       Source = ""
	SourceHeader     Source = "header"
	SourceQuery      Source = "query"
	SourceQueryAlias Source = "query_alias"
)

// Resolve returns the first non-empty identity candidate on r.
func Resolve(r *http.Request) (string, bool) {
	id, src := ResolveWithSource(r)
	return id, src != SourceNone
}

// ResolveWithSource is Resolve plus the carrier the identity came from.
func ResolveWithSource(r *http.Request) (string, Source) {
	if r == nil {
		return "", SourceNone
	}
	if id := fromHeader(r.Header); id != "" {
		return id, SourceHeader
	}
	q := r.URL.Query()
	if id := strings.TrimSpace(q.Get(QueryParam)); id != "" {
		return id, SourceQuery
	}
	if id := strings.TrimSpace(q.Get(QueryParamAlias)); id != "" {
		return id, SourceQueryAlias
	}
	return "", SourceNone
}

// Require resolves the identity or returns domain.ErrMissingIdentity.
func Require(r *http.Request) (string, error) {
	id, ok := Resolve(r)
	if !ok {
		return "", domain.ErrMissingIdentity
	}
	return id, nil
}

// fromHeader matches the header name case-insensitively. Header maps built by
// net/http are canonicalised, but maps populated by hand may not be.
func fromHeader(h http.Header) string {
	if id := strings.TrimSpace(h.Get(HeaderName)); id != "" {
		return id
	}
	for k, vals := range h {
		if !strings.EqualFold(k, HeaderName) {
			continue
		}
		for _, v := range vals {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}
