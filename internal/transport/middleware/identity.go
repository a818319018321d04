package middleware

import (
	"net/http"

	"github.com/heartmarshall/modlog-backend/internal/identity"
	"github.com/heartmarshall/modlog-backend/pkg/ctxutil"
)

// Identity resolves the caller identity from the uuid header or query
// parameters and stores it in the context. Anonymous requests pass through;
// handlers that need an identity reject them themselves.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := identity.Resolve(r); ok {
			r = r.WithContext(ctxutil.WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
