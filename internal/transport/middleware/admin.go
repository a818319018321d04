package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/modlog-backend/internal/domain"
	"github.com/heartmarshall/modlog-backend/pkg/ctxutil"
)

type sessionValidator interface {
	Validate(token string) (string, error)
}

// AdminSession rejects requests without a valid admin session cookie with
// 401. On success the session subject is stored in the context.
func AdminSession(validator sessionValidator, cookieName string, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(cookieName)
			if err != nil || c.Value == "" {
				writeError(w, http.StatusUnauthorized, "admin session required")
				return
			}
			subject, err := validator.Validate(c.Value)
			if err != nil {
				logger.WarnContext(r.Context(), "admin session rejected",
					slog.String("request_id", ctxutil.RequestIDFromCtx(r.Context())),
					slog.String("error", err.Error()),
				)
				writeError(w, http.StatusUnauthorized, "admin session required")
				return
			}
			next.ServeHTTP(w, r.WithContext(ctxutil.WithAdmin(r.Context(), subject)))
		})
	}
}

// RequireAdmin returns domain.ErrForbidden if the context carries no admin session.
// Use in handlers, not as HTTP middleware.
func RequireAdmin(ctx context.Context) error {
	if !ctxutil.IsAdminCtx(ctx) {
		return domain.ErrForbidden
	}
	return nil
}
