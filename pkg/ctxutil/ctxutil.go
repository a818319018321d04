package ctxutil

import "context"

type ctxKey string

const (
	identityKey  ctxKey = "identity"
	adminKey     ctxKey = "admin"
	requestIDKey ctxKey = "request_id"
)

// WithIdentity stores the caller identity in the context.
func WithIdentity(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromCtx extracts the caller identity from the context.
// Returns "" and false if the value is missing, empty, or wrong type.
func IdentityFromCtx(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(identityKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// WithAdmin marks the context as carrying a valid admin session for subject.
func WithAdmin(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, adminKey, subject)
}

// IsAdminCtx reports whether the context carries an admin session.
func IsAdminCtx(ctx context.Context) bool {
	s, ok := ctx.Value(adminKey).(string)
	return ok && s != ""
}

// AdminFromCtx returns the admin session subject, or "" if absent.
func AdminFromCtx(ctx context.Context) string {
	s, _ := ctx.Value(adminKey).(string)
	return s
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
