// Package auth issues and validates admin session tokens and checks the
// shared admin password.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/heartmarshall/modlog-backend/internal/domain"
)

// AdminSubject is the subject of every admin session; there is a single
// shared admin account.
const AdminSubject = "admin"

// SessionManager signs and verifies HS256 admin session tokens.
type SessionManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionManager creates a session manager.
// secret must be at least 32 characters for HS256 security.
func NewSessionManager(secret, issuer string, ttl time.Duration) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// sessionClaims extends standard JWT claims with the session role.
type sessionClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// TTL returns the lifetime of issued tokens.
func (m *SessionManager) TTL() time.Duration { return m.ttl }

// Issue creates a signed session token for subject and returns it with its expiry.
func (m *SessionManager) Issue(subject string) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.ttl)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: "admin",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, exp, nil
}

// Validate parses and verifies a session token and returns its subject.
// Every failure wraps domain.ErrUnauthorized.
func (m *SessionManager) Validate(tokenString string) (string, error) {
	if tokenString == "" {
		return "", fmt.Errorf("token is empty: %w", domain.ErrUnauthorized)
	}

	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", fmt.Errorf("parse token: %w: %w", domain.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims: %w", domain.ErrUnauthorized)
	}
	if claims.Role != "admin" || claims.Subject == "" {
		return "", fmt.Errorf("not an admin session: %w", domain.ErrUnauthorized)
	}

	return claims.Subject, nil
}

// CheckPassword compares password with the configured bcrypt hash.
// A mismatch returns domain.ErrUnauthorized.
func CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return fmt.Errorf("admin password: %w", domain.ErrUnauthorized)
	default:
		return fmt.Errorf("admin password: %w", err)
	}
}
