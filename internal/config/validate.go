package config

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const maxPageSize = 200

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Retrieval.validate(); err != nil {
		return fmt.Errorf("retrieval: %w", err)
	}

	if c.ResolvedGateway() == GatewayPrivileged && c.Database.ServiceDSN == "" {
		return fmt.Errorf("retrieval.gateway %q requires database.service_dsn", GatewayPrivileged)
	}

	if err := c.Admin.validate(); err != nil {
		return fmt.Errorf("admin: %w", err)
	}

	if c.RateLimit.FeedbackPerMinute < 0 || c.RateLimit.LoginPerMinute < 0 {
		return fmt.Errorf("rate_limit values must be >= 0")
	}
	if c.RateLimit.CleanupInterval <= 0 {
		return fmt.Errorf("rate_limit.cleanup_interval must be > 0 (got %v)", c.RateLimit.CleanupInterval)
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) must not exceed max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
	}

	return nil
}

func (r *RetrievalConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(r.Gateway)) {
	case "", GatewayAuto, GatewayPrivileged, GatewayDirect:
	default:
		return fmt.Errorf("gateway must be one of auto, privileged, direct (got %q)", r.Gateway)
	}
	if r.ScopedLimit <= 0 || r.ScopedLimit > maxPageSize {
		return fmt.Errorf("scoped_limit must be in 1..%d (got %d)", maxPageSize, r.ScopedLimit)
	}
	if r.PageSize <= 0 || r.PageSize > maxPageSize {
		return fmt.Errorf("page_size must be in 1..%d (got %d)", maxPageSize, r.PageSize)
	}
	if r.FeedbackPageSize <= 0 || r.FeedbackPageSize > maxPageSize {
		return fmt.Errorf("feedback_page_size must be in 1..%d (got %d)", maxPageSize, r.FeedbackPageSize)
	}
	if r.QueryTimeout < 0 {
		return fmt.Errorf("query_timeout must be >= 0 (got %v)", r.QueryTimeout)
	}
	return nil
}

func (a *AdminConfig) validate() error {
	if len(a.SessionSecret) < 32 {
		return fmt.Errorf("session_secret must be at least 32 characters (got %d)", len(a.SessionSecret))
	}
	if _, err := bcrypt.Cost([]byte(a.PasswordHash)); err != nil {
		return fmt.Errorf("password_hash is not a bcrypt hash: %w", err)
	}
	if a.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be > 0 (got %v)", a.SessionTTL)
	}
	if strings.TrimSpace(a.CookieName) == "" {
		return fmt.Errorf("cookie_name must not be empty")
	}
	return nil
}
