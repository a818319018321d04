package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const testSessionSecret = "this-is-a-very-long-session-secret-for-tests-32+"

var testHash = sync.OnceValue(func() string {
	h, err := bcrypt.GenerateFromPassword([]byte("admin1234"), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
})

// validEnv sets the minimum required env vars for a valid config.
func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "postgres://u:p@localhost:5432/testdb")
	t.Setenv("ADMIN_PASSWORD_HASH", testHash())
	t.Setenv("ADMIN_SESSION_SECRET", testSessionSecret)
}

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

func validYAML() string {
	return fmt.Sprintf(`
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: "5s"

database:
  dsn: "postgres://anon:p@localhost:5432/testdb"
  service_dsn: "postgres://service:p@localhost:5432/testdb"
  max_conns: 10
  min_conns: 2

retrieval:
  gateway: "auto"
  scoped_limit: 40
  page_size: 20
  feedback_page_size: 15
  query_timeout: "2s"

admin:
  password_hash: %q
  session_secret: %q
  session_ttl: "30m"

settings:
  cache_ttl: "1m"

log:
  level: "debug"
  format: "text"
`, testHash(), testSessionSecret)
}

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML())
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Server
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("server.host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("server.read_timeout = %v, want %v", cfg.Server.ReadTimeout, 5*time.Second)
	}

	// Database
	if cfg.Database.ServiceDSN != "postgres://service:p@localhost:5432/testdb" {
		t.Errorf("database.service_dsn = %q", cfg.Database.ServiceDSN)
	}
	if cfg.Database.MaxConns != 10 {
		t.Errorf("database.max_conns = %d, want 10", cfg.Database.MaxConns)
	}

	// Retrieval
	if cfg.Retrieval.ScopedLimit != 40 {
		t.Errorf("retrieval.scoped_limit = %d, want 40", cfg.Retrieval.ScopedLimit)
	}
	if cfg.Retrieval.PageSize != 20 {
		t.Errorf("retrieval.page_size = %d, want 20", cfg.Retrieval.PageSize)
	}
	if cfg.Retrieval.FeedbackPageSize != 15 {
		t.Errorf("retrieval.feedback_page_size = %d, want 15", cfg.Retrieval.FeedbackPageSize)
	}
	if cfg.Retrieval.QueryTimeout != 2*time.Second {
		t.Errorf("retrieval.query_timeout = %v, want 2s", cfg.Retrieval.QueryTimeout)
	}
	if got := cfg.ResolvedGateway(); got != GatewayPrivileged {
		t.Errorf("ResolvedGateway() = %q, want %q", got, GatewayPrivileged)
	}

	// Admin
	if cfg.Admin.SessionTTL != 30*time.Minute {
		t.Errorf("admin.session_ttl = %v, want 30m", cfg.Admin.SessionTTL)
	}
	if cfg.Admin.CookieName != "admin_auth" {
		t.Errorf("admin.cookie_name = %q, want admin_auth (default)", cfg.Admin.CookieName)
	}

	// Settings
	if cfg.Settings.CacheTTL != time.Minute {
		t.Errorf("settings.cache_ttl = %v, want 1m", cfg.Settings.CacheTTL)
	}

	// Log
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want %q", cfg.Log.Level, "debug")
	}
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML())
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("RETRIEVAL_GATEWAY", "direct")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("server.port = %d, want 7070 (ENV override)", cfg.Server.Port)
	}
	if got := cfg.ResolvedGateway(); got != GatewayDirect {
		t.Errorf("ResolvedGateway() = %q, want %q (ENV override)", got, GatewayDirect)
	}
}

func TestLoad_NoFile_ENVOnly(t *testing.T) {
	validEnv(t)
	t.Setenv("CONFIG_PATH", "")

	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	_ = os.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080 (default)", cfg.Server.Port)
	}
	if cfg.Retrieval.ScopedLimit != 50 {
		t.Errorf("retrieval.scoped_limit = %d, want 50 (default)", cfg.Retrieval.ScopedLimit)
	}
	if cfg.Retrieval.PageSize != 10 {
		t.Errorf("retrieval.page_size = %d, want 10 (default)", cfg.Retrieval.PageSize)
	}
}

func TestLoad_DotEnvLocal(t *testing.T) {
	validEnv(t)
	t.Setenv("CONFIG_PATH", "")

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env.local"), []byte("RETRIEVAL_SCOPED_LIMIT=25\n"), 0o644); err != nil {
		t.Fatalf("write .env.local: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("RETRIEVAL_SCOPED_LIMIT=30\nRETRIEVAL_PAGE_SIZE=12\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	origDir, _ := os.Getwd()
	t.Cleanup(func() {
		_ = os.Chdir(origDir)
		_ = os.Unsetenv("RETRIEVAL_SCOPED_LIMIT")
		_ = os.Unsetenv("RETRIEVAL_PAGE_SIZE")
	})
	_ = os.Chdir(dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Retrieval.ScopedLimit != 25 {
		t.Errorf("retrieval.scoped_limit = %d, want 25 (.env.local wins)", cfg.Retrieval.ScopedLimit)
	}
	if cfg.Retrieval.PageSize != 12 {
		t.Errorf("retrieval.page_size = %d, want 12 (from .env)", cfg.Retrieval.PageSize)
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, `{{{invalid yaml`)
	t.Setenv("CONFIG_PATH", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestResolvedGateway(t *testing.T) {
	tests := []struct {
		name       string
		gateway    string
		serviceDSN string
		want       string
	}{
		{"auto with service dsn", "auto", "postgres://service", GatewayPrivileged},
		{"auto without service dsn", "auto", "", GatewayDirect},
		{"empty means auto", "", "", GatewayDirect},
		{"explicit direct", "direct", "postgres://service", GatewayDirect},
		{"case insensitive", " Privileged ", "postgres://service", GatewayPrivileged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Retrieval.Gateway = tt.gateway
			cfg.Database.ServiceDSN = tt.serviceDSN
			if got := cfg.ResolvedGateway(); got != tt.want {
				t.Errorf("ResolvedGateway() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"unknown gateway", func(c *Config) { c.Retrieval.Gateway = "replica" }, true},
		{"privileged without service dsn", func(c *Config) {
			c.Retrieval.Gateway = GatewayPrivileged
			c.Database.ServiceDSN = ""
		}, true},
		{"privileged with service dsn", func(c *Config) {
			c.Retrieval.Gateway = GatewayPrivileged
			c.Database.ServiceDSN = "postgres://service"
		}, false},
		{"scoped limit zero", func(c *Config) { c.Retrieval.ScopedLimit = 0 }, true},
		{"page size too large", func(c *Config) { c.Retrieval.PageSize = 201 }, true},
		{"page size at cap", func(c *Config) { c.Retrieval.PageSize = 200 }, false},
		{"feedback page size negative", func(c *Config) { c.Retrieval.FeedbackPageSize = -1 }, true},
		{"negative timeout", func(c *Config) { c.Retrieval.QueryTimeout = -time.Second }, true},
		{"session secret too short", func(c *Config) { c.Admin.SessionSecret = "short" }, true},
		{"password hash not bcrypt", func(c *Config) { c.Admin.PasswordHash = "admin1234" }, true},
		{"session ttl zero", func(c *Config) { c.Admin.SessionTTL = 0 }, true},
		{"cookie name blank", func(c *Config) { c.Admin.CookieName = " " }, true},
		{"negative rate limit", func(c *Config) { c.RateLimit.LoginPerMinute = -1 }, true},
		{"rate limit disabled", func(c *Config) { c.RateLimit.FeedbackPerMinute = 0 }, false},
		{"cleanup interval zero", func(c *Config) { c.RateLimit.CleanupInterval = 0 }, true},
		{"min conns above max", func(c *Config) {
			c.Database.MinConns = 10
			c.Database.MaxConns = 5
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// validConfig returns a Config that passes all validation checks.
func validConfig() Config {
	return Config{
		Database: DatabaseConfig{
			DSN:      "postgres://anon:p@localhost:5432/testdb",
			MaxConns: 25,
			MinConns: 2,
		},
		Retrieval: RetrievalConfig{
			Gateway:          GatewayAuto,
			ScopedLimit:      50,
			PageSize:         10,
			FeedbackPageSize: 10,
			QueryTimeout:     5 * time.Second,
		},
		Admin: AdminConfig{
			PasswordHash:  testHash(),
			SessionSecret: testSessionSecret,
			SessionTTL:    time.Hour,
			CookieName:    "admin_auth",
		},
		RateLimit: RateLimitConfig{
			FeedbackPerMinute: 10,
			LoginPerMinute:    5,
			CleanupInterval:   5 * time.Minute,
		},
	}
}
