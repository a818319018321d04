package config

import (
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Admin     AdminConfig     `yaml:"admin"`
	Settings  SettingsConfig  `yaml:"settings"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig holds per-IP request limits for write endpoints.
// Zero disables a limit.
type RateLimitConfig struct {
	FeedbackPerMinute int           `yaml:"feedback_per_minute" env:"RATE_LIMIT_FEEDBACK_PER_MINUTE" env-default:"10"`
	LoginPerMinute    int           `yaml:"login_per_minute"    env:"RATE_LIMIT_LOGIN_PER_MINUTE"    env-default:"5"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval"    env:"RATE_LIMIT_CLEANUP_INTERVAL"    env-default:"5m"`
}

// CORSConfig holds CORS settings. The identity header must be allowed for
// browser clients to reach the scoped endpoint.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,PATCH,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type,uuid"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
// DSN is the restricted credential, subject to row-level security.
// ServiceDSN, when set, is the elevated credential that bypasses it.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	ServiceDSN      string        `yaml:"service_dsn"        env:"DATABASE_SERVICE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"2"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	AutoMigrate     bool          `yaml:"auto_migrate"       env:"DATABASE_AUTO_MIGRATE"       env-default:"false"`
}

// Gateway selection values for RetrievalConfig.Gateway.
const (
	GatewayAuto       = "auto"
	GatewayPrivileged = "privileged"
	GatewayDirect     = "direct"
)

// RetrievalConfig controls log retrieval and paging.
type RetrievalConfig struct {
	Gateway          string        `yaml:"gateway"            env:"RETRIEVAL_GATEWAY"            env-default:"auto"`
	ScopedLimit      int           `yaml:"scoped_limit"       env:"RETRIEVAL_SCOPED_LIMIT"       env-default:"50"`
	PageSize         int           `yaml:"page_size"          env:"RETRIEVAL_PAGE_SIZE"          env-default:"10"`
	FeedbackPageSize int           `yaml:"feedback_page_size" env:"RETRIEVAL_FEEDBACK_PAGE_SIZE" env-default:"10"`
	QueryTimeout     time.Duration `yaml:"query_timeout"      env:"RETRIEVAL_QUERY_TIMEOUT"      env-default:"5s"`
}

// AdminConfig holds the shared-password admin session settings.
type AdminConfig struct {
	PasswordHash  string        `yaml:"password_hash"  env:"ADMIN_PASSWORD_HASH"  env-required:"true"`
	SessionSecret string        `yaml:"session_secret" env:"ADMIN_SESSION_SECRET" env-required:"true"`
	SessionIssuer string        `yaml:"session_issuer" env:"ADMIN_SESSION_ISSUER" env-default:"modlog"`
	SessionTTL    time.Duration `yaml:"session_ttl"    env:"ADMIN_SESSION_TTL"    env-default:"1h"`
	CookieName    string        `yaml:"cookie_name"    env:"ADMIN_COOKIE_NAME"    env-default:"admin_auth"`
	CookieSecure  bool          `yaml:"cookie_secure"  env:"ADMIN_COOKIE_SECURE"  env-default:"true"`
}

// SettingsConfig holds the app settings read cache.
type SettingsConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl" env:"SETTINGS_CACHE_TTL" env-default:"5m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// ResolvedGateway returns the gateway kind to use. auto picks privileged when
// an elevated credential is configured and direct otherwise.
func (c Config) ResolvedGateway() string {
	g := strings.ToLower(strings.TrimSpace(c.Retrieval.Gateway))
	if g == "" || g == GatewayAuto {
		if c.Database.ServiceDSN != "" {
			return GatewayPrivileged
		}
		return GatewayDirect
	}
	return g
}
