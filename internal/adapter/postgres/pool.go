package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/modlog-backend/internal/config"
)

// NewPool creates a PostgreSQL connection pool for dsn using the pool settings
// from DatabaseConfig. It pings the database for fail-fast validation.
func NewPool(ctx context.Context, dsn string, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Pools holds the restricted pool and, when configured, the elevated service pool.
type Pools struct {
	Client  *pgxpool.Pool
	Service *pgxpool.Pool
}

// OpenPools connects the restricted pool and the optional service pool.
func OpenPools(ctx context.Context, cfg config.DatabaseConfig) (*Pools, error) {
	client, err := NewPool(ctx, cfg.DSN, cfg)
	if err != nil {
		return nil, fmt.Errorf("client pool: %w", err)
	}
	p := &Pools{Client: client}

	if cfg.ServiceDSN != "" {
		service, err := NewPool(ctx, cfg.ServiceDSN, cfg)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("service pool: %w", err)
		}
		p.Service = service
	}
	return p, nil
}

// Primary returns the service pool when present, otherwise the client pool.
// Feedback, settings and migrations run on it.
func (p *Pools) Primary() *pgxpool.Pool {
	if p.Service != nil {
		return p.Service
	}
	return p.Client
}

// HasService reports whether an elevated credential is configured.
func (p *Pools) HasService() bool { return p.Service != nil }

// Ping checks every open pool.
func (p *Pools) Ping(ctx context.Context) error {
	if err := p.Client.Ping(ctx); err != nil {
		return fmt.Errorf("client pool: %w", err)
	}
	if p.Service != nil {
		if err := p.Service.Ping(ctx); err != nil {
			return fmt.Errorf("service pool: %w", err)
		}
	}
	return nil
}

// Close closes every open pool.
func (p *Pools) Close() {
	if p.Service != nil {
		p.Service.Close()
	}
	p.Client.Close()
}
