package testhelper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	postgres "github.com/heartmarshall/modlog-backend/internal/adapter/postgres"
)

const (
	clientRole     = "modlog_app"
	clientPassword = "apppass"
)

var (
	once    sync.Once
	shared  dsns
	initErr error
)

type dsns struct {
	service string
	client  string
}

// DB holds pools for both credentials against the shared test database.
// Service connects as the owner and bypasses row-level security; Client
// connects as a member of modlog_client and is subject to it.
type DB struct {
	Service *pgxpool.Pool
	Client  *pgxpool.Pool
}

// SetupTestDB starts a shared PostgreSQL container (once for the entire test run),
// applies goose migrations, creates a restricted login role, and returns pools
// for both credentials. Pools are closed via t.Cleanup; the container lives
// until the process exits. Skipped with -short.
func SetupTestDB(t *testing.T) DB {
	t.Helper()
	if testing.Short() {
		t.Skip("testhelper: skipping database test in -short mode")
	}

	once.Do(func() {
		shared, initErr = startContainerAndMigrate()
	})
	if initErr != nil {
		t.Fatalf("testhelper: failed to setup test DB: %v", initErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	service, err := pgxpool.New(ctx, shared.service)
	if err != nil {
		t.Fatalf("testhelper: failed to create service pool: %v", err)
	}
	client, err := pgxpool.New(ctx, shared.client)
	if err != nil {
		service.Close()
		t.Fatalf("testhelper: failed to create client pool: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
		service.Close()
	})

	return DB{Service: service, Client: client}
}

func startContainerAndMigrate() (dsns, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return dsns{}, fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return dsns{}, fmt.Errorf("get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return dsns{}, fmt.Errorf("get mapped port: %w", err)
	}

	out := dsns{
		service: fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port()),
		client:  fmt.Sprintf("postgres://%s:%s@%s:%s/testdb?sslmode=disable", clientRole, clientPassword, host, port.Port()),
	}

	pool, err := pgxpool.New(ctx, out.service)
	if err != nil {
		return dsns{}, fmt.Errorf("service pool: %w", err)
	}
	defer pool.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := postgres.Migrate(ctx, pool, logger); err != nil {
		return dsns{}, err
	}

	_, err = pool.Exec(ctx, fmt.Sprintf(
		`CREATE ROLE %s LOGIN PASSWORD '%s' IN ROLE modlog_client`, clientRole, clientPassword))
	if err != nil {
		return dsns{}, fmt.Errorf("create client role: %w", err)
	}

	return out, nil
}
