//go:build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/heartmarshall/modlog-backend/internal/adapter/postgres"
	"github.com/heartmarshall/modlog-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/modlog-backend/internal/app"
	"github.com/heartmarshall/modlog-backend/internal/config"
	"github.com/heartmarshall/modlog-backend/internal/metrics"
)

const adminPassword = "e2e-admin-password"

// ---------------------------------------------------------------------------
// testServer wraps the full-stack HTTP server for E2E tests.
// ---------------------------------------------------------------------------

type testServer struct {
	URL    string
	Client *http.Client
	DB     testhelper.DB
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

func testConfig(t *testing.T, gateway string) *config.Config {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	return &config.Config{
		Retrieval: config.RetrievalConfig{
			Gateway:          gateway,
			ScopedLimit:      50,
			PageSize:         10,
			FeedbackPageSize: 10,
			QueryTimeout:     5 * time.Second,
		},
		Admin: config.AdminConfig{
			PasswordHash:  string(hash),
			SessionSecret: "e2e-session-secret-at-least-32-chars",
			SessionIssuer: "modlog-e2e",
			SessionTTL:    time.Hour,
			CookieName:    "admin_auth",
		},
		Settings: config.SettingsConfig{CacheTTL: time.Minute},
		CORS: config.CORSConfig{
			AllowedOrigins: "*",
			AllowedMethods: "GET,POST,PUT,PATCH,OPTIONS",
			AllowedHeaders: "Content-Type,uuid",
			MaxAge:         86400,
		},
		RateLimit: config.RateLimitConfig{CleanupInterval: time.Minute},
	}
}

// setupTestServer bootstraps the full application stack backed by a real
// PostgreSQL container (shared via testhelper). gateway selects the
// retrieval path.
func setupTestServer(t *testing.T, gateway string) *testServer {
	t.Helper()

	db := testhelper.SetupTestDB(t)
	pools := &postgres.Pools{Client: db.Client}
	if gateway == config.GatewayPrivileged {
		pools.Service = db.Service
	}

	m, err := metrics.New()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, nil))
	handler, cleanup, err := app.NewHandler(testConfig(t, gateway), pools, m, logger)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := srv.Client()
	client.Jar = jar

	return &testServer{URL: srv.URL, Client: client, DB: db}
}

// do sends a request with an optional JSON body and identity header and
// decodes the JSON response into out when out is non-nil.
func (ts *testServer) do(t *testing.T, method, path, identity string, body, out any) int {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.URL+path, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if identity != "" {
		req.Header.Set("UUID", identity)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// login opens an admin session on the server's cookie jar.
func (ts *testServer) login(t *testing.T) {
	t.Helper()
	status := ts.do(t, http.MethodPost, "/admin/login", "", map[string]string{"password": adminPassword}, nil)
	require.Equal(t, http.StatusOK, status)
}
