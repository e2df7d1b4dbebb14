package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/seo-snapshot-generator/internal/config"
	"github.com/JakeFAU/seo-snapshot-generator/internal/snapshot"
)

type fakeRunner struct {
	mu       sync.Mutex
	report   snapshot.Report
	err      error
	latest   *snapshot.Report
	calls    int
	deadline bool
	panics   bool
}

func (f *fakeRunner) Run(ctx context.Context) (snapshot.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	_, f.deadline = ctx.Deadline()
	if f.panics {
		panic("generator exploded")
	}
	if f.err != nil {
		return snapshot.Report{}, f.err
	}
	r := f.report
	f.latest = &r
	return f.report, nil
}

func (f *fakeRunner) Latest() (snapshot.Report, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latest == nil {
		return snapshot.Report{}, false
	}
	return *f.latest, true
}

func sampleReport() snapshot.Report {
	return snapshot.Report{
		Success:      true,
		Generated:    42,
		Errors:       1,
		ErrorDetails: []snapshot.Failure{{ID: "abc", Error: "render catalog-banknote-abc.html: boom"}},
		Message:      "Generated 42 static pages with 1 errors",
		Timestamp:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		RunID:        "run-1",
	}
}

func newTestServer(runner Runner, mutate ...func(*config.Config)) *Server {
	cfg := config.Config{Server: config.ServerConfig{Port: 8080}}
	for _, m := range mutate {
		m(&cfg)
	}
	return NewServer(runner, cfg, zap.NewNop())
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Preflight(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeRunner{}, func(c *config.Config) {
		c.Auth = config.AuthConfig{Enabled: true, APIKey: "secret"}
	})
	rec := serve(server, httptest.NewRequest(http.MethodOptions, generatePath, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Body.String())
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "authorization, x-client-info, apikey, content-type", rec.Header().Get("Access-Control-Allow-Headers"))
	require.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestServer_GenerateReturnsReport(t *testing.T) {
	t.Parallel()

	for _, method := range []string{http.MethodPost, http.MethodGet} {
		runner := &fakeRunner{report: sampleReport()}
		server := newTestServer(runner)
		rec := serve(server, httptest.NewRequest(method, generatePath, nil))

		require.Equal(t, http.StatusOK, rec.Code, method)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, true, body["success"])
		require.EqualValues(t, 42, body["generated"])
		require.EqualValues(t, 1, body["errors"])
		require.Equal(t, "Generated 42 static pages with 1 errors", body["message"])
		require.Equal(t, "2026-03-01T12:00:00Z", body["timestamp"])
		details, ok := body["errorDetails"].([]any)
		require.True(t, ok)
		require.Len(t, details, 1)
		require.False(t, runner.deadline)
	}
}

func TestServer_GenerateFatalError(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeRunner{err: errors.New("generation aborted: context canceled")})
	rec := serve(server, httptest.NewRequest(http.MethodPost, generatePath, nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Failed to generate static pages", body.Error)
	require.Equal(t, "generation aborted: context canceled", body.Details)
}

func TestServer_GenerateRunInProgress(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeRunner{err: snapshot.ErrRunInProgress})
	rec := serve(server, httptest.NewRequest(http.MethodPost, generatePath, nil))

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "already running")
}

func TestServer_GenerateAppliesRunTimeout(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{report: sampleReport()}
	server := newTestServer(runner, func(c *config.Config) { c.Server.RunTimeoutSeconds = 60 })
	rec := serve(server, httptest.NewRequest(http.MethodPost, generatePath, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, runner.deadline)
}

func TestServer_LatestRun(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{report: sampleReport()}
	server := newTestServer(runner)

	rec := serve(server, httptest.NewRequest(http.MethodGet, "/v1/runs/latest", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(server, httptest.NewRequest(http.MethodPost, generatePath, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(server, httptest.NewRequest(http.MethodGet, "/v1/runs/latest", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"runId":"run-1"`)
}

func TestServer_APIKeyMiddleware(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{report: sampleReport()}
	server := newTestServer(runner, func(c *config.Config) {
		c.Auth = config.AuthConfig{Enabled: true, APIKey: "secret"}
	})

	rec := serve(server, httptest.NewRequest(http.MethodPost, generatePath, nil))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	wrong := httptest.NewRequest(http.MethodPost, generatePath, nil)
	wrong.Header.Set("X-API-Key", "nope")
	require.Equal(t, http.StatusForbidden, serve(server, wrong).Code)

	header := httptest.NewRequest(http.MethodPost, generatePath, nil)
	header.Header.Set("X-API-Key", "secret")
	require.Equal(t, http.StatusOK, serve(server, header).Code)

	bearer := httptest.NewRequest(http.MethodPost, generatePath, nil)
	bearer.Header.Set("Authorization", "Bearer secret")
	require.Equal(t, http.StatusOK, serve(server, bearer).Code)

	query := httptest.NewRequest(http.MethodGet, "/v1/runs/latest?api_key=secret", nil)
	require.Equal(t, http.StatusOK, serve(server, query).Code)

	// Probes stay open.
	require.Equal(t, http.StatusOK, serve(server, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
	require.Equal(t, 2, runner.calls)
}

func TestServer_Probes(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeRunner{})
	rec := serve(server, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "ok")

	rec = serve(server, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	failing := NewServer(&fakeRunner{}, config.Config{}, zap.NewNop(), WithReadinessCheck(func(context.Context) error {
		return errors.New("pool closed")
	}))
	rec = serve(failing, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeRunner{report: sampleReport()})
	serve(server, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec := serve(server, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestServer_RecoversPanics(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeRunner{panics: true})
	rec := serve(server, httptest.NewRequest(http.MethodPost, generatePath, nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "internal server error")
}

func TestRequestIDMiddlewareSetsHeader(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeRunner{})
	rec := serve(server, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	rec = serve(server, req)
	require.Equal(t, "upstream-id", rec.Header().Get("X-Request-ID"))
}
