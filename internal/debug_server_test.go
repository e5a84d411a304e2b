package internal

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"touroku/domain/registration"
	"touroku/observability"
	"touroku/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func newInspector(t *testing.T) (*DebugServer, repositories.IRegistrationRepository, *prometheus.Registry) {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	repository := repositories.NewBadgerRegistrationRepository(db, slog.Default())
	t.Cleanup(func() { _ = repository.Close(context.Background()) })

	registry := prometheus.NewRegistry()
	observability.NewMetrics(registry).IncrementOutcome(string(registration.Created))

	stats := func() map[string]any { return map[string]any{"Backend": "badger"} }
	server := NewDebugServer(slog.Default(), repository, registry, stats, time.FixedZone("JST", 9*3600))
	server.now = func() time.Time { return time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC) }
	return server, repository, registry
}

func TestDebugServer_Inspect(t *testing.T) {
	req := require.New(t)
	server, repository, _ := newInspector(t)
	ctx := context.Background()

	req.NoError(repository.Upsert(ctx, registration.Record{
		CSN:          "A-100",
		RegisteredAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Count:        5,
	}))
	req.NoError(repository.Upsert(ctx, registration.Record{
		CSN:          "B-200",
		RegisteredAt: time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC),
		Count:        2,
	}))

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/inspect", nil))

	req.Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	req.Contains(body, "A-100")
	req.Contains(body, "B-200")
	req.Contains(body, "2024-05-01 09:00:00")
	req.Contains(body, "Backend")
	req.Less(strings.Index(body, "B-200"), strings.Index(body, "A-100"))
}

func TestDebugServer_InspectEmpty(t *testing.T) {
	server, _, _ := newInspector(t)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/inspect?limit=abc", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "no registrations")
}

func TestDebugServer_Metrics(t *testing.T) {
	server, _, _ := newInspector(t)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `touroku_registration_outcomes_total{status="created"} 1`)
}

func TestDebugServer_Health(t *testing.T) {
	req := require.New(t)
	server, repository, _ := newInspector(t)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	req.Equal(http.StatusOK, rec.Code)

	req.NoError(repository.Close(context.Background()))

	rec = httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	req.Equal(http.StatusServiceUnavailable, rec.Code)
}

func TestInspectLimit(t *testing.T) {
	require.Equal(t, defaultInspectLimit, inspectLimit(""))
	require.Equal(t, defaultInspectLimit, inspectLimit("-3"))
	require.Equal(t, 10, inspectLimit("10"))
	require.Equal(t, maxInspectLimit, inspectLimit("100000"))
}
