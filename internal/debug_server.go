package internal

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"
	"touroku/contract"
	"touroku/domain/registration"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed inspect.html
var templatesFS embed.FS

const (
	defaultInspectLimit = 50
	maxInspectLimit     = 500
	pingTimeout         = 2 * time.Second
	displayLayout       = "2006-01-02 15:04:05"
)

// RecordLister is the read side of the record store the inspector needs.
type RecordLister interface {
	contract.Pinger
	List(ctx context.Context, limit int) ([]registration.Record, error)
}

type StatsProvider func() map[string]any

type InspectRow struct {
	CSN          string
	RegisteredAt string
	ElapsedHours int64
	Count        int64
	Eligible     bool
}

type PageData struct {
	Limit int
	Items []InspectRow
	Stats map[string]any
	Error string
}

type DebugServer struct {
	log      *slog.Logger
	store    RecordLister
	gatherer prometheus.Gatherer
	stats    StatsProvider
	location *time.Location
	now      func() time.Time
	tmpl     *template.Template
}

func NewDebugServer(
	log *slog.Logger,
	store RecordLister,
	gatherer prometheus.Gatherer,
	stats StatsProvider,
	location *time.Location,
) *DebugServer {
	if location == nil {
		location = time.UTC
	}
	return &DebugServer{
		log:      log,
		store:    store,
		gatherer: gatherer,
		stats:    stats,
		location: location,
		now:      time.Now,
		tmpl:     template.Must(template.ParseFS(templatesFS, "inspect.html")),
	}
}

// Router mounts /inspect, /metrics and /healthz.
func (s *DebugServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/inspect", s.HandleInspect)
	r.Get("/healthz", s.HandleHealth)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// HTTPServer returns an unstarted server listening on every interface.
func (s *DebugServer) HTTPServer(port int) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (s *DebugServer) HandleInspect(w http.ResponseWriter, r *http.Request) {
	data := PageData{
		Limit: inspectLimit(r.URL.Query().Get("limit")),
		Stats: make(map[string]any),
	}
	if s.stats != nil {
		data.Stats = s.stats()
	}

	records, err := s.store.List(r.Context(), data.Limit)
	if err != nil {
		s.log.Warn("Inspector could not list records", "error", err)
		data.Error = err.Error()
	}

	now := s.now().UTC()
	for _, record := range records {
		elapsed := now.Sub(record.RegisteredAt)
		data.Items = append(data.Items, InspectRow{
			CSN:          record.CSN,
			RegisteredAt: record.RegisteredAt.In(s.location).Format(displayLayout),
			ElapsedHours: registration.ElapsedHours(elapsed),
			Count:        record.Count,
			Eligible:     registration.Decide(&record, now) == registration.Eligible,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		s.log.Error("Inspector template failed", "error", err)
	}
}

func (s *DebugServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	_, _ = fmt.Fprint(w, "ok")
}

func inspectLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return defaultInspectLimit
	}
	return min(limit, maxInspectLimit)
}
