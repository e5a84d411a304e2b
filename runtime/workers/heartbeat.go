package workers

import (
	"context"
	"log/slog"
	"time"
	"touroku/contract"
	"touroku/observability"

	"github.com/shirou/gopsutil/process"
)

const defaultHeartbeatInterval = 15 * time.Second

// ConnectionState tells whether the chat gateway is currently connected.
type ConnectionState interface {
	Connected() bool
}

// HeartbeatWorker periodically checks the record store and the gateway,
// publishes the result as the gRPC health status and samples the process usage.
type HeartbeatWorker struct {
	log      *slog.Logger
	store    contract.Pinger
	gateway  ConnectionState
	health   contract.HealthReporter
	metrics  *observability.Metrics
	interval time.Duration
	timeout  time.Duration
}

func NewHeartbeatWorker(
	log *slog.Logger,
	store contract.Pinger,
	gateway ConnectionState,
	health contract.HealthReporter,
	metrics *observability.Metrics,
	interval time.Duration,
) *HeartbeatWorker {
	if interval <= 0 {
		interval = defaultHeartbeatInterval
	}
	return &HeartbeatWorker{
		log:      log,
		store:    store,
		gateway:  gateway,
		health:   health,
		metrics:  metrics,
		interval: interval,
		timeout:  interval / 2,
	}
}

// Run beats once immediately, then every interval until ctx is done.
func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := observability.SelfProcess()
	if err != nil {
		w.log.Warn("Process stats unavailable", "error", err)
	}

	w.beat(ctx, p)
	for {
		select {
		case <-ctx.Done():
			w.health.SetServing(false)
			return nil
		case <-ticker.C:
			w.beat(ctx, p)
		}
	}
}

func (w *HeartbeatWorker) beat(ctx context.Context, p *process.Process) {
	pingCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	storeErr := w.store.Ping(pingCtx)
	connected := w.gateway == nil || w.gateway.Connected()
	serving := storeErr == nil && connected
	w.health.SetServing(serving)
	if !serving {
		w.log.Warn("Not serving", "store_error", storeErr, "gateway_connected", connected)
	}

	if p == nil {
		return
	}
	stats, err := observability.ReadProcessStats(p)
	if err != nil {
		w.log.Error("Failed to collect self stats", "err", err)
		return
	}
	w.metrics.SetProcessStats(stats)
	w.log.Debug("Heartbeat", "rss", stats.RSSBytes, "cpu", stats.CPUPercent, "status", stats.Status)
}
