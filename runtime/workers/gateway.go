package workers

import (
	"context"
	"log/slog"
)

// Gateway is a connection that is opened once and held until shutdown.
type Gateway interface {
	Open() error
	Close() error
}

// GatewayWorker keeps the chat gateway open for as long as ctx lives.
// A failed Open is returned so the supervisor retries it later.
type GatewayWorker struct {
	log     *slog.Logger
	gateway Gateway
}

func NewGatewayWorker(log *slog.Logger, gateway Gateway) *GatewayWorker {
	return &GatewayWorker{log: log, gateway: gateway}
}

func (w *GatewayWorker) Run(ctx context.Context) error {
	if err := w.gateway.Open(); err != nil {
		return err
	}
	w.log.Info("Gateway opened")

	<-ctx.Done()
	w.log.Info("Closing gateway...")
	if err := w.gateway.Close(); err != nil {
		w.log.Warn("Gateway close failed", "error", err)
	}
	return nil
}
