package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"
	"touroku/infrastructure/discord"
	"touroku/infrastructure/grpc/server"
	"touroku/internal"
	"touroku/observability"
	"touroku/repositories"
	"touroku/runtime/workers"
	"touroku/services"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	grpc3 "github.com/mama165/sdk-go/grpc"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const closeTimeout = 5 * time.Second

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "touroku terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run builds every component, hands the long-lived ones to the supervisor
// and blocks until SIGINT or SIGTERM. Deferred cleanups run before main exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	location, err := config.Location()
	if err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Record store
	repository, err := openRepository(ctx, config, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("record store opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing record store...", "backend", config.Backend())
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := repository.Close(closeCtx); err != nil {
			logger.Warn("Record store close failed", "error", err)
		}
	}()

	// 3. Metrics & Service
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := observability.NewMetrics(registry)

	options := []services.RegistrationOption{services.WithMetrics(metrics)}
	if config.SequentialWrites {
		options = append(options, services.WithSequentialWrites())
	}
	if config.VerifyWrites {
		options = append(options, services.WithWriteVerification())
	}
	registrationService := services.NewRegistrationService(repository, logger, options...)

	// 4. Discord gateway
	session, err := discord.NewSession(config.DiscordBotToken)
	if err != nil {
		return exitConfig, err
	}
	commands := discord.NewCommandRegistry(logger, config.CommandTimeout).
		Register(discord.NewTourokuCommand(logger, registrationService, location))
	gateway := discord.NewGateway(logger, session, commands, config.DiscordGuildID, config.RemoveCommandsOnClose)

	// 5. Supervision
	health := server.NewHealthServer()
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(
		workers.NewGatewayWorker(logger, gateway),
		workers.NewHeartbeatWorker(logger, repository, gateway, health, metrics, config.HeartbeatInterval),
	)

	if config.DebugPort > 0 {
		debugServer := internal.NewDebugServer(logger, repository, registry, statsProvider(config, gateway), location)
		logger.Info("Debug inspector available", "url", fmt.Sprintf("http://localhost:%d/inspect", config.DebugPort))
		sup.Add(workers.NewHTTPServerWorker(logger, debugServer.HTTPServer(config.DebugPort)))
	}

	if config.GRPCHealthPort > 0 {
		s := grpc.NewServer(grpc.ChainUnaryInterceptor(grpc3.UnaryLoggingInterceptor(logger)))
		health.Register(s)
		address := fmt.Sprintf("0.0.0.0:%d", config.GRPCHealthPort)
		sup.Add(workers.NewGRPCServerWorker(logger, s, address))
		defer health.Shutdown()
	}

	// 6. Run until a signal arrives
	logger.Info("Starting touroku",
		"backend", config.Backend(),
		"sequential_writes", config.SequentialWrites,
		"verify_writes", config.VerifyWrites,
		"timezone", location.String(),
	)
	sup.Run(ctx)
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func openRepository(ctx context.Context, config internal.Config, logger *slog.Logger) (repositories.IRegistrationRepository, error) {
	switch config.Backend() {
	case internal.BackendBadger:
		db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
		if err != nil {
			return nil, err
		}
		return repositories.NewBadgerRegistrationRepository(db, logger), nil
	case internal.BackendRedis:
		return repositories.OpenRedisRegistrationRepository(ctx, config.RedisURL, logger)
	default:
		return repositories.OpenMongoRegistrationRepository(
			ctx, config.MongoConnectionURL, config.MongoDatabase, config.MongoCollection, logger,
		)
	}
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}
	return options
}

func statsProvider(config internal.Config, gateway workers.ConnectionState) internal.StatsProvider {
	started := time.Now()
	return func() map[string]any {
		stats := map[string]any{
			"Backend":    config.Backend(),
			"Uptime":     time.Since(started).Round(time.Second).String(),
			"Goroutines": runtime.NumGoroutine(),
			"Gateway":    gateway.Connected(),
		}
		if p, err := observability.SelfProcess(); err == nil {
			if ps, err := observability.ReadProcessStats(p); err == nil {
				stats["Status"] = ps.Status
				stats["RSS"] = fmt.Sprintf("%.1f MiB", float64(ps.RSSBytes)/(1<<20))
			}
		}
		return stats
	}
}
