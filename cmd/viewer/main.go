package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"
	"touroku/internal"
	"touroku/repositories"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

type Config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	DebugPort      int    `env:"DEBUG_PORT,default=8081"`
	Timezone       string `env:"TIMEZONE,default=Asia/Tokyo"`
	LogLevel       string `env:"LOG_LEVEL,default=INFO"`
}

func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	location, err := internal.Config{Timezone: config.Timezone}.Location()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Open Badger in Read-Only mode
	// BypassLockGuard allows opening while the bot holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	repository := repositories.NewBadgerRegistrationRepository(db, logger)
	defer func() { _ = repository.Close(context.Background()) }()

	// 3. Serve the inspector only, no metrics since no service runs here
	viewerStats := func() map[string]any {
		return map[string]any{
			"Status": "Viewer Mode (Read-Only)",
			"Time":   time.Now().In(location).Format(time.RFC822),
		}
	}
	server := internal.NewDebugServer(logger, repository, nil, viewerStats, location).HTTPServer(config.DebugPort)

	logger.Info("Viewer started", "url", fmt.Sprintf("http://localhost:%d/inspect", config.DebugPort))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Viewer stopped: %v", err)
	}
}
