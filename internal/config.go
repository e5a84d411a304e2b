package internal

import (
	"fmt"
	"strings"
	"time"
	"touroku/errors"

	// Embedded zone database so TIMEZONE resolves on slim images.
	_ "time/tzdata"
)

const (
	BackendMongo  = "mongo"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

type Config struct {
	DiscordBotToken       string        `env:"DISCORD_BOT_TOKEN,required=true"`
	DiscordGuildID        string        `env:"DISCORD_GUILD_ID"`
	RemoveCommandsOnClose bool          `env:"REMOVE_COMMANDS_ON_CLOSE,default=false"`
	StoreBackend          string        `env:"STORE_BACKEND,default=mongo"`
	MongoConnectionURL    string        `env:"MONGODB_CONNECTION_URL"`
	MongoDatabase         string        `env:"MONGODB_DATABASE,default=discord_bot"`
	MongoCollection       string        `env:"MONGODB_COLLECTION,default=csn_data"`
	RedisURL              string        `env:"REDIS_URL"`
	BadgerFilepath        string        `env:"BADGER_FILEPATH"`
	Timezone              string        `env:"TIMEZONE,default=Asia/Tokyo"`
	LogLevel              string        `env:"LOG_LEVEL,default=INFO"`
	CommandTimeout        time.Duration `env:"COMMAND_TIMEOUT,default=3s"`
	HeartbeatInterval     time.Duration `env:"HEARTBEAT_INTERVAL,default=15s"`
	RestartInterval       time.Duration `env:"RESTART_INTERVAL,default=2s"`
	SequentialWrites      bool          `env:"SEQUENTIAL_WRITES,default=false"`
	VerifyWrites          bool          `env:"VERIFY_WRITES,default=false"`
	DebugPort             int           `env:"DEBUG_PORT,default=0"`
	GRPCHealthPort        int           `env:"GRPC_HEALTH_PORT,default=0"`
}

// Validate checks the settings go-env cannot express on its own,
// such as the connection value the chosen backend needs.
func (c Config) Validate() error {
	switch c.Backend() {
	case BackendMongo:
		if c.MongoConnectionURL == "" {
			return fmt.Errorf("MONGODB_CONNECTION_URL is required for the %s backend", BackendMongo)
		}
	case BackendBadger:
		if c.BadgerFilepath == "" {
			return fmt.Errorf("BADGER_FILEPATH is required for the %s backend", BackendBadger)
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the %s backend", BackendRedis)
		}
	default:
		return fmt.Errorf("%w: %q", errors.ErrUnknownBackend, c.StoreBackend)
	}

	if c.CommandTimeout <= 0 {
		return fmt.Errorf("COMMAND_TIMEOUT must be positive, got %s", c.CommandTimeout)
	}
	if c.DebugPort < 0 || c.GRPCHealthPort < 0 {
		return fmt.Errorf("ports must not be negative")
	}
	_, err := c.Location()
	return err
}

func (c Config) Backend() string {
	return strings.ToLower(strings.TrimSpace(c.StoreBackend))
}

// Location resolves TIMEZONE, used only to display registration times.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}
