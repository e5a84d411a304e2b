package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Stores to run the registration flow against, empty ones are skipped
	MongoURL   string `envconfig:"E2E_MONGODB_URL"`
	MongoDB    string `envconfig:"E2E_MONGODB_DATABASE" default:"discord_bot_e2e"`
	RedisURL   string `envconfig:"E2E_REDIS_URL"`
	HealthAddr string `envconfig:"E2E_HEALTH_ADDR"`
	// E2E_DEBUG_JSON allows dumping full gRPC request/response bodies as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
