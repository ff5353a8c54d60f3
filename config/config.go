// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the service. All values come from
// the environment; defaults cover everything except the credentials.
type Config struct {
	// ListenAddr is the HTTP bind address.
	ListenAddr string `env:"ASSISTANT_LISTEN_ADDR" envDefault:":8080"`

	// ServiceKey is the bearer token callers must present. Required.
	ServiceKey string `env:"ASSISTANT_SERVICE_KEY"`

	Redis RedisConfig
	Model ModelConfig

	// GatherWindow bounds the wait for correlated agent notes per request.
	GatherWindow time.Duration `env:"ASSISTANT_GATHER_WINDOW" envDefault:"400ms"`

	// ChunkSize is the character count per streamed content slice.
	ChunkSize int `env:"ASSISTANT_CHUNK_SIZE" envDefault:"40"`

	// DefaultTemperature applies when a request does not set one.
	DefaultTemperature float64 `env:"ASSISTANT_DEFAULT_TEMPERATURE" envDefault:"1.0"`

	Log LogConfig
}

// RedisConfig configures the shared event stream.
type RedisConfig struct {
	Addr     string `env:"ASSISTANT_REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"ASSISTANT_REDIS_PASSWORD"`
	DB       int    `env:"ASSISTANT_REDIS_DB" envDefault:"0"`
	Channel  string `env:"ASSISTANT_EVENT_CHANNEL" envDefault:"assistant-events"`
}

// ModelConfig selects and configures the generation backend.
type ModelConfig struct {
	// Provider is one of "openai", "anthropic", "mock".
	Provider string `env:"ASSISTANT_MODEL_PROVIDER" envDefault:"openai"`
	Name     string `env:"ASSISTANT_MODEL_NAME" envDefault:"gpt-4o-mini"`

	// MaxCompletionTokens caps each generation; 0 leaves the provider default.
	MaxCompletionTokens int `env:"ASSISTANT_MAX_COMPLETION_TOKENS" envDefault:"0"`

	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `env:"ASSISTANT_LOG_LEVEL" envDefault:"info"`
	Format string `env:"ASSISTANT_LOG_FORMAT" envDefault:"text"` // "text" or "json"
}

// Load reads a .env file if one exists, then parses the environment.
func Load() (*Config, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks constraints the env tags cannot express.
func (c *Config) Validate() error {
	if c.ServiceKey == "" {
		return fmt.Errorf("ASSISTANT_SERVICE_KEY must be set")
	}
	switch c.Model.Provider {
	case "openai", "anthropic", "mock":
	default:
		return fmt.Errorf("unknown model provider %q", c.Model.Provider)
	}
	if c.GatherWindow <= 0 {
		return fmt.Errorf("gather window must be positive, got %s", c.GatherWindow)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	return nil
}
