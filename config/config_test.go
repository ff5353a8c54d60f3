package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ASSISTANT_SERVICE_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "assistant-events", cfg.Redis.Channel)
	assert.Equal(t, "openai", cfg.Model.Provider)
	assert.Equal(t, 400*time.Millisecond, cfg.GatherWindow)
	assert.Equal(t, 40, cfg.ChunkSize)
	assert.Equal(t, 1.0, cfg.DefaultTemperature)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ASSISTANT_SERVICE_KEY", "secret")
	t.Setenv("ASSISTANT_LISTEN_ADDR", ":9999")
	t.Setenv("ASSISTANT_MODEL_PROVIDER", "anthropic")
	t.Setenv("ASSISTANT_GATHER_WINDOW", "1s")
	t.Setenv("ASSISTANT_CHUNK_SIZE", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, "anthropic", cfg.Model.Provider)
	assert.Equal(t, time.Second, cfg.GatherWindow)
	assert.Equal(t, 10, cfg.ChunkSize)
}

func TestLoad_ProviderCredentials(t *testing.T) {
	t.Setenv("ASSISTANT_SERVICE_KEY", "secret")
	t.Setenv("OPENAI_API_KEY", "sk-openai-test")
	t.Setenv("ANTHROPIC_API_KEY", "sk-anthropic-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-openai-test", cfg.Model.OpenAIAPIKey)
	assert.Equal(t, "sk-anthropic-test", cfg.Model.AnthropicAPIKey)
}

func TestLoad_RequiresServiceKey(t *testing.T) {
	t.Setenv("ASSISTANT_SERVICE_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ASSISTANT_SERVICE_KEY")
}

func TestValidate_RejectsBadValues(t *testing.T) {
	base := func() *Config {
		return &Config{
			ServiceKey:   "secret",
			Model:        ModelConfig{Provider: "openai"},
			GatherWindow: 400 * time.Millisecond,
			ChunkSize:    40,
		}
	}

	cfg := base()
	cfg.Model.Provider = "carrier-pigeon"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.GatherWindow = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.ChunkSize = -1
	assert.Error(t, cfg.Validate())
}
