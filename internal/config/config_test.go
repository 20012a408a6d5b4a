package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenEnvUnset(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.MaxTurnsPerTask)
	assert.Equal(t, BackendGonka, cfg.Backend)
	assert.Equal(t, "qwen/qwen3-30b-a3b-instruct-2507", cfg.ModelGonka)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("MAX_TURNS_PER_TASK", "42")
	t.Setenv("LLM_BACKEND", "openrouter")
	t.Setenv("OPENROUTER_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.MaxTurnsPerTask)
	assert.Equal(t, BackendOpenRouter, cfg.Backend)
	assert.Equal(t, "sk-test", cfg.OpenRouterAPIKey)
}

func TestLoad_InvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("DEFAULT_THREADS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.DefaultThreads)
}

func TestLoad_BlankEnvTreatedAsUnset(t *testing.T) {
	t.Setenv("LLM_RETRY_ATTEMPTS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.LLMRetryAttempts)
}
