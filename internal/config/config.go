// Package config loads process-wide settings from the environment (and an
// optional .env file via godotenv), read once at startup (spec §6.5,
// grounded on config.py's module-level constants).
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Backend selects which LLM transport a Config routes to.
type Backend string

const (
	BackendGonka      Backend = "gonka"
	BackendOpenRouter Backend = "openrouter"
)

// Config is the full set of tunables for one process run.
type Config struct {
	MaxTurnsPerTask   int
	DefaultThreads    int
	LLMRetryAttempts  int
	MaxNodeSwitches   int

	Backend          Backend
	ModelGonka       string
	ModelOpenRouter  string
	PricingModel     string

	APIBaseURL string
	APIKey     string

	GonkaPrivateKey   string
	OpenRouterAPIKey  string

	LogsDir     string
	WikiDumpDir string

	RedisAddr string
}

// Load reads a .env file if present (ignoring its absence) and builds a
// Config from the environment, falling back to the same defaults config.py
// hard-codes.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	c := &Config{
		MaxTurnsPerTask:  envInt("MAX_TURNS_PER_TASK", 20),
		DefaultThreads:   envInt("DEFAULT_THREADS", 1),
		LLMRetryAttempts: envInt("LLM_RETRY_ATTEMPTS", 3),
		MaxNodeSwitches:  envInt("LLM_MAX_NODE_SWITCHES", 10),

		Backend:         Backend(envString("LLM_BACKEND", string(BackendGonka))),
		ModelGonka:      envString("MODEL_GONKA", "qwen/qwen3-30b-a3b-instruct-2507"),
		ModelOpenRouter: envString("MODEL_OPENROUTER", "qwen/qwen3-235b-a22b-2507"),
		PricingModel:    envString("PRICING_MODEL", "qwen/qwen3-235b-a22b"),

		APIBaseURL: envString("API_BASE_URL", "https://erc.timetoact-group.at"),
		APIKey:     envString("ERC3_API_KEY", ""),

		GonkaPrivateKey:  envString("GONKA_PRIVATE_KEY", ""),
		OpenRouterAPIKey: envString("OPENROUTER_API_KEY", ""),

		LogsDir:     envString("LOGS_DIR", "logs"),
		WikiDumpDir: envString("WIKI_DUMP_DIR", "wiki_dump"),

		RedisAddr: envString("REDIS_ADDR", "localhost:6379"),
	}
	return c, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
