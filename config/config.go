// Package config loads runtime tunables from the environment (§6.5),
// falling back silently to defaults on any parse failure. Grounded on the
// .env-then-environment layering convention via github.com/joho/godotenv,
// the same library goadesign-goa-ai's example commands use for local dev.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/supervisorrt/orchestrator/perf"
	"github.com/supervisorrt/orchestrator/state"
	"github.com/supervisorrt/orchestrator/supervisor"
)

// Config is the fully-resolved set of §6.5 tunables.
type Config struct {
	Supervisor             supervisor.Config
	SemanticCacheThreshold float64
	CacheTTLDays           int
	EnableRuleEngine       bool
	EnableSemanticCache    bool
}

// Load reads a local .env file if present (missing is not an error, per
// godotenv.Load's usual convention), then reads each §6.5 variable from the
// environment, substituting its default whenever the variable is absent or
// fails to parse.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Supervisor: supervisor.Config{
			MaxIterations:  state.DefaultMaxIterations,
			MaxTaskSteps:   state.DefaultMaxTaskSteps,
			EnablePlanning: true,
		},
		SemanticCacheThreshold: perf.DefaultSimilarityThreshold,
		CacheTTLDays:           7,
		EnableRuleEngine:       true,
		EnableSemanticCache:    true,
	}

	cfg.Supervisor.MaxIterations = envInt("SUPERVISOR_MAX_ITERATIONS", cfg.Supervisor.MaxIterations)
	cfg.Supervisor.MaxTaskSteps = envInt("SUPERVISOR_MAX_TASK_STEPS", cfg.Supervisor.MaxTaskSteps)
	cfg.Supervisor.EnablePlanning = envBool("SUPERVISOR_ENABLE_PLANNING", cfg.Supervisor.EnablePlanning)
	cfg.SemanticCacheThreshold = envFloat("SEMANTIC_CACHE_THRESHOLD", cfg.SemanticCacheThreshold)
	cfg.CacheTTLDays = envInt("CACHE_TTL_DAYS", cfg.CacheTTLDays)
	cfg.EnableRuleEngine = envBool("ENABLE_RULE_ENGINE", cfg.EnableRuleEngine)
	cfg.EnableSemanticCache = envBool("ENABLE_SEMANTIC_CACHE", cfg.EnableSemanticCache)

	return cfg
}

func envInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
