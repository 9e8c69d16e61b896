package config

import (
	"flag"
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	ContextPath  string
	SettingsPath string
	DBPath       string
	Workers      int
	Baseline     bool
	Debug        bool
}

// Load parses command line flags and environment variables to populate
// Config. Flags take precedence over environment variables.
func Load() *Config {
	cfg := &Config{}

	// Defaults and Environment Variables
	cfg.ContextPath = getEnv("RISKMAP_CONTEXT", "")
	cfg.SettingsPath = getEnv("RISKMAP_SETTINGS", "")
	cfg.DBPath = getEnv("RISKMAP_DB", "")
	cfg.Workers = getEnvInt("RISKMAP_WORKERS", 4)

	// Command Line Flags (Override Env)
	flag.StringVar(&cfg.ContextPath, "context", cfg.ContextPath, "Path to the JSON context document (entities and signals)")
	flag.StringVar(&cfg.SettingsPath, "settings", cfg.SettingsPath, "Path to the YAML engine settings file (empty for defaults)")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite database (empty for in-memory only)")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of concurrent scoring workers")
	flag.BoolVar(&cfg.Baseline, "baseline", false, "Capture drift baselines for all entities instead of scoring")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable verbose debug logging")

	flag.Parse()

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
