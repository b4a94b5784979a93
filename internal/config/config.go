package config

import (
	"os"
)

type Config struct {
	DatabaseURL string
	Port        string
	Environment string

	// DevTools endpoint the capture host exposes, and the substring a
	// tab's URL must contain to be picked as the feed source.
	DevToolsURL string
	MatchURL    string

	// RawFrameLog, when non-empty, is an append-only file receiving every
	// inbound frame for later replay.
	RawFrameLog string
}

func Load() *Config {
	defaultDSN := "root:empire@tcp(127.0.0.1:3306)/empire_monitor?charset=utf8mb4&parseTime=True&loc=Local"

	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", defaultDSN),
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		DevToolsURL: getEnv("DEVTOOLS_URL", "http://127.0.0.1:9222"),
		MatchURL:    getEnv("MATCH_URL", "csgoempire"),
		RawFrameLog: getEnv("RAW_FRAME_LOG", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
