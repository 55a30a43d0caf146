package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Skeleton modes: how the original event stream is obtained at merge time.
const (
	SkeletonModeFilter = "filter"
	SkeletonModeReplay = "replay"
)

type Config struct {
	// DatabaseURL enables the merge history in PostgreSQL when set.
	DatabaseURL  string
	WorkerCount  int
	LogLevel     zerolog.Level
	Handoff      bool
	SkeletonMode string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		WorkerCount:  getEnvInt("KITMERGE_WORKERS", 4),
		LogLevel:     getEnvLevel("KITMERGE_LOG_LEVEL", zerolog.InfoLevel),
		Handoff:      getEnvBool("KITMERGE_HANDOFF", false),
		SkeletonMode: getEnvMode("KITMERGE_SKELETON_MODE", SkeletonModeFilter),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func getEnvLevel(key string, fallback zerolog.Level) zerolog.Level {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(v))
	if err != nil {
		log.Warn().Str("level", v).Msg("Unknown log level, using default")
		return fallback
	}
	return lvl
}

func getEnvMode(key, fallback string) string {
	switch v := strings.ToLower(os.Getenv(key)); v {
	case SkeletonModeFilter, SkeletonModeReplay:
		return v
	case "":
		return fallback
	default:
		log.Warn().Str("mode", v).Msg("Unknown skeleton mode, using default")
		return fallback
	}
}
