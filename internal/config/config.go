package config

import (
	"os"
	"strings"
	"time"
	"wls-leaderboard/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	WLSBaseURL         string
	WLSAPIKey          string
	DBPath             string
	ServerPort         string
	LogLevel           string
	FlagsURL           string
	PollInterval       time.Duration
	PollLeaderboards   []string
	ExcludedSessionIDs []string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		WLSBaseURL:         getEnv("WLS_BASE_URL", "https://api.wls.gg"),
		WLSAPIKey:          getEnv("WLS_API_KEY", ""),
		DBPath:             getEnv("DB_PATH", "leaderboards.db"),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		FlagsURL:           getEnv("FLAGS_URL", ""),
		PollInterval:       getDuration("POLL_INTERVAL", constants.PollIntervalDefault, logger),
		PollLeaderboards:   getList("POLL_LEADERBOARDS"),
		ExcludedSessionIDs: getList("EXCLUDE_SESSION_IDS"),
	}

	if cfg.PollInterval < constants.PollIntervalMin {
		logger.Warn().Dur("poll_interval", cfg.PollInterval).Msg("poll interval below minimum, clamping")
		cfg.PollInterval = constants.PollIntervalMin
	}

	logger.Info().
		Str("wls_base_url", cfg.WLSBaseURL).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Dur("poll_interval", cfg.PollInterval).
		Strs("poll_leaderboards", cfg.PollLeaderboards).
		Int("excluded_session_ids", len(cfg.ExcludedSessionIDs)).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration, logger zerolog.Logger) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", v).Msg("invalid duration, using default")
		return fallback
	}
	return d
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var Module = fx.Provide(Load)
