package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Weekly goal scopes accepted by WEEKLY_GOALS_SCOPE.
const (
	ScopeAllTime      = "all-time"
	ScopeCalendarWeek = "calendar-week"
)

type Config struct {
	Addr               string
	DBPath             string
	LogLevel           string
	JWTSecret          string
	TokenTTL           time.Duration
	CORSAllowedOrigins []string
	WorkerCount        int
	WorkerQueueSize    int
	WeeklyGoalsScope   string
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:               envOr("ADDR", ":8080"),
		DBPath:             envOr("DB_PATH", "file:abacusquest.db"),
		LogLevel:           envOr("LOG_LEVEL", "INFO"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		TokenTTL:           envDurationOr("TOKEN_TTL", 30*24*time.Hour),
		CORSAllowedOrigins: envListOr("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		WorkerCount:        envIntOr("WORKER_COUNT", 2),
		WorkerQueueSize:    envIntOr("WORKER_QUEUE_SIZE", 64),
		WeeklyGoalsScope:   envOr("WEEKLY_GOALS_SCOPE", ScopeAllTime),
	}
}

// Validate reports the first invalid setting, naming its environment variable.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel)
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.WorkerCount < 1 || c.WorkerCount > 32 {
		return fmt.Errorf("WORKER_COUNT must be between 1 and 32 (got %d)", c.WorkerCount)
	}
	if c.WorkerQueueSize < 1 {
		return fmt.Errorf("WORKER_QUEUE_SIZE must be positive (got %d)", c.WorkerQueueSize)
	}
	if c.WeeklyGoalsScope != ScopeAllTime && c.WeeklyGoalsScope != ScopeCalendarWeek {
		return fmt.Errorf("WEEKLY_GOALS_SCOPE must be %q or %q (got %q)", ScopeAllTime, ScopeCalendarWeek, c.WeeklyGoalsScope)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}

// envListOr splits a comma separated variable, dropping empty entries.
func envListOr(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
