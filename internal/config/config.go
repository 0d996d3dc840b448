package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingAPIKey is returned by Load when GEMINI_API_KEY is unset.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY environment variable not found")

type Config struct {
	Port      int
	StaticDir string

	GeminiKey       string
	GeminiModel     string
	ProviderTimeout time.Duration

	LogLevel    string
	CORSOrigins []string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
}

func Load() (*Config, error) {
	key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if key == "" {
		return nil, ErrMissingAPIKey
	}

	port, err := intEnv("PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("PORT out of range: %d", port)
	}

	// DB_PORT: как и раньше, тихий fallback на дефолт постгреса
	dbPort, err := intEnv("DB_PORT", 5432)
	if err != nil {
		dbPort = 5432
	}

	timeout := 30 * time.Second
	if v := strings.TrimSpace(os.Getenv("PROVIDER_TIMEOUT")); v != "" {
		timeout, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse PROVIDER_TIMEOUT: %w", err)
		}
		if timeout <= 0 {
			return nil, fmt.Errorf("PROVIDER_TIMEOUT must be positive, got %s", timeout)
		}
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.5-flash"
	}

	level := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	switch level {
	case "":
		level = "info"
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("unknown LOG_LEVEL %q", level)
	}

	return &Config{
		Port:      port,
		StaticDir: os.Getenv("STATIC_DIR"),

		GeminiKey:       key,
		GeminiModel:     model,
		ProviderTimeout: timeout,

		LogLevel:    level,
		CORSOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS"), "*"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     dbPort,
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
	}, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// AnalyticsEnabled reports whether a database was configured for request events.
func (c *Config) AnalyticsEnabled() bool {
	return c.DBHost != ""
}

func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

func intEnv(name string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("parse %s: %w", name, err)
	}
	return n, nil
}

func splitList(v, fallback string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{fallback}
	}
	return out
}
