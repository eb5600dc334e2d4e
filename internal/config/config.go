package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration values. Precedence is defaults, then the
// optional YAML file, then environment variables.
type Config struct {
	// HTTP server
	ListenAddr     string        `yaml:"listen_addr"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Auth
	JWTSecret       string        `yaml:"jwt_secret"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`

	// Rate limiting on /api/auth
	AuthRateLimit  int           `yaml:"auth_rate_limit"`
	AuthRateWindow time.Duration `yaml:"auth_rate_window"`

	// SurrealDB connection
	SurrealDBURL       string `yaml:"surrealdb_url"`
	SurrealDBNamespace string `yaml:"surrealdb_namespace"`
	SurrealDBDatabase  string `yaml:"surrealdb_database"`
	SurrealDBUser      string `yaml:"surrealdb_user"`
	SurrealDBPass      string `yaml:"surrealdb_pass"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`

	LogLevelName string `yaml:"log_level"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		ListenAddr:     ":8686",
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
		RequestTimeout: 30 * time.Second,

		AccessTokenTTL:  30 * 24 * time.Hour,
		RefreshTokenTTL: 90 * 24 * time.Hour,

		AuthRateLimit:  100,
		AuthRateWindow: 15 * time.Minute,

		SurrealDBURL:       "ws://localhost:8000/rpc",
		SurrealDBNamespace: "flowmind",
		SurrealDBDatabase:  "app",
		SurrealDBUser:      "root",
		SurrealDBPass:      "root",

		LogFile:      "/tmp/flowmind.log",
		LogLevelName: "INFO",
	}
}

// Load builds the configuration: defaults, overlaid with the YAML file named
// by FLOWMIND_CONFIG (if set), overlaid with FLOWMIND_* environment
// variables.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("FLOWMIND_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("FLOWMIND_JWT_SECRET is required")
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.ListenAddr, "FLOWMIND_LISTEN_ADDR")
	if v := os.Getenv("FLOWMIND_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitAndTrim(v)
	}
	setDuration(&cfg.RequestTimeout, "FLOWMIND_REQUEST_TIMEOUT")

	setString(&cfg.JWTSecret, "FLOWMIND_JWT_SECRET")
	setDuration(&cfg.AccessTokenTTL, "FLOWMIND_ACCESS_TOKEN_TTL")
	setDuration(&cfg.RefreshTokenTTL, "FLOWMIND_REFRESH_TOKEN_TTL")

	setInt(&cfg.AuthRateLimit, "FLOWMIND_AUTH_RATE_LIMIT")
	setDuration(&cfg.AuthRateWindow, "FLOWMIND_AUTH_RATE_WINDOW")

	setString(&cfg.SurrealDBURL, "SURREALDB_URL")
	setString(&cfg.SurrealDBNamespace, "SURREALDB_NAMESPACE")
	setString(&cfg.SurrealDBDatabase, "SURREALDB_DATABASE")
	setString(&cfg.SurrealDBUser, "SURREALDB_USER")
	setString(&cfg.SurrealDBPass, "SURREALDB_PASS")

	setString(&cfg.LogFile, "FLOWMIND_LOG_FILE")
	setString(&cfg.LogLevelName, "FLOWMIND_LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
