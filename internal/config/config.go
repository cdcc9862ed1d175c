// Package config validates and exposes the process environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/ulule/limiter/v3"
)

// Config holds validated environment configuration for the signaling core.
type Config struct {
	Port string

	CORSOrigins []string

	RemoteControlToken string

	RoomAutoCreateOnJoin   bool
	AllowSameMachineRemote bool
	RemoteDebug            bool

	DownloadZipPath string

	RedisAddr     string
	RedisPassword string

	RateLimitWSIP    string
	RateLimitWSEvent string

	OTLPEndpoint string
}

// Load reads and validates environment configuration, following the
// teacher's internal/v1/config.ValidateEnv: collect every violation found
// across the supplied variables and return them as one aggregated error
// instead of failing fast on the first bad field.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                   getEnvOrDefault("PORT", "5000"),
		CORSOrigins:            splitOrigins(getEnvOrDefault("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
		RemoteControlToken:     strings.TrimSpace(os.Getenv("REMOTE_CONTROL_TOKEN")),
		RoomAutoCreateOnJoin:   os.Getenv("ROOM_AUTO_CREATE_ON_JOIN") != "0",
		AllowSameMachineRemote: os.Getenv("ALLOW_SAME_MACHINE_REMOTE") == "1",
		RemoteDebug:            os.Getenv("REMOTE_DEBUG") == "1",
		DownloadZipPath:        os.Getenv("HOST_APP_DOWNLOAD_PATH"),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RateLimitWSIP:          getEnvOrDefault("RATE_LIMIT_WS_IP", "100-M"),
		RateLimitWSEvent:       getEnvOrDefault("RATE_LIMIT_WS_EVENT", "300-M"),
		OTLPEndpoint:           os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	var violations []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		violations = append(violations, fmt.Sprintf("PORT must be a valid port number between 1 and 65535 (got %q)", cfg.Port))
	}

	for _, origin := range cfg.CORSOrigins {
		if origin == "*" || strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://") {
			continue
		}
		violations = append(violations, fmt.Sprintf("CORS_ORIGINS entry %q must be \"*\" or start with http:// or https://", origin))
	}

	if cfg.RedisAddr != "" && !isValidHostPort(cfg.RedisAddr) {
		violations = append(violations, fmt.Sprintf("REDIS_ADDR must be in format 'host:port' (got %q)", cfg.RedisAddr))
	}

	if _, err := limiter.NewRateFromFormatted(cfg.RateLimitWSIP); err != nil {
		violations = append(violations, fmt.Sprintf("RATE_LIMIT_WS_IP is not a valid rate (got %q): %v", cfg.RateLimitWSIP, err))
	}
	if _, err := limiter.NewRateFromFormatted(cfg.RateLimitWSEvent); err != nil {
		violations = append(violations, fmt.Sprintf("RATE_LIMIT_WS_EVENT is not a valid rate (got %q): %v", cfg.RateLimitWSEvent, err))
	}

	if len(violations) > 0 {
		return nil, fmt.Errorf("environment validation failed:\n  - %s", strings.Join(violations, "\n  - "))
	}

	logValidatedConfig(cfg)
	return cfg, nil
}

func isValidHostPort(addr string) bool {
	parts := strings.Split(addr, ":")
	if len(parts) != 2 || parts[0] == "" {
		return false
	}
	port, err := strconv.Atoi(parts[1])
	return err == nil && port >= 1 && port <= 65535
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func logValidatedConfig(cfg *Config) {
	slog.Info("configuration loaded",
		"port", cfg.Port,
		"corsOrigins", cfg.CORSOrigins,
		"remoteControlTokenSet", cfg.RemoteControlToken != "",
		"roomAutoCreateOnJoin", cfg.RoomAutoCreateOnJoin,
		"allowSameMachineRemote", cfg.AllowSameMachineRemote,
		"remoteDebug", cfg.RemoteDebug,
		"redisEnabled", cfg.RedisAddr != "",
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
