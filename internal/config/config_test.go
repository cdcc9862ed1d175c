package config

import (
	"os"
	"strings"
	"testing"
)

func setupTestEnv(t *testing.T) func() {
	keys := []string{
		"PORT", "CORS_ORIGINS", "REMOTE_CONTROL_TOKEN", "ROOM_AUTO_CREATE_ON_JOIN",
		"ALLOW_SAME_MACHINE_REMOTE", "REMOTE_DEBUG", "HOST_APP_DOWNLOAD_PATH",
		"REDIS_ADDR", "REDIS_PASSWORD", "RATE_LIMIT_WS_IP", "RATE_LIMIT_WS_EVENT",
		"OTEL_EXPORTER_OTLP_ENDPOINT",
	}
	orig := make(map[string]string, len(keys))
	for _, k := range keys {
		orig[k] = os.Getenv(k)
		os.Unsetenv(k)
	}
	return func() {
		for _, k := range keys {
			if orig[k] != "" {
				os.Setenv(k, orig[k])
			} else {
				os.Unsetenv(k)
			}
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.Port != "5000" {
		t.Errorf("expected PORT to default to 5000, got %q", cfg.Port)
	}
	if !cfg.RoomAutoCreateOnJoin {
		t.Error("expected RoomAutoCreateOnJoin to default true")
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("expected two default CORS origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoad_InvalidPortAggregated(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	os.Setenv("PORT", "99999")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid PORT, got nil")
	}
	if !strings.Contains(err.Error(), "PORT must be a valid port number") {
		t.Errorf("expected PORT violation in error, got: %v", err)
	}
}

func TestLoad_InvalidCORSOriginAggregated(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	os.Setenv("CORS_ORIGINS", "not-a-url")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid CORS_ORIGINS entry, got nil")
	}
	if !strings.Contains(err.Error(), "CORS_ORIGINS entry") {
		t.Errorf("expected CORS_ORIGINS violation in error, got: %v", err)
	}
}

func TestLoad_InvalidRedisAddrAggregated(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	os.Setenv("REDIS_ADDR", "no-port-here")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid REDIS_ADDR, got nil")
	}
	if !strings.Contains(err.Error(), "REDIS_ADDR must be in format") {
		t.Errorf("expected REDIS_ADDR violation in error, got: %v", err)
	}
}

func TestLoad_InvalidRateLimitFormatAggregated(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	os.Setenv("RATE_LIMIT_WS_IP", "garbage")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid RATE_LIMIT_WS_IP, got nil")
	}
	if !strings.Contains(err.Error(), "RATE_LIMIT_WS_IP is not a valid rate") {
		t.Errorf("expected RATE_LIMIT_WS_IP violation in error, got: %v", err)
	}
}

func TestLoad_MultipleViolationsAggregateIntoOneError(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	os.Setenv("PORT", "0")
	os.Setenv("REDIS_ADDR", "bad")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "PORT must be a valid port number") || !strings.Contains(err.Error(), "REDIS_ADDR must be in format") {
		t.Errorf("expected both violations aggregated into one error, got: %v", err)
	}
}

func TestIsValidHostPort(t *testing.T) {
	tests := []struct {
		addr     string
		expected bool
	}{
		{"localhost:8080", true},
		{"127.0.0.1:3000", true},
		{"localhost", false},
		{":8080", false},
		{"localhost:99999", false},
		{"localhost:abc", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isValidHostPort(tt.addr); got != tt.expected {
			t.Errorf("isValidHostPort(%q) = %v, expected %v", tt.addr, got, tt.expected)
		}
	}
}
