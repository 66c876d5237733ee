package middleware

import (
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap/zapcore"
)

func TestRateLimitKey(t *testing.T) {
	key := rateLimitKey("/api/auth/login", "203.0.113.9")
	if key != "tenantbase:rl:/api/auth/login:203.0.113.9" {
		t.Errorf("key = %q", key)
	}

	// Distinct paths from the same IP bucket separately.
	other := rateLimitKey("/api/users", "203.0.113.9")
	if key == other {
		t.Error("different paths must not share a counter")
	}
	if !strings.HasPrefix(key, "tenantbase:rl:") {
		t.Errorf("key %q missing namespace prefix", key)
	}
}

func TestValidRequestID(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		expected bool
	}{
		{"empty", "", false},
		{"uuid", "0f8fad5b-d9cb-469f-a165-70867728950e", true},
		{"short opaque", "abc123", true},
		{"at limit", strings.Repeat("a", maxRequestIDLen), true},
		{"over limit", strings.Repeat("a", maxRequestIDLen+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validRequestID(tt.id); got != tt.expected {
				t.Errorf("validRequestID(%q) = %v, want %v", tt.id, got, tt.expected)
			}
		})
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		status   int
		expected zapcore.Level
	}{
		{fiber.StatusOK, zapcore.InfoLevel},
		{fiber.StatusCreated, zapcore.InfoLevel},
		{fiber.StatusMovedPermanently, zapcore.InfoLevel},
		{fiber.StatusBadRequest, zapcore.WarnLevel},
		{fiber.StatusUnauthorized, zapcore.WarnLevel},
		{fiber.StatusNotFound, zapcore.WarnLevel},
		{fiber.StatusInternalServerError, zapcore.ErrorLevel},
		{fiber.StatusBadGateway, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		if got := levelFor(tt.status); got != tt.expected {
			t.Errorf("levelFor(%d) = %v, want %v", tt.status, got, tt.expected)
		}
	}
}
