package config

import (
	"reflect"
	"strings"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestParseServices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    map[ServiceMode]bool
		expectError bool
	}{
		{
			name:        "single service - http",
			input:       "http",
			expected:    map[ServiceMode]bool{ServiceModeHTTP: true},
			expectError: false,
		},
		{
			name:        "single service - crosstab",
			input:       "crosstab",
			expected:    map[ServiceMode]bool{ServiceModeCrossTab: true},
			expectError: false,
		},
		{
			name:        "both services",
			input:       "http,crosstab",
			expected:    map[ServiceMode]bool{ServiceModeHTTP: true, ServiceModeCrossTab: true},
			expectError: false,
		},
		{
			name:        "whitespace tolerated",
			input:       " http , crosstab ",
			expected:    map[ServiceMode]bool{ServiceModeHTTP: true, ServiceModeCrossTab: true},
			expectError: false,
		},
		{
			name:        "invalid service name",
			input:       "http,scheduler",
			expectError: true,
		},
		{
			name:        "empty string",
			input:       "",
			expectError: true,
		},
		{
			name:        "only commas",
			input:       ",,",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseServices(tt.input)
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error for input %q, got none", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Fatalf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Auth.Mode != AuthModeOIDC {
		t.Errorf("default auth mode = %q, want oidc", cfg.Auth.Mode)
	}
	if cfg.Session.InitTimeout != 5*time.Second {
		t.Errorf("default init timeout = %v, want 5s", cfg.Session.InitTimeout)
	}
	if cfg.Gate.SafetyTimeout != 8*time.Second {
		t.Errorf("default safety timeout = %v, want 8s", cfg.Gate.SafetyTimeout)
	}
	if !reflect.DeepEqual(cfg.Gate.ExceptionPaths, []string{"/app/billing", "/app/checkout"}) {
		t.Errorf("default exception paths = %v", cfg.Gate.ExceptionPaths)
	}
	if !cfg.IsHTTPServerEnabled() || !cfg.IsCrossTabSyncEnabled() {
		t.Errorf("default services should enable http and crosstab, got %q", cfg.Services)
	}
}

func TestAuthMode_UnmarshalText(t *testing.T) {
	var m AuthMode
	if err := m.UnmarshalText([]byte("DEV")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m != AuthModeDev {
		t.Errorf("got %q, want dev", m)
	}

	if err := m.UnmarshalText([]byte("oauth")); err == nil {
		t.Error("expected error for invalid mode")
	}
}

func TestGateConfig_Sanitize(t *testing.T) {
	cfg := GateConfig{
		SafetyTimeout:    -1,
		RedirectCooldown: 0,
		ExceptionPaths:   []string{" billing ", "", "/checkout"},
	}
	cfg.Sanitize()

	if cfg.SafetyTimeout != 8*time.Second {
		t.Errorf("sanitized safety timeout = %v", cfg.SafetyTimeout)
	}
	if cfg.RedirectCooldown != 2*time.Second {
		t.Errorf("sanitized cooldown = %v", cfg.RedirectCooldown)
	}
	if !reflect.DeepEqual(cfg.ExceptionPaths, []string{"/billing", "/checkout"}) {
		t.Errorf("sanitized exception paths = %v", cfg.ExceptionPaths)
	}
	if cfg.LoginPath != "/login" || cfg.DashboardPath != "/dashboard" || cfg.CheckoutPath != "/app/checkout" {
		t.Errorf("sanitized fallback paths = %q %q %q", cfg.LoginPath, cfg.DashboardPath, cfg.CheckoutPath)
	}
}

// The router mounts the member gate on /app/, so the exception paths and
// the checkout target only take effect when they live under that prefix.
func TestGateConfig_DefaultsLiveInsideMemberArea(t *testing.T) {
	var cfg GateConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	for _, p := range cfg.ExceptionPaths {
		if !strings.HasPrefix(p, "/app/") {
			t.Errorf("exception path %q is outside the member area", p)
		}
	}
	if !strings.HasPrefix(cfg.CheckoutPath, "/app/") {
		t.Errorf("checkout path %q is outside the member area", cfg.CheckoutPath)
	}
}

func TestSessionConfig_Sanitize(t *testing.T) {
	cfg := SessionConfig{SettleDelay: -time.Second}
	cfg.Sanitize()

	if cfg.SettleDelay != 0 {
		t.Errorf("sanitized settle delay = %v", cfg.SettleDelay)
	}
	if cfg.InitTimeout != 5*time.Second || cfg.ProfileTimeout != 5*time.Second {
		t.Errorf("sanitized timeouts = %v %v", cfg.InitTimeout, cfg.ProfileTimeout)
	}
}

func TestObservabilityConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityConfig{LogLevel: " WARN ", LogFormat: "yaml"}
	cfg.Sanitize()

	if cfg.LogLevel != "warn" {
		t.Errorf("sanitized log level = %q", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("sanitized log format = %q", cfg.LogFormat)
	}
}
