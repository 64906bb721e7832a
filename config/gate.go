package config

import (
	"strings"
	"time"
)

// GateConfig contains access-gate behavior configuration shared by the
// member and admin gate variants.
type GateConfig struct {
	// SafetyTimeout bounds how long a gate waits for session bootstrap to
	// settle before forcing a terminal render state.
	SafetyTimeout time.Duration `env:"GATE_SAFETY_TIMEOUT" envDefault:"8s"`

	// RedirectCooldown bounds redirect frequency per failure episode,
	// preventing tight redirect loops when state flickers during settlement.
	RedirectCooldown time.Duration `env:"GATE_REDIRECT_COOLDOWN" envDefault:"2s"`

	// ExceptionPaths are member-area routes reachable without an active
	// payment (checkout and billing must stay reachable to fix payment).
	// They must live under the gated area or the exception never fires.
	ExceptionPaths []string `env:"GATE_EXCEPTION_PATHS" envDefault:"/app/billing;/app/checkout" envSeparator:";"`

	// LoginPath is the redirect target for unauthenticated users.
	LoginPath string `env:"GATE_LOGIN_PATH" envDefault:"/login"`

	// DashboardPath is the redirect target for authenticated users who
	// fail the admin role check.
	DashboardPath string `env:"GATE_DASHBOARD_PATH" envDefault:"/dashboard"`

	// CheckoutPath is the call-to-action target for the payment gate.
	CheckoutPath string `env:"GATE_CHECKOUT_PATH" envDefault:"/app/checkout"`
}

// Sanitize applies guardrails to gate configuration values.
func (c *GateConfig) Sanitize() {
	if c.SafetyTimeout <= 0 {
		c.SafetyTimeout = 8 * time.Second
	}
	if c.RedirectCooldown <= 0 {
		c.RedirectCooldown = 2 * time.Second
	}
	if c.LoginPath == "" {
		c.LoginPath = "/login"
	}
	if c.DashboardPath == "" {
		c.DashboardPath = "/dashboard"
	}
	if c.CheckoutPath == "" {
		c.CheckoutPath = "/app/checkout"
	}

	paths := make([]string, 0, len(c.ExceptionPaths))
	for _, p := range c.ExceptionPaths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		paths = append(paths, p)
	}
	c.ExceptionPaths = paths
}

// PaymentsConfig contains the billing collaborator connection settings.
type PaymentsConfig struct {
	// BaseURL of the billing service's status API. Empty disables the
	// payment gate (dev mode treats everyone as paid).
	BaseURL string        `env:"BASE_URL" envDefault:""`
	APIKey  string        `env:"API_KEY"  envDefault:""`
	Timeout time.Duration `env:"TIMEOUT"  envDefault:"5s"`
}
