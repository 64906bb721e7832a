package config

import "time"

// SessionConfig contains timing for the session bootstrap and profile
// refresh cycles. Every collaborator call in the session store is bounded
// by one of these values.
type SessionConfig struct {
	// InitTimeout bounds the "get current session" call during Initialize.
	InitTimeout time.Duration `env:"SESSION_INIT_TIMEOUT" envDefault:"5s"`

	// ProfileTimeout bounds each profile load.
	ProfileTimeout time.Duration `env:"SESSION_PROFILE_TIMEOUT" envDefault:"5s"`

	// SettleDelay is the pause between a successful sign-in and the first
	// profile load, giving provider-side propagation a moment to finish.
	SettleDelay time.Duration `env:"SESSION_SETTLE_DELAY" envDefault:"300ms"`

	// RetryDelay is the pause before the single profile-load retry.
	RetryDelay time.Duration `env:"SESSION_RETRY_DELAY" envDefault:"1s"`

	// LoginRetryDelay is the longer pause before the second profile-load
	// attempt during login.
	LoginRetryDelay time.Duration `env:"SESSION_LOGIN_RETRY_DELAY" envDefault:"1500ms"`
}

// Sanitize applies guardrails to session timing values.
func (c *SessionConfig) Sanitize() {
	if c.InitTimeout <= 0 {
		c.InitTimeout = 5 * time.Second
	}
	if c.ProfileTimeout <= 0 {
		c.ProfileTimeout = 5 * time.Second
	}
	if c.SettleDelay < 0 {
		c.SettleDelay = 0
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}
	if c.LoginRetryDelay <= 0 {
		c.LoginRetryDelay = 1500 * time.Millisecond
	}
}
