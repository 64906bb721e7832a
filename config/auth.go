package config

import (
	"fmt"
	"strings"
)

// AuthMode represents the identity provider mode for the application.
type AuthMode string

const (
	// AuthModeOIDC uses a real OIDC identity provider.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeDev uses an in-memory identity provider (for development only).
	AuthModeDev AuthMode = "dev"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oidc", "dev":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oidc, dev)", v)
	}
}

// OIDCConfig contains the identity provider connection settings.
type OIDCConfig struct {
	Issuer       string `env:"ISSUER"`
	ClientID     string `env:"CLIENT_ID"     envDefault:"studio-ui"`
	ClientSecret string `env:"CLIENT_SECRET" envDefault:""`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	// SignupURL is the provider's account-registration endpoint. Derived
	// from Issuer + "/signup" when empty.
	SignupURL string `env:"SIGNUP_URL" envDefault:""`
}

// DevAuthConfig controls the in-memory identity provider.
// Used when AUTH_MODE=dev for development and testing.
type DevAuthConfig struct {
	UserID string `env:"USER_ID" envDefault:"dev-user"`
	Email  string `env:"EMAIL"   envDefault:"dev@example.com"`
	// Password accepted for the seeded dev account.
	Password string `env:"PASSWORD" envDefault:"dev-password"`
	Admin    bool   `env:"ADMIN"    envDefault:"true"`
}

// ClaimsConfig controls how application roles are derived from raw
// identity-provider claims.
type ClaimsConfig struct {
	// RolePath is a JMESPath expression evaluated against the raw claim
	// set; its result is compared to AdminValue.
	RolePath string `env:"ROLE_PATH" envDefault:"app_role"`
	// AdminValue is the claim value that maps to the admin role.
	AdminValue string `env:"ADMIN_VALUE" envDefault:"admin"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oidc"`

	// OIDC configuration (used when Mode=oidc).
	OIDC OIDCConfig `envPrefix:"OIDC_"`

	// DevAuth configuration (used when Mode=dev).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// Claims-to-role mapping configuration.
	Claims ClaimsConfig `envPrefix:"CLAIMS_"`
}
