package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/target/studio-ui-auth/config"
	"github.com/target/studio-ui-auth/internal/adapters/devauth"
	"github.com/target/studio-ui-auth/internal/adapters/oidc"
	"github.com/target/studio-ui-auth/internal/adapters/payments"
	"github.com/target/studio-ui-auth/internal/ports"
)

// BuildIdentityProvider selects the identity provider adapter from config.
// OIDC mode runs discovery against the issuer at construction time; dev
// mode seeds an in-memory provider and must never reach production.
func BuildIdentityProvider(cfg config.AuthConfig, logger *slog.Logger) (ports.IdentityProvider, error) {
	switch cfg.Mode {
	case config.AuthModeDev:
		if logger != nil {
			logger.Warn("using in-memory dev identity provider",
				"email", cfg.DevAuth.Email,
				"admin", cfg.DevAuth.Admin,
			)
		}
		provider, err := devauth.NewProvider(devauth.Config{
			UserID:   cfg.DevAuth.UserID,
			Email:    cfg.DevAuth.Email,
			Password: cfg.DevAuth.Password,
			Admin:    cfg.DevAuth.Admin,
		})
		if err != nil {
			return nil, fmt.Errorf("build dev identity provider: %w", err)
		}
		return provider, nil
	default:
		provider, err := oidc.NewProvider(oidc.ProviderConfig{
			Issuer:       cfg.OIDC.Issuer,
			ClientID:     cfg.OIDC.ClientID,
			ClientSecret: cfg.OIDC.ClientSecret,
			Scope:        cfg.OIDC.Scope,
			SignupURL:    cfg.OIDC.SignupURL,
		})
		if err != nil {
			return nil, fmt.Errorf("build oidc identity provider: %w", err)
		}
		return provider, nil
	}
}

// BuildPaymentStatusService selects the billing collaborator. An empty base
// URL disables the payment gate and treats every account as paid, which is
// the expected dev-mode shape.
func BuildPaymentStatusService(cfg config.PaymentsConfig, logger *slog.Logger) (ports.PaymentStatusService, error) {
	if cfg.BaseURL == "" {
		if logger != nil {
			logger.Warn("payments base URL is empty; treating every account as paid")
		}
		return payments.Static{Active: true}, nil
	}

	client, err := payments.NewClient(payments.ClientOptions{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("build payments client: %w", err)
	}
	return client, nil
}
