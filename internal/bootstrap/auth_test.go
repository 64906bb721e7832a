package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/studio-ui-auth/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildIdentityProvider_DevMode(t *testing.T) {
	provider, err := BuildIdentityProvider(config.AuthConfig{
		Mode: config.AuthModeDev,
		DevAuth: config.DevAuthConfig{
			UserID:   "dev-user",
			Email:    "dev@example.com",
			Password: "dev-password",
			Admin:    true,
		},
	}, discardLogger())
	require.NoError(t, err)

	sess, err := provider.SignIn(context.Background(), "dev@example.com", "dev-password")
	require.NoError(t, err)
	assert.Equal(t, "dev-user", sess.User.ID)
}

func TestBuildIdentityProvider_DevModeRequiresSeedAccount(t *testing.T) {
	_, err := BuildIdentityProvider(config.AuthConfig{Mode: config.AuthModeDev}, discardLogger())
	assert.Error(t, err)
}

func TestBuildPaymentStatusService_EmptyBaseURLTreatsAsPaid(t *testing.T) {
	svc, err := BuildPaymentStatusService(config.PaymentsConfig{}, discardLogger())
	require.NoError(t, err)

	active, err := svc.HasActivePayment(context.Background(), "anyone")
	require.NoError(t, err)
	assert.True(t, active)
}

func TestBuildPaymentStatusService_WithBaseURL(t *testing.T) {
	svc, err := BuildPaymentStatusService(config.PaymentsConfig{
		BaseURL: "http://localhost:9090",
		APIKey:  "test-key",
	}, discardLogger())
	require.NoError(t, err)
	assert.NotNil(t, svc)
}
