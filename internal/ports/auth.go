package ports

// Package ports defines interfaces (hexagonal ports) for session and
// access-gate collaborators. Implementations live in internal/adapters;
// orchestration in internal/service.

import (
	"context"

	domainauth "github.com/target/studio-ui-auth/internal/domain/auth"
)

// SignUpInput carries inputs for identity account creation.
type SignUpInput struct {
	Email    string
	Password string
	Name     string
}

// IdentityProvider is the externally managed authentication authority.
// Every call is a suspension point and must honor context cancellation;
// the service layer bounds each call with its own timeout.
type IdentityProvider interface {
	// SignIn exchanges credentials for a session. Credential rejection is
	// returned as an error carrying apperrors.ErrCodeCredentialRejected.
	SignIn(ctx context.Context, email, password string) (domainauth.Session, error)

	// SignUp creates the identity account and returns a fresh session.
	// Account creation alone defines signup success; application-side
	// provisioning is the caller's concern.
	SignUp(ctx context.Context, in SignUpInput) (domainauth.Session, error)

	// SignOut invalidates the provider-side session. Callers clear local
	// state regardless of the outcome.
	SignOut(ctx context.Context) error

	// CurrentSession rehydrates the provider's ambient session.
	// Returns (nil, nil) when no session exists.
	CurrentSession(ctx context.Context) (*domainauth.Session, error)

	// User resolves the principal behind an access token.
	// Returns (nil, nil) when the token no longer maps to a user.
	User(ctx context.Context, accessToken string) (*domainauth.User, error)
}

// ProfileStore persists and retrieves application profiles keyed by the
// identity-provider user ID.
type ProfileStore interface {
	// Get returns the profile for the user, or a not-found error when no
	// row exists yet.
	Get(ctx context.Context, userID string) (*domainauth.Profile, error)

	// EnsureExists is an idempotent upsert, safe to call repeatedly and
	// concurrently. A pre-existing row is not an error.
	EnsureExists(ctx context.Context, profile domainauth.Profile) error

	// EnsureCredits provisions the starting credits row for a user.
	// Idempotent like EnsureExists.
	EnsureCredits(ctx context.Context, userID string) error
}

// PaymentStatusService reports whether the user has an active payment.
// Results are fetched per evaluation and never cached here.
type PaymentStatusService interface {
	HasActivePayment(ctx context.Context, userID string) (bool, error)
}

// RoleMapper derives the application role from raw identity claims.
type RoleMapper interface {
	Map(claims map[string]any) domainauth.Role
}

// AuthEventSource delivers identity change notifications observed outside
// this process (other tabs, other instances, token rotation).
type AuthEventSource interface {
	// Subscribe returns a channel of events valid until ctx is cancelled
	// or Close is called. The channel is closed on teardown.
	Subscribe(ctx context.Context) (<-chan domainauth.Event, error)

	// Close tears the subscription down. Safe to call more than once.
	Close() error
}

// AuthEventPublisher broadcasts identity change notifications to other
// instances. Publishing is best effort; failures are logged, not surfaced.
type AuthEventPublisher interface {
	Publish(ctx context.Context, ev domainauth.Event) error
}

// PrefsStore is durable key-value persistence for a minimal, non-sensitive
// slice of UI state. Sessions and the authentication flag are deliberately
// excluded from what is ever written here.
type PrefsStore interface {
	Get(ctx context.Context, userID, key string) (string, error)
	Set(ctx context.Context, userID, key, value string) error
	Delete(ctx context.Context, userID, key string) error
}
