package httpx

import (
	"context"

	domainauth "github.com/target/studio-ui-auth/internal/domain/auth"
)

// stateKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type stateKey struct{}

// SetStateInContext returns a child context that carries the session state
// snapshot taken by the gate middleware.
func SetStateInContext(ctx context.Context, st domainauth.State) context.Context {
	return context.WithValue(ctx, stateKey{}, st)
}

// GetStateFromContext returns the session state snapshot and a boolean
// indicating presence.
func GetStateFromContext(ctx context.Context) (domainauth.State, bool) {
	if st, ok := ctx.Value(stateKey{}).(domainauth.State); ok {
		return st, true
	}
	return domainauth.State{}, false
}

// UserIDFromContext returns the authenticated user's ID, or empty string.
func UserIDFromContext(ctx context.Context) string {
	st, ok := GetStateFromContext(ctx)
	if !ok || st.User == nil {
		return ""
	}
	return st.User.ID
}
