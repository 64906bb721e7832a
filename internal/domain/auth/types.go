package auth

// Package auth contains domain-level types for sessions, profiles, and
// access-gate decisions. It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role.
// Keep string form for easy persistence and JSON payloads.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is the identity-provider principal behind an authenticated session.
// RawClaims carries the provider's claim set untouched so downstream
// mapping (role extraction, display fields) stays provider-agnostic.
type User struct {
	ID        string
	Email     string
	RawClaims map[string]any
	ExpiresAt time.Time
}

// Session is the ephemeral identity proof handed out by the identity
// provider. It is never written to durable storage by this service; the
// provider is the single source of truth, which avoids stale-session
// conflicts after a restart.
type Session struct {
	User        User
	AccessToken string
}

// Profile is the application record tied to a user identity. It may be
// nil in a State while the session is authenticated, a tolerated
// transient during hydration that self-corrects via profile refresh.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p *Profile) IsAdmin() bool { return p != nil && p.Role == RoleAdmin }

// Matches reports whether the profile belongs to the given user.
// profile.ID == user.ID must hold whenever both are present.
func (p *Profile) Matches(u *User) bool {
	return p != nil && u != nil && p.ID == u.ID
}

// State is the reactive session snapshot exposed to consumers.
type State struct {
	User            *User
	Profile         *Profile
	IsAuthenticated bool
	IsLoading       bool
}

// LoggedOut returns the canonical unauthenticated, non-loading state.
func LoggedOut() State {
	return State{User: nil, Profile: nil, IsAuthenticated: false, IsLoading: false}
}

// Consistent reports whether the state satisfies the invariant that an
// authenticated state always carries a user. Gates treat a violation as
// a denial condition, never as a panic.
func (s State) Consistent() bool {
	return !s.IsAuthenticated || s.User != nil
}
