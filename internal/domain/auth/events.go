package auth

// EventKind classifies an identity-provider change notification.
type EventKind string

const (
	// EventSignedIn is emitted when a sign-in is observed elsewhere
	// (another tab, another instance).
	EventSignedIn EventKind = "signed_in"
	// EventSignedOut is emitted when a sign-out is observed elsewhere.
	EventSignedOut EventKind = "signed_out"
	// EventTokenRefreshed is emitted on provider token rotation. Carries
	// the same payload as EventSignedIn; consumers treat it identically.
	EventTokenRefreshed EventKind = "token_refreshed"
)

// Event is a cross-tab/cross-instance auth change notification.
// Volume is inherently low (human-driven sign-in/out), so delivery is
// last-write-wins with no replay or backpressure handling.
type Event struct {
	Kind   EventKind `json:"kind"`
	UserID string    `json:"user_id,omitempty"`
	Email  string    `json:"email,omitempty"`
	// Origin identifies the emitting instance so consumers can ignore
	// their own broadcasts.
	Origin string `json:"origin,omitempty"`
}
