package auth

// Outcome is the terminal classification of a gate evaluation.
type Outcome string

const (
	// OutcomeLoading means bootstrap has not settled yet; render a bounded
	// loading indicator. After the safety timeout this is still a terminal
	// render state for the current pass: redirects are suppressed so a
	// slow bootstrap never turns into a redirect loop.
	OutcomeLoading Outcome = "loading"
	// OutcomeAllow means the protected content may render.
	OutcomeAllow Outcome = "allow"
	// OutcomeRedirect means a single replace-style navigation to Target
	// should be issued now.
	OutcomeRedirect Outcome = "redirect"
	// OutcomeRedirecting means a redirect for this failure episode was
	// already issued inside the cool-down window; render the
	// redirect-in-progress placeholder instead of navigating again.
	OutcomeRedirecting Outcome = "redirecting"
	// OutcomeBlocked means access is denied with an explicit
	// call-to-action (e.g. the payment gate) rather than a navigation.
	OutcomeBlocked Outcome = "blocked"
)

// BlockReason explains an OutcomeBlocked decision.
type BlockReason string

const (
	BlockPaymentRequired BlockReason = "payment_required"
)

// Decision is derived, never stored: it is recomputed from session state,
// payment status, and the current route on every relevant change.
type Decision struct {
	Outcome Outcome
	// Target is the navigation target for redirect outcomes and the
	// call-to-action URL for blocked outcomes.
	Target string
	Reason BlockReason
}

// Allowed is a convenience predicate for render paths.
func (d Decision) Allowed() bool { return d.Outcome == OutcomeAllow }
