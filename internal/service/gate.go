package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/target/studio-ui-auth/config"
	domainauth "github.com/target/studio-ui-auth/internal/domain/auth"
	"github.com/target/studio-ui-auth/internal/ports"
)

// SessionGateway is the slice of SessionService the gates depend on.
type SessionGateway interface {
	Initialize(ctx context.Context) domainauth.State
	WaitForInitialized(ctx context.Context) error
	Snapshot() domainauth.State
	RefreshProfile(ctx context.Context) error
	Reset() domainauth.State
}

// AccessGateOptions groups dependencies for AccessGate.
type AccessGateOptions struct {
	Sessions SessionGateway
	Payments ports.PaymentStatusService
	Logger   *slog.Logger
	Config   config.GateConfig
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// AccessGate evaluates whether a route may render for the current session.
// EvaluateMember guards the member area (authentication plus an active
// payment, with exception paths), EvaluateAdmin guards the admin area
// (authentication plus the admin role).
//
// The first evaluation kicks session bootstrap off; a client that only
// ever requests guarded routes still gets a settled session without any
// other component calling Initialize.
//
// Evaluations that fail produce at most one redirect per cool-down window;
// repeats inside the window come back as OutcomeRedirecting so a flickering
// state during settlement cannot turn into a redirect loop.
type AccessGate struct {
	sessions SessionGateway
	payments ports.PaymentStatusService
	logger   *slog.Logger
	cfg      config.GateConfig
	now      func() time.Time

	bootOnce sync.Once

	mu             sync.Mutex
	lastRedirect   time.Time
	lastTarget     string
	adminRefreshed bool
}

// NewAccessGate constructs an AccessGate.
func NewAccessGate(opts AccessGateOptions) *AccessGate {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	cfg := opts.Config
	cfg.Sanitize()

	return &AccessGate{
		sessions: opts.Sessions,
		payments: opts.Payments,
		logger:   logger,
		cfg:      cfg,
		now:      now,
	}
}

// EvaluateMember decides whether a member-area route may render.
func (g *AccessGate) EvaluateMember(ctx context.Context, path string) domainauth.Decision {
	snap, settled := g.settledSnapshot(ctx)
	if !settled {
		return domainauth.Decision{Outcome: domainauth.OutcomeLoading}
	}

	if d, ok := g.checkAuthenticated(snap); !ok {
		return d
	}

	if g.isExceptionPath(path) {
		return domainauth.Decision{Outcome: domainauth.OutcomeAllow}
	}

	active, err := g.payments.HasActivePayment(ctx, snap.User.ID)
	if err != nil {
		g.logger.Warn("payment status check failed, blocking",
			slog.String("user_id", snap.User.ID),
			slog.String("error", err.Error()))
		active = false
	}
	if !active {
		return domainauth.Decision{
			Outcome: domainauth.OutcomeBlocked,
			Target:  g.cfg.CheckoutPath,
			Reason:  domainauth.BlockPaymentRequired,
		}
	}

	return domainauth.Decision{Outcome: domainauth.OutcomeAllow}
}

// EvaluateAdmin decides whether an admin-area route may render. When the
// profile has not arrived yet, the gate triggers one profile refresh and
// re-reads the state before judging the role, so a slow profile load does
// not bounce a legitimate admin to the dashboard.
func (g *AccessGate) EvaluateAdmin(ctx context.Context, path string) domainauth.Decision {
	_ = path

	snap, settled := g.settledSnapshot(ctx)
	if !settled {
		return domainauth.Decision{Outcome: domainauth.OutcomeLoading}
	}

	if d, ok := g.checkAuthenticated(snap); !ok {
		return d
	}

	if snap.Profile == nil && g.tryAdminRefresh(ctx) {
		snap = g.sessions.Snapshot()
	}
	if snap.Profile != nil {
		g.resetAdminRefresh()
	}

	if !snap.Profile.IsAdmin() {
		return g.redirect(g.cfg.DashboardPath)
	}

	return domainauth.Decision{Outcome: domainauth.OutcomeAllow}
}

// settledSnapshot waits for bootstrap up to the safety timeout. When the
// wait fails, the caller must render loading; redirects are suppressed for
// that pass because judging an unsettled state would be guessing.
func (g *AccessGate) settledSnapshot(ctx context.Context) (domainauth.State, bool) {
	// Kick bootstrap off exactly once per gate instance, detached from the
	// request so a short-lived caller cannot abort it mid-flight.
	g.bootOnce.Do(func() {
		go g.sessions.Initialize(context.WithoutCancel(ctx))
	})

	wctx, cancel := context.WithTimeout(ctx, g.cfg.SafetyTimeout)
	defer cancel()

	if err := g.sessions.WaitForInitialized(wctx); err != nil {
		g.logger.Warn("session bootstrap not settled within safety timeout")
		return domainauth.State{}, false
	}
	return g.sessions.Snapshot(), true
}

// checkAuthenticated handles the unauthenticated and inconsistent cases
// shared by both gate variants. ok is true when evaluation may continue.
func (g *AccessGate) checkAuthenticated(snap domainauth.State) (domainauth.Decision, bool) {
	if !snap.Consistent() {
		g.logger.Error("inconsistent session state observed by gate, resetting")
		g.sessions.Reset()
		return g.redirect(g.cfg.LoginPath), false
	}
	if !snap.IsAuthenticated {
		return g.redirect(g.cfg.LoginPath), false
	}
	return domainauth.Decision{}, true
}

// tryAdminRefresh runs at most one profile refresh per missing-profile
// episode. Refresh errors are ignored here; the re-read decides.
func (g *AccessGate) tryAdminRefresh(ctx context.Context) bool {
	g.mu.Lock()
	if g.adminRefreshed {
		g.mu.Unlock()
		return false
	}
	g.adminRefreshed = true
	g.mu.Unlock()

	if err := g.sessions.RefreshProfile(ctx); err != nil {
		g.logger.Warn("admin gate profile refresh failed",
			slog.String("error", err.Error()))
	}
	return true
}

func (g *AccessGate) resetAdminRefresh() {
	g.mu.Lock()
	g.adminRefreshed = false
	g.mu.Unlock()
}

func (g *AccessGate) isExceptionPath(path string) bool {
	for _, e := range g.cfg.ExceptionPaths {
		if path == e || strings.HasPrefix(path, e+"/") {
			return true
		}
	}
	return false
}

// redirect issues a redirect decision, collapsing repeats inside the
// cool-down window into OutcomeRedirecting.
func (g *AccessGate) redirect(target string) domainauth.Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if g.lastTarget == target && now.Sub(g.lastRedirect) < g.cfg.RedirectCooldown {
		return domainauth.Decision{Outcome: domainauth.OutcomeRedirecting, Target: target}
	}
	g.lastRedirect = now
	g.lastTarget = target
	return domainauth.Decision{Outcome: domainauth.OutcomeRedirect, Target: target}
}
