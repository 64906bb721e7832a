package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/target/studio-ui-auth/config"
	domainauth "github.com/target/studio-ui-auth/internal/domain/auth"
	apperrors "github.com/target/studio-ui-auth/internal/errors"
	"github.com/target/studio-ui-auth/internal/ports"
)

// Singleflight keys for the two deduplicated session operations.
const (
	initializeKey     = "initialize"
	refreshProfileKey = "refresh-profile"
)

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	Provider ports.IdentityProvider
	Profiles ports.ProfileStore
	Roles    ports.RoleMapper
	// Events is optional; nil disables cross-instance broadcasts.
	Events ports.AuthEventPublisher
	Logger *slog.Logger
	Config config.SessionConfig
}

// SessionService owns the authoritative session state for this instance
// and orchestrates the bootstrap, login, signup, logout, and profile
// refresh flows. All mutations go through commit or update, so readers
// always observe a complete snapshot, never a half-written one.
//
// Initialize and RefreshProfile are deduplicated through singleflight:
// concurrent callers share one in-flight execution and its result.
type SessionService struct {
	provider ports.IdentityProvider
	profiles ports.ProfileStore
	roles    ports.RoleMapper
	events   ports.AuthEventPublisher
	logger   *slog.Logger
	cfg      config.SessionConfig

	// origin tags outgoing events so this instance can ignore its own
	// broadcasts when they loop back through the event bus.
	origin string

	group singleflight.Group

	mu    sync.RWMutex
	state domainauth.State

	subsMu sync.Mutex
	subs   map[chan domainauth.State]struct{}

	initOnce sync.Once
	initDone chan struct{}
}

// NewSessionService constructs a SessionService.
func NewSessionService(opts SessionServiceOptions) *SessionService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config
	cfg.Sanitize()

	return &SessionService{
		provider: opts.Provider,
		profiles: opts.Profiles,
		roles:    opts.Roles,
		events:   opts.Events,
		logger:   logger,
		cfg:      cfg,
		origin:   uuid.NewString(),
		state:    domainauth.LoggedOut(),
		subs:     make(map[chan domainauth.State]struct{}),
		initDone: make(chan struct{}),
	}
}

// Origin returns the instance identifier stamped on outgoing events.
func (s *SessionService) Origin() string { return s.origin }

// Snapshot returns the current session state.
func (s *SessionService) Snapshot() domainauth.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers a state observer. The returned channel carries the
// latest snapshot after every committed change; when the consumer lags, a
// newer snapshot replaces the undelivered one (last-write-wins, never
// blocking a mutation). The cancel function deregisters and closes the
// channel.
func (s *SessionService) Subscribe() (<-chan domainauth.State, func()) {
	ch := make(chan domainauth.State, 1)

	s.subsMu.Lock()
	s.subs[ch] = struct{}{}
	s.subsMu.Unlock()

	cancel := func() {
		s.subsMu.Lock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
		s.subsMu.Unlock()
	}
	return ch, cancel
}

func (s *SessionService) notify(st domainauth.State) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- st:
		default:
			// Drop the stale undelivered snapshot, then offer the new one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- st:
			default:
			}
		}
	}
}

// WaitForInitialized blocks until the first Initialize completes or ctx is
// done. It never triggers initialization itself.
func (s *SessionService) WaitForInitialized(ctx context.Context) error {
	select {
	case <-s.initDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Initialize rehydrates the session from the identity provider. It never
// returns an error: any failure degrades to the logged-out state, because
// a broken bootstrap must not take the application down with it.
// Concurrent callers share a single execution.
func (s *SessionService) Initialize(ctx context.Context) domainauth.State {
	v, _, _ := s.group.Do(initializeKey, func() (any, error) {
		return s.initialize(ctx), nil
	})
	return v.(domainauth.State)
}

func (s *SessionService) initialize(ctx context.Context) domainauth.State {
	defer s.markInitialized()

	// Detach from the caller so the shared result does not die with the
	// first caller's cancellation. Timeouts below re-bound each call.
	base := context.WithoutCancel(ctx)

	cctx, cancel := context.WithTimeout(base, s.cfg.InitTimeout)
	sess, err := s.provider.CurrentSession(cctx)
	cancel()
	if err != nil {
		s.logger.Warn("session rehydration failed, starting logged out",
			slog.String("error", err.Error()))
		return s.commit(domainauth.LoggedOut())
	}
	if sess == nil {
		return s.commit(domainauth.LoggedOut())
	}

	user := sess.User
	profile := s.tryLoadProfile(base, user.ID)
	return s.commit(domainauth.State{
		User:            &user,
		Profile:         profile,
		IsAuthenticated: true,
	})
}

func (s *SessionService) markInitialized() {
	s.initOnce.Do(func() { close(s.initDone) })
}

// Login exchanges credentials for an authenticated state. The user, profile,
// and authentication flag are committed in one atomic update after the
// profile settle-and-retry cycle, so no reader observes a session whose
// profile still belongs to a previous user.
func (s *SessionService) Login(ctx context.Context, email, password string) (domainauth.State, error) {
	s.setLoading(true)

	sess, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		s.setLoading(false)
		return s.Snapshot(), err
	}

	user := sess.User
	s.ensureProfileRow(ctx, &user, "")

	// Give provider-side propagation a moment before the first read.
	sleepCtx(ctx, s.cfg.SettleDelay)

	profile := s.loadProfileWithRetry(ctx, user.ID, s.cfg.LoginRetryDelay)
	if profile == nil {
		s.logger.Warn("profile unavailable after login, continuing without it",
			slog.String("user_id", user.ID))
	}

	st := s.commit(domainauth.State{
		User:            &user,
		Profile:         profile,
		IsAuthenticated: true,
	})
	s.publish(ctx, domainauth.EventSignedIn, &user)
	return st, nil
}

// Signup creates the identity account and commits an authenticated state.
// Account creation alone defines success: provisioning failures (profile
// row, starting credits) are logged and swallowed, and the profile refresh
// cycle heals the gap later.
func (s *SessionService) Signup(ctx context.Context, in ports.SignUpInput) (domainauth.State, error) {
	s.setLoading(true)

	sess, err := s.provider.SignUp(ctx, in)
	if err != nil {
		s.setLoading(false)
		return s.Snapshot(), err
	}

	user := sess.User
	if s.ensureProfileRow(ctx, &user, in.Name) {
		cctx, cancel := context.WithTimeout(ctx, s.cfg.ProfileTimeout)
		if err := s.profiles.EnsureCredits(cctx, user.ID); err != nil {
			s.logger.Error("credits provisioning failed",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()))
		}
		cancel()
	}

	profile := s.tryLoadProfile(ctx, user.ID)
	st := s.commit(domainauth.State{
		User:            &user,
		Profile:         profile,
		IsAuthenticated: true,
	})
	s.publish(ctx, domainauth.EventSignedIn, &user)
	return st, nil
}

// Logout clears the local state unconditionally. A provider-side sign-out
// failure is logged, never surfaced: the user asked to leave and leaves.
func (s *SessionService) Logout(ctx context.Context) domainauth.State {
	prev := s.Snapshot()

	if err := s.provider.SignOut(ctx); err != nil {
		s.logger.Warn("provider sign-out failed, clearing local state anyway",
			slog.String("error", err.Error()))
	}

	st := s.commit(domainauth.LoggedOut())
	s.publish(ctx, domainauth.EventSignedOut, prev.User)
	return st
}

// RefreshProfile re-reads the profile for the current user. It is a no-op
// when unauthenticated or when a settled profile is already present.
// Concurrent callers share a single execution.
//
// The stale profile is nulled before the fetch so consumers see "unknown"
// rather than possibly outdated data while the refresh is in flight.
func (s *SessionService) RefreshProfile(ctx context.Context) error {
	snap := s.Snapshot()
	if !snap.IsAuthenticated || snap.User == nil {
		return nil
	}
	if snap.Profile != nil && !snap.IsLoading {
		return nil
	}

	_, err, _ := s.group.Do(refreshProfileKey, func() (any, error) {
		return nil, s.refreshProfile(context.WithoutCancel(ctx))
	})
	return err
}

func (s *SessionService) refreshProfile(ctx context.Context) error {
	snap := s.Snapshot()
	if !snap.IsAuthenticated || snap.User == nil {
		return nil
	}
	user := *snap.User

	s.update(func(st *domainauth.State) {
		st.Profile = nil
		st.IsLoading = true
	})

	s.ensureProfileRow(ctx, &user, "")
	profile := s.loadProfileWithRetry(ctx, user.ID, s.cfg.RetryDelay)

	s.update(func(st *domainauth.State) {
		// The session may have changed hands while we were fetching.
		if st.IsAuthenticated && st.User != nil && st.User.ID == user.ID {
			st.Profile = profile
		}
		st.IsLoading = false
	})

	if profile == nil {
		return apperrors.Transient("profile still unavailable after retry")
	}
	return nil
}

// Reset drops to the logged-out state without touching the provider. Gates
// call it when they observe an inconsistent snapshot.
func (s *SessionService) Reset() domainauth.State {
	s.logger.Warn("resetting session state")
	return s.commit(domainauth.LoggedOut())
}

// HandleRemoteEvent applies an auth event observed from another instance.
// Payloads are treated as hints: sign-ins trigger a re-sync against the
// provider rather than trusting the event body.
func (s *SessionService) HandleRemoteEvent(ctx context.Context, ev domainauth.Event) {
	if ev.Origin == s.origin {
		return
	}

	switch ev.Kind {
	case domainauth.EventSignedOut:
		snap := s.Snapshot()
		if !snap.IsAuthenticated {
			return
		}
		if ev.UserID != "" && snap.User != nil && snap.User.ID != ev.UserID {
			return
		}
		s.commit(domainauth.LoggedOut())
		s.logger.Info("signed out by remote event", slog.String("origin", ev.Origin))
	case domainauth.EventSignedIn, domainauth.EventTokenRefreshed:
		s.Initialize(ctx)
	}
}

// --- helpers ---

// ensureProfileRow upserts the profile row derived from provider claims.
// Returns false when the upsert failed; the failure is logged, not surfaced.
func (s *SessionService) ensureProfileRow(ctx context.Context, user *domainauth.User, name string) bool {
	if name == "" {
		name, _ = user.RawClaims["name"].(string)
	}
	role := domainauth.RoleUser
	if s.roles != nil {
		role = s.roles.Map(user.RawClaims)
	}

	cctx, cancel := context.WithTimeout(ctx, s.cfg.ProfileTimeout)
	defer cancel()

	err := s.profiles.EnsureExists(cctx, domainauth.Profile{
		ID:   user.ID,
		Name: name,
		Role: role,
	})
	if err != nil {
		s.logger.Error("profile provisioning failed",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()))
		return false
	}
	return true
}

// tryLoadProfile performs a single bounded profile load. Missing rows and
// transient failures both yield nil.
func (s *SessionService) tryLoadProfile(ctx context.Context, userID string) *domainauth.Profile {
	cctx, cancel := context.WithTimeout(ctx, s.cfg.ProfileTimeout)
	defer cancel()

	profile, err := s.profiles.Get(cctx, userID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.logger.Warn("profile load failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()))
		}
		return nil
	}
	return profile
}

// loadProfileWithRetry loads the profile, retrying exactly once after delay.
func (s *SessionService) loadProfileWithRetry(ctx context.Context, userID string, delay time.Duration) *domainauth.Profile {
	if profile := s.tryLoadProfile(ctx, userID); profile != nil {
		return profile
	}
	sleepCtx(ctx, delay)
	return s.tryLoadProfile(ctx, userID)
}

func (s *SessionService) commit(st domainauth.State) domainauth.State {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.notify(st)
	return st
}

func (s *SessionService) update(fn func(*domainauth.State)) domainauth.State {
	s.mu.Lock()
	fn(&s.state)
	st := s.state
	s.mu.Unlock()
	s.notify(st)
	return st
}

func (s *SessionService) setLoading(loading bool) {
	s.update(func(st *domainauth.State) { st.IsLoading = loading })
}

func (s *SessionService) publish(ctx context.Context, kind domainauth.EventKind, user *domainauth.User) {
	if s.events == nil {
		return
	}
	ev := domainauth.Event{Kind: kind, Origin: s.origin}
	if user != nil {
		ev.UserID = user.ID
		ev.Email = user.Email
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Warn("auth event publish failed",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()))
	}
}

// sleepCtx pauses for d, returning early when ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
