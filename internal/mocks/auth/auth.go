package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"sync"
	"time"

	domainauth "github.com/target/studio-ui-auth/internal/domain/auth"
	apperrors "github.com/target/studio-ui-auth/internal/errors"
	"github.com/target/studio-ui-auth/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityProvider   = (*FakeIdentityProvider)(nil)
	_ ports.ProfileStore       = (*MemoryProfileStore)(nil)
	_ ports.RoleMapper         = (*StaticRoleMapper)(nil)
	_ ports.AuthEventPublisher = (*MemoryEventBus)(nil)
	_ ports.AuthEventSource    = (*MemoryEventBus)(nil)
)

// DefaultUser returns a deterministic test user.
func DefaultUser() domainauth.User {
	return domainauth.User{
		ID:        "mock-user-1",
		Email:     "mock.user@example.com",
		RawClaims: map[string]any{"sub": "mock-user-1", "name": "Mock User"},
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

// FakeIdentityProvider simulates an identity provider. Each method delegates
// to its Func field when set; otherwise a deterministic default applies.
// Tests model slow collaborators by blocking inside a Func until the passed
// context is done.
type FakeIdentityProvider struct {
	SignInFunc         func(ctx context.Context, email, password string) (domainauth.Session, error)
	SignUpFunc         func(ctx context.Context, in ports.SignUpInput) (domainauth.Session, error)
	SignOutFunc        func(ctx context.Context) error
	CurrentSessionFunc func(ctx context.Context) (*domainauth.Session, error)
	UserFunc           func(ctx context.Context, accessToken string) (*domainauth.User, error)

	// Session returned by default SignIn/SignUp/CurrentSession behavior.
	Session *domainauth.Session

	mu             sync.Mutex
	signInCalls    int
	signOutCalls   int
	currentCalls   int
	lastCredential string
}

// NewFakeIdentityProvider creates a provider whose default session wraps
// DefaultUser.
func NewFakeIdentityProvider() *FakeIdentityProvider {
	return &FakeIdentityProvider{
		Session: &domainauth.Session{User: DefaultUser(), AccessToken: "mock-token"},
	}
}

func (f *FakeIdentityProvider) SignIn(ctx context.Context, email, password string) (domainauth.Session, error) {
	f.mu.Lock()
	f.signInCalls++
	f.lastCredential = email
	f.mu.Unlock()

	if f.SignInFunc != nil {
		return f.SignInFunc(ctx, email, password)
	}
	if f.Session == nil {
		return domainauth.Session{}, apperrors.CredentialRejected("no session configured")
	}
	return *f.Session, nil
}

func (f *FakeIdentityProvider) SignUp(ctx context.Context, in ports.SignUpInput) (domainauth.Session, error) {
	if f.SignUpFunc != nil {
		return f.SignUpFunc(ctx, in)
	}
	if f.Session == nil {
		return domainauth.Session{}, apperrors.Transient("no session configured")
	}
	return *f.Session, nil
}

func (f *FakeIdentityProvider) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.signOutCalls++
	f.mu.Unlock()

	if f.SignOutFunc != nil {
		return f.SignOutFunc(ctx)
	}
	return nil
}

func (f *FakeIdentityProvider) CurrentSession(ctx context.Context) (*domainauth.Session, error) {
	f.mu.Lock()
	f.currentCalls++
	f.mu.Unlock()

	if f.CurrentSessionFunc != nil {
		return f.CurrentSessionFunc(ctx)
	}
	return f.Session, nil
}

func (f *FakeIdentityProvider) User(ctx context.Context, accessToken string) (*domainauth.User, error) {
	if f.UserFunc != nil {
		return f.UserFunc(ctx, accessToken)
	}
	if f.Session == nil || f.Session.AccessToken != accessToken {
		return nil, nil
	}
	u := f.Session.User
	return &u, nil
}

// SignInCalls returns how many times SignIn ran.
func (f *FakeIdentityProvider) SignInCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signInCalls
}

// SignOutCalls returns how many times SignOut ran.
func (f *FakeIdentityProvider) SignOutCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signOutCalls
}

// CurrentSessionCalls returns how many times CurrentSession ran.
func (f *FakeIdentityProvider) CurrentSessionCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentCalls
}

// MemoryProfileStore is an in-memory profile store with failure injection.
type MemoryProfileStore struct {
	mu       sync.Mutex
	profiles map[string]domainauth.Profile
	credits  map[string]bool

	// GetErr, EnsureErr, and CreditsErr, when set, are returned by the
	// corresponding method instead of touching the maps.
	GetErr     error
	EnsureErr  error
	CreditsErr error

	getCalls    int
	ensureCalls int
}

// NewMemoryProfileStore creates an empty in-memory profile store.
func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{
		profiles: make(map[string]domainauth.Profile),
		credits:  make(map[string]bool),
	}
}

func (m *MemoryProfileStore) Get(_ context.Context, userID string) (*domainauth.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.getCalls++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, apperrors.NotFoundf("profile %s not found", userID)
	}
	return &p, nil
}

func (m *MemoryProfileStore) EnsureExists(_ context.Context, profile domainauth.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureCalls++
	if m.EnsureErr != nil {
		return m.EnsureErr
	}
	if _, exists := m.profiles[profile.ID]; !exists {
		if profile.Role == "" {
			profile.Role = domainauth.RoleUser
		}
		if profile.CreatedAt.IsZero() {
			profile.CreatedAt = time.Now()
		}
		m.profiles[profile.ID] = profile
	}
	return nil
}

func (m *MemoryProfileStore) EnsureCredits(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreditsErr != nil {
		return m.CreditsErr
	}
	m.credits[userID] = true
	return nil
}

// Put seeds a profile directly, bypassing EnsureExists semantics.
func (m *MemoryProfileStore) Put(profile domainauth.Profile) {
	m.mu.Lock()
	m.profiles[profile.ID] = profile
	m.mu.Unlock()
}

// Remove deletes a seeded profile.
func (m *MemoryProfileStore) Remove(userID string) {
	m.mu.Lock()
	delete(m.profiles, userID)
	m.mu.Unlock()
}

// SetGetErr sets the Get failure injection under the store lock.
func (m *MemoryProfileStore) SetGetErr(err error) {
	m.mu.Lock()
	m.GetErr = err
	m.mu.Unlock()
}

// HasCredits reports whether EnsureCredits ran for the user.
func (m *MemoryProfileStore) HasCredits(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.credits[userID]
}

// GetCalls returns how many times Get ran.
func (m *MemoryProfileStore) GetCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls
}

// EnsureCalls returns how many times EnsureExists ran.
func (m *MemoryProfileStore) EnsureCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureCalls
}

// StaticRoleMapper returns Admin when the claim under Key equals AdminValue.
type StaticRoleMapper struct {
	Key        string
	AdminValue string
}

func (m StaticRoleMapper) Map(claims map[string]any) domainauth.Role {
	if v, ok := claims[m.Key].(string); ok && v == m.AdminValue {
		return domainauth.RoleAdmin
	}
	return domainauth.RoleUser
}

// MemoryEventBus is an in-process event bus implementing both the publisher
// and source ports. Published events are recorded and forwarded to the
// subscriber when one exists.
type MemoryEventBus struct {
	mu        sync.Mutex
	published []domainauth.Event
	sub       chan domainauth.Event
	closed    bool

	// PublishErr, when set, is returned by Publish.
	PublishErr error
}

// NewMemoryEventBus creates an empty in-process event bus.
func NewMemoryEventBus() *MemoryEventBus {
	return &MemoryEventBus{}
}

func (b *MemoryEventBus) Publish(_ context.Context, ev domainauth.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.PublishErr != nil {
		return b.PublishErr
	}
	b.published = append(b.published, ev)
	if b.sub != nil && !b.closed {
		select {
		case b.sub <- ev:
		default:
		}
	}
	return nil
}

func (b *MemoryEventBus) Subscribe(_ context.Context) (<-chan domainauth.Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, apperrors.Internal("event bus closed")
	}
	if b.sub == nil {
		b.sub = make(chan domainauth.Event, 16)
	}
	return b.sub, nil
}

func (b *MemoryEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.closed {
		b.closed = true
		if b.sub != nil {
			close(b.sub)
		}
	}
	return nil
}

// Inject delivers an event directly to the subscriber, as if another
// instance had published it.
func (b *MemoryEventBus) Inject(ev domainauth.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sub != nil && !b.closed {
		b.sub <- ev
	}
}

// Published returns a copy of all events published so far.
func (b *MemoryEventBus) Published() []domainauth.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domainauth.Event, len(b.published))
	copy(out, b.published)
	return out
}
