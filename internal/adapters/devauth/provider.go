package devauth

// Package devauth provides an in-memory IdentityProvider for local development.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/target/studio-ui-auth/internal/errors"

	domainauth "github.com/target/studio-ui-auth/internal/domain/auth"
	"github.com/target/studio-ui-auth/internal/ports"
)

// Config controls the dev identity provider behavior. A single account is
// seeded from these fields; SignUp creates further in-memory accounts.
type Config struct {
	UserID          string
	Email           string
	Password        string
	Admin           bool
	SessionDuration time.Duration // default 8h when zero
}

type account struct {
	userID   string
	password string
	claims   map[string]any
}

// Provider implements ports.IdentityProvider against an in-memory account
// table. Accounts created through SignUp do not survive a restart.
type Provider struct {
	sessionDuration time.Duration

	mu       sync.Mutex
	accounts map[string]account // keyed by email
	tokens   map[string]string  // access token -> email
	current  string             // access token of the ambient session
}

// NewProvider seeds a provider with the configured dev account.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	dur := cfg.SessionDuration
	if dur == 0 {
		dur = 8 * time.Hour
	}

	claims := map[string]any{"email": cfg.Email, "sub": cfg.UserID}
	if cfg.Admin {
		claims["app_role"] = "admin"
	}

	p := &Provider{
		sessionDuration: dur,
		accounts:        map[string]account{},
		tokens:          map[string]string{},
	}
	p.accounts[cfg.Email] = account{
		userID:   cfg.UserID,
		password: cfg.Password,
		claims:   claims,
	}
	return p, nil
}

// SignIn validates the password against the in-memory account table.
func (p *Provider) SignIn(_ context.Context, email, password string) (domainauth.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, ok := p.accounts[email]
	if !ok || acct.password != password {
		return domainauth.Session{}, apperrors.CredentialRejected("dev auth: invalid email or password")
	}
	return p.openSessionLocked(acct, email)
}

// SignUp registers a new in-memory account and returns a session for it.
func (p *Provider) SignUp(_ context.Context, in ports.SignUpInput) (domainauth.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.accounts[in.Email]; exists {
		return domainauth.Session{}, apperrors.Conflict(fmt.Sprintf("dev auth: account %q already exists", in.Email))
	}

	acct := account{
		userID:   uuid.NewString(),
		password: in.Password,
		claims:   map[string]any{"email": in.Email, "sub": "", "name": in.Name},
	}
	acct.claims["sub"] = acct.userID
	p.accounts[in.Email] = acct
	return p.openSessionLocked(acct, in.Email)
}

// SignOut drops the ambient session.
func (p *Provider) SignOut(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != "" {
		delete(p.tokens, p.current)
		p.current = ""
	}
	return nil
}

// CurrentSession returns the ambient session, or (nil, nil) when none exists.
func (p *Provider) CurrentSession(_ context.Context) (*domainauth.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == "" {
		return nil, nil
	}
	email, ok := p.tokens[p.current]
	if !ok {
		p.current = ""
		return nil, nil
	}
	acct := p.accounts[email]
	s := p.sessionFor(acct, email, p.current)
	return &s, nil
}

// User resolves the principal behind an access token, (nil, nil) when the
// token is unknown.
func (p *Provider) User(_ context.Context, accessToken string) (*domainauth.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	email, ok := p.tokens[accessToken]
	if !ok {
		return nil, nil
	}
	acct := p.accounts[email]
	u := p.userFor(acct, email)
	return &u, nil
}

func (p *Provider) openSessionLocked(acct account, email string) (domainauth.Session, error) {
	token, err := randomToken(32)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("generate access token: %w", err)
	}
	p.tokens[token] = email
	p.current = token
	return p.sessionFor(acct, email, token), nil
}

func (p *Provider) sessionFor(acct account, email, token string) domainauth.Session {
	return domainauth.Session{
		User:        p.userFor(acct, email),
		AccessToken: token,
	}
}

func (p *Provider) userFor(acct account, email string) domainauth.User {
	claims := make(map[string]any, len(acct.claims))
	for k, v := range acct.claims {
		claims[k] = v
	}
	return domainauth.User{
		ID:        acct.userID,
		Email:     email,
		RawClaims: claims,
		ExpiresAt: time.Now().Add(p.sessionDuration),
	}
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
