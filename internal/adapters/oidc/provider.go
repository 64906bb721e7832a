package oidc

// Package oidc implements the identity provider port against an OIDC/OAuth2
// authority using the resource-owner password grant.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/target/studio-ui-auth/internal/domain/auth"
	apperrors "github.com/target/studio-ui-auth/internal/errors"
	"github.com/target/studio-ui-auth/internal/ports"
)

// Provider implements ports.IdentityProvider using OIDC discovery, the
// password credentials grant for sign-in, and the provider's registration
// endpoint for sign-up. The most recent token is cached in memory so that
// CurrentSession can rehydrate without a network round trip.
type Provider struct {
	config     *oauth2.Config
	signupURL  string
	httpClient *http.Client

	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier

	mu      sync.Mutex
	current *domainauth.Session
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	Scope        string
	// SignupURL is the provider's account-registration endpoint. Defaults
	// to Issuer + "/signup" when empty.
	SignupURL  string
	HTTPClient *http.Client // Optional, defaults to a 30s-timeout client
}

// NewProvider creates a new OIDC provider. Discovery runs once at
// construction time.
func NewProvider(config ProviderConfig) (*Provider, error) {
	if config.Issuer == "" {
		return nil, errors.New("issuer is required")
	}
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	issuer := strings.TrimSuffix(config.Issuer, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")

	signupURL := config.SignupURL
	if signupURL == "" {
		signupURL = issuer + "/signup"
	}

	p := &Provider{
		signupURL:  signupURL,
		httpClient: httpClient,
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}
	p.oidcProvider = op
	p.verifier = op.Verifier(&gooidc.Config{ClientID: config.ClientID})

	p.config = &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Scopes:       strings.Fields(config.Scope),
		Endpoint:     op.Endpoint(),
	}

	return p, nil
}

// SignIn exchanges credentials for a token via the password grant and builds
// the session from the verified id_token claims.
func (p *Provider) SignIn(ctx context.Context, email, password string) (domainauth.Session, error) {
	if email == "" || password == "" {
		return domainauth.Session{}, apperrors.CredentialRejected("email and password are required")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.config.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil &&
			(retrieveErr.Response.StatusCode == http.StatusBadRequest || retrieveErr.Response.StatusCode == http.StatusUnauthorized) {
			return domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeCredentialRejected, "identity provider rejected credentials")
		}
		return domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeTransient, "password grant")
	}

	user, err := p.userFromToken(ctx, token)
	if err != nil {
		return domainauth.Session{}, err
	}

	sess := domainauth.Session{User: *user, AccessToken: token.AccessToken}
	p.setCurrent(&sess)
	return sess, nil
}

// signupRequest is the registration payload for the provider's signup endpoint.
type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// SignUp registers the account with the provider, then signs in to obtain a
// session for it.
func (p *Provider) SignUp(ctx context.Context, in ports.SignUpInput) (domainauth.Session, error) {
	body, err := json.Marshal(signupRequest{Email: in.Email, Password: in.Password, Name: in.Name})
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("marshal signup request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.signupURL, bytes.NewReader(body))
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("build signup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeTransient, "signup request")
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusConflict:
		return domainauth.Session{}, apperrors.Conflict("account already exists")
	case resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError:
		return domainauth.Session{}, apperrors.CredentialRejected(fmt.Sprintf("identity provider rejected signup: status %d", resp.StatusCode))
	case resp.StatusCode >= http.StatusInternalServerError:
		return domainauth.Session{}, apperrors.Transient(fmt.Sprintf("identity provider signup failed: status %d", resp.StatusCode))
	}

	return p.SignIn(ctx, in.Email, in.Password)
}

// SignOut drops the cached session. The password grant has no provider-side
// session to revoke.
func (p *Provider) SignOut(_ context.Context) error {
	p.setCurrent(nil)
	return nil
}

// CurrentSession returns the cached session if its token has not expired,
// (nil, nil) otherwise.
func (p *Provider) CurrentSession(_ context.Context) (*domainauth.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return nil, nil
	}
	if !p.current.User.ExpiresAt.IsZero() && time.Now().After(p.current.User.ExpiresAt) {
		p.current = nil
		return nil, nil
	}
	sess := *p.current
	return &sess, nil
}

// User resolves the principal behind an access token via the userinfo
// endpoint. Returns (nil, nil) when the provider no longer accepts the token.
func (p *Provider) User(ctx context.Context, accessToken string) (*domainauth.User, error) {
	ui, err := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
	if err != nil {
		if strings.Contains(err.Error(), "401") {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeTransient, "fetch user info")
	}

	var claims map[string]any
	if claimsErr := ui.Claims(&claims); claimsErr != nil {
		return nil, fmt.Errorf("decode user info claims: %w", claimsErr)
	}

	return &domainauth.User{
		ID:        ui.Subject,
		Email:     firstNonEmpty(ui.Email, stringClaim(claims, "email")),
		RawClaims: claims,
	}, nil
}

// userFromToken builds the user from the verified id_token, falling back to
// the userinfo endpoint when the token response carries no id_token.
func (p *Provider) userFromToken(ctx context.Context, tok *oauth2.Token) (*domainauth.User, error) {
	expiresAt := time.Now().Add(time.Hour)
	if !tok.Expiry.IsZero() {
		expiresAt = tok.Expiry
	}

	rawID, _ := tok.Extra("id_token").(string)
	if rawID == "" {
		user, err := p.User(ctx, tok.AccessToken)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, apperrors.CredentialRejected("token not accepted by userinfo endpoint")
		}
		user.ExpiresAt = expiresAt
		return user, nil
	}

	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return nil, fmt.Errorf("verify id_token: %w", err)
	}

	var claims map[string]any
	if claimsErr := idTok.Claims(&claims); claimsErr != nil {
		return nil, fmt.Errorf("parse id_token claims: %w", claimsErr)
	}

	return &domainauth.User{
		ID:        idTok.Subject,
		Email:     stringClaim(claims, "email"),
		RawClaims: claims,
		ExpiresAt: expiresAt,
	}, nil
}

func (p *Provider) setCurrent(sess *domainauth.Session) {
	p.mu.Lock()
	p.current = sess
	p.mu.Unlock()
}

func stringClaim(claims map[string]any, key string) string {
	s, _ := claims[key].(string)
	return s
}

// firstNonEmpty returns the first non-empty string from vals, or empty string if none.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
