package httpx

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/studio-ui-auth/internal/domain/auth"
	"github.com/target/studio-ui-auth/internal/ports"
)

type fakeGate struct {
	member domainauth.Decision
	admin  domainauth.Decision
}

func (g *fakeGate) EvaluateMember(ctx context.Context, path string) domainauth.Decision {
	return g.member
}

func (g *fakeGate) EvaluateAdmin(ctx context.Context, path string) domainauth.Decision {
	return g.admin
}

type fakeSessions struct {
	state      domainauth.State
	loginErr   error
	signupErr  error
	refreshErr error

	logoutCalls  int
	refreshCalls int
}

func (s *fakeSessions) Initialize(ctx context.Context) domainauth.State { return s.state }

func (s *fakeSessions) Login(ctx context.Context, email, password string) (domainauth.State, error) {
	if s.loginErr != nil {
		return domainauth.LoggedOut(), s.loginErr
	}
	return s.state, nil
}

func (s *fakeSessions) Signup(ctx context.Context, in ports.SignUpInput) (domainauth.State, error) {
	if s.signupErr != nil {
		return domainauth.LoggedOut(), s.signupErr
	}
	return s.state, nil
}

func (s *fakeSessions) Logout(ctx context.Context) domainauth.State {
	s.logoutCalls++
	return domainauth.LoggedOut()
}

func (s *fakeSessions) RefreshProfile(ctx context.Context) error {
	s.refreshCalls++
	return s.refreshErr
}

func (s *fakeSessions) Snapshot() domainauth.State { return s.state }

func memberState() domainauth.State {
	return domainauth.State{
		User:            &domainauth.User{ID: "u-1", Email: "member@example.com"},
		Profile:         &domainauth.Profile{ID: "u-1", Name: "Member", Role: domainauth.RoleUser},
		IsAuthenticated: true,
	}
}

func newTestRouter(gate *fakeGate, sessions *fakeSessions) http.Handler {
	return NewRouter(RouterServices{
		Sessions: sessions,
		Gate:     gate,
		Prefs:    newMemoryPrefs(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestGateMiddleware_LoadingReturns503WithRetryAfter(t *testing.T) {
	gate := &fakeGate{member: domainauth.Decision{Outcome: domainauth.OutcomeLoading}}
	router := newTestRouter(gate, &fakeSessions{state: memberState()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/me", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "session_loading", body["error"])
}

func TestGateMiddleware_RedirectReturns303(t *testing.T) {
	gate := &fakeGate{member: domainauth.Decision{
		Outcome: domainauth.OutcomeRedirect,
		Target:  "/login",
	}}
	router := newTestRouter(gate, &fakeSessions{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/me", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestGateMiddleware_RedirectingReturns202(t *testing.T) {
	gate := &fakeGate{member: domainauth.Decision{
		Outcome: domainauth.OutcomeRedirecting,
		Target:  "/login",
	}}
	router := newTestRouter(gate, &fakeSessions{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/me", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "redirecting", body["status"])
	assert.Equal(t, "/login", body["target"])
}

func TestGateMiddleware_BlockedReturns402WithCheckoutURL(t *testing.T) {
	gate := &fakeGate{member: domainauth.Decision{
		Outcome: domainauth.OutcomeBlocked,
		Target:  "/app/checkout",
		Reason:  domainauth.BlockPaymentRequired,
	}}
	router := newTestRouter(gate, &fakeSessions{state: memberState()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/me", nil))

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(domainauth.BlockPaymentRequired), body["error"])
	assert.Equal(t, "/app/checkout", body["checkout_url"])
}

func TestGateMiddleware_AllowAttachesStateToContext(t *testing.T) {
	gate := &fakeGate{member: domainauth.Decision{Outcome: domainauth.OutcomeAllow}}
	router := newTestRouter(gate, &fakeSessions{state: memberState()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/me", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body stateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Authenticated)
	require.NotNil(t, body.User)
	assert.Equal(t, "u-1", body.User.ID)
}

func TestGateMiddleware_AdminAreaUsesAdminGate(t *testing.T) {
	gate := &fakeGate{
		member: domainauth.Decision{Outcome: domainauth.OutcomeAllow},
		admin:  domainauth.Decision{Outcome: domainauth.OutcomeRedirect, Target: "/dashboard"},
	}
	router := newTestRouter(gate, &fakeSessions{state: memberState()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/overview", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestRecoverMiddleware_PanicReturns500(t *testing.T) {
	handler := Recover(slog.New(slog.NewTextHandler(io.Discard, nil)))(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) { panic("boom") }))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(&fakeGate{}, &fakeSessions{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
