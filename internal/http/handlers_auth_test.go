package httpx

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/target/studio-ui-auth/internal/errors"
)

func newAuthTestRouter(sessions *fakeSessions) http.Handler {
	return NewRouter(RouterServices{
		Sessions: sessions,
		Gate:     &fakeGate{},
		Prefs:    newMemoryPrefs(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestLogin_Success(t *testing.T) {
	router := newAuthTestRouter(&fakeSessions{state: memberState()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"member@example.com","password":"pw"}`)))

	require.Equal(t, http.StatusOK, rec.Code)

	var body stateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Authenticated)
	require.NotNil(t, body.User)
	assert.Equal(t, "member@example.com", body.User.Email)
	require.NotNil(t, body.Profile)
	assert.Equal(t, "Member", body.Profile.Name)
}

func TestLogin_CredentialRejectedReturns401(t *testing.T) {
	router := newAuthTestRouter(&fakeSessions{
		loginErr: apperrors.CredentialRejected("invalid email or password"),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"member@example.com","password":"nope"}`)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(apperrors.ErrCodeCredentialRejected), body["error"])
}

func TestLogin_ProviderOutageReturns503(t *testing.T) {
	router := newAuthTestRouter(&fakeSessions{
		loginErr: apperrors.Transient("identity provider unreachable"),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"member@example.com","password":"pw"}`)))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLogin_MissingFieldsReturns400(t *testing.T) {
	router := newAuthTestRouter(&fakeSessions{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"  "}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignup_Returns201(t *testing.T) {
	router := newAuthTestRouter(&fakeSessions{state: memberState()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/signup",
		strings.NewReader(`{"email":"new@example.com","password":"pw","name":"New User"}`)))

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestSignup_DuplicateReturns409(t *testing.T) {
	router := newAuthTestRouter(&fakeSessions{
		signupErr: apperrors.Conflict("account already exists"),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/signup",
		strings.NewReader(`{"email":"new@example.com","password":"pw"}`)))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogout_Returns204(t *testing.T) {
	sessions := &fakeSessions{state: memberState()}
	router := newAuthTestRouter(sessions)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, sessions.logoutCalls)
}

func TestSession_InitializesAndReturnsState(t *testing.T) {
	router := newAuthTestRouter(&fakeSessions{state: memberState()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/session", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body stateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Authenticated)
}

func TestRefreshProfile_Returns202EvenOnFailure(t *testing.T) {
	sessions := &fakeSessions{
		state:      memberState(),
		refreshErr: apperrors.Transient("profile backend down"),
	}
	router := newAuthTestRouter(sessions)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/refresh-profile", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, sessions.refreshCalls)
}
