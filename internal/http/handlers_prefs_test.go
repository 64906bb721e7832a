package httpx

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/studio-ui-auth/internal/domain/auth"
	apperrors "github.com/target/studio-ui-auth/internal/errors"
)

type memoryPrefs struct {
	mu   sync.Mutex
	data map[string]map[string]string
}

func newMemoryPrefs() *memoryPrefs {
	return &memoryPrefs{data: map[string]map[string]string{}}
}

func (p *memoryPrefs) Get(ctx context.Context, userID, key string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.data[userID][key]
	if !ok {
		return "", apperrors.NotFoundf("preference %q not set", key)
	}
	return v, nil
}

func (p *memoryPrefs) Set(ctx context.Context, userID, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data[userID] == nil {
		p.data[userID] = map[string]string{}
	}
	p.data[userID][key] = value
	return nil
}

func (p *memoryPrefs) Delete(ctx context.Context, userID, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.data[userID], key)
	return nil
}

func newPrefsTestRouter(t *testing.T) (http.Handler, *memoryPrefs) {
	t.Helper()
	prefs := newMemoryPrefs()
	router := NewRouter(RouterServices{
		Sessions: &fakeSessions{state: memberState()},
		Gate:     &fakeGate{member: domainauth.Decision{Outcome: domainauth.OutcomeAllow}},
		Prefs:    prefs,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return router, prefs
}

func TestPrefs_PutThenGet(t *testing.T) {
	router, _ := newPrefsTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/app/prefs/theme",
		strings.NewReader(`{"value":"dark"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/prefs/theme", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body prefValueResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "theme", body.Key)
	assert.Equal(t, "dark", body.Value)
}

func TestPrefs_GetMissingReturns404(t *testing.T) {
	router, _ := newPrefsTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/prefs/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPrefs_DeleteReturns204(t *testing.T) {
	router, prefs := newPrefsTestRouter(t)
	require.NoError(t, prefs.Set(context.Background(), "u-1", "theme", "dark"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/app/prefs/theme", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/prefs/theme", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPrefs_PutRejectsBadJSON(t *testing.T) {
	router, _ := newPrefsTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/app/prefs/theme",
		strings.NewReader(`{not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
