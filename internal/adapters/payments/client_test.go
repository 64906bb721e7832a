package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/target/studio-ui-auth/internal/errors"
)

func TestClient_HasActivePayment(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantActive bool
		wantErr    bool
	}{
		{name: "active subscription", status: http.StatusOK, body: `{"active":true}`, wantActive: true},
		{name: "inactive subscription", status: http.StatusOK, body: `{"active":false}`},
		{name: "unknown user is inactive", status: http.StatusNotFound, body: `{"error":"not found"}`},
		{name: "server error is transient", status: http.StatusInternalServerError, body: "oops", wantErr: true},
		{name: "malformed body is transient", status: http.StatusOK, body: "{", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/subscriptions/user-1/status", r.URL.Path)
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body)) //nolint:errcheck
			}))
			defer srv.Close()

			client, err := NewClient(ClientOptions{BaseURL: srv.URL, APIKey: "test-key"})
			require.NoError(t, err)

			active, err := client.HasActivePayment(context.Background(), "user-1")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsTransient(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantActive, active)
		})
	}
}

func TestClient_HasActivePayment_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client, err := NewClient(ClientOptions{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.HasActivePayment(context.Background(), "user-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsTransient(err))
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(ClientOptions{})
	assert.Error(t, err)
}

func TestStatic(t *testing.T) {
	active, err := Static{Active: true}.HasActivePayment(context.Background(), "anyone")
	require.NoError(t, err)
	assert.True(t, active)
}
