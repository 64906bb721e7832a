package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/studio-ui-auth/internal/domain/auth"
	apperrors "github.com/target/studio-ui-auth/internal/errors"
	"github.com/target/studio-ui-auth/internal/ports"
)

func TestFakeIdentityProvider_Defaults(t *testing.T) {
	provider := NewFakeIdentityProvider()
	ctx := context.Background()

	sess, err := provider.SignIn(ctx, "mock.user@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "mock-user-1", sess.User.ID)
	assert.Equal(t, 1, provider.SignInCalls())

	current, err := provider.CurrentSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, sess.AccessToken, current.AccessToken)

	user, err := provider.User(ctx, sess.AccessToken)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "mock-user-1", user.ID)

	user, err = provider.User(ctx, "wrong-token")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestFakeIdentityProvider_NilSessionRejectsSignIn(t *testing.T) {
	provider := NewFakeIdentityProvider()
	provider.Session = nil

	_, err := provider.SignIn(context.Background(), "a@b.c", "pw")
	require.Error(t, err)
	assert.True(t, apperrors.IsCredentialRejected(err))
}

func TestFakeIdentityProvider_FuncOverrides(t *testing.T) {
	provider := NewFakeIdentityProvider()
	provider.SignUpFunc = func(_ context.Context, in ports.SignUpInput) (domainauth.Session, error) {
		return domainauth.Session{
			User:        domainauth.User{ID: "custom", Email: in.Email},
			AccessToken: "custom-token",
		}, nil
	}

	sess, err := provider.SignUp(context.Background(), ports.SignUpInput{Email: "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "custom", sess.User.ID)
	assert.Equal(t, "new@example.com", sess.User.Email)
}

func TestMemoryProfileStore_EnsureIsIdempotent(t *testing.T) {
	store := NewMemoryProfileStore()
	ctx := context.Background()

	require.NoError(t, store.EnsureExists(ctx, domainauth.Profile{ID: "u-1", Name: "First"}))
	require.NoError(t, store.EnsureExists(ctx, domainauth.Profile{ID: "u-1", Name: "Second"}))

	got, err := store.Get(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "First", got.Name)
	assert.Equal(t, domainauth.RoleUser, got.Role)
	assert.Equal(t, 2, store.EnsureCalls())
}

func TestMemoryProfileStore_GetMissing(t *testing.T) {
	store := NewMemoryProfileStore()

	_, err := store.Get(context.Background(), "nobody")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMemoryProfileStore_FailureInjection(t *testing.T) {
	store := NewMemoryProfileStore()
	store.SetGetErr(apperrors.Transient("db down"))

	_, err := store.Get(context.Background(), "u-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsTransient(err))
}

func TestStaticRoleMapper(t *testing.T) {
	mapper := StaticRoleMapper{Key: "app_role", AdminValue: "admin"}

	assert.Equal(t, domainauth.RoleAdmin, mapper.Map(map[string]any{"app_role": "admin"}))
	assert.Equal(t, domainauth.RoleUser, mapper.Map(map[string]any{"app_role": "member"}))
	assert.Equal(t, domainauth.RoleUser, mapper.Map(nil))
}

func TestMemoryEventBus_PublishForwardsToSubscriber(t *testing.T) {
	bus := NewMemoryEventBus()
	ctx := context.Background()

	ch, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	ev := domainauth.Event{Kind: domainauth.EventSignedIn, UserID: "u-1", Origin: "here"}
	require.NoError(t, bus.Publish(ctx, ev))

	select {
	case got := <-ch:
		assert.Equal(t, ev, got)
	default:
		t.Fatal("published event not forwarded to subscriber")
	}

	require.Len(t, bus.Published(), 1)
}

func TestMemoryEventBus_CloseStopsDelivery(t *testing.T) {
	bus := NewMemoryEventBus()
	_, err := bus.Subscribe(context.Background())
	require.NoError(t, err)

	require.NoError(t, bus.Close())

	_, err = bus.Subscribe(context.Background())
	assert.Error(t, err)

	// Publishing after close records the event but delivers nowhere.
	require.NoError(t, bus.Publish(context.Background(), domainauth.Event{Kind: domainauth.EventSignedOut}))
}
