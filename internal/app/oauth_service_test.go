package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-chat-studio/internal/apperror"
	"ai-chat-studio/internal/store/jsonfile"
)

func newTestOAuthService(t *testing.T, cfg OAuthConfig) *OAuthService {
	t.Helper()
	dir := t.TempDir()
	users, err := jsonfile.NewUserStore(dir)
	require.NoError(t, err)
	sessions, err := jsonfile.NewSessionStore(dir)
	require.NoError(t, err)
	auth := NewAuthService(users, sessions, time.Hour, false, nil)
	return NewOAuthService(cfg, users, NewMemoryStateStore(time.Minute), auth, nil)
}

func TestMemoryStateStoreConsumeOnce(t *testing.T) {
	store := NewMemoryStateStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "state-1"))

	ok, err := store.Consume(ctx, "state-1")
	require.NoError(t, err)
	assert.True(t, ok)

	// Replay is rejected.
	ok, err = store.Consume(ctx, "state-1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Consume(ctx, "never-stored")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStateStoreExpiry(t *testing.T) {
	store := NewMemoryStateStore(-time.Second)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "stale"))
	ok, err := store.Consume(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmailApproved(t *testing.T) {
	svc := newTestOAuthService(t, OAuthConfig{
		ClientID:        "id",
		ClientSecret:    "secret",
		ApprovedDomains: []string{"example.com"},
		ApprovedEmails:  []string{"guest@elsewhere.org"},
	})

	assert.True(t, svc.emailApproved("alice@example.com"))
	assert.True(t, svc.emailApproved("Alice@Example.COM"))
	assert.True(t, svc.emailApproved("guest@elsewhere.org"))
	assert.False(t, svc.emailApproved("mallory@evil.com"))
	assert.False(t, svc.emailApproved("not-an-email"))
}

func TestEmailApprovedEmptyListsAdmitNobody(t *testing.T) {
	svc := newTestOAuthService(t, OAuthConfig{ClientID: "id", ClientSecret: "secret"})
	assert.False(t, svc.emailApproved("anyone@anywhere.com"))
}

func TestHandleCallbackRejectsBadState(t *testing.T) {
	svc := newTestOAuthService(t, OAuthConfig{ClientID: "id", ClientSecret: "secret"})

	_, err := svc.HandleCallback(context.Background(), "code", "state-nobody-issued")
	require.Error(t, err)
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))

	_, err = svc.HandleCallback(context.Background(), "", "")
	require.Error(t, err)
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))
}

func TestLoginURLRequiresConfiguration(t *testing.T) {
	svc := newTestOAuthService(t, OAuthConfig{})
	_, err := svc.LoginURL(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestLoginURLCarriesStoredState(t *testing.T) {
	svc := newTestOAuthService(t, OAuthConfig{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost/cb"})

	url, err := svc.LoginURL(context.Background())
	require.NoError(t, err)
	assert.Contains(t, url, "state=")
	assert.Contains(t, url, "client_id=id")
}

func TestUpsertUserCreatesAndRefreshes(t *testing.T) {
	svc := newTestOAuthService(t, OAuthConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		AdminEmails:  []string{"root@example.com"},
	})

	created, err := svc.upsertUser(&googleProfile{Email: "Root@example.com", Name: "Root", Picture: "http://pic/1"})
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", created.Username)
	assert.True(t, created.IsAdmin)
	assert.Empty(t, created.PasswordHash)

	refreshed, err := svc.upsertUser(&googleProfile{Email: "root@example.com", Name: "Root Renamed", Picture: "http://pic/2"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, refreshed.ID)
	assert.Equal(t, "Root Renamed", refreshed.DisplayName)
	assert.Equal(t, "http://pic/2", refreshed.AvatarURL)
}
