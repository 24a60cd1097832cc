package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, expiry time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(expiry),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, KeyToken, "abc"))
	require.NoError(t, store.Set(ctx, KeyUsername, "asha"))

	got, err := store.Get(ctx, KeyUsername)
	require.NoError(t, err)
	assert.Equal(t, "asha", got)

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap, 2)
}

func TestMemoryStoreClearRemovesEverything(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, SaveLogin(ctx, store, Login{
		Token:    "tok",
		Username: "asha",
		Role:     "user",
		Github:   "asha-dev",
	}))

	require.NoError(t, store.Clear(ctx))

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestSaveLoginSkipsEmptyOptionalFields(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, SaveLogin(ctx, store, Login{Token: "tok", Username: "asha", Role: "user"}))

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", snap[KeyToken])
	_, hasGithub := snap[KeyGithub]
	assert.False(t, hasGithub)
}

func TestSessionAuthenticated(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{name: "no token", token: "", want: false},
		{name: "valid jwt", token: signedToken(t, time.Now().Add(time.Hour)), want: true},
		{name: "expired jwt", token: signedToken(t, time.Now().Add(-time.Hour)), want: false},
		{name: "opaque token", token: "not-a-jwt", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			if tt.token != "" {
				require.NoError(t, store.Set(ctx, KeyToken, tt.token))
			}
			sess := NewSession(store)
			assert.Equal(t, tt.want, sess.Authenticated(ctx))
		})
	}
}

func TestSessionRoleHelpers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, KeyRole, "Admin"))

	sess := NewSession(store)
	assert.True(t, sess.IsAdmin(ctx))
	assert.Equal(t, "Admin", sess.Role(ctx))
}
