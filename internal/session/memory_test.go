package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trkart/internal/config"
	"trkart/internal/models"
)

var testIdentity = models.Identity{
	CustomerID: 7,
	Email:      "ada@example.com",
	FullName:   "Ada Lovelace",
}

func testStore(now func() time.Time) *MemoryStore {
	return NewMemoryStore(config.SessionConfig{
		TTL:         time.Hour,
		RememberTTL: 7 * 24 * time.Hour,
		CookieName:  "session_token",
	}, now)
}

func TestMemoryStore_CreateAndResolve(t *testing.T) {
	ctx := context.Background()
	store := testStore(nil)

	sess, err := store.Create(ctx, testIdentity, false)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)

	resolved, ok, err := store.Resolve(ctx, sess.Token)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(7), resolved.CustomerID)
	assert.Equal(t, "ada@example.com", resolved.Email)
	assert.Equal(t, testIdentity, resolved.Identity())
}

func TestMemoryStore_TokensAreUnique(t *testing.T) {
	ctx := context.Background()
	store := testStore(nil)

	a, err := store.Create(ctx, testIdentity, false)
	require.NoError(t, err)
	b, err := store.Create(ctx, testIdentity, false)
	require.NoError(t, err)

	assert.NotEqual(t, a.Token, b.Token)
}

func TestMemoryStore_TTL(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := base
	store := testStore(func() time.Time { return current })
	ctx := context.Background()

	t.Run("plain login expires after an hour", func(t *testing.T) {
		sess, err := store.Create(ctx, testIdentity, false)
		require.NoError(t, err)
		assert.Equal(t, base.Add(time.Hour), sess.ExpiresAt)
	})

	t.Run("remember me lives seven days", func(t *testing.T) {
		sess, err := store.Create(ctx, testIdentity, true)
		require.NoError(t, err)
		assert.Equal(t, base.Add(7*24*time.Hour), sess.ExpiresAt)
	})
}

func TestMemoryStore_LazyExpiry(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := base
	store := testStore(func() time.Time { return current })
	ctx := context.Background()

	sess, err := store.Create(ctx, testIdentity, false)
	require.NoError(t, err)

	// One second before the deadline the session still resolves.
	current = base.Add(time.Hour - time.Second)
	_, ok, err := store.Resolve(ctx, sess.Token)
	require.NoError(t, err)
	assert.True(t, ok)

	// At the deadline it does not; expiry is exclusive.
	current = base.Add(time.Hour)
	_, ok, err = store.Resolve(ctx, sess.Token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_ExpireHelper(t *testing.T) {
	store := testStore(nil)
	ctx := context.Background()

	sess, err := store.Create(ctx, testIdentity, false)
	require.NoError(t, err)

	store.Expire(sess.Token, time.Now().Add(-time.Second))

	_, ok, err := store.Resolve(ctx, sess.Token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := testStore(nil)
	ctx := context.Background()

	sess, err := store.Create(ctx, testIdentity, false)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, sess.Token))

	_, ok, err := store.Resolve(ctx, sess.Token)
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting again is a no-op.
	assert.NoError(t, store.Delete(ctx, sess.Token))
	assert.NoError(t, store.Delete(ctx, ""))
}

func TestMemoryStore_ResolveUnknownToken(t *testing.T) {
	store := testStore(nil)

	_, ok, err := store.Resolve(context.Background(), "never-issued")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = store.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}
