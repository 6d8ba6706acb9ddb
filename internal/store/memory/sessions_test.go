package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurorains/insurance-platform/internal/core"
)

func TestSessionStorePutGet(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	session := core.Session{
		Token:  "tok-1",
		UserID: "user-1",
		Role:   core.RoleCustomer,
	}
	require.NoError(t, store.Put(ctx, session, time.Minute))

	got, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, session, got)

	_, err = store.Get(ctx, "unknown")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestSessionStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	require.NoError(t, store.Put(ctx, core.Session{Token: "tok-1"}, -time.Second))

	_, err := store.Get(ctx, "tok-1")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)

	// The expired entry is evicted, not just hidden.
	store.mu.RLock()
	_, ok := store.sessions["tok-1"]
	store.mu.RUnlock()
	assert.False(t, ok)
}

func TestSessionStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	require.NoError(t, store.Put(ctx, core.Session{Token: "tok-1"}, time.Minute))
	require.NoError(t, store.Delete(ctx, "tok-1"))

	_, err := store.Get(ctx, "tok-1")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)

	// Deleting a missing token is not an error.
	assert.NoError(t, store.Delete(ctx, "tok-1"))
}
