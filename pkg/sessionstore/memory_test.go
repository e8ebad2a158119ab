package sessionstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMemoryPutGetDelete(t *testing.T) {
	store := NewMemory(time.Minute)
	defer store.Close()
	ctx := context.Background()

	creds := Credentials{Identifier: "jdoe", Secret: []byte("hunter2")}
	require.NoError(t, store.Put(ctx, "sid-1", creds))

	got, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", got.Identifier)
	assert.Equal(t, []byte("hunter2"), got.Secret)

	require.NoError(t, store.Delete(ctx, "sid-1"))
	_, err = store.Get(ctx, "sid-1")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMemoryUnknownSession(t *testing.T) {
	store := NewMemory(time.Minute)
	defer store.Close()

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMemoryExpiry(t *testing.T) {
	store := NewMemory(time.Minute)
	defer store.Close()
	ctx := context.Background()

	base := time.Now()
	now = func() time.Time { return base }
	defer func() { now = time.Now }()

	require.NoError(t, store.Put(ctx, "sid-1", Credentials{Identifier: "jdoe", Secret: []byte("hunter2")}))

	// still valid just before the deadline
	now = func() time.Time { return base.Add(59 * time.Second) }
	_, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)

	// expired afterwards
	now = func() time.Time { return base.Add(61 * time.Second) }
	_, err = store.Get(ctx, "sid-1")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMemoryZeroesSecretOnDelete(t *testing.T) {
	store := NewMemory(time.Minute)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "sid-1", Credentials{Identifier: "jdoe", Secret: []byte("hunter2")}))

	store.mu.Lock()
	held := store.entries["sid-1"].creds.Secret
	store.mu.Unlock()

	require.NoError(t, store.Delete(ctx, "sid-1"))
	assert.Equal(t, make([]byte, len("hunter2")), held, "secret bytes must be zeroed on removal")
}

func TestMemoryPutCopiesSecret(t *testing.T) {
	store := NewMemory(time.Minute)
	defer store.Close()
	ctx := context.Background()

	secret := []byte("hunter2")
	require.NoError(t, store.Put(ctx, "sid-1", Credentials{Identifier: "jdoe", Secret: secret}))

	// mutating the caller's slice must not affect the stored copy
	secret[0] = 'X'
	got, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("hunter2"), got.Secret)
}
