package server

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/claimhound/internal/claims"
	"github.com/jonathan/claimhound/internal/types"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func netListen() (net.Listener, error) {
	return net.Listen("tcp", "127.0.0.1:0")
}

func TestClaimStore_MissingFileIsEmpty(t *testing.T) {
	store := NewClaimStore(filepath.Join(t.TempDir(), "predictions.json"), time.Minute, quietLogger())

	got, err := store.Claims()
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestClaimStore_MemoizesUntilInvalidated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.json")
	_, err := claims.WriteClaimsJSON(path, fixtureClaims())
	require.NoError(t, err)

	store := NewClaimStore(path, time.Minute, quietLogger())
	got, err := store.Claims()
	require.NoError(t, err)
	assert.Len(t, got, 3)

	require.NoError(t, os.Remove(path))
	got, err = store.Claims()
	require.NoError(t, err)
	assert.Len(t, got, 3, "served from cache")

	store.Invalidate()
	got, err = store.Claims()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClaimStore_TTL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.json")
	_, err := claims.WriteClaimsJSON(path, fixtureClaims())
	require.NoError(t, err)

	store := NewClaimStore(path, 50*time.Millisecond, quietLogger())
	_, err = store.Claims()
	require.NoError(t, err)

	_, err = claims.WriteClaimsJSON(path, fixtureClaims()[:1])
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		got, err := store.Claims()
		return err == nil && len(got) == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestClaimStore_WatchInvalidatesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "predictions.json")
	_, err := claims.WriteClaimsJSON(path, fixtureClaims())
	require.NoError(t, err)

	store := NewClaimStore(path, time.Hour, quietLogger())
	got, err := store.Claims()
	require.NoError(t, err)
	require.Len(t, got, 3)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.Watch(ctx) }()
	defer func() {
		cancel()
		assert.NoError(t, <-done)
	}()

	// Unrelated files in the same directory are ignored.
	require.NoError(t, writeFile(filepath.Join(dir, "tweets.json"), "[]"))

	require.Eventually(t, func() bool {
		// keep rewriting until the watcher is registered and sees a change
		if _, err := claims.WriteClaimsJSON(path, fixtureClaims()[:2]); err != nil {
			return false
		}
		got, err := store.Claims()
		return err == nil && len(got) == 2
	}, 3*time.Second, 50*time.Millisecond)
}

func TestClaimStore_WatchMissingDirectory(t *testing.T) {
	store := NewClaimStore(filepath.Join(t.TempDir(), "nope", "predictions.json"), time.Minute, quietLogger())
	err := store.Watch(context.Background())
	assert.Error(t, err)
}

func TestClaimStore_InvalidateDuringLoadIsNotCached(t *testing.T) {
	store := NewClaimStore(filepath.Join(t.TempDir(), "predictions.json"), time.Hour, quietLogger())

	loads := 0
	store.load = func(string) ([]types.Claim, error) {
		loads++
		if loads == 1 {
			// the file is replaced while the old contents are being read
			store.Invalidate()
			return fixtureClaims(), nil
		}
		return fixtureClaims()[:1], nil
	}

	got, err := store.Claims()
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = store.Claims()
	require.NoError(t, err)
	assert.Len(t, got, 1, "the raced load must not be served from cache")
	assert.Equal(t, 2, loads)

	got, err = store.Claims()
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 2, loads, "an undisturbed load is cached")
}
