package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/patrickmn/go-cache"

	"github.com/jonathan/claimhound/internal/claims"
	"github.com/jonathan/claimhound/internal/types"
)

const claimsCacheKey = "claims"

// DefaultCacheTTL bounds how stale the dashboard may get when file events are missed.
const DefaultCacheTTL = 5 * time.Minute

// ClaimStore is the dashboard's memoized view of the claims artifact.
// The file is read once and served from memory until Invalidate is called,
// the TTL expires, or Watch sees the file change.
type ClaimStore struct {
	path   string
	cache  *cache.Cache
	logger *slog.Logger

	// loadMu collapses concurrent cache misses into one read.
	loadMu sync.Mutex
	// generation counts invalidations; a load that raced one is not cached.
	generation atomic.Uint64
	load       func(path string) ([]types.Claim, error)
}

// NewClaimStore creates a store over the claims file at path.
func NewClaimStore(path string, ttl time.Duration, logger *slog.Logger) *ClaimStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ClaimStore{
		path:   path,
		cache:  cache.New(ttl, 0),
		logger: logger,
		load:   claims.LoadClaimsJSON,
	}
}

// Path returns the claims file the store reads.
func (s *ClaimStore) Path() string {
	return s.path
}

// Claims returns the cached claims, loading them on a miss.
// A missing file is served as an empty collection.
func (s *ClaimStore) Claims() ([]types.Claim, error) {
	if v, ok := s.cache.Get(claimsCacheKey); ok {
		return v.([]types.Claim), nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if v, ok := s.cache.Get(claimsCacheKey); ok {
		return v.([]types.Claim), nil
	}

	gen := s.generation.Load()
	loaded, err := s.load(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		s.logger.Debug("claims file not found, serving empty set", "path", s.path)
		loaded = []types.Claim{}
	}

	if s.generation.Load() != gen {
		s.logger.Debug("claims file changed during load, not caching", "path", s.path)
		return loaded, nil
	}
	s.cache.SetDefault(claimsCacheKey, loaded)
	s.logger.Debug("claims loaded", "path", s.path, "claims", len(loaded))
	return loaded, nil
}

// Invalidate drops the cached claims so the next read reloads the file.
func (s *ClaimStore) Invalidate() {
	s.generation.Add(1)
	s.cache.Delete(claimsCacheKey)
}

// Watch invalidates the cache whenever the claims file is written, created,
// renamed or removed. It watches the parent directory so atomic replacements
// are seen, and blocks until ctx is done.
func (s *ClaimStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || event.Op == fsnotify.Chmod {
				continue
			}
			s.logger.Debug("claims file changed", "path", event.Name, "op", event.Op.String())
			s.Invalidate()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("file watcher error", "error", err)
		}
	}
}
