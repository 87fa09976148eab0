package gameserver

import (
	"sync"
	"time"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game"
)

const maxIdempotencyEntries = 1000

// idempotencyKey represents a composite key for idempotent requests
type idempotencyKey struct {
	PlayerID       string
	IdempotencyKey string
}

// idempotencyEntry stores a cached result with timestamp
type idempotencyEntry struct {
	result    *game.ActionResult
	createdAt time.Time
}

// IdempotencyManager caches action results per (player, key) for one game
type IdempotencyManager struct {
	cache map[idempotencyKey]*idempotencyEntry
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
}

// NewIdempotencyManager creates a cache whose entries expire after ttl.
// A non-positive ttl keeps entries until they are evicted for space.
func NewIdempotencyManager(ttl time.Duration) *IdempotencyManager {
	return &IdempotencyManager{
		cache: make(map[idempotencyKey]*idempotencyEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Check returns the cached result if the key exists for the given player
func (im *IdempotencyManager) Check(playerID, key string) *game.ActionResult {
	if key == "" {
		return nil
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	entry, exists := im.cache[idempotencyKey{PlayerID: playerID, IdempotencyKey: key}]
	if !exists || im.expired(entry) {
		return nil
	}
	return entry.result
}

// Store caches a result for the given player and idempotency key
func (im *IdempotencyManager) Store(playerID, key string, result *game.ActionResult) {
	if key == "" {
		return
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	im.cache[idempotencyKey{PlayerID: playerID, IdempotencyKey: key}] = &idempotencyEntry{
		result:    result,
		createdAt: im.now(),
	}

	// Clean up old entries if cache is getting large
	if len(im.cache) > maxIdempotencyEntries {
		im.cleanupOldEntriesLocked()
	}
}

// Len returns the number of cached entries
func (im *IdempotencyManager) Len() int {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return len(im.cache)
}

func (im *IdempotencyManager) expired(e *idempotencyEntry) bool {
	return im.ttl > 0 && im.now().Sub(e.createdAt) > im.ttl
}

// cleanupOldEntriesLocked drops expired entries, then the oldest ones until
// the cache fits again. Must be called with mu held.
func (im *IdempotencyManager) cleanupOldEntriesLocked() {
	var oldestKey idempotencyKey
	var oldest time.Time
	for key, entry := range im.cache {
		if im.expired(entry) {
			delete(im.cache, key)
			continue
		}
		if oldest.IsZero() || entry.createdAt.Before(oldest) {
			oldest, oldestKey = entry.createdAt, key
		}
	}
	if len(im.cache) > maxIdempotencyEntries {
		delete(im.cache, oldestKey)
	}
}
