package session

import (
	"sync"
	"time"

	"prepwise/interview/internal/models"
)

// recommendationCache memoizes per-user recommendation lists for a
// short TTL so repeated dashboard loads don't rescan the store.
type recommendationCache struct {
	cache map[string]*recoEntry
	mu    sync.RWMutex
	ttl   time.Duration
}

type recoEntry struct {
	items     []models.Recommendation
	expiresAt time.Time
}

func newRecommendationCache(ttl time.Duration) *recommendationCache {
	rc := &recommendationCache{
		cache: make(map[string]*recoEntry),
		ttl:   ttl,
	}

	// Start background cleanup goroutine
	go rc.cleanupLoop()

	return rc
}

// Set stores a user's recommendations with TTL
func (rc *recommendationCache) Set(userID string, items []models.Recommendation) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.cache[userID] = &recoEntry{
		items:     items,
		expiresAt: time.Now().Add(rc.ttl),
	}
}

// Get retrieves a user's recommendations if present and not expired
func (rc *recommendationCache) Get(userID string) ([]models.Recommendation, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	entry, exists := rc.cache[userID]
	if !exists {
		return nil, false
	}

	if time.Now().After(entry.expiresAt) {
		return nil, false
	}

	return entry.items, true
}

// Invalidate drops a user's cached recommendations; called whenever a
// session completes so new results show up immediately.
func (rc *recommendationCache) Invalidate(userID string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	delete(rc.cache, userID)
}

// cleanupLoop runs periodically to remove expired entries
func (rc *recommendationCache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rc.cleanup()
	}
}

func (rc *recommendationCache) cleanup() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	now := time.Now()
	for userID, entry := range rc.cache {
		if now.After(entry.expiresAt) {
			delete(rc.cache, userID)
		}
	}
}

// Size returns the current number of cached users
func (rc *recommendationCache) Size() int {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	return len(rc.cache)
}
