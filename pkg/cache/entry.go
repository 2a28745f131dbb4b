package cache

import (
	"time"
)

// Entry represents a cached result.
type Entry struct {
	// Data is the JSON-encoded value
	Data []byte `json:"data"`

	// Expires is when the entry becomes unreadable
	Expires time.Time `json:"expires"`

	// CachedAt is when the entry was written
	CachedAt time.Time `json:"cached_at"`
}

// NewEntry creates an entry for data that expires ttl after now.
func NewEntry(data []byte, now time.Time, ttl time.Duration) *Entry {
	return &Entry{
		Data:     data,
		Expires:  now.Add(ttl),
		CachedAt: now,
	}
}

// IsExpired returns true if the cache entry has expired.
func (e *Entry) IsExpired() bool {
	return e.ExpiredAt(time.Now())
}

// ExpiredAt reports whether the entry is expired at the given instant.
func (e *Entry) ExpiredAt(now time.Time) bool {
	return !now.Before(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
