package identity

import (
	"time"

	goCache "github.com/patrickmn/go-cache"
)

// Scope tells a Store how long a value should live.
type Scope int

const (
	// Persistent values live as long as the storage medium.
	Persistent Scope = iota
	// Session values live for the current browsing session.
	Session
)

// Store is a per-browser key/value medium for raw identifier strings.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string, scope Scope)
}

// MemoryStore keeps identifiers in process memory. Session entries expire
// after the configured ttl; persistent entries never expire.
type MemoryStore struct {
	cache      *goCache.Cache
	sessionTTL time.Duration
}

// NewMemoryStore creates a MemoryStore with the given session lifetime.
func NewMemoryStore(sessionTTL time.Duration) *MemoryStore {
	cleanup := sessionTTL
	if cleanup <= 0 {
		cleanup = time.Minute
	}
	return &MemoryStore{
		cache:      goCache.New(goCache.NoExpiration, cleanup),
		sessionTTL: sessionTTL,
	}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	v, ok := s.cache.Get(key)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok && str != ""
}

func (s *MemoryStore) Set(key, value string, scope Scope) {
	ttl := goCache.NoExpiration
	if scope == Session && s.sessionTTL > 0 {
		ttl = s.sessionTTL
	}
	s.cache.Set(key, value, ttl)
}
