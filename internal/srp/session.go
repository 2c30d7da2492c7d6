package srp

import (
	"math/big"
	"sync"
	"time"
)

// AuthSession is the ephemeral server-side state of one login attempt. It
// is created on challenge request and destroyed on successful completion
// or TTL expiry, never reused across attempts.
type AuthSession struct {
	Username              string
	ServerEphemeralSecret *big.Int
	ServerEphemeralPublic *big.Int
	Salt                  []byte
	Verifier              *big.Int
	CreatedAt             time.Time

	// fake marks decoy sessions issued for unknown users when fake
	// challenges are enabled. Completing one always fails.
	fake bool
}

// SessionStore holds pending login sessions keyed by session id.
// Implementations must be safe for concurrent use, and Take must be
// atomic: two concurrent Take calls for one id must not both succeed.
type SessionStore interface {
	// Put stores the session under id.
	Put(id string, session *AuthSession)

	// Take removes and returns the session for id. It returns false for
	// unknown ids and for sessions past their TTL (expired entries are
	// purged lazily here).
	Take(id string) (*AuthSession, bool)

	// Sweep removes all expired sessions and reports how many were
	// purged.
	Sweep() int
}

// InMemorySessionStore is a mutex-guarded map with TTL expiry. Lazy
// expiry on Take and the periodic Sweep share the injected clock, so the
// two paths can never disagree about what is expired.
type InMemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*AuthSession
	ttl      time.Duration
	now      func() time.Time
}

// NewInMemorySessionStore creates a store with the given TTL. The now
// function is the single clock source; pass time.Now outside of tests.
func NewInMemorySessionStore(ttl time.Duration, now func() time.Time) *InMemorySessionStore {
	if now == nil {
		now = time.Now
	}
	return &InMemorySessionStore{
		sessions: make(map[string]*AuthSession),
		ttl:      ttl,
		now:      now,
	}
}

func (s *InMemorySessionStore) expired(session *AuthSession) bool {
	return s.now().Sub(session.CreatedAt) > s.ttl
}

func (s *InMemorySessionStore) Put(id string, session *AuthSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session.CreatedAt.IsZero() {
		// The store's clock is the single source for both creation and
		// expiry, keeping lazy expiry and the sweeper consistent.
		session.CreatedAt = s.now()
	}
	s.sessions[id] = session
}

func (s *InMemorySessionStore) Take(id string) (*AuthSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	delete(s.sessions, id)

	if s.expired(session) {
		return nil, false
	}
	return session, true
}

func (s *InMemorySessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for id, session := range s.sessions {
		if s.expired(session) {
			delete(s.sessions, id)
			purged++
		}
	}
	return purged
}

// Len reports the number of stored sessions, expired or not.
func (s *InMemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
