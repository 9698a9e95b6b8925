package session

import (
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/vraj-wappnet/go-hms-client/users"
)

// Store is the single source of truth for the current session. All mutation
// goes through its four operations, which keep the Session invariant and
// persist a snapshot after each change.
//
// Reads and writes are guarded by an RWMutex: the source platform relied on
// single-threaded cooperative access, but the Go client is called from many
// goroutines and the refresh protocol depends on snapshots not tearing.
type Store struct {
	mu      sync.RWMutex
	current Session
	storage Storage
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStorage attaches durable storage. Snapshots are written after every
// session mutation; write failures are logged, never surfaced, matching the
// fire-and-forget persistence of the original client.
func WithStorage(storage Storage) StoreOption {
	return func(s *Store) {
		s.storage = storage
	}
}

// NewStore creates an empty, unauthenticated store.
func NewStore(options ...StoreOption) *Store {
	s := &Store{}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetSession marks the session authenticated with the given tokens and user
// and clears any stored error. The refresh token may be empty (the register
// response carries only an access token).
func (s *Store) SetSession(accessToken, refreshToken string, user *users.User) {
	s.mu.Lock()
	s.current = Session{
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		User:          user,
		Authenticated: true,
	}
	snap := s.current
	s.mu.Unlock()

	s.persist(snap)
}

// SetError records a human-readable failure without touching the
// authentication state.
func (s *Store) SetError(message string) {
	s.mu.Lock()
	s.current.Error = message
	snap := s.current
	s.mu.Unlock()

	s.persist(snap)
}

// ClearError clears the stored error only.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.current.Error = ""
	snap := s.current
	s.mu.Unlock()

	s.persist(snap)
}

// ResetSession clears all fields back to the unauthenticated empty state.
// Used on logout and on terminal refresh failure. Idempotent.
func (s *Store) ResetSession() {
	s.mu.Lock()
	s.current = Session{}
	snap := s.current
	s.mu.Unlock()

	s.persist(snap)
}

// Rehydrate replaces the whole session with a snapshot restored from
// storage. Only the bootstrapper calls this, before any requests are issued.
func (s *Store) Rehydrate(snap Session) {
	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
}

func (s *Store) persist(snap Session) {
	if s.storage == nil {
		return
	}
	if err := s.storage.Save(snap); err != nil {
		log.Warn().Err(err).Msg("session: failed to persist snapshot")
	}
}
