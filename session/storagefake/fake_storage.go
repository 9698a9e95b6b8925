package storagefake

import (
	"sync"

	"github.com/vraj-wappnet/go-hms-client/session"
)

var _ session.Storage = (*FakeStorage)(nil)

// FakeStorage is an in-memory session.Storage for tests. It records every
// saved snapshot and can be primed with a snapshot or an error to simulate
// corrupt storage.
type FakeStorage struct {
	mu      sync.Mutex
	current session.Session
	saves   []session.Session

	LoadErr error // returned by Load when set
	SaveErr error // returned by Save when set
}

func New() *FakeStorage {
	return &FakeStorage{}
}

// Prime sets the snapshot returned by the next Load.
func (f *FakeStorage) Prime(snap session.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = snap
}

func (f *FakeStorage) Load() (session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.LoadErr != nil {
		return session.Session{}, f.LoadErr
	}
	return f.current, nil
}

func (f *FakeStorage) Save(snap session.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.current = snap
	f.saves = append(f.saves, snap)
	return nil
}

// Saves returns every snapshot written so far.
func (f *FakeStorage) Saves() []session.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]session.Session, len(f.saves))
	copy(out, f.saves)
	return out
}
