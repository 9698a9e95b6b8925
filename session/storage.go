package session

// Storage persists the session snapshot across process restarts. Load is
// called once at startup by the bootstrapper; Save is called after every
// mutation that changes the snapshot.
//
// Implementations must treat missing state as an empty session rather than
// an error: rehydration failure is equivalent to being logged out.
type Storage interface {
	Load() (Session, error)
	Save(Session) error
}
