// Package session holds the process-wide authentication session: the
// access/refresh token pair, the authenticated user and the derived
// authentication flag. The Store is the single source of truth; every other
// component reads snapshots from it and mutates it only through its four
// operations.
package session

import (
	"errors"
	"fmt"

	"github.com/vraj-wappnet/go-hms-client/users"
)

var (
	// ErrSessionExpired is returned when a 401 could not be recovered by the
	// refresh protocol. The store has already been reset when callers see it;
	// the UI is expected to navigate to the login view.
	ErrSessionExpired = errors.New("session expired")

	// ErrRefreshUnavailable is returned when a 401 is hit with no refresh
	// token on hand. It wraps ErrSessionExpired so errors.Is treats the two
	// identically.
	ErrRefreshUnavailable = fmt.Errorf("no refresh token available: %w", ErrSessionExpired)
)

// Session is the current authentication state. JSON field names match the
// persisted snapshot format, which in turn mirrors the backend wire format.
//
// Invariant: Authenticated == true implies AccessToken != "" and User != nil.
// The invariant holds for every state reachable through Store mutations.
type Session struct {
	AccessToken   string      `json:"accessToken,omitempty"`
	RefreshToken  string      `json:"refreshToken,omitempty"`
	User          *users.User `json:"user,omitempty"`
	Authenticated bool        `json:"isAuthenticated"`
	Error         string      `json:"error,omitempty"`
}

// Valid reports whether the session can be trusted at startup: authenticated
// with both tokens and a user present. This is stricter than the invariant -
// a restored snapshot missing its refresh token cannot survive the first 401
// and is treated as logged out.
func (s Session) Valid() bool {
	return s.Authenticated && s.AccessToken != "" && s.RefreshToken != "" && s.User != nil
}
