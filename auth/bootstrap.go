package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"github.com/vraj-wappnet/go-hms-client/session"
)

// Bootstrap restores a previously persisted session at app start. A snapshot
// holding the authentication flag, both tokens and a user is trusted without
// a server round-trip: the first 401 will surface a stale token through the
// normal refresh path. Anything less is treated as logged out.
//
// Route guards render a loading placeholder until Ready reports true.
func (s *Service) Bootstrap(ctx context.Context) error {
	defer s.ready.Store(true)

	if s.storage != nil {
		snap, err := s.storage.Load()
		if err != nil {
			// Corrupt or unreadable storage is equivalent to an empty session.
			log.Warn().Err(err).Msg("auth: failed to load persisted session")
			snap = session.Session{}
		}
		s.store.Rehydrate(snap)
	}

	snap := s.store.Snapshot()
	if !snap.Valid() {
		s.store.ResetSession()
		log.Debug().Msg("auth: no valid persisted session, starting logged out")
		return nil
	}

	evt := log.Info().Str("user_id", snap.User.ID).Str("role", string(snap.User.Role))
	if exp, ok := accessTokenExpiry(snap.AccessToken); ok {
		evt = evt.Time("token_expires_at", exp)
	}
	evt.Msg("auth: restored persisted session")
	return nil
}

// Ready reports whether Bootstrap has completed. The route guard renders a
// loading placeholder instead of redirecting while this is false.
func (s *Service) Ready() bool {
	return s.ready.Load()
}

// accessTokenExpiry peeks at the access token's exp claim without verifying
// the signature. Informational only: expiry never gates the app-start check.
func accessTokenExpiry(raw string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
