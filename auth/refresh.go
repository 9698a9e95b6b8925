package auth

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/vraj-wappnet/go-hms-client/session"
)

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Refresh exchanges the stored refresh token for a new token pair.
//
// Concurrent callers are coalesced: when several requests fail with 401 at
// the same time, only one refresh call reaches the backend and all callers
// share its outcome. Without this, the second refresh would rotate away the
// token pair the first one just installed and orphan its request.
//
// On any failure the store is reset and the returned error satisfies
// errors.Is(err, session.ErrSessionExpired).
func (s *Service) Refresh(ctx context.Context) error {
	// The shared refresh must not die with whichever caller happens to be
	// cancelled first; the client's own timeout still bounds it.
	_, err, _ := s.refreshGroup.Do("refresh", func() (any, error) {
		return nil, s.doRefresh(context.WithoutCancel(ctx))
	})
	return err
}

func (s *Service) doRefresh(ctx context.Context) error {
	snap := s.store.Snapshot()
	if snap.RefreshToken == "" {
		s.store.ResetSession()
		return session.ErrRefreshUnavailable
	}

	var resp refreshResponse
	err := s.client.Post(ctx, RefreshPath, refreshRequest{RefreshToken: snap.RefreshToken}, &resp)
	if err != nil {
		log.Warn().Err(err).Msg("auth: token refresh failed")
		s.store.ResetSession()
		return session.ErrSessionExpired
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		log.Warn().Msg("auth: refresh response missing tokens")
		s.store.ResetSession()
		return session.ErrSessionExpired
	}

	// A logout (or a competing terminal failure) may have reset the store
	// while the refresh call was in flight. Fail closed rather than write
	// tokens back into a session the user already abandoned.
	current := s.store.Snapshot()
	if current.RefreshToken != snap.RefreshToken || current.User == nil {
		return session.ErrSessionExpired
	}

	s.store.SetSession(resp.AccessToken, resp.RefreshToken, current.User)
	log.Debug().Msg("auth: token pair rotated")
	return nil
}
