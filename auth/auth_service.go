// Package auth implements the client side of the platform's authentication
// protocol: login, registration, logout, the app-start session bootstrap and
// the coalesced token refresh the HTTP client falls back to on a 401.
package auth

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/vraj-wappnet/go-hms-client/httpclient"
	"github.com/vraj-wappnet/go-hms-client/session"
	"github.com/vraj-wappnet/go-hms-client/users"
	"golang.org/x/sync/singleflight"
)

// Backend endpoint paths. The client treats login and refresh specially (a
// 401 from either never triggers the refresh protocol), so these must match
// the paths configured on the httpclient.
const (
	LoginPath    = "/auth/login"
	RegisterPath = "/auth/register"
	RefreshPath  = "/auth/refresh"
)

// LoginParams are the credentials sent to the login endpoint.
type LoginParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterParams is the signup payload. Role is chosen at registration and
// immutable afterwards.
type RegisterParams struct {
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	Role      users.Role `json:"role"`
}

// RegisterResult is the register response. Unlike login it carries a single
// token and no refresh token; the platform routes freshly registered users
// through the login view, so the session store is not mutated.
type RegisterResult struct {
	Token string      `json:"token"`
	User  *users.User `json:"user"`
}

type loginResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         *users.User `json:"user"`
}

// Service owns the session lifecycle on behalf of the UI: it is the only
// writer of the session store besides the store's own reset paths.
type Service struct {
	store   *session.Store
	client  *httpclient.Client
	storage session.Storage

	refreshGroup singleflight.Group
	ready        atomic.Bool
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithStorage attaches the durable storage the bootstrapper rehydrates from.
// Pass the same storage the store persists to.
func WithStorage(storage session.Storage) ServiceOption {
	return func(s *Service) {
		s.storage = storage
	}
}

// NewService wires the auth service to the store and client, and registers
// itself as the client's refresher so 401 responses route back here.
func NewService(store *session.Store, client *httpclient.Client, options ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("[NewService] store is required")
	}
	if client == nil {
		return nil, errors.New("[NewService] client is required")
	}

	s := &Service{
		store:  store,
		client: client,
	}
	for _, opt := range options {
		opt(s)
	}

	client.SetRefresher(s)
	return s, nil
}

// Login exchanges credentials for a token pair and stores the authenticated
// session. A 401 here means the credentials were wrong: the server message
// is recorded on the store and returned, and no refresh is attempted.
func (s *Service) Login(ctx context.Context, params LoginParams) (*users.User, error) {
	s.store.ClearError()

	var resp loginResponse
	if err := s.client.Post(ctx, LoginPath, params, &resp); err != nil {
		s.store.SetError(err.Error())
		return nil, errors.Wrap(err, "[Service.Login] login request")
	}
	if resp.AccessToken == "" || resp.User == nil {
		s.store.SetError("login response missing token or user")
		return nil, errors.New("[Service.Login] malformed login response")
	}

	s.store.SetSession(resp.AccessToken, resp.RefreshToken, resp.User)
	log.Info().Str("user_id", resp.User.ID).Str("role", string(resp.User.Role)).Msg("auth: logged in")
	return resp.User, nil
}

// Register creates an account. The result is returned to the caller; the
// session store is left untouched.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*RegisterResult, error) {
	if !params.Role.Valid() {
		return nil, errors.Errorf("[Service.Register] invalid role %q", params.Role)
	}

	var result RegisterResult
	if err := s.client.Post(ctx, RegisterPath, params, &result); err != nil {
		return nil, errors.Wrap(err, "[Service.Register] register request")
	}
	return &result, nil
}

// Logout resets the session. Requests already in flight are not cancelled;
// if one of them later attempts a refresh it will observe the reset store
// and fail closed instead of writing stale tokens back.
func (s *Service) Logout() {
	s.store.ResetSession()
	log.Info().Msg("auth: logged out")
}
