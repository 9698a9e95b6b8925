// Package devserver is an in-memory implementation of the backend surface
// the client SDK consumes: login, register, refresh and a handful of
// protected sample resources. It exists so the SDK can be exercised end to
// end (including token expiry and refresh rotation) without the production
// API, and it doubles as the integration-test backend.
package devserver

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/vraj-wappnet/go-hms-client/users"
)

type Server struct {
	mux    *http.ServeMux
	routes []string
	users  users.UserRepo
	tokens *TokenIssuer
}

func New(userRepo users.UserRepo, tokens *TokenIssuer) (*Server, error) {
	if userRepo == nil {
		return nil, errors.New("[devserver.New] user repo is required")
	}
	if tokens == nil {
		return nil, errors.New("[devserver.New] token issuer is required")
	}

	s := &Server{
		mux:    http.NewServeMux(),
		users:  userRepo,
		tokens: tokens,
	}
	s.initRoutes()
	s.logRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler http.HandlerFunc) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) initRoutes() {
	// Auth endpoints
	s.RegisterRouteFunc("POST /auth/login", ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST /auth/register", ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST /auth/refresh", ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))

	// Protected sample resources
	s.RegisterRouteFunc("GET /users/me", ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc("GET /appointments", ChainMiddleware(s.AppointmentsHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteFunc("GET /patients", ChainMiddleware(s.PatientsHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireRole(string(users.RoleDoctor)))...))
	s.RegisterRouteFunc("GET /admin/stats", ChainMiddleware(s.AdminStatsHandler(), s.APIMiddleware(s.RequireAuth(), s.RequireRole(string(users.RoleAdmin)))...))
}

func (s *Server) logRoutes() {
	for _, route := range s.routes {
		log.Debug().Str("route", route).Msg("devserver: route registered")
	}
}
