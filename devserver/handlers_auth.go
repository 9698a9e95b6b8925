package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vraj-wappnet/go-hms-client/users"
)

const contentTypeJSON = "application/json; charset=utf-8"

// writeJSON writes a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn().Err(err).Msg("devserver: failed to encode response")
	}
}

// writeError writes the platform's error envelope: a single message string.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeErrors writes the envelope's array form, used for validation failures.
func writeErrors(w http.ResponseWriter, status int, messages []string) {
	writeJSON(w, status, map[string][]string{"message": messages})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         *users.User `json:"user"`
}

// LoginHandler checks credentials and issues a fresh token pair.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user, err := s.users.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
		if err != nil || !users.CheckPasswordHash(req.Password, user.PasswordHash) {
			// Same message for unknown email and wrong password.
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}

		accessToken, err := s.tokens.IssueAccessToken(user)
		if err != nil {
			log.Error().Err(err).Msg("devserver: failed to issue access token")
			writeError(w, http.StatusInternalServerError, "failed to issue token")
			return
		}
		refreshToken, err := s.tokens.IssueRefreshToken(user.ID)
		if err != nil {
			log.Error().Err(err).Msg("devserver: failed to issue refresh token")
			writeError(w, http.StatusInternalServerError, "failed to issue token")
			return
		}

		user.LastLogin = time.Now()
		_ = s.users.Upsert(user)

		writeJSON(w, http.StatusOK, loginResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			User:         user,
		})
	}
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

type registerResponse struct {
	Token string      `json:"token"`
	User  *users.User `json:"user"`
}

// RegisterHandler creates an account. Validation failures are reported as an
// array of messages, matching the production backend's envelope.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var problems []string
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if req.FirstName == "" {
			problems = append(problems, "firstName is required")
		}
		if req.LastName == "" {
			problems = append(problems, "lastName is required")
		}
		if req.Email == "" || !strings.Contains(req.Email, "@") {
			problems = append(problems, "a valid email is required")
		}
		if err := users.ValidatePasswordStrength(req.Password); err != nil {
			problems = append(problems, err.Error())
		}
		if !users.Role(req.Role).Valid() {
			problems = append(problems, "role must be one of admin, doctor, patient")
		}
		if len(problems) > 0 {
			writeErrors(w, http.StatusBadRequest, problems)
			return
		}

		if _, err := s.users.GetByEmail(req.Email); err == nil {
			writeError(w, http.StatusConflict, "an account with this email already exists")
			return
		}

		hash, err := users.HashPassword(req.Password)
		if err != nil {
			log.Error().Err(err).Msg("devserver: failed to hash password")
			writeError(w, http.StatusInternalServerError, "failed to create account")
			return
		}

		user := &users.User{
			Email:        req.Email,
			PasswordHash: hash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Role:         users.Role(req.Role),
			DateJoined:   time.Now(),
		}
		if err := s.users.Upsert(user); err != nil {
			log.Error().Err(err).Msg("devserver: failed to store user")
			writeError(w, http.StatusInternalServerError, "failed to create account")
			return
		}

		token, err := s.tokens.IssueAccessToken(user)
		if err != nil {
			log.Error().Err(err).Msg("devserver: failed to issue token")
			writeError(w, http.StatusInternalServerError, "failed to issue token")
			return
		}

		writeJSON(w, http.StatusCreated, registerResponse{Token: token, User: user})
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshHandler rotates the presented refresh token and returns a new token
// pair. The presented token is consumed whether or not rotation succeeds.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
			writeError(w, http.StatusBadRequest, "refreshToken is required")
			return
		}

		userID, newRefresh, err := s.tokens.RotateRefreshToken(req.RefreshToken)
		if err != nil {
			if errors.Is(err, ErrRefreshTokenExpired) {
				writeError(w, http.StatusUnauthorized, "refresh token expired")
				return
			}
			writeError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}

		user, err := s.users.GetByID(userID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unknown user")
			return
		}

		accessToken, err := s.tokens.IssueAccessToken(user)
		if err != nil {
			log.Error().Err(err).Msg("devserver: failed to issue access token")
			writeError(w, http.StatusInternalServerError, "failed to issue token")
			return
		}

		writeJSON(w, http.StatusOK, refreshResponse{
			AccessToken:  accessToken,
			RefreshToken: newRefresh,
		})
	}
}
