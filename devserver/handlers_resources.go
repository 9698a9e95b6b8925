package devserver

import (
	"net/http"

	"github.com/vraj-wappnet/go-hms-client/users"
)

// Sample protected resources. The data is canned; the point is exercising
// the client's auth header, refresh-and-retry and role handling end to end.

type appointment struct {
	ID      string `json:"id"`
	Doctor  string `json:"doctor"`
	Patient string `json:"patient"`
	Time    string `json:"time"`
	Reason  string `json:"reason"`
}

type patientSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LastSeen string `json:"lastSeen"`
}

// MeHandler returns the authenticated user's profile.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(ContextKeyClaims).(AccessClaims)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing authentication")
			return
		}
		user, err := s.users.GetByID(claims.UserID)
		if err != nil {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

// AppointmentsHandler lists appointments for any authenticated user.
func (s *Server) AppointmentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []appointment{
			{ID: "apt-1", Doctor: "Dr. Mehta", Patient: "A. Shah", Time: "2025-03-04T10:00:00Z", Reason: "Follow-up"},
			{ID: "apt-2", Doctor: "Dr. Mehta", Patient: "R. Patel", Time: "2025-03-04T10:30:00Z", Reason: "Consultation"},
		})
	}
}

// PatientsHandler lists patients; doctors only.
func (s *Server) PatientsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []patientSummary{
			{ID: "pat-1", Name: "A. Shah", LastSeen: "2025-02-18"},
			{ID: "pat-2", Name: "R. Patel", LastSeen: "2025-02-27"},
		})
	}
}

// AdminStatsHandler reports platform counts; admins only.
func (s *Server) AdminStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := s.users.List(0, 0)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list users")
			return
		}

		counts := map[users.Role]int{}
		for _, u := range all {
			counts[u.Role]++
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"totalUsers": len(all),
			"admins":     counts[users.RoleAdmin],
			"doctors":    counts[users.RoleDoctor],
			"patients":   counts[users.RolePatient],
		})
	}
}
