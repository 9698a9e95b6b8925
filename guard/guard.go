// Package guard gates protected views on authentication state and role. It
// owns no state of its own: every decision is a pure projection of a session
// snapshot, the bootstrap readiness flag and a static per-route role
// requirement, re-evaluated on every navigation.
package guard

import (
	"github.com/vraj-wappnet/go-hms-client/session"
	"github.com/vraj-wappnet/go-hms-client/users"
)

// Decision is the outcome of a route guard check.
type Decision int

const (
	// Render the requested view.
	Render Decision = iota
	// Loading renders a placeholder: session bootstrap is still in progress,
	// so neither rendering nor redirecting would be correct yet.
	Loading
	// RedirectLogin sends unauthenticated users to the login view.
	RedirectLogin
	// RedirectDashboard sends authenticated users whose role does not match
	// the route's requirement to the generic dashboard landing view, which
	// fans out by role.
	RedirectDashboard
)

func (d Decision) String() string {
	switch d {
	case Render:
		return "render"
	case Loading:
		return "loading"
	case RedirectLogin:
		return "redirect-login"
	case RedirectDashboard:
		return "redirect-dashboard"
	}
	return "unknown"
}

// View paths the guard redirects to.
const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// Decide evaluates a protected view. required may be empty, meaning any
// authenticated user is allowed.
func Decide(snap session.Session, ready bool, required users.Role) Decision {
	if !ready {
		return Loading
	}
	if !snap.Authenticated || snap.User == nil {
		return RedirectLogin
	}
	if !snap.User.HasRole(required) {
		return RedirectDashboard
	}
	return Render
}

// LandingPath maps a role to its dashboard. The generic dashboard landing
// view calls this to fan authenticated users out; unknown roles fall back to
// the login view.
func LandingPath(role users.Role) string {
	switch role {
	case users.RoleAdmin:
		return "/admin/dashboard"
	case users.RoleDoctor:
		return "/doctor/dashboard"
	case users.RolePatient:
		return "/patient/dashboard"
	}
	return LoginPath
}
