package guard

import (
	"github.com/vraj-wappnet/go-hms-client/session"
	"github.com/vraj-wappnet/go-hms-client/users"
)

// Rule is a static route protection entry. An empty RequiredRole protects
// the route for any authenticated user.
type Rule struct {
	Path         string
	RequiredRole users.Role
}

// ReadyFunc reports whether session bootstrap has completed; auth.Service's
// Ready method satisfies it.
type ReadyFunc func() bool

// Guard binds the decision function to the session store, the bootstrap
// readiness source and a static route table, so callers can check a path per
// navigation without threading state around.
type Guard struct {
	store *session.Store
	ready ReadyFunc
	rules map[string]users.Role
}

// New creates a guard over the given rules. Paths not listed are public.
func New(store *session.Store, ready ReadyFunc, rules ...Rule) *Guard {
	g := &Guard{
		store: store,
		ready: ready,
		rules: make(map[string]users.Role, len(rules)),
	}
	for _, r := range rules {
		g.rules[r.Path] = r.RequiredRole
	}
	return g
}

// Check evaluates a navigation to path against the current session state.
func (g *Guard) Check(path string) Decision {
	required, protected := g.rules[path]
	if !protected {
		return Render
	}
	return Decide(g.store.Snapshot(), g.ready(), required)
}

// DefaultRules is the platform's route table: each role's dashboard subtree
// requires that role; shared views require any authenticated user.
func DefaultRules() []Rule {
	return []Rule{
		{Path: "/admin/dashboard", RequiredRole: users.RoleAdmin},
		{Path: "/admin/users", RequiredRole: users.RoleAdmin},
		{Path: "/doctor/dashboard", RequiredRole: users.RoleDoctor},
		{Path: "/doctor/appointments", RequiredRole: users.RoleDoctor},
		{Path: "/patient/dashboard", RequiredRole: users.RolePatient},
		{Path: "/patient/appointments", RequiredRole: users.RolePatient},
		{Path: "/patient/symptom-checker", RequiredRole: users.RolePatient},
		{Path: DashboardPath},
		{Path: "/profile"},
		{Path: "/video-consult"},
	}
}
