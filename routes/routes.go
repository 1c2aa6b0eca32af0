// Package routes decides, for a navigation target and the current session,
// whether to render the target, redirect to the login route, show the
// forbidden view, or wait for the startup auth check. Unauthorized
// navigation always lands on the forbidden view, never on a silent
// redirect to the role's landing route.
package routes

import (
	"github.com/pkg/errors"

	"github.com/starack/admin-console/session"
	"github.com/starack/admin-console/token"
)

// Decision is the outcome of guarding one navigation attempt.
type Decision int

const (
	// DecisionWait renders nothing: the startup auth check is still in
	// flight, and redirecting now would flash the login screen.
	DecisionWait Decision = iota

	// DecisionRender renders the requested route.
	DecisionRender

	// DecisionRedirectLogin sends the caller to the login route.
	DecisionRedirectLogin

	// DecisionRedirectForbidden renders the not-authorized error view.
	DecisionRedirectForbidden

	// DecisionRedirect sends the caller to another route; used by the
	// root path, which always forwards to the role's landing route.
	DecisionRedirect
)

func (d Decision) String() string {
	switch d {
	case DecisionWait:
		return "wait"
	case DecisionRender:
		return "render"
	case DecisionRedirectLogin:
		return "redirect-login"
	case DecisionRedirectForbidden:
		return "forbidden"
	case DecisionRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Rule protects one route with a set of allowed roles.
type Rule struct {
	Path         string
	AllowedRoles []session.Role
}

// DefaultRules returns the console's protected-route table.
func DefaultRules() []Rule {
	management := []session.Role{session.RoleManager, session.RoleLeader}
	return []Rule{
		{Path: RouteOverview, AllowedRoles: management},
		{Path: RouteUserManagement, AllowedRoles: management},
		{Path: RouteProjectManagement, AllowedRoles: management},
		{Path: RouteTaskManagement, AllowedRoles: management},
		{Path: RouteUserTask, AllowedRoles: []session.Role{session.RoleEmployee}},
	}
}

// Guard decides whether the current session may render a route protected by
// allowedRoles. hasAccessToken reflects the persisted store; a live user in
// memory without a persisted token still redirects to login.
func Guard(allowedRoles []session.Role, snap session.Snapshot, hasAccessToken bool) Decision {
	if !snap.AuthChecked {
		return DecisionWait
	}
	if !hasAccessToken || snap.User == nil {
		return DecisionRedirectLogin
	}
	for _, role := range allowedRoles {
		if snap.User.Role == role {
			return DecisionRender
		}
	}
	return DecisionRedirectForbidden
}

// DefaultRouteFor maps a role to its landing route. Unknown roles fall back
// to the login route.
func DefaultRouteFor(role session.Role) string {
	switch role {
	case session.RoleManager, session.RoleLeader:
		return RouteOverview
	case session.RoleEmployee:
		return RouteUserTask
	default:
		return RouteAuth
	}
}

// RootRedirect resolves the bare root path: unauthenticated callers go to
// login, everyone else to their role's landing route.
func RootRedirect(snap session.Snapshot) string {
	if snap.User == nil {
		return RouteAuth
	}
	return DefaultRouteFor(snap.User.Role)
}

// CatchAllRedirect handles paths with no matching route: unauthenticated
// callers go to login, authenticated ones see the error view.
func CatchAllRedirect(hasAccessToken bool) Decision {
	if !hasAccessToken {
		return DecisionRedirectLogin
	}
	return DecisionRedirectForbidden
}

// Navigator performs the redirect side effect of a decision. The console
// binary prints and switches views; tests record the path.
type Navigator interface {
	Navigate(path string)
}

// Resolution is the outcome of resolving one navigation target.
type Resolution struct {
	Decision   Decision
	RedirectTo string // set for DecisionRedirectLogin and DecisionRedirect
}

// Router resolves navigation targets against the rules table and the
// current session.
type Router struct {
	rules   map[string]Rule
	session *session.Guard
	tokens  token.Repo
}

// NewRouter builds a Router. Every rule must declare a non-empty
// allowed-role set.
func NewRouter(rules []Rule, sessionGuard *session.Guard, tokens token.Repo) (*Router, error) {
	if sessionGuard == nil {
		return nil, errors.New("[NewRouter] session guard is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewRouter] token repo is required")
	}

	byPath := make(map[string]Rule, len(rules))
	for _, rule := range rules {
		if len(rule.AllowedRoles) == 0 {
			return nil, errors.Errorf("[NewRouter] rule %q has no allowed roles", rule.Path)
		}
		byPath[rule.Path] = rule
	}

	return &Router{
		rules:   byPath,
		session: sessionGuard,
		tokens:  tokens,
	}, nil
}

// Resolve maps a navigation target to a decision. The login route always
// renders; the root path forwards per RootRedirect; unknown paths go
// through CatchAllRedirect.
func (r *Router) Resolve(path string) Resolution {
	snap := r.session.Snapshot()
	_, hasToken := r.tokens.AccessToken()

	switch path {
	case RouteAuth:
		return Resolution{Decision: DecisionRender}
	case RouteRoot:
		target := RootRedirect(snap)
		if target == RouteAuth {
			return Resolution{Decision: DecisionRedirectLogin, RedirectTo: RouteAuth}
		}
		return Resolution{Decision: DecisionRedirect, RedirectTo: target}
	}

	rule, ok := r.rules[path]
	if !ok {
		decision := CatchAllRedirect(hasToken)
		if decision == DecisionRedirectLogin {
			return Resolution{Decision: decision, RedirectTo: RouteAuth}
		}
		return Resolution{Decision: decision}
	}

	decision := Guard(rule.AllowedRoles, snap, hasToken)
	if decision == DecisionRedirectLogin {
		return Resolution{Decision: decision, RedirectTo: RouteAuth}
	}
	return Resolution{Decision: decision}
}
