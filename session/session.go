// Package session owns the in-memory authentication state of the console:
// who is logged in, and whether the startup auth check has completed yet.
// The persisted token pair is the durable backing store; this package only
// ever reads it at startup and clears it when the stored token is garbage.
package session

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/starack/admin-console/token"
)

// State tracks the guard's lifecycle. There is no way back to StateChecking
// once the initial check has run; a new token arriving via login goes through
// SetUser directly.
type State int

const (
	StateUnchecked State = iota
	StateChecking
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUnchecked:
		return "unchecked"
	case StateChecking:
		return "checking"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Snapshot is the immutable view handed to subscribers and route guards.
type Snapshot struct {
	User        *UserClaims
	AuthChecked bool
	State       State
}

// Guard establishes, at startup and after login, whether a caller is
// authenticated and who they are. Any component may read the current state;
// updates flow through SetUser/ClearUser and are fanned out to subscribers.
type Guard struct {
	tokens token.Repo
	logger zerolog.Logger

	lock        sync.RWMutex
	state       State
	user        *UserClaims
	authChecked bool
	subscribers []func(Snapshot)
}

// GuardOption modifies a Guard at construction time.
type GuardOption func(*Guard)

// WithLogger sets the guard's logger.
func WithLogger(logger zerolog.Logger) GuardOption {
	return func(g *Guard) {
		g.logger = logger
	}
}

// NewGuard creates a Guard in the unchecked state.
func NewGuard(tokens token.Repo, options ...GuardOption) *Guard {
	g := &Guard{
		tokens: tokens,
		logger: zerolog.Nop(),
		state:  StateUnchecked,
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Initialize runs the one-time startup check: read the persisted access
// token, decode its claims, and settle into Authenticated or
// Unauthenticated. Decode failures clear both persisted tokens and are
// swallowed; the caller only ever observes a logged-out session. Calling
// Initialize again after the first check is a no-op.
func (g *Guard) Initialize() {
	g.lock.Lock()
	if g.state != StateUnchecked {
		g.lock.Unlock()
		return
	}
	g.state = StateChecking
	g.lock.Unlock()

	accessToken, ok := g.tokens.AccessToken()
	if !ok {
		g.settle(nil)
		return
	}

	claims, err := DecodeClaims(accessToken)
	if err != nil {
		g.logger.Warn().Err(err).Msg("stored access token is not decodable, clearing session")
		if clearErr := g.tokens.Clear(); clearErr != nil {
			g.logger.Error().Err(clearErr).Msg("failed to clear stored tokens")
		}
		g.settle(nil)
		return
	}

	g.settle(claims)
}

// SetUser stores the claims decoded from a fresh login. Visible to route
// guards immediately.
func (g *Guard) SetUser(claims *UserClaims) {
	g.lock.Lock()
	g.user = claims
	g.state = StateAuthenticated
	snapshot := g.snapshotLocked()
	g.lock.Unlock()
	g.notify(snapshot)
}

// ClearUser drops the in-memory user on logout or refresh failure. It does
// not touch the persisted tokens; callers clear those separately.
func (g *Guard) ClearUser() {
	g.lock.Lock()
	g.user = nil
	if g.authChecked {
		g.state = StateUnauthenticated
	}
	snapshot := g.snapshotLocked()
	g.lock.Unlock()
	g.notify(snapshot)
}

// User returns the current claims, or nil when unauthenticated.
func (g *Guard) User() *UserClaims {
	g.lock.RLock()
	defer g.lock.RUnlock()
	return g.user
}

// AuthChecked reports whether the startup check has completed.
func (g *Guard) AuthChecked() bool {
	g.lock.RLock()
	defer g.lock.RUnlock()
	return g.authChecked
}

// State returns the guard's current lifecycle state.
func (g *Guard) State() State {
	g.lock.RLock()
	defer g.lock.RUnlock()
	return g.state
}

// Snapshot returns a consistent view of the session.
func (g *Guard) Snapshot() Snapshot {
	g.lock.RLock()
	defer g.lock.RUnlock()
	return g.snapshotLocked()
}

// Subscribe registers a callback invoked after every session change.
// Callbacks run synchronously on the mutating goroutine.
func (g *Guard) Subscribe(fn func(Snapshot)) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.subscribers = append(g.subscribers, fn)
}

func (g *Guard) settle(claims *UserClaims) {
	g.lock.Lock()
	g.user = claims
	g.authChecked = true
	if claims != nil {
		g.state = StateAuthenticated
	} else {
		g.state = StateUnauthenticated
	}
	snapshot := g.snapshotLocked()
	g.lock.Unlock()
	g.notify(snapshot)
}

func (g *Guard) snapshotLocked() Snapshot {
	return Snapshot{
		User:        g.user,
		AuthChecked: g.authChecked,
		State:       g.state,
	}
}

func (g *Guard) notify(snapshot Snapshot) {
	g.lock.RLock()
	subs := make([]func(Snapshot), len(g.subscribers))
	copy(subs, g.subscribers)
	g.lock.RUnlock()
	for _, fn := range subs {
		fn(snapshot)
	}
}
