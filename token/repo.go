package token

// Repo is the durable key-value store backing the session. It is the only
// shared mutable resource between the session guard and the HTTP clients:
// read-mostly, overwritten as a pair on login, partially on refresh, and
// cleared as a pair on logout or refresh failure.
type Repo interface {
	// AccessToken returns the stored access token, and whether one is present.
	AccessToken() (string, bool)

	// RefreshToken returns the stored refresh token, and whether one is present.
	RefreshToken() (string, bool)

	// SetPair stores both tokens. Used on login.
	SetPair(pair Pair) error

	// SetAccessToken replaces only the access token, leaving the refresh
	// token untouched. Used after a successful refresh.
	SetAccessToken(accessToken string) error

	// Clear removes both tokens. Used on logout, decode failure and
	// refresh failure.
	Clear() error
}
