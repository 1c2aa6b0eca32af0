package token

// Storage keys for the persisted pair. Absence of either key means
// "logged out" as far as the session guard is concerned.
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
)

// Pair holds the two opaque bearer strings issued by the user service at
// login. The pair is always written together and cleared together; a refresh
// only replaces the access token.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
