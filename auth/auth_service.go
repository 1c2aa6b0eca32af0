// Package auth implements the login and logout flows against the user
// service, tying together the token store and the session guard.
package auth

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/starack/admin-console/apiclient"
	"github.com/starack/admin-console/session"
	"github.com/starack/admin-console/token"
)

const loginPath = "/auth/login"

// Credentials is the login form payload, validated before submission.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Service drives authentication against the user service.
type Service struct {
	api      *apiclient.Client
	tokens   token.Repo
	session  *session.Guard
	validate *validator.Validate
	logger   zerolog.Logger
}

// ServiceOption modifies a Service at construction time.
type ServiceOption func(*Service)

// WithLogger sets the service's logger.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService initializes the auth Service with required dependencies.
// api must be the user-service client.
func NewService(api *apiclient.Client, tokens token.Repo, sessionGuard *session.Guard, options ...ServiceOption) (*Service, error) {
	if api == nil {
		return nil, errors.New("[NewService] user service client is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewService] token repo is required")
	}
	if sessionGuard == nil {
		return nil, errors.New("[NewService] session guard is required")
	}

	s := &Service{
		api:      api,
		tokens:   tokens,
		session:  sessionGuard,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Login validates the credentials, exchanges them for a token pair, persists
// the pair and populates the session with the claims decoded from the new
// access token. The claims are visible to route guards as soon as Login
// returns.
func (s *Service) Login(ctx context.Context, creds Credentials) (*session.UserClaims, error) {
	if err := s.validateCredentials(creds); err != nil {
		return nil, err
	}

	var pair token.Pair
	if err := s.api.Post(ctx, loginPath, creds, &pair); err != nil {
		return nil, err
	}

	if err := s.tokens.SetPair(pair); err != nil {
		return nil, errors.Wrap(err, "[Service.Login] persist token pair")
	}

	claims, err := session.DecodeClaims(pair.AccessToken)
	if err != nil {
		// A login response carrying an undecodable token is treated like a
		// corrupt stored token: wipe the pair rather than keep half a session.
		if clearErr := s.tokens.Clear(); clearErr != nil {
			s.logger.Error().Err(clearErr).Msg("failed to clear stored tokens")
		}
		return nil, errors.Wrap(err, "[Service.Login] decode access token")
	}

	s.session.SetUser(claims)
	s.logger.Info().Str("email", claims.Email).Str("role", string(claims.Role)).Msg("logged in")
	return claims, nil
}

// Logout clears the persisted pair and the in-memory session. There is no
// backend logout endpoint; the tokens simply stop being presented.
func (s *Service) Logout() error {
	err := s.tokens.Clear()
	s.session.ClearUser()
	if err != nil {
		return errors.Wrap(err, "[Service.Logout] clear token pair")
	}
	return nil
}
