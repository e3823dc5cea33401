package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/pkg/auth"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
	"github.com/clinicore/clinic-api/pkg/security"
)

// Service authenticates users and manages token lifecycle.
type Service struct {
	users  repository.UserRepository
	tokens repository.TokenRevocationStore
	jwt    auth.JWTService
	hasher security.PasswordHasher
	logger *zerolog.Logger
}

func NewService(
	users repository.UserRepository,
	tokens repository.TokenRevocationStore,
	jwt auth.JWTService,
	hasher security.PasswordHasher,
	logger *zerolog.Logger,
) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		jwt:    jwt,
		hasher: hasher,
		logger: logger,
	}
}

// Login verifies credentials and issues an access token. Unknown
// username and wrong password produce the same error so the response
// does not leak which one failed.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.AuthenticationFailure("invalid username or password")
		}
		return nil, apperrors.Internal(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.AuthenticationFailure("invalid username or password")
	}

	token, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.logger.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("user logged in")
	return &model.TokenResponse{AccessToken: token}, nil
}

// Logout revokes the presented token until its natural expiry.
func (s *Service) Logout(ctx context.Context, claims *model.TokenClaims) error {
	if err := s.tokens.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// Validate parses the token and rejects it when revoked.
func (s *Service) Validate(ctx context.Context, token string) (*model.TokenClaims, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	revoked, err := s.tokens.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if revoked {
		return nil, apperrors.Unauthorized(errors.New("token has been revoked"))
	}
	return claims, nil
}
