package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-api/internal/models"
	"github.com/adanyl0v/task-api/internal/repository"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type PasswordVerifier interface {
	Verify(password, hash string) bool
	VerifyDummy(password string)
}

type TokenIssuer interface {
	Issue(subject string, ttl time.Duration) (string, time.Time, error)
}

type authServiceImpl struct {
	logger         zerolog.Logger
	users          UserRepository
	passwords      PasswordVerifier
	tokens         TokenIssuer
	accessTokenTTL time.Duration
}

func NewAuthService(
	logger zerolog.Logger,
	users UserRepository,
	passwords PasswordVerifier,
	tokens TokenIssuer,
	accessTokenTTL time.Duration,
) AuthService {
	return &authServiceImpl{
		logger:         logger,
		users:          users,
		passwords:      passwords,
		tokens:         tokens,
		accessTokenTTL: accessTokenTTL,
	}
}

func (s *authServiceImpl) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.passwords.VerifyDummy(password)
			s.logger.Warn().
				Str("email", email).
				Msg("user not found")
			return nil, nil
		}

		s.logger.Error().
			Err(err).
			Str("email", email).
			Msg("failed to get user by email")
		return nil, err
	}

	if !s.passwords.Verify(password, user.PasswordHash) {
		s.logger.Warn().
			Int64("user_id", user.ID).
			Msg("passwords do not match")
		return nil, nil
	}

	return user, nil
}

func (s *authServiceImpl) Login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, params.Email, params.Password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, expiresAt, err := s.tokens.Issue(user.Email, s.accessTokenTTL)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate access token")
		return nil, err
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Time("expires_at", expiresAt).
		Msg("logged in")
	return &LoginResult{
		AccessToken: accessToken,
		TokenType:   TokenTypeBearer,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *authServiceImpl) Identify(ctx context.Context, subject string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn().
				Str("email", subject).
				Msg("token subject not found")
			return nil, ErrInvalidCredentials
		}

		s.logger.Error().
			Err(err).
			Str("email", subject).
			Msg("failed to get user by email")
		return nil, err
	}
	return user, nil
}
