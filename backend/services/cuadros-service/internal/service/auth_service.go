package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"inspecciones/backend/services/cuadros-service/internal/models"
	"inspecciones/backend/services/cuadros-service/internal/password"
	"inspecciones/backend/services/cuadros-service/internal/repository"
)

// UserRepository defines storage contract used by the auth service.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthService verifies credentials against stored bcrypt hashes.
type AuthService struct {
	repo   UserRepository
	hasher password.Hasher
	logger *zap.Logger
}

// NewAuthService builds AuthService.
func NewAuthService(repo UserRepository, hasher password.Hasher, logger *zap.Logger) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		logger: logger,
	}
}

// Authenticate returns nil when the user exists and the password matches.
// Every other outcome, store failures included, is ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, pass string) error {
	username = strings.TrimSpace(username)
	if username == "" || pass == "" {
		return ErrInvalidCredentials
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Error("user lookup failed", zap.String("usuario", username), zap.Error(err))
		}
		return ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.PasswordHash, pass); err != nil {
		if !errors.Is(err, password.ErrMismatch) {
			s.logger.Warn("stored password hash unusable", zap.String("usuario", username), zap.Error(err))
		}
		return ErrInvalidCredentials
	}
	return nil
}
