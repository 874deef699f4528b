package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"inspecciones/backend/services/cuadros-service/internal/password"
)

// MinPasswordLen is the shortest password accepted when provisioning accounts.
const MinPasswordLen = 8

// UserWriter stores account credentials.
type UserWriter interface {
	Upsert(ctx context.Context, username, passwordHash string) error
}

// ProvisionService creates or resets accounts. The web app itself never does;
// it backs the cuadros-usuarios command.
type ProvisionService struct {
	repo   UserWriter
	hasher password.Hasher
	logger *zap.Logger
}

// NewProvisionService builds ProvisionService.
func NewProvisionService(repo UserWriter, hasher password.Hasher, logger *zap.Logger) *ProvisionService {
	return &ProvisionService{repo: repo, hasher: hasher, logger: logger}
}

// Provision hashes pass and stores it for username, creating the account if needed.
func (s *ProvisionService) Provision(ctx context.Context, username, pass string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return invalid("username", "El usuario no puede estar vacío")
	}
	if utf8.RuneCountInString(pass) < MinPasswordLen {
		return invalid("password", "La contraseña debe tener al menos 8 caracteres")
	}

	hash, err := s.hasher.Hash(pass)
	if err != nil {
		return err
	}
	if err := s.repo.Upsert(ctx, username, hash); err != nil {
		s.logger.Error("user provisioning failed", zap.String("usuario", username), zap.Error(err))
		return err
	}
	s.logger.Info("user provisioned", zap.String("usuario", username))
	return nil
}
