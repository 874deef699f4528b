package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"inspecciones/backend/services/cuadros-service/internal/clock"
	"inspecciones/backend/services/cuadros-service/internal/models"
	redisstore "inspecciones/backend/services/cuadros-service/internal/redis"
	"inspecciones/backend/services/cuadros-service/internal/repository"
	"inspecciones/backend/services/cuadros-service/internal/session"
)

// Authenticator checks credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) error
}

// SesionRepository persists the per-user navigation record.
type SesionRepository interface {
	Upsert(ctx context.Context, s *models.Sesion) error
	GetByUsername(ctx context.Context, username string) (*models.Sesion, error)
	DeleteByUsername(ctx context.Context, username string) error
}

// TokenStore keeps issued session tokens.
type TokenStore interface {
	Save(ctx context.Context, token, username string, issuedAt time.Time, ttl time.Duration) error
	Lookup(ctx context.Context, token string) (*redisstore.TokenRecord, error)
	Touch(ctx context.Context, token string, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
	Ping(ctx context.Context) error
}

// NavigationService drives the login / site list / management lifecycle.
type NavigationService struct {
	auth     Authenticator
	sesiones SesionRepository
	tokens   TokenStore
	centros  CentroRepository
	clock    clock.Clock
	logger   *zap.Logger
}

// NewNavigationService builds NavigationService.
func NewNavigationService(
	auth Authenticator,
	sesiones SesionRepository,
	tokens TokenStore,
	centros CentroRepository,
	clk clock.Clock,
	logger *zap.Logger,
) *NavigationService {
	return &NavigationService{
		auth:     auth,
		sesiones: sesiones,
		tokens:   tokens,
		centros:  centros,
		clock:    clk,
		logger:   logger,
	}
}

// Login authenticates and opens a fresh session on the site list.
func (s *NavigationService) Login(ctx context.Context, username, password string) (*session.Session, error) {
	username = strings.TrimSpace(username)
	if err := s.auth.Authenticate(ctx, username, password); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	sess := &session.Session{
		Token:     session.NewToken(),
		Usuario:   username,
		State:     session.Authenticated(),
		Timestamp: now,
	}
	if err := s.tokens.Save(ctx, sess.Token, username, now, session.Window); err != nil {
		return nil, fmt.Errorf("navigation: save token: %w", err)
	}
	if err := s.sesiones.Upsert(ctx, toRecord(sess)); err != nil {
		return nil, fmt.Errorf("navigation: persist sesion: %w", err)
	}

	s.logger.Info("user logged in", zap.String("usuario", username))
	return sess, nil
}

// SelectCentro opens the management view of a centro.
func (s *NavigationService) SelectCentro(ctx context.Context, sess *session.Session, centroID int64) (*session.Session, error) {
	if !sess.Authenticated() {
		return nil, ErrNoSession
	}
	centro, err := s.centros.GetByID(ctx, centroID)
	if err != nil {
		return nil, err
	}
	state, err := sess.State.SelectCentro(centro.ID)
	if err != nil {
		return nil, err
	}

	next := *sess
	next.State = state
	next.NombreCentro = centro.Nombre
	next.Timestamp = s.clock.Now()
	if err := s.persist(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// BackToList returns from the management view to the site list.
func (s *NavigationService) BackToList(ctx context.Context, sess *session.Session) (*session.Session, error) {
	if !sess.Authenticated() {
		return nil, ErrNoSession
	}
	state, err := sess.State.BackToList()
	if err != nil {
		return nil, err
	}

	next := *sess
	next.State = state
	next.NombreCentro = ""
	next.Timestamp = s.clock.Now()
	if err := s.persist(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// Logout removes the stored record and the token. Both deletes are attempted.
func (s *NavigationService) Logout(ctx context.Context, sess *session.Session) error {
	if sess == nil || sess.Usuario == "" {
		return nil
	}
	var errs []error
	if err := s.sesiones.DeleteByUsername(ctx, sess.Usuario); err != nil {
		errs = append(errs, fmt.Errorf("navigation: delete sesion: %w", err))
	}
	if sess.Token != "" {
		if err := s.tokens.Delete(ctx, sess.Token); err != nil {
			errs = append(errs, fmt.Errorf("navigation: delete token: %w", err))
		}
	}
	s.logger.Info("user logged out", zap.String("usuario", sess.Usuario))
	return errors.Join(errs...)
}

// Restore rebuilds the session described by a cookie. Anything short of a valid
// token, a matching stored record and an unexpired stamp yields ErrNoSession.
func (s *NavigationService) Restore(ctx context.Context, claims *session.Claims) (*session.Session, error) {
	if claims == nil || claims.Usuario == "" || claims.Token() == "" {
		return nil, ErrNoSession
	}

	rec, err := s.tokens.Lookup(ctx, claims.Token())
	if err != nil {
		if !errors.Is(err, redisstore.ErrTokenNotFound) {
			s.logger.Warn("token lookup failed", zap.Error(err))
		}
		return nil, ErrNoSession
	}
	if rec.Username != claims.Usuario {
		s.logger.Warn("token does not belong to cookie user", zap.String("usuario", claims.Usuario))
		return nil, ErrNoSession
	}

	row, err := s.sesiones.GetByUsername(ctx, claims.Usuario)
	if err != nil {
		if !errors.Is(err, repository.ErrSesionNotFound) {
			s.logger.Warn("sesion lookup failed", zap.String("usuario", claims.Usuario), zap.Error(err))
		}
		return nil, ErrNoSession
	}
	if session.Expired(s.clock.In(row.Timestamp), s.clock.Now()) {
		return nil, ErrNoSession
	}

	state, err := session.Restore(row.Pagina, row.CentroSeleccionado)
	if err != nil {
		s.logger.Warn("stored sesion is inconsistent", zap.String("usuario", row.Username), zap.Error(err))
		return nil, ErrNoSession
	}

	sess := &session.Session{
		Token:     claims.Token(),
		Usuario:   row.Username,
		State:     state,
		Timestamp: s.clock.In(row.Timestamp),
	}
	if id, ok := state.CentroID(); ok {
		centro, err := s.centros.GetByID(ctx, id)
		if err != nil {
			s.logger.Warn("selected centro unavailable, falling back to list", zap.Int64("centro_id", id), zap.Error(err))
			sess.State = session.Authenticated()
		} else {
			sess.NombreCentro = centro.Nombre
		}
	}
	return sess, nil
}

// Ready reports whether the token store answers.
func (s *NavigationService) Ready(ctx context.Context) bool {
	if err := s.tokens.Ping(ctx); err != nil {
		s.logger.Warn("token store not ready", zap.Error(err))
		return false
	}
	return true
}

func (s *NavigationService) persist(ctx context.Context, sess *session.Session) error {
	if err := s.sesiones.Upsert(ctx, toRecord(sess)); err != nil {
		return fmt.Errorf("navigation: persist sesion: %w", err)
	}
	if err := s.tokens.Touch(ctx, sess.Token, session.Window); err != nil {
		if errors.Is(err, redisstore.ErrTokenNotFound) {
			return ErrNoSession
		}
		return fmt.Errorf("navigation: touch token: %w", err)
	}
	return nil
}

func toRecord(sess *session.Session) *models.Sesion {
	return &models.Sesion{
		Username:           sess.Usuario,
		Pagina:             sess.State.Screen().Pagina(),
		CentroSeleccionado: sess.State.CentroPtr(),
		Timestamp:          sess.Timestamp,
	}
}
