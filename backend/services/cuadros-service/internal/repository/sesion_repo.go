package repository

import (
	"context"
	"database/sql"
	"errors"

	"inspecciones/backend/services/cuadros-service/internal/models"
)

// ErrSesionNotFound indicates no navigation record exists for the user.
var ErrSesionNotFound = errors.New("sesion not found")

// SesionRepository persists the per-user navigation record.
type SesionRepository struct {
	db *sql.DB
}

// NewSesionRepository returns repository.
func NewSesionRepository(db *sql.DB) *SesionRepository {
	return &SesionRepository{db: db}
}

// Upsert stores the record keyed by username; the last write wins.
func (r *SesionRepository) Upsert(ctx context.Context, s *models.Sesion) error {
	const query = `
		INSERT INTO sesiones (username, pagina, centro_seleccionado, timestamp)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO UPDATE SET
			pagina = EXCLUDED.pagina,
			centro_seleccionado = EXCLUDED.centro_seleccionado,
			timestamp = EXCLUDED.timestamp
	`
	_, err := r.db.ExecContext(ctx, query, s.Username, s.Pagina, s.CentroSeleccionado, s.Timestamp)
	return err
}

// GetByUsername loads the record of a user.
func (r *SesionRepository) GetByUsername(ctx context.Context, username string) (*models.Sesion, error) {
	const query = `
		SELECT username, pagina, centro_seleccionado, timestamp
		FROM sesiones
		WHERE username = $1
	`
	var (
		s      models.Sesion
		centro sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, query, username).Scan(&s.Username, &s.Pagina, &centro, &s.Timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSesionNotFound
		}
		return nil, err
	}
	if centro.Valid {
		s.CentroSeleccionado = &centro.Int64
	}
	return &s, nil
}

// DeleteByUsername removes the record. Deleting a missing record is not an error.
func (r *SesionRepository) DeleteByUsername(ctx context.Context, username string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sesiones WHERE username = $1`, username)
	return err
}
