package repository

import (
	"context"
	"database/sql"
	"errors"

	"inspecciones/backend/services/cuadros-service/internal/models"
)

// ErrCentroNotFound indicates a missing site.
var ErrCentroNotFound = errors.New("centro not found")

// CentroRepository reads sites. Sites are read-only for this application.
type CentroRepository struct {
	db *sql.DB
}

// NewCentroRepository returns repository.
func NewCentroRepository(db *sql.DB) *CentroRepository {
	return &CentroRepository{db: db}
}

// List returns every site ordered by name.
func (r *CentroRepository) List(ctx context.Context) ([]models.Centro, error) {
	const query = `
		SELECT id, nombre, provincia
		FROM centros
		ORDER BY nombre, id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var centros []models.Centro
	for rows.Next() {
		var c models.Centro
		if err := rows.Scan(&c.ID, &c.Nombre, &c.Provincia); err != nil {
			return nil, err
		}
		centros = append(centros, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return centros, nil
}

// GetByID fetches a single site.
func (r *CentroRepository) GetByID(ctx context.Context, id int64) (*models.Centro, error) {
	const query = `
		SELECT id, nombre, provincia
		FROM centros
		WHERE id = $1
	`
	var c models.Centro
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Nombre, &c.Provincia); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCentroNotFound
		}
		return nil, err
	}
	return &c, nil
}
