package repository

import (
	"context"
	"database/sql"
	"errors"

	"inspecciones/backend/services/cuadros-service/internal/models"
)

// ErrCuadroNotFound indicates the panel id matched no row.
var ErrCuadroNotFound = errors.New("cuadro not found")

const cuadroColumns = `id, centro_id, tipo, nombre, numero, tierra_ohmnios, aislamiento_megaohmnios, ultimo_usuario, ultima_modificacion`

// CuadroRepository handles CRUD for the cuadros table. Each method is one round-trip.
type CuadroRepository struct {
	db *sql.DB
}

// NewCuadroRepository returns repository.
func NewCuadroRepository(db *sql.DB) *CuadroRepository {
	return &CuadroRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCuadro(row rowScanner) (models.Cuadro, error) {
	var (
		c           models.Cuadro
		tipo        string
		tierra      sql.NullFloat64
		aislamiento sql.NullFloat64
		usuario     sql.NullString
		modificado  sql.NullTime
	)
	if err := row.Scan(&c.ID, &c.CentroID, &tipo, &c.Nombre, &c.Numero, &tierra, &aislamiento, &usuario, &modificado); err != nil {
		return c, err
	}
	c.Tipo = models.Tipo(tipo)
	if tierra.Valid {
		c.TierraOhmnios = &tierra.Float64
	}
	if aislamiento.Valid {
		c.AislamientoMegaohmnios = &aislamiento.Float64
	}
	if usuario.Valid {
		c.UltimoUsuario = &usuario.String
	}
	if modificado.Valid {
		c.UltimaModificacion = &modificado.Time
	}
	return c, nil
}

// ListByCentro returns the panels of a site.
func (r *CuadroRepository) ListByCentro(ctx context.Context, centroID int64) ([]models.Cuadro, error) {
	const query = `
		SELECT ` + cuadroColumns + `
		FROM cuadros
		WHERE centro_id = $1
		ORDER BY tipo, numero, id
	`
	rows, err := r.db.QueryContext(ctx, query, centroID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cuadros []models.Cuadro
	for rows.Next() {
		c, err := scanCuadro(rows)
		if err != nil {
			return nil, err
		}
		cuadros = append(cuadros, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cuadros, nil
}

// GetByID fetches a single panel.
func (r *CuadroRepository) GetByID(ctx context.Context, id int64) (*models.Cuadro, error) {
	const query = `
		SELECT ` + cuadroColumns + `
		FROM cuadros
		WHERE id = $1
	`
	c, err := scanCuadro(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCuadroNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a panel together with its initial measurements and stamp.
func (r *CuadroRepository) Create(ctx context.Context, c *models.Cuadro) error {
	const query = `
		INSERT INTO cuadros (centro_id, tipo, nombre, numero, tierra_ohmnios, aislamiento_megaohmnios, ultimo_usuario, ultima_modificacion)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		c.CentroID,
		string(c.Tipo),
		c.Nombre,
		c.Numero,
		c.TierraOhmnios,
		c.AislamientoMegaohmnios,
		c.UltimoUsuario,
		c.UltimaModificacion,
	).Scan(&c.ID)
}

// Update rewrites the editable identity fields of a panel and stamps it.
func (r *CuadroRepository) Update(ctx context.Context, id int64, tipo models.Tipo, numero int, nombre string, stamp models.Stamp) error {
	const query = `
		UPDATE cuadros
		SET tipo = $2,
		    numero = $3,
		    nombre = $4,
		    ultimo_usuario = $5,
		    ultima_modificacion = $6
		WHERE id = $1
	`
	return r.execOne(ctx, query, id, string(tipo), numero, nombre, stamp.Usuario, stamp.At)
}

// UpdateTierra writes only the grounding measurement and the stamp.
func (r *CuadroRepository) UpdateTierra(ctx context.Context, id int64, ohmnios float64, stamp models.Stamp) error {
	const query = `
		UPDATE cuadros
		SET tierra_ohmnios = $2,
		    ultimo_usuario = $3,
		    ultima_modificacion = $4
		WHERE id = $1
	`
	return r.execOne(ctx, query, id, ohmnios, stamp.Usuario, stamp.At)
}

// UpdateAislamiento writes only the insulation measurement and the stamp.
func (r *CuadroRepository) UpdateAislamiento(ctx context.Context, id int64, megaohmnios float64, stamp models.Stamp) error {
	const query = `
		UPDATE cuadros
		SET aislamiento_megaohmnios = $2,
		    ultimo_usuario = $3,
		    ultima_modificacion = $4
		WHERE id = $1
	`
	return r.execOne(ctx, query, id, megaohmnios, stamp.Usuario, stamp.At)
}

// Delete removes a panel by id.
func (r *CuadroRepository) Delete(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM cuadros WHERE id = $1`, id)
}

func (r *CuadroRepository) execOne(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCuadroNotFound
	}
	return nil
}

