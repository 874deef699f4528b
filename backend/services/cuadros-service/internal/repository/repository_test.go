package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspecciones/backend/services/cuadros-service/internal/models"
)

var cuadroRowColumns = []string{"id", "centro_id", "tipo", "nombre", "numero", "tierra_ohmnios", "aislamiento_megaohmnios", "ultimo_usuario", "ultima_modificacion"}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func TestUserRepositoryGetByUsername(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`FROM usuarios WHERE username = \$1`).
		WithArgs("ana").
		WillReturnRows(sqlmock.NewRows([]string{"username", "password"}).AddRow("ana", "$2a$hash"))

	user, err := repo.GetByUsername(context.Background(), "ana")
	require.NoError(t, err)
	assert.Equal(t, "ana", user.Username)
	assert.Equal(t, "$2a$hash", user.PasswordHash)
}

func TestUserRepositoryUpsert(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`INSERT INTO usuarios .* ON CONFLICT \(username\) DO UPDATE SET password = EXCLUDED.password`).
		WithArgs("ana", "$2a$hash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Upsert(context.Background(), "ana", "$2a$hash"))
}

func TestUserRepositoryGetByUsernameNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`FROM usuarios`).WithArgs("nadie").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUsername(context.Background(), "nadie")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCentroRepositoryList(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCentroRepository(db)

	mock.ExpectQuery(`SELECT id, nombre, provincia FROM centros ORDER BY nombre`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nombre", "provincia"}).
			AddRow(1, "Centro Alfa", "Valencia").
			AddRow(2, "Beta", "Alicante"))

	centros, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, centros, 2)
	assert.Equal(t, models.Centro{ID: 2, Nombre: "Beta", Provincia: "Alicante"}, centros[1])
}

func TestCentroRepositoryGetByIDNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCentroRepository(db)

	mock.ExpectQuery(`FROM centros WHERE id = \$1`).WithArgs(int64(9)).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, ErrCentroNotFound)
}

func TestCuadroRepositoryListByCentroNullableColumns(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCuadroRepository(db)

	modified := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM cuadros WHERE centro_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(cuadroRowColumns).
			AddRow(10, 1, "CGBT", "General", 1, 2.5, 100.0, "ana", modified).
			AddRow(11, 1, "CS", "Planta 1", 2, nil, nil, nil, nil))

	cuadros, err := repo.ListByCentro(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, cuadros, 2)

	assert.Equal(t, models.TipoCGBT, cuadros[0].Tipo)
	require.NotNil(t, cuadros[0].TierraOhmnios)
	assert.Equal(t, 2.5, *cuadros[0].TierraOhmnios)
	require.NotNil(t, cuadros[0].UltimaModificacion)
	assert.True(t, modified.Equal(*cuadros[0].UltimaModificacion))

	assert.Nil(t, cuadros[1].TierraOhmnios)
	assert.Nil(t, cuadros[1].AislamientoMegaohmnios)
	assert.Nil(t, cuadros[1].UltimoUsuario)
	assert.Nil(t, cuadros[1].UltimaModificacion)
}

func TestCuadroRepositoryCreate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCuadroRepository(db)

	tierra, aislamiento, usuario := 0.0, 0.0, "ana"
	at := time.Now()
	c := &models.Cuadro{
		CentroID:               1,
		Tipo:                   models.TipoCT,
		Nombre:                 "Trafo",
		Numero:                 100,
		TierraOhmnios:          &tierra,
		AislamientoMegaohmnios: &aislamiento,
		UltimoUsuario:          &usuario,
		UltimaModificacion:     &at,
	}

	mock.ExpectQuery(`INSERT INTO cuadros`).
		WithArgs(int64(1), "CT", "Trafo", 100, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	require.NoError(t, repo.Create(context.Background(), c))
	assert.Equal(t, int64(42), c.ID)
}

func TestCuadroRepositoryUpdateTierraOnlyTouchesTierra(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCuadroRepository(db)
	stamp := models.Stamp{Usuario: "ana", At: time.Now()}

	mock.ExpectExec(`UPDATE cuadros SET tierra_ohmnios = \$2, ultimo_usuario = \$3, ultima_modificacion = \$4 WHERE id = \$1`).
		WithArgs(int64(10), 3.2, "ana", stamp.At).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateTierra(context.Background(), 10, 3.2, stamp))
}

func TestCuadroRepositoryUpdateAislamientoNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCuadroRepository(db)

	mock.ExpectExec(`UPDATE cuadros SET aislamiento_megaohmnios`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateAislamiento(context.Background(), 10, 1, models.Stamp{Usuario: "ana", At: time.Now()})
	assert.ErrorIs(t, err, ErrCuadroNotFound)
}

func TestCuadroRepositoryUpdate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCuadroRepository(db)
	stamp := models.Stamp{Usuario: "luis", At: time.Now()}

	mock.ExpectExec(`UPDATE cuadros SET tipo = \$2, numero = \$3, nombre = \$4`).
		WithArgs(int64(10), "CC", 7, "Clima", "luis", stamp.At).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), 10, models.TipoCC, 7, "Clima", stamp))
}

func TestCuadroRepositoryDeletePropagatesStoreError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCuadroRepository(db)

	boom := errors.New("connection reset")
	mock.ExpectExec(`DELETE FROM cuadros WHERE id = \$1`).WithArgs(int64(10)).WillReturnError(boom)

	assert.ErrorIs(t, repo.Delete(context.Background(), 10), boom)
}

func TestSesionRepositoryUpsertUsesUsernameConflictTarget(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSesionRepository(db)

	centro := int64(3)
	s := &models.Sesion{Username: "ana", Pagina: "gestion", CentroSeleccionado: &centro, Timestamp: time.Now()}

	mock.ExpectExec(`INSERT INTO sesiones .* ON CONFLICT \(username\) DO UPDATE`).
		WithArgs("ana", "gestion", sqlmock.AnyArg(), s.Timestamp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Upsert(context.Background(), s))
}

func TestSesionRepositoryGetByUsername(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSesionRepository(db)
	ts := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM sesiones WHERE username = \$1`).
		WithArgs("ana").
		WillReturnRows(sqlmock.NewRows([]string{"username", "pagina", "centro_seleccionado", "timestamp"}).
			AddRow("ana", "inicio", nil, ts))

	s, err := repo.GetByUsername(context.Background(), "ana")
	require.NoError(t, err)
	assert.Equal(t, "inicio", s.Pagina)
	assert.Nil(t, s.CentroSeleccionado)
	assert.True(t, ts.Equal(s.Timestamp))
}

func TestSesionRepositoryDelete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSesionRepository(db)

	mock.ExpectExec(`DELETE FROM sesiones WHERE username = \$1`).
		WithArgs("ana").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.DeleteByUsername(context.Background(), "ana"))
}
