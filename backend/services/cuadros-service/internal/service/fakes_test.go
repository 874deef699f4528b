package service

import (
	"context"
	"sort"
	"sync"

	"inspecciones/backend/services/cuadros-service/internal/models"
	"inspecciones/backend/services/cuadros-service/internal/password"
	"inspecciones/backend/services/cuadros-service/internal/repository"
)

type fakeUsers struct {
	users map[string]string
	err   error
	calls int
}

func (f *fakeUsers) Upsert(_ context.Context, username, hash string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	if f.users == nil {
		f.users = map[string]string{}
	}
	f.users[username] = hash
	return nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	hash, ok := f.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &models.User{Username: username, PasswordHash: hash}, nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(p string) (string, error) { return "hash:" + p, nil }

func (fakeHasher) Compare(hash, p string) error {
	if hash != "hash:"+p {
		return password.ErrMismatch
	}
	return nil
}

type fakeCentros struct {
	centros []models.Centro
	err     error
}

func (f *fakeCentros) List(context.Context) ([]models.Centro, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Centro(nil), f.centros...), nil
}

func (f *fakeCentros) GetByID(_ context.Context, id int64) (*models.Centro, error) {
	for _, c := range f.centros {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, repository.ErrCentroNotFound
}

type fakeSesiones struct {
	mu   sync.Mutex
	rows map[string]models.Sesion
	err  error
}

func newFakeSesiones() *fakeSesiones {
	return &fakeSesiones{rows: map[string]models.Sesion{}}
}

func (f *fakeSesiones) Upsert(_ context.Context, s *models.Sesion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.rows[s.Username] = *s
	return nil
}

func (f *fakeSesiones) GetByUsername(_ context.Context, username string) (*models.Sesion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[username]
	if !ok {
		return nil, repository.ErrSesionNotFound
	}
	return &row, nil
}

func (f *fakeSesiones) DeleteByUsername(_ context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, username)
	return nil
}

type fakeCuadros struct {
	rows   map[int64]models.Cuadro
	nextID int64
	calls  int
	err    error
}

func newFakeCuadros(rows ...models.Cuadro) *fakeCuadros {
	f := &fakeCuadros{rows: map[int64]models.Cuadro{}, nextID: 100}
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeCuadros) ListByCentro(_ context.Context, centroID int64) ([]models.Cuadro, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Cuadro
	for _, c := range f.rows {
		if c.CentroID == centroID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCuadros) GetByID(_ context.Context, id int64) (*models.Cuadro, error) {
	f.calls++
	c, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrCuadroNotFound
	}
	return &c, nil
}

func (f *fakeCuadros) Create(_ context.Context, c *models.Cuadro) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.nextID++
	c.ID = f.nextID
	f.rows[c.ID] = *c
	return nil
}

func (f *fakeCuadros) Update(_ context.Context, id int64, tipo models.Tipo, numero int, nombre string, stamp models.Stamp) error {
	f.calls++
	c, ok := f.rows[id]
	if !ok {
		return repository.ErrCuadroNotFound
	}
	c.Tipo, c.Numero, c.Nombre = tipo, numero, nombre
	f.rows[id] = applyStamp(c, stamp)
	return nil
}

func (f *fakeCuadros) UpdateTierra(_ context.Context, id int64, v float64, stamp models.Stamp) error {
	f.calls++
	c, ok := f.rows[id]
	if !ok {
		return repository.ErrCuadroNotFound
	}
	c.TierraOhmnios = &v
	f.rows[id] = applyStamp(c, stamp)
	return nil
}

func (f *fakeCuadros) UpdateAislamiento(_ context.Context, id int64, v float64, stamp models.Stamp) error {
	f.calls++
	c, ok := f.rows[id]
	if !ok {
		return repository.ErrCuadroNotFound
	}
	c.AislamientoMegaohmnios = &v
	f.rows[id] = applyStamp(c, stamp)
	return nil
}

func (f *fakeCuadros) Delete(_ context.Context, id int64) error {
	f.calls++
	if _, ok := f.rows[id]; !ok {
		return repository.ErrCuadroNotFound
	}
	delete(f.rows, id)
	return nil
}

func applyStamp(c models.Cuadro, stamp models.Stamp) models.Cuadro {
	usuario, at := stamp.Usuario, stamp.At
	c.UltimoUsuario = &usuario
	c.UltimaModificacion = &at
	return c
}
