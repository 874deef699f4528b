package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inspecciones/backend/services/cuadros-service/internal/clock"
	"inspecciones/backend/services/cuadros-service/internal/http/middleware"
	"inspecciones/backend/services/cuadros-service/internal/http/views"
	"inspecciones/backend/services/cuadros-service/internal/models"
	"inspecciones/backend/services/cuadros-service/internal/report"
	"inspecciones/backend/services/cuadros-service/internal/repository"
	"inspecciones/backend/services/cuadros-service/internal/service"
	"inspecciones/backend/services/cuadros-service/internal/session"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// fakeNav stamps sessions with now, like the real service does with its clock.
type fakeNav struct {
	now         time.Time
	loginErr    error
	selectErr   error
	logoutCalls int
}

func (f *fakeNav) Login(_ context.Context, username, _ string) (*session.Session, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &session.Session{Token: "tok", Usuario: username, State: session.Authenticated(), Timestamp: f.now}, nil
}

func (f *fakeNav) SelectCentro(_ context.Context, sess *session.Session, id int64) (*session.Session, error) {
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	st, err := sess.State.SelectCentro(id)
	if err != nil {
		return nil, err
	}
	next := *sess
	next.State = st
	next.Timestamp = f.now
	return &next, nil
}

func (f *fakeNav) BackToList(_ context.Context, sess *session.Session) (*session.Session, error) {
	st, err := sess.State.BackToList()
	if err != nil {
		return nil, err
	}
	next := *sess
	next.State = st
	next.Timestamp = f.now
	return &next, nil
}

func (f *fakeNav) Logout(context.Context, *session.Session) error {
	f.logoutCalls++
	return nil
}

type memCentros struct{ centros []models.Centro }

func (m *memCentros) List(context.Context) ([]models.Centro, error) { return m.centros, nil }

func (m *memCentros) GetByID(_ context.Context, id int64) (*models.Centro, error) {
	for _, c := range m.centros {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, repository.ErrCentroNotFound
}

type memCuadros struct {
	rows   map[int64]models.Cuadro
	nextID int64
}

func (m *memCuadros) ListByCentro(_ context.Context, centroID int64) ([]models.Cuadro, error) {
	var out []models.Cuadro
	for _, c := range m.rows {
		if c.CentroID == centroID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memCuadros) GetByID(_ context.Context, id int64) (*models.Cuadro, error) {
	c, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrCuadroNotFound
	}
	return &c, nil
}

func (m *memCuadros) Create(_ context.Context, c *models.Cuadro) error {
	m.nextID++
	c.ID = m.nextID
	m.rows[c.ID] = *c
	return nil
}

func (m *memCuadros) Update(_ context.Context, id int64, tipo models.Tipo, numero int, nombre string, stamp models.Stamp) error {
	c, ok := m.rows[id]
	if !ok {
		return repository.ErrCuadroNotFound
	}
	c.Tipo, c.Numero, c.Nombre = tipo, numero, nombre
	c.UltimoUsuario, c.UltimaModificacion = &stamp.Usuario, &stamp.At
	m.rows[id] = c
	return nil
}

func (m *memCuadros) UpdateTierra(_ context.Context, id int64, v float64, stamp models.Stamp) error {
	c, ok := m.rows[id]
	if !ok {
		return repository.ErrCuadroNotFound
	}
	c.TierraOhmnios = &v
	c.UltimoUsuario, c.UltimaModificacion = &stamp.Usuario, &stamp.At
	m.rows[id] = c
	return nil
}

func (m *memCuadros) UpdateAislamiento(_ context.Context, id int64, v float64, stamp models.Stamp) error {
	c, ok := m.rows[id]
	if !ok {
		return repository.ErrCuadroNotFound
	}
	c.AislamientoMegaohmnios = &v
	c.UltimoUsuario, c.UltimaModificacion = &stamp.Usuario, &stamp.At
	m.rows[id] = c
	return nil
}

func (m *memCuadros) Delete(_ context.Context, id int64) error {
	if _, ok := m.rows[id]; !ok {
		return repository.ErrCuadroNotFound
	}
	delete(m.rows, id)
	return nil
}

type fakeReports struct {
	err  error
	kind report.Kind
}

func (f *fakeReports) Build(_ context.Context, kind report.Kind, _ int64) (*report.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.kind = kind
	return &report.Document{Filename: "tierras-hospital.xlsx", ContentType: report.ContentTypeXLSX, Body: []byte("xlsx")}, nil
}

type fixture struct {
	h       *Handlers
	nav     *fakeNav
	cuadros *memCuadros
	reports *fakeReports
	jar     *middleware.CookieJar
	codec   *session.CookieCodec
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	loc, err := time.LoadLocation(clock.DefaultZone)
	require.NoError(t, err)
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, loc)
	clk := clock.Fixed(now, loc)

	renderer, err := views.New()
	require.NoError(t, err)

	codec := session.NewCookieCodec(testSecret, clk.Now)
	f := &fixture{
		nav:     &fakeNav{now: now},
		cuadros: &memCuadros{rows: map[int64]models.Cuadro{}},
		reports: &fakeReports{},
		jar:     middleware.NewCookieJar(codec, false),
		codec:   codec,
		now:     now,
	}
	centros := &memCentros{centros: []models.Centro{
		{ID: 1, Nombre: "Hospital General", Provincia: "Valencia"},
		{ID: 2, Nombre: "Colegio Norte", Provincia: "Alicante"},
	}}
	f.h = New(Deps{
		Navigation: f.nav,
		Centros:    service.NewCentrosService(centros, nil, zap.NewNop()),
		Cuadros:    service.NewCuadrosService(f.cuadros, clk, zap.NewNop()),
		Reports:    f.reports,
		Cookies:    f.jar,
		Views:      renderer,
		Logger:     zap.NewNop(),
	})
	return f
}

func inicioSession() *session.Session {
	return &session.Session{Token: "tok", Usuario: "ana", State: session.Authenticated()}
}

func gestionSession(t *testing.T, centroID int64) *session.Session {
	t.Helper()
	st, err := session.Authenticated().SelectCentro(centroID)
	require.NoError(t, err)
	return &session.Session{Token: "tok", Usuario: "ana", State: st, NombreCentro: "Hospital General"}
}

func request(method, target string, form url.Values, sess *session.Session, vars map[string]string) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if sess != nil {
		req = req.WithContext(session.WithSession(req.Context(), sess))
	}
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

func serve(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
