package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"inspecciones/backend/services/cuadros-service/internal/http/middleware"
	"inspecciones/backend/services/cuadros-service/internal/http/views"
	"inspecciones/backend/services/cuadros-service/internal/models"
	"inspecciones/backend/services/cuadros-service/internal/report"
	"inspecciones/backend/services/cuadros-service/internal/service"
	"inspecciones/backend/services/cuadros-service/internal/session"
)

// User facing messages.
const (
	MsgCredenciales   = "Usuario o contraseña incorrectos"
	MsgCargando       = "Cargando sesión... refresque la página si tarda mucho."
	MsgErrorDatos     = "Se ha producido un error al acceder a los datos. Inténtelo de nuevo."
	MsgCentroNoExiste = "El centro no existe."
	MsgCuadroNoExiste = "El cuadro no existe."
	MsgNoEncontrado   = "La página solicitada no existe."
	MsgFormCaducado   = "El formulario ha caducado. Recargue la página e inténtelo de nuevo."
	MsgInforme        = "No se ha podido generar el informe."
)

var avisos = map[string]string{
	"actualizado": "Cuadro actualizado correctamente.",
	"eliminado":   "Cuadro eliminado.",
	"anadido":     "Cuadro añadido.",
	"tierra":      "Medición de tierra guardada.",
	"aislamiento": "Medición de aislamiento guardada.",
}

// Navigator drives the session lifecycle.
type Navigator interface {
	Login(ctx context.Context, username, password string) (*session.Session, error)
	SelectCentro(ctx context.Context, sess *session.Session, centroID int64) (*session.Session, error)
	BackToList(ctx context.Context, sess *session.Session) (*session.Session, error)
	Logout(ctx context.Context, sess *session.Session) error
}

// CentroLister lists sites.
type CentroLister interface {
	List(ctx context.Context, filter service.CentroFilter) ([]models.Centro, error)
	Provincias() []string
}

// CuadroManager edits the panels of a centro.
type CuadroManager interface {
	ListForCentro(ctx context.Context, centroID int64) (*service.Panel, error)
	Get(ctx context.Context, id int64) (*models.Cuadro, error)
	Add(ctx context.Context, in service.NewCuadroInput) (*models.Cuadro, error)
	Edit(ctx context.Context, in service.EditCuadroInput) error
	SetTierra(ctx context.Context, id int64, ohmnios float64, usuario string) error
	SetAislamiento(ctx context.Context, id int64, megaohmnios float64, usuario string) error
	Delete(ctx context.Context, id int64, confirmed bool) error
}

// ReportBuilder produces report documents.
type ReportBuilder interface {
	Build(ctx context.Context, kind report.Kind, centroID int64) (*report.Document, error)
}

// Deps lists what the handlers need.
type Deps struct {
	Navigation Navigator
	Centros    CentroLister
	Cuadros    CuadroManager
	Reports    ReportBuilder
	Cookies    *middleware.CookieJar
	Views      *views.Renderer
	Logger     *zap.Logger
}

// Handlers serves the HTML screens and their form actions.
type Handlers struct {
	nav     Navigator
	centros CentroLister
	cuadros CuadroManager
	reports ReportBuilder
	jar     *middleware.CookieJar
	views   *views.Renderer
	logger  *zap.Logger
}

// New builds Handlers.
func New(deps Deps) *Handlers {
	return &Handlers{
		nav:     deps.Navigation,
		centros: deps.Centros,
		cuadros: deps.Cuadros,
		reports: deps.Reports,
		jar:     deps.Cookies,
		views:   deps.Views,
		logger:  deps.Logger,
	}
}

func current(r *http.Request) *session.Session {
	if sess, ok := session.FromContext(r.Context()); ok {
		return sess
	}
	return &session.Session{State: session.LoggedOut()}
}

func (h *Handlers) base(r *http.Request, sess *session.Session, title string) views.Base {
	b := views.Base{
		Title:     title,
		CSRFField: csrf.TemplateField(r),
		Aviso:     avisos[r.URL.Query().Get("aviso")],
	}
	if sess.Authenticated() {
		b.Usuario = sess.Usuario
	}
	return b
}

func (h *Handlers) render(w http.ResponseWriter, status int, page string, data any) {
	if err := h.views.Render(w, status, page, data); err != nil {
		h.logger.Error("render failed", zap.String("page", page), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.render(w, status, views.PageError, views.ErrorPage{
		Base:    h.base(r, current(r), "Error"),
		Mensaje: msg,
	})
}

func (h *Handlers) storeFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Error("store operation failed", zap.String("op", op), zap.Error(err))
	h.fail(w, r, http.StatusInternalServerError, MsgErrorDatos)
}

// requireGestion returns the session and selected centro or redirects home.
func (h *Handlers) requireGestion(w http.ResponseWriter, r *http.Request) (*session.Session, int64, bool) {
	sess := current(r)
	centroID, ok := sess.State.CentroID()
	if !sess.Authenticated() || !ok {
		redirectHome(w, r, "")
		return nil, 0, false
	}
	return sess, centroID, true
}

// Loading is served while the session subsystem is not ready.
func (h *Handlers) Loading(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "3")
	h.render(w, http.StatusServiceUnavailable, views.PageLoading, views.LoadingPage{
		Base:    views.Base{Title: "Cargando"},
		Mensaje: MsgCargando,
	})
}

// CSRFFailure renders rejected form submissions.
func (h *Handlers) CSRFFailure(w http.ResponseWriter, r *http.Request) {
	h.logger.Warn("csrf check failed", zap.String("path", r.URL.Path), zap.Error(csrf.FailureReason(r)))
	h.fail(w, r, http.StatusForbidden, MsgFormCaducado)
}

// NotFound renders unknown routes.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.fail(w, r, http.StatusNotFound, MsgNoEncontrado)
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
