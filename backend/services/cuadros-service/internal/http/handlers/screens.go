package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"inspecciones/backend/services/cuadros-service/internal/http/views"
	"inspecciones/backend/services/cuadros-service/internal/models"
	"inspecciones/backend/services/cuadros-service/internal/repository"
	"inspecciones/backend/services/cuadros-service/internal/service"
	"inspecciones/backend/services/cuadros-service/internal/session"
)

// gestionForm carries a rejected submission back into the management page.
type gestionForm struct {
	editErrors map[int64]string
	addError   string
	add        views.AddForm
}

// Home handles GET / by rendering the screen of the current state.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	sess := current(r)
	switch sess.State.Screen() {
	case session.ScreenGestion:
		h.renderGestion(w, r, sess, http.StatusOK, gestionForm{})
	case session.ScreenInicio:
		h.renderInicio(w, r, sess)
	default:
		h.render(w, http.StatusOK, views.PageLogin, views.LoginPage{Base: h.base(r, sess, "Inicio de Sesión")})
	}
}

func (h *Handlers) renderInicio(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	q := r.URL.Query()
	provincia := q.Get("provincia")
	if provincia == "" {
		provincia = models.ProvinciaTodas
	}
	filter := service.CentroFilter{Provincia: provincia, Busqueda: q.Get("busqueda")}

	centros, err := h.centros.List(r.Context(), filter)
	if err != nil {
		h.storeFailure(w, r, "list centros", err)
		return
	}
	h.render(w, http.StatusOK, views.PageInicio, views.InicioPage{
		Base:       h.base(r, sess, "Lista de Centros"),
		Provincias: h.centros.Provincias(),
		Provincia:  provincia,
		Busqueda:   filter.Busqueda,
		Centros:    centros,
	})
}

func (h *Handlers) renderGestion(w http.ResponseWriter, r *http.Request, sess *session.Session, status int, form gestionForm) {
	centroID, _ := sess.State.CentroID()
	panel, err := h.cuadros.ListForCentro(r.Context(), centroID)
	if err != nil {
		h.storeFailure(w, r, "list cuadros", err)
		return
	}
	h.render(w, status, views.PageGestion, views.GestionPage{
		Base:         h.base(r, sess, "Gestión del Centro "+sess.NombreCentro),
		CentroNombre: sess.NombreCentro,
		Cuadros:      panel.Cuadros,
		LastModified: panel.LastModified,
		Tipos:        models.Tipos,
		NumeroMin:    models.NumeroMin,
		NumeroMax:    models.NumeroMax,
		EditErrors:   form.editErrors,
		AddError:     form.addError,
		AddForm:      form.add,
	})
}

// Login handles POST /login.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, http.StatusBadRequest, MsgCredenciales)
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))

	sess, err := h.nav.Login(r.Context(), username, r.PostFormValue("password"))
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Error("login could not open session", zap.String("usuario", username), zap.Error(err))
			status = http.StatusInternalServerError
		}
		h.render(w, status, views.PageLogin, views.LoginPage{
			Base:     h.base(r, current(r), "Inicio de Sesión"),
			Username: username,
			Error:    MsgCredenciales,
		})
		return
	}

	if err := h.jar.Write(w, sess); err != nil {
		h.logger.Error("failed to write session cookie", zap.Error(err))
		h.fail(w, r, http.StatusInternalServerError, MsgErrorDatos)
		return
	}
	redirectHome(w, r, "")
}

// Logout handles POST /logout.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	sess := current(r)
	if sess.Authenticated() {
		if err := h.nav.Logout(r.Context(), sess); err != nil {
			h.logger.Warn("logout cleanup incomplete", zap.String("usuario", sess.Usuario), zap.Error(err))
		}
	}
	h.jar.Clear(w)
	h.jar.MarkLogout(w)
	redirectHome(w, r, "")
}

// SelectCentro handles POST /centros/{id}/gestionar.
func (h *Handlers) SelectCentro(w http.ResponseWriter, r *http.Request) {
	sess := current(r)
	if !sess.Authenticated() {
		redirectHome(w, r, "")
		return
	}
	centroID, ok := pathID(r)
	if !ok {
		h.fail(w, r, http.StatusNotFound, MsgCentroNoExiste)
		return
	}

	next, err := h.nav.SelectCentro(r.Context(), sess, centroID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrCentroNotFound):
		h.fail(w, r, http.StatusNotFound, MsgCentroNoExiste)
		return
	case errors.Is(err, service.ErrNoSession):
		h.jar.Clear(w)
		redirectHome(w, r, "")
		return
	default:
		h.storeFailure(w, r, "select centro", err)
		return
	}
	h.saveAndGoHome(w, r, next)
}

// BackToList handles POST /volver.
func (h *Handlers) BackToList(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.requireGestion(w, r)
	if !ok {
		return
	}
	next, err := h.nav.BackToList(r.Context(), sess)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrNoSession):
		h.jar.Clear(w)
		redirectHome(w, r, "")
		return
	default:
		h.storeFailure(w, r, "back to list", err)
		return
	}
	h.saveAndGoHome(w, r, next)
}

func (h *Handlers) saveAndGoHome(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if err := h.jar.Write(w, sess); err != nil {
		h.logger.Error("failed to write session cookie", zap.Error(err))
		h.fail(w, r, http.StatusInternalServerError, MsgErrorDatos)
		return
	}
	redirectHome(w, r, "")
}
