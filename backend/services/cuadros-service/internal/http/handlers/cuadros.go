package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"inspecciones/backend/services/cuadros-service/internal/http/views"
	"inspecciones/backend/services/cuadros-service/internal/models"
	"inspecciones/backend/services/cuadros-service/internal/repository"
	"inspecciones/backend/services/cuadros-service/internal/service"
	"inspecciones/backend/services/cuadros-service/internal/session"
)

// AddCuadro handles POST /cuadros.
func (h *Handlers) AddCuadro(w http.ResponseWriter, r *http.Request) {
	sess, centroID, ok := h.requireGestion(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, http.StatusBadRequest, service.MsgCamposIncompletos)
		return
	}
	form := views.AddForm{
		Tipo:        r.PostFormValue("tipo"),
		Numero:      r.PostFormValue("numero"),
		Nombre:      r.PostFormValue("nombre"),
		Tierra:      r.PostFormValue("tierra"),
		Aislamiento: r.PostFormValue("aislamiento"),
	}

	numero, numErr := parseNumero(form.Numero)
	tierra, tierraErr := parseMedida("tierra", form.Tierra, true)
	aislamiento, aislErr := parseMedida("aislamiento", form.Aislamiento, true)

	err := firstError(numErr, tierraErr, aislErr)
	if err == nil || strings.TrimSpace(form.Nombre) == "" {
		_, err = h.cuadros.Add(r.Context(), service.NewCuadroInput{
			CentroID:    centroID,
			Tipo:        form.Tipo,
			Nombre:      form.Nombre,
			Numero:      numero,
			Tierra:      tierra,
			Aislamiento: aislamiento,
			Usuario:     sess.Usuario,
		})
	}
	if err != nil {
		if verr, ok := service.AsValidation(err); ok {
			h.renderGestion(w, r, sess, http.StatusUnprocessableEntity, gestionForm{addError: verr.Message, add: form})
			return
		}
		h.storeFailure(w, r, "add cuadro", err)
		return
	}
	redirectHome(w, r, "anadido")
}

// EditCuadro handles POST /cuadros/{id}.
func (h *Handlers) EditCuadro(w http.ResponseWriter, r *http.Request) {
	sess, centroID, ok := h.requireGestion(w, r)
	if !ok {
		return
	}
	id, ok := h.ownedCuadro(w, r, centroID)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, http.StatusBadRequest, service.MsgCamposIncompletos)
		return
	}

	numero, err := parseNumero(r.PostFormValue("numero"))
	if err == nil {
		err = h.cuadros.Edit(r.Context(), service.EditCuadroInput{
			ID:      id,
			Tipo:    r.PostFormValue("tipo"),
			Numero:  numero,
			Nombre:  r.PostFormValue("nombre"),
			Usuario: sess.Usuario,
		})
	}
	if h.mutationFailed(w, r, sess, id, "edit cuadro", err) {
		return
	}
	redirectHome(w, r, "actualizado")
}

// SetTierra handles POST /cuadros/{id}/tierra.
func (h *Handlers) SetTierra(w http.ResponseWriter, r *http.Request) {
	h.measure(w, r, "tierra")
}

// SetAislamiento handles POST /cuadros/{id}/aislamiento.
func (h *Handlers) SetAislamiento(w http.ResponseWriter, r *http.Request) {
	h.measure(w, r, "aislamiento")
}

func (h *Handlers) measure(w http.ResponseWriter, r *http.Request, field string) {
	sess, centroID, ok := h.requireGestion(w, r)
	if !ok {
		return
	}
	id, ok := h.ownedCuadro(w, r, centroID)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, http.StatusBadRequest, service.MsgMedidaInvalida)
		return
	}

	value, err := parseMedida(field, r.PostFormValue("valor"), false)
	if err == nil {
		if field == "tierra" {
			err = h.cuadros.SetTierra(r.Context(), id, value, sess.Usuario)
		} else {
			err = h.cuadros.SetAislamiento(r.Context(), id, value, sess.Usuario)
		}
	}
	if h.mutationFailed(w, r, sess, id, "set "+field, err) {
		return
	}
	redirectHome(w, r, field)
}

// ConfirmDelete handles GET /cuadros/{id}/eliminar.
func (h *Handlers) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	sess, centroID, ok := h.requireGestion(w, r)
	if !ok {
		return
	}
	cuadro, ok := h.loadOwnedCuadro(w, r, centroID)
	if !ok {
		return
	}
	h.render(w, http.StatusOK, views.PageConfirmar, views.ConfirmarPage{
		Base:   h.base(r, sess, "Eliminar cuadro"),
		Cuadro: *cuadro,
	})
}

// DeleteCuadro handles POST /cuadros/{id}/eliminar. Only confirmar=si deletes.
func (h *Handlers) DeleteCuadro(w http.ResponseWriter, r *http.Request) {
	sess, centroID, ok := h.requireGestion(w, r)
	if !ok {
		return
	}
	id, ok := h.ownedCuadro(w, r, centroID)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, http.StatusBadRequest, MsgCuadroNoExiste)
		return
	}

	err := h.cuadros.Delete(r.Context(), id, r.PostFormValue("confirmar") == "si")
	if errors.Is(err, service.ErrConfirmationRequired) {
		http.Redirect(w, r, fmt.Sprintf("/cuadros/%d/eliminar", id), http.StatusSeeOther)
		return
	}
	if h.mutationFailed(w, r, sess, id, "delete cuadro", err) {
		return
	}
	redirectHome(w, r, "eliminado")
}

// loadOwnedCuadro resolves the {id} path variable to a cuadro of the selected
// centro. Unknown ids and cuadros of other centros both answer 404.
func (h *Handlers) loadOwnedCuadro(w http.ResponseWriter, r *http.Request, centroID int64) (*models.Cuadro, bool) {
	id, ok := pathID(r)
	if !ok {
		h.fail(w, r, http.StatusNotFound, MsgCuadroNoExiste)
		return nil, false
	}
	cuadro, err := h.cuadros.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCuadroNotFound) {
			h.fail(w, r, http.StatusNotFound, MsgCuadroNoExiste)
			return nil, false
		}
		h.storeFailure(w, r, "get cuadro", err)
		return nil, false
	}
	if cuadro.CentroID != centroID {
		h.logger.Warn("cuadro outside selected centro",
			zap.Int64("cuadro_id", id), zap.Int64("centro_id", centroID))
		h.fail(w, r, http.StatusNotFound, MsgCuadroNoExiste)
		return nil, false
	}
	return cuadro, true
}

func (h *Handlers) ownedCuadro(w http.ResponseWriter, r *http.Request, centroID int64) (int64, bool) {
	cuadro, ok := h.loadOwnedCuadro(w, r, centroID)
	if !ok {
		return 0, false
	}
	return cuadro.ID, true
}

// mutationFailed renders the outcome of a failed panel write and reports whether it did.
func (h *Handlers) mutationFailed(w http.ResponseWriter, r *http.Request, sess *session.Session, id int64, op string, err error) bool {
	if err == nil {
		return false
	}
	if verr, ok := service.AsValidation(err); ok {
		h.renderGestion(w, r, sess, http.StatusUnprocessableEntity, gestionForm{editErrors: map[int64]string{id: verr.Message}})
		return true
	}
	if errors.Is(err, repository.ErrCuadroNotFound) {
		h.fail(w, r, http.StatusNotFound, MsgCuadroNoExiste)
		return true
	}
	h.storeFailure(w, r, op, err)
	return true
}
