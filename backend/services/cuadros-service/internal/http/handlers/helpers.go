package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"inspecciones/backend/services/cuadros-service/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func redirectHome(w http.ResponseWriter, r *http.Request, aviso string) {
	target := "/"
	if aviso != "" {
		target += "?aviso=" + aviso
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseNumero(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, &service.ValidationError{Field: "numero", Message: service.MsgCamposIncompletos}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &service.ValidationError{Field: "numero", Message: service.MsgNumeroFueraRango}
	}
	return n, nil
}

// parseMedida accepts a decimal comma. Empty means 0 when optional.
func parseMedida(field, raw string, optional bool) (float64, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if raw == "" {
		if optional {
			return 0, nil
		}
		return 0, &service.ValidationError{Field: field, Message: service.MsgMedidaInvalida}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &service.ValidationError{Field: field, Message: service.MsgMedidaInvalida}
	}
	return v, nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
