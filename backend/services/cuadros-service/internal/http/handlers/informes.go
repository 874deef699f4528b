package handlers

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"inspecciones/backend/services/cuadros-service/internal/report"
)

// Report handles GET /informes/{kind} for the selected centro.
func (h *Handlers) Report(w http.ResponseWriter, r *http.Request) {
	_, centroID, ok := h.requireGestion(w, r)
	if !ok {
		return
	}
	kind, err := report.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		h.NotFound(w, r)
		return
	}

	doc, err := h.reports.Build(r.Context(), kind, centroID)
	if err != nil {
		h.logger.Error("report generation failed",
			zap.String("kind", string(kind)),
			zap.Int64("centro_id", centroID),
			zap.Error(err),
		)
		h.fail(w, r, http.StatusBadGateway, MsgInforme)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Body)
}
