package httpserver

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"inspecciones/backend/services/cuadros-service/internal/http/handlers"
)

// NewRouter wires all HTTP routes. pageMiddleware wraps every route except /health.
func NewRouter(h *handlers.Handlers, pageMiddleware ...func(http.Handler) http.Handler) http.Handler {
	r := mux.NewRouter()
	notFound := http.HandlerFunc(h.NotFound)
	notAllowed := methodNotAllowed(r)
	r.NotFoundHandler = notFound
	r.MethodNotAllowedHandler = notAllowed

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	pages := r.PathPrefix("/").Subrouter()
	pages.NotFoundHandler = notFound
	pages.MethodNotAllowedHandler = notAllowed
	for _, mw := range pageMiddleware {
		pages.Use(mw)
	}

	pages.HandleFunc("/", h.Home).Methods(http.MethodGet)
	pages.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	pages.HandleFunc("/logout", h.Logout).Methods(http.MethodPost)
	pages.HandleFunc("/centros/{id:[0-9]+}/gestionar", h.SelectCentro).Methods(http.MethodPost)
	pages.HandleFunc("/volver", h.BackToList).Methods(http.MethodPost)

	pages.HandleFunc("/cuadros", h.AddCuadro).Methods(http.MethodPost)
	pages.HandleFunc("/cuadros/{id:[0-9]+}", h.EditCuadro).Methods(http.MethodPost)
	pages.HandleFunc("/cuadros/{id:[0-9]+}/tierra", h.SetTierra).Methods(http.MethodPost)
	pages.HandleFunc("/cuadros/{id:[0-9]+}/aislamiento", h.SetAislamiento).Methods(http.MethodPost)
	pages.HandleFunc("/cuadros/{id:[0-9]+}/eliminar", h.ConfirmDelete).Methods(http.MethodGet)
	pages.HandleFunc("/cuadros/{id:[0-9]+}/eliminar", h.DeleteCuadro).Methods(http.MethodPost)

	pages.HandleFunc("/informes/{kind}", h.Report).Methods(http.MethodGet)

	return r
}

var routedMethods = []string{http.MethodGet, http.MethodPost}

// methodNotAllowed answers 405 and lists in Allow the methods the path does accept.
func methodNotAllowed(router *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed := make([]string, 0, len(routedMethods))
		for _, m := range routedMethods {
			alt := r.Clone(r.Context())
			alt.Method = m
			var match mux.RouteMatch
			if router.Match(alt, &match) && match.MatchErr == nil {
				allowed = append(allowed, m)
			}
		}
		w.Header().Set("Allow", strings.Join(allowed, ", "))
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})
}
