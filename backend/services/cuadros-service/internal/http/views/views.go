// Package views renders the HTML screens from embedded templates.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"inspecciones/backend/services/cuadros-service/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	PageLoading   = "loading.html"
	PageLogin     = "login.html"
	PageInicio    = "inicio.html"
	PageGestion   = "gestion.html"
	PageConfirmar = "confirmar.html"
	PageError     = "error.html"
)

var pages = []string{PageLoading, PageLogin, PageInicio, PageGestion, PageConfirmar, PageError}

// Base carries what the layout needs on every page.
type Base struct {
	Title     string
	Usuario   string
	CSRFField template.HTML
	Aviso     string
}

// LoadingPage asks the user to wait while sessions become available.
type LoadingPage struct {
	Base
	Mensaje string
}

// LoginPage is the credentials form.
type LoginPage struct {
	Base
	Username string
	Error    string
}

// InicioPage is the filtered site list.
type InicioPage struct {
	Base
	Provincias []string
	Provincia  string
	Busqueda   string
	Centros    []models.Centro
}

// AddForm echoes the add-panel form after a rejected submit.
type AddForm struct {
	Tipo        string
	Numero      string
	Nombre      string
	Tierra      string
	Aislamiento string
}

// GestionPage is the management view of one centro.
type GestionPage struct {
	Base
	CentroNombre string
	Cuadros      []models.Cuadro
	LastModified *models.Cuadro
	Tipos        []models.Tipo
	NumeroMin    int
	NumeroMax    int
	EditErrors   map[int64]string
	AddError     string
	AddForm      AddForm
}

// ConfirmarPage asks before deleting a panel.
type ConfirmarPage struct {
	Base
	Cuadro models.Cuadro
}

// ErrorPage is shown for failures the user cannot fix from a form.
type ErrorPage struct {
	Base
	Mensaje string
}

// Renderer holds the parsed page set.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"fecha": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("02/01/2006 a las 15:04")
	},
	"medida": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

// New parses every page against the shared layout.
func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		tpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("views: parse %s: %w", name, err)
		}
		r.pages[name] = tpl
	}
	return r, nil
}

// Render writes a page with the given status. The page is rendered into a buffer
// first so a template failure never leaves a half written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	tpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("views: unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("views: render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
