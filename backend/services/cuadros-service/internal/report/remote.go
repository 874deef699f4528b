package report

import (
	"context"
	"fmt"
	"mime"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

type remoteCuadro struct {
	Tipo               string     `json:"tipo"`
	Numero             int        `json:"numero"`
	Nombre             string     `json:"nombre"`
	Medida             float64    `json:"medida"`
	UltimoUsuario      *string    `json:"ultimo_usuario,omitempty"`
	UltimaModificacion *time.Time `json:"ultima_modificacion,omitempty"`
}

type remoteRequest struct {
	Centro    string         `json:"centro"`
	Provincia string         `json:"provincia"`
	Unidad    string         `json:"unidad"`
	Generado  time.Time      `json:"generado"`
	Cuadros   []remoteCuadro `json:"cuadros"`
}

// RemoteGenerator delegates rendering to an external document service.
// It POSTs the report data to <baseURL>/informes/<kind> once, without retries,
// and returns the body as is.
type RemoteGenerator struct {
	client *resty.Client
	logger *zap.Logger
}

// NewRemoteGenerator builds a client for the document service.
func NewRemoteGenerator(baseURL string, timeout time.Duration, logger *zap.Logger) *RemoteGenerator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json")

	return &RemoteGenerator{client: client, logger: logger}
}

// Generate requests the document from the remote service.
func (g *RemoteGenerator) Generate(ctx context.Context, in Input) (*Document, error) {
	body := remoteRequest{
		Centro:    in.Centro.Nombre,
		Provincia: in.Centro.Provincia,
		Unidad:    in.Kind.Unit(),
		Generado:  in.GeneratedAt,
		Cuadros:   make([]remoteCuadro, 0, len(in.Cuadros)),
	}
	for _, c := range in.Cuadros {
		body.Cuadros = append(body.Cuadros, remoteCuadro{
			Tipo:               string(c.Tipo),
			Numero:             c.Numero,
			Nombre:             c.Nombre,
			Medida:             in.Kind.Measure(c),
			UltimoUsuario:      c.UltimoUsuario,
			UltimaModificacion: c.UltimaModificacion,
		})
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(body).
		SetPathParam("kind", string(in.Kind)).
		Post("/informes/{kind}")
	if err != nil {
		g.logger.Error("document service call failed", zap.String("kind", string(in.Kind)), zap.Error(err))
		return nil, fmt.Errorf("document service: %w", err)
	}
	if resp.IsError() {
		g.logger.Error("document service returned error",
			zap.String("kind", string(in.Kind)),
			zap.Int("status_code", resp.StatusCode()),
		)
		return nil, fmt.Errorf("document service: status %d", resp.StatusCode())
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &Document{
		Filename:    remoteFilename(resp.Header().Get("Content-Disposition"), in, contentType),
		ContentType: contentType,
		Body:        resp.Body(),
	}, nil
}

func remoteFilename(disposition string, in Input, contentType string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil && params["filename"] != "" {
			return params["filename"]
		}
	}
	ext := ".bin"
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mediaType {
		case ContentTypeXLSX:
			ext = ".xlsx"
		case "application/pdf":
			ext = ".pdf"
		}
	}
	return Filename(in.Kind, in.Centro, in.GeneratedAt, ext)
}
