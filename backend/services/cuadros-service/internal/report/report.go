// Package report builds downloadable measurement reports for a centro.
package report

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"inspecciones/backend/services/cuadros-service/internal/clock"
	"inspecciones/backend/services/cuadros-service/internal/models"
)

// Kind selects which measurement a report lists.
type Kind string

const (
	KindTierras      Kind = "tierras"
	KindAislamientos Kind = "aislamientos"
)

// ParseKind validates a report kind taken from a URL.
func ParseKind(raw string) (Kind, error) {
	switch Kind(raw) {
	case KindTierras, KindAislamientos:
		return Kind(raw), nil
	default:
		return "", fmt.Errorf("report: unknown kind %q", raw)
	}
}

// Title is the human readable report name.
func (k Kind) Title() string {
	if k == KindAislamientos {
		return "Aislamientos"
	}
	return "Tierras"
}

// Unit of the listed measurement.
func (k Kind) Unit() string {
	if k == KindAislamientos {
		return "MΩ"
	}
	return "Ω"
}

// Measure picks the value reported for a panel.
func (k Kind) Measure(c models.Cuadro) float64 {
	if k == KindAislamientos {
		return c.Aislamiento()
	}
	return c.Tierra()
}

// Document is a generated file ready to download.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Input is everything a generator needs.
type Input struct {
	Kind        Kind
	Centro      models.Centro
	Cuadros     []models.Cuadro
	GeneratedAt time.Time
}

// Generator renders a report document.
type Generator interface {
	Generate(ctx context.Context, in Input) (*Document, error)
}

// Archive keeps a copy of generated documents.
type Archive interface {
	Store(ctx context.Context, key string, doc *Document) error
}

// CentroSource loads a centro.
type CentroSource interface {
	GetByID(ctx context.Context, id int64) (*models.Centro, error)
}

// CuadroSource loads the panels of a centro.
type CuadroSource interface {
	ListByCentro(ctx context.Context, centroID int64) ([]models.Cuadro, error)
}

// Service gathers data, renders it and archives the result.
type Service struct {
	centros   CentroSource
	cuadros   CuadroSource
	generator Generator
	archive   Archive
	clock     clock.Clock
	logger    *zap.Logger
}

// NewService builds the report service. archive may be nil.
func NewService(centros CentroSource, cuadros CuadroSource, generator Generator, archive Archive, clk clock.Clock, logger *zap.Logger) *Service {
	return &Service{
		centros:   centros,
		cuadros:   cuadros,
		generator: generator,
		archive:   archive,
		clock:     clk,
		logger:    logger,
	}
}

// Build renders the report of one kind for a centro.
func (s *Service) Build(ctx context.Context, kind Kind, centroID int64) (*Document, error) {
	centro, err := s.centros.GetByID(ctx, centroID)
	if err != nil {
		return nil, err
	}
	cuadros, err := s.cuadros.ListByCentro(ctx, centroID)
	if err != nil {
		return nil, err
	}
	for i := range cuadros {
		if ts := cuadros[i].UltimaModificacion; ts != nil {
			local := s.clock.In(*ts)
			cuadros[i].UltimaModificacion = &local
		}
	}

	now := s.clock.Now()
	doc, err := s.generator.Generate(ctx, Input{Kind: kind, Centro: *centro, Cuadros: cuadros, GeneratedAt: now})
	if err != nil {
		return nil, fmt.Errorf("report: generate %s: %w", kind, err)
	}

	if s.archive != nil {
		key := ArchiveKey(centroID, kind, now, doc.Filename)
		if err := s.archive.Store(ctx, key, doc); err != nil {
			s.logger.Warn("report archive failed", zap.String("key", key), zap.Error(err))
		}
	}

	s.logger.Info("report generated",
		zap.String("kind", string(kind)),
		zap.Int64("centro_id", centroID),
		zap.Int("cuadros", len(cuadros)),
		zap.Int("bytes", len(doc.Body)),
	)
	return doc, nil
}

// ArchiveKey places documents under informes/<centro>/<kind>-<stamp><ext>.
func ArchiveKey(centroID int64, kind Kind, at time.Time, filename string) string {
	return fmt.Sprintf("informes/%d/%s-%s%s", centroID, kind, at.Format("20060102T150405"), path.Ext(filename))
}

// Filename builds a download name such as tierras-hospital-general-20240315.xlsx.
func Filename(kind Kind, centro models.Centro, at time.Time, ext string) string {
	return fmt.Sprintf("%s-%s-%s%s", kind, slug(centro.Nombre), at.Format("20060102"), ext)
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case strings.ContainsRune("áàä", r):
			b.WriteRune('a')
			dash = false
		case strings.ContainsRune("éèë", r):
			b.WriteRune('e')
			dash = false
		case strings.ContainsRune("íìï", r):
			b.WriteRune('i')
			dash = false
		case strings.ContainsRune("óòö", r):
			b.WriteRune('o')
			dash = false
		case strings.ContainsRune("úùü", r):
			b.WriteRune('u')
			dash = false
		case r == 'ñ':
			b.WriteRune('n')
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "centro"
	}
	return out
}
