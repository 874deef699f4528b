package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"inspecciones/backend/services/cuadros-service/internal/models"
)

// CentroRepository reads sites.
type CentroRepository interface {
	List(ctx context.Context) ([]models.Centro, error)
	GetByID(ctx context.Context, id int64) (*models.Centro, error)
}

// CentroFilter narrows the site list. Empty fields do not filter.
type CentroFilter struct {
	Provincia string
	Busqueda  string
}

// CentrosService lists and filters sites.
type CentrosService struct {
	repo       CentroRepository
	provincias []string
	logger     *zap.Logger
}

// NewCentrosService builds CentrosService. An empty provincias list falls back to the defaults.
func NewCentrosService(repo CentroRepository, provincias []string, logger *zap.Logger) *CentrosService {
	if len(provincias) == 0 {
		provincias = models.DefaultProvincias
	}
	return &CentrosService{
		repo:       repo,
		provincias: provincias,
		logger:     logger,
	}
}

// Provincias returns the filter options, "Todas" first.
func (s *CentrosService) Provincias() []string {
	out := make([]string, 0, len(s.provincias)+1)
	out = append(out, models.ProvinciaTodas)
	return append(out, s.provincias...)
}

// List fetches every site and filters it in memory.
func (s *CentrosService) List(ctx context.Context, filter CentroFilter) ([]models.Centro, error) {
	centros, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	filtered := FilterCentros(centros, filter)
	s.logger.Debug("centros listed",
		zap.Int("total", len(centros)),
		zap.Int("shown", len(filtered)),
		zap.String("provincia", filter.Provincia),
	)
	return filtered, nil
}

// Get returns one site.
func (s *CentrosService) Get(ctx context.Context, id int64) (*models.Centro, error) {
	return s.repo.GetByID(ctx, id)
}

// FilterCentros keeps sites whose province equals filter.Provincia (unless it is
// empty or "Todas") and whose name contains filter.Busqueda, ignoring case.
func FilterCentros(centros []models.Centro, filter CentroFilter) []models.Centro {
	provincia := strings.TrimSpace(filter.Provincia)
	busqueda := strings.ToLower(strings.TrimSpace(filter.Busqueda))

	out := make([]models.Centro, 0, len(centros))
	for _, c := range centros {
		if provincia != "" && provincia != models.ProvinciaTodas && c.Provincia != provincia {
			continue
		}
		if busqueda != "" && !strings.Contains(strings.ToLower(c.Nombre), busqueda) {
			continue
		}
		out = append(out, c)
	}
	return out
}
