package service

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"inspecciones/backend/services/cuadros-service/internal/clock"
	"inspecciones/backend/services/cuadros-service/internal/models"
)

// User facing validation messages.
const (
	MsgCamposIncompletos = "Debes completar todos los campos"
	MsgTipoInvalido      = "Tipo de cuadro no válido"
	MsgNumeroFueraRango  = "El número debe estar entre 0 y 100"
	MsgMedidaInvalida    = "La medida debe ser un número mayor o igual que 0"
)

// CuadroRepository is the panel storage used by CuadrosService.
type CuadroRepository interface {
	ListByCentro(ctx context.Context, centroID int64) ([]models.Cuadro, error)
	GetByID(ctx context.Context, id int64) (*models.Cuadro, error)
	Create(ctx context.Context, c *models.Cuadro) error
	Update(ctx context.Context, id int64, tipo models.Tipo, numero int, nombre string, stamp models.Stamp) error
	UpdateTierra(ctx context.Context, id int64, ohmnios float64, stamp models.Stamp) error
	UpdateAislamiento(ctx context.Context, id int64, megaohmnios float64, stamp models.Stamp) error
	Delete(ctx context.Context, id int64) error
}

// NewCuadroInput is the add-panel form.
type NewCuadroInput struct {
	CentroID    int64
	Tipo        string
	Nombre      string
	Numero      int
	Tierra      float64
	Aislamiento float64
	Usuario     string
}

// EditCuadroInput is the edit-panel form.
type EditCuadroInput struct {
	ID      int64
	Tipo    string
	Numero  int
	Nombre  string
	Usuario string
}

// Panel is the management view of one centro.
type Panel struct {
	Cuadros      []models.Cuadro
	LastModified *models.Cuadro
}

// CuadrosService validates and applies panel edits.
type CuadrosService struct {
	repo   CuadroRepository
	clock  clock.Clock
	logger *zap.Logger
}

// NewCuadrosService builds CuadrosService.
func NewCuadrosService(repo CuadroRepository, clk clock.Clock, logger *zap.Logger) *CuadrosService {
	return &CuadrosService{
		repo:   repo,
		clock:  clk,
		logger: logger,
	}
}

// ListForCentro loads the panels of a centro with stamps in the local zone.
func (s *CuadrosService) ListForCentro(ctx context.Context, centroID int64) (*Panel, error) {
	cuadros, err := s.repo.ListByCentro(ctx, centroID)
	if err != nil {
		return nil, err
	}
	for i := range cuadros {
		if ts := cuadros[i].UltimaModificacion; ts != nil {
			local := s.clock.In(*ts)
			cuadros[i].UltimaModificacion = &local
		}
	}
	panel := &Panel{Cuadros: cuadros}
	if last, ok := LastModified(cuadros); ok {
		panel.LastModified = last
	}
	return panel, nil
}

// Get returns one panel.
func (s *CuadrosService) Get(ctx context.Context, id int64) (*models.Cuadro, error) {
	return s.repo.GetByID(ctx, id)
}

// LastModified returns the panel with the latest modification stamp.
// Panels never stamped are ignored; ok is false when none is stamped.
func LastModified(cuadros []models.Cuadro) (*models.Cuadro, bool) {
	var last *models.Cuadro
	for i := range cuadros {
		ts := cuadros[i].UltimaModificacion
		if ts == nil {
			continue
		}
		if last == nil || ts.After(*last.UltimaModificacion) {
			last = &cuadros[i]
		}
	}
	return last, last != nil
}

// Add validates and creates a panel.
func (s *CuadrosService) Add(ctx context.Context, in NewCuadroInput) (*models.Cuadro, error) {
	nombre := strings.TrimSpace(in.Nombre)
	if nombre == "" {
		return nil, invalid("nombre", MsgCamposIncompletos)
	}
	tipo, err := validateFields(in.Tipo, in.Numero)
	if err != nil {
		return nil, err
	}
	if err := validateMeasure("tierra", in.Tierra); err != nil {
		return nil, err
	}
	if err := validateMeasure("aislamiento", in.Aislamiento); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	usuario := in.Usuario
	tierra, aislamiento := in.Tierra, in.Aislamiento
	cuadro := &models.Cuadro{
		CentroID:               in.CentroID,
		Tipo:                   tipo,
		Nombre:                 nombre,
		Numero:                 in.Numero,
		TierraOhmnios:          &tierra,
		AislamientoMegaohmnios: &aislamiento,
		UltimoUsuario:          &usuario,
		UltimaModificacion:     &now,
	}
	if err := s.repo.Create(ctx, cuadro); err != nil {
		return nil, err
	}

	s.logger.Info("cuadro created",
		zap.Int64("cuadro_id", cuadro.ID),
		zap.Int64("centro_id", cuadro.CentroID),
		zap.String("usuario", usuario),
	)
	return cuadro, nil
}

// Edit validates and updates tipo, numero and nombre.
func (s *CuadrosService) Edit(ctx context.Context, in EditCuadroInput) error {
	nombre := strings.TrimSpace(in.Nombre)
	if nombre == "" {
		return invalid("nombre", MsgCamposIncompletos)
	}
	tipo, err := validateFields(in.Tipo, in.Numero)
	if err != nil {
		return err
	}
	if err := s.repo.Update(ctx, in.ID, tipo, in.Numero, nombre, s.stamp(in.Usuario)); err != nil {
		return err
	}
	s.logger.Info("cuadro updated", zap.Int64("cuadro_id", in.ID), zap.String("usuario", in.Usuario))
	return nil
}

// SetTierra writes the grounding resistance only.
func (s *CuadrosService) SetTierra(ctx context.Context, id int64, ohmnios float64, usuario string) error {
	if err := validateMeasure("tierra", ohmnios); err != nil {
		return err
	}
	if err := s.repo.UpdateTierra(ctx, id, ohmnios, s.stamp(usuario)); err != nil {
		return err
	}
	s.logger.Info("tierra measured", zap.Int64("cuadro_id", id), zap.Float64("ohmnios", ohmnios), zap.String("usuario", usuario))
	return nil
}

// SetAislamiento writes the insulation resistance only.
func (s *CuadrosService) SetAislamiento(ctx context.Context, id int64, megaohmnios float64, usuario string) error {
	if err := validateMeasure("aislamiento", megaohmnios); err != nil {
		return err
	}
	if err := s.repo.UpdateAislamiento(ctx, id, megaohmnios, s.stamp(usuario)); err != nil {
		return err
	}
	s.logger.Info("aislamiento measured", zap.Int64("cuadro_id", id), zap.Float64("megaohmnios", megaohmnios), zap.String("usuario", usuario))
	return nil
}

// Delete removes a panel once the user confirmed it.
func (s *CuadrosService) Delete(ctx context.Context, id int64, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("cuadro deleted", zap.Int64("cuadro_id", id))
	return nil
}

func (s *CuadrosService) stamp(usuario string) models.Stamp {
	return models.Stamp{Usuario: usuario, At: s.clock.Now()}
}

func validateFields(rawTipo string, numero int) (models.Tipo, error) {
	tipo, err := models.ParseTipo(strings.TrimSpace(rawTipo))
	if err != nil {
		return "", invalid("tipo", MsgTipoInvalido)
	}
	if numero < models.NumeroMin || numero > models.NumeroMax {
		return "", invalid("numero", MsgNumeroFueraRango)
	}
	return tipo, nil
}

func validateMeasure(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return invalid(field, MsgMedidaInvalida)
	}
	return nil
}
