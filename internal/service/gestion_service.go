package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
)

type gestionRepo interface {
	List(ctx context.Context) ([]models.Gestion, error)
	FindByID(ctx context.Context, id int64) (*models.Gestion, error)
	FindActiva(ctx context.Context) (*models.Gestion, error)
	ExisteGestion(ctx context.Context, anio int, semestre string) (bool, error)
	Create(ctx context.Context, gestion *models.Gestion) error
	Activar(ctx context.Context, id int64) error
}

// CrearGestionRequest describes the period payload.
type CrearGestionRequest struct {
	Anio     int    `json:"anio" validate:"required,min=2000,max=2100"`
	Semestre string `json:"semestre" validate:"required,oneof=I II"`
}

// GestionService manages academic periods.
type GestionService struct {
	gestiones gestionRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGestionService creates a service instance.
func NewGestionService(gestiones gestionRepo, validate *validator.Validate, logger *zap.Logger) *GestionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GestionService{gestiones: gestiones, validator: validate, logger: logger}
}

// List returns every period.
func (s *GestionService) List(ctx context.Context) ([]models.Gestion, error) {
	gestiones, err := s.gestiones.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudieron listar las gestiones")
	}
	return gestiones, nil
}

// Activa returns the single active period.
func (s *GestionService) Activa(ctx context.Context) (*models.Gestion, error) {
	gestion, err := s.gestiones.FindActiva(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNoActivePeriod, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar la gestión activa")
	}
	return gestion, nil
}

// Crear registers a new, inactive period.
func (s *GestionService) Crear(ctx context.Context, req CrearGestionRequest) (*models.Gestion, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de gestión inválidos")
	}

	existe, err := s.gestiones.ExisteGestion(ctx, req.Anio, req.Semestre)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo verificar la gestión")
	}
	if existe {
		return nil, appErrors.Clone(appErrors.ErrConflict, "la gestión ya existe")
	}

	gestion := &models.Gestion{Anio: req.Anio, Semestre: req.Semestre}
	if err := s.gestiones.Create(ctx, gestion); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo crear la gestión")
	}

	s.logger.Info("gestión creada", zap.Int64("id_gestion", gestion.ID), zap.String("etiqueta", gestion.Etiqueta()))
	return gestion, nil
}

// Activar switches the active period to the given one. Any previously active
// period is deactivated in the same transaction.
func (s *GestionService) Activar(ctx context.Context, id int64) (*models.Gestion, error) {
	if _, err := s.gestiones.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "gestión no encontrada")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar la gestión")
	}

	if err := s.gestiones.Activar(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "gestión no encontrada")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo activar la gestión")
	}

	gestion, err := s.gestiones.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo recargar la gestión")
	}

	s.logger.Info("gestión activada", zap.Int64("id_gestion", id), zap.String("etiqueta", gestion.Etiqueta()))
	return gestion, nil
}
