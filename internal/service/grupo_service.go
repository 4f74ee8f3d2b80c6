package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
)

type grupoRepo interface {
	List(ctx context.Context, incluirInactivos bool) ([]models.Grupo, error)
	FindByID(ctx context.Context, id int64) (*models.Grupo, error)
	ExistsByNombre(ctx context.Context, nombre string, excludeID int64) (bool, error)
	Create(ctx context.Context, grupo *models.Grupo) error
	Update(ctx context.Context, grupo *models.Grupo) error
	Desactivar(ctx context.Context, id int64) error
	TieneMateriaGruposActivos(ctx context.Context, id int64) (bool, error)
}

// GrupoRequest describes the group payload. Cupos never exceeds the physical
// capacity.
type GrupoRequest struct {
	Nombre          string  `json:"nombre" validate:"required,min=1,max=40"`
	Descripcion     *string `json:"descripcion,omitempty" validate:"omitempty,max=255"`
	Cupos           int     `json:"cupos" validate:"required,min=1"`
	CapacidadMaxima int     `json:"capacidad_maxima" validate:"required,min=1,gtefield=Cupos"`
}

// GrupoService manages student groups.
type GrupoService struct {
	grupos    grupoRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGrupoService creates a service instance.
func NewGrupoService(grupos grupoRepo, validate *validator.Validate, logger *zap.Logger) *GrupoService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GrupoService{grupos: grupos, validator: validate, logger: logger}
}

// List returns groups.
func (s *GrupoService) List(ctx context.Context, incluirInactivos bool) ([]models.Grupo, error) {
	grupos, err := s.grupos.List(ctx, incluirInactivos)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudieron listar los grupos")
	}
	return grupos, nil
}

// Get returns one group.
func (s *GrupoService) Get(ctx context.Context, id int64) (*models.Grupo, error) {
	grupo, err := s.grupos.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grupo no encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar el grupo")
	}
	return grupo, nil
}

// Crear registers a new group.
func (s *GrupoService) Crear(ctx context.Context, req GrupoRequest) (*models.Grupo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de grupo inválidos")
	}

	existe, err := s.grupos.ExistsByNombre(ctx, req.Nombre, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo verificar el nombre")
	}
	if existe {
		return nil, appErrors.Clone(appErrors.ErrConflict, "ya existe un grupo con ese nombre")
	}

	grupo := &models.Grupo{
		Nombre:          req.Nombre,
		Descripcion:     req.Descripcion,
		Cupos:           req.Cupos,
		CapacidadMaxima: req.CapacidadMaxima,
	}
	if err := s.grupos.Create(ctx, grupo); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo crear el grupo")
	}
	return grupo, nil
}

// Actualizar modifies a group.
func (s *GrupoService) Actualizar(ctx context.Context, id int64, req GrupoRequest) (*models.Grupo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de grupo inválidos")
	}

	grupo, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	existe, err := s.grupos.ExistsByNombre(ctx, req.Nombre, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo verificar el nombre")
	}
	if existe {
		return nil, appErrors.Clone(appErrors.ErrConflict, "ya existe un grupo con ese nombre")
	}

	grupo.Nombre = req.Nombre
	grupo.Descripcion = req.Descripcion
	grupo.Cupos = req.Cupos
	grupo.CapacidadMaxima = req.CapacidadMaxima
	if err := s.grupos.Update(ctx, grupo); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo actualizar el grupo")
	}
	return grupo, nil
}

// Desactivar soft-deletes a group unless active materia-grupos depend on it.
func (s *GrupoService) Desactivar(ctx context.Context, id int64) error {
	enUso, err := s.grupos.TieneMateriaGruposActivos(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo verificar el uso del grupo")
	}
	if enUso {
		return appErrors.Clone(appErrors.ErrConflict, "el grupo tiene materias activas asociadas")
	}

	if err := s.grupos.Desactivar(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "grupo no encontrado")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo desactivar el grupo")
	}
	return nil
}
