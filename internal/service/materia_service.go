package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
)

type materiaRepo interface {
	List(ctx context.Context, incluirInactivas bool) ([]models.Materia, error)
	FindByID(ctx context.Context, id int64) (*models.Materia, error)
	ExistsBySigla(ctx context.Context, sigla string, excludeID int64) (bool, error)
	Create(ctx context.Context, materia *models.Materia) error
	Update(ctx context.Context, materia *models.Materia) error
	Desactivar(ctx context.Context, id int64) error
	TieneMateriaGruposActivos(ctx context.Context, id int64) (bool, error)
}

// MateriaRequest describes the subject payload.
type MateriaRequest struct {
	Sigla  string `json:"sigla" validate:"required,min=2,max=20"`
	Nombre string `json:"nombre" validate:"required,min=3,max=120"`
}

// MateriaService manages the subject catalogue.
type MateriaService struct {
	materias  materiaRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMateriaService creates a service instance.
func NewMateriaService(materias materiaRepo, validate *validator.Validate, logger *zap.Logger) *MateriaService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MateriaService{materias: materias, validator: validate, logger: logger}
}

// List returns subjects.
func (s *MateriaService) List(ctx context.Context, incluirInactivas bool) ([]models.Materia, error) {
	materias, err := s.materias.List(ctx, incluirInactivas)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudieron listar las materias")
	}
	return materias, nil
}

// Get returns one subject.
func (s *MateriaService) Get(ctx context.Context, id int64) (*models.Materia, error) {
	materia, err := s.materias.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "materia no encontrada")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar la materia")
	}
	return materia, nil
}

// Crear registers a new subject.
func (s *MateriaService) Crear(ctx context.Context, req MateriaRequest) (*models.Materia, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de materia inválidos")
	}

	existe, err := s.materias.ExistsBySigla(ctx, req.Sigla, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo verificar la sigla")
	}
	if existe {
		return nil, appErrors.Clone(appErrors.ErrConflict, "ya existe una materia con esa sigla")
	}

	materia := &models.Materia{Sigla: req.Sigla, Nombre: req.Nombre}
	if err := s.materias.Create(ctx, materia); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo crear la materia")
	}
	return materia, nil
}

// Actualizar modifies a subject.
func (s *MateriaService) Actualizar(ctx context.Context, id int64, req MateriaRequest) (*models.Materia, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de materia inválidos")
	}

	materia, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	existe, err := s.materias.ExistsBySigla(ctx, req.Sigla, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo verificar la sigla")
	}
	if existe {
		return nil, appErrors.Clone(appErrors.ErrConflict, "ya existe una materia con esa sigla")
	}

	materia.Sigla = req.Sigla
	materia.Nombre = req.Nombre
	if err := s.materias.Update(ctx, materia); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo actualizar la materia")
	}
	return materia, nil
}

// Desactivar soft-deletes a subject unless active materia-grupos depend on it.
func (s *MateriaService) Desactivar(ctx context.Context, id int64) error {
	enUso, err := s.materias.TieneMateriaGruposActivos(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo verificar el uso de la materia")
	}
	if enUso {
		return appErrors.Clone(appErrors.ErrConflict, "la materia tiene grupos activos asociados")
	}

	if err := s.materias.Desactivar(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "materia no encontrada")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo desactivar la materia")
	}
	return nil
}
