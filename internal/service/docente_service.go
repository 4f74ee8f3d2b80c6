package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
)

type docenteRepo interface {
	List(ctx context.Context, filter models.DocenteFilter) ([]models.Docente, int, error)
	FindByCod(ctx context.Context, codDocente int64) (*models.Docente, error)
	ExistsByEmail(ctx context.Context, email string, excludeCod int64) (bool, error)
	TiposContrato(ctx context.Context) ([]models.TipoContrato, error)
	Create(ctx context.Context, docente *models.Docente) error
	Update(ctx context.Context, docente *models.Docente) error
	Desactivar(ctx context.Context, codDocente int64) error
}

// CrearDocenteRequest describes the teacher payload.
type CrearDocenteRequest struct {
	NombreCompleto string `json:"nombre_completo" validate:"required,min=3,max=150"`
	Email          string `json:"email" validate:"required,email"`
	IDTipoContrato int64  `json:"id_tipo_contrato" validate:"required"`
}

// ActualizarDocenteRequest describes the mutable teacher fields.
type ActualizarDocenteRequest struct {
	NombreCompleto string `json:"nombre_completo" validate:"required,min=3,max=150"`
	Email          string `json:"email" validate:"required,email"`
	IDTipoContrato int64  `json:"id_tipo_contrato" validate:"required"`
	Activo         *bool  `json:"activo" validate:"required"`
}

// DocenteService manages teachers and contract reference data.
type DocenteService struct {
	docentes  docenteRepo
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDocenteService creates a service instance.
func NewDocenteService(docentes docenteRepo, validate *validator.Validate, logger *zap.Logger) *DocenteService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocenteService{docentes: docentes, validator: validate, logger: logger}
}

// List returns teachers matching the filter plus pagination metadata.
func (s *DocenteService) List(ctx context.Context, filter models.DocenteFilter) ([]models.Docente, *models.Pagination, error) {
	docentes, total, err := s.docentes.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudieron listar los docentes")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return docentes, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one teacher.
func (s *DocenteService) Get(ctx context.Context, codDocente int64) (*models.Docente, error) {
	docente, err := s.docentes.FindByCod(ctx, codDocente)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "docente no encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar el docente")
	}
	return docente, nil
}

// TiposContrato lists the contract catalogue.
func (s *DocenteService) TiposContrato(ctx context.Context) ([]models.TipoContrato, error) {
	tipos, err := s.docentes.TiposContrato(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudieron listar los tipos de contrato")
	}
	return tipos, nil
}

// Crear registers a new teacher.
func (s *DocenteService) Crear(ctx context.Context, req CrearDocenteRequest) (*models.Docente, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de docente inválidos")
	}

	existe, err := s.docentes.ExistsByEmail(ctx, req.Email, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo verificar el email")
	}
	if existe {
		return nil, appErrors.Clone(appErrors.ErrConflict, "ya existe un docente con ese email")
	}

	docente := &models.Docente{
		NombreCompleto: req.NombreCompleto,
		Email:          req.Email,
		IDTipoContrato: req.IDTipoContrato,
	}
	if err := s.docentes.Create(ctx, docente); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo crear el docente")
	}

	s.logger.Info("docente creado", zap.Int64("cod_docente", docente.CodDocente))
	return docente, nil
}

// Actualizar modifies a teacher.
func (s *DocenteService) Actualizar(ctx context.Context, codDocente int64, req ActualizarDocenteRequest) (*models.Docente, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de docente inválidos")
	}

	docente, err := s.Get(ctx, codDocente)
	if err != nil {
		return nil, err
	}

	existe, err := s.docentes.ExistsByEmail(ctx, req.Email, codDocente)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo verificar el email")
	}
	if existe {
		return nil, appErrors.Clone(appErrors.ErrConflict, "ya existe un docente con ese email")
	}

	docente.NombreCompleto = req.NombreCompleto
	docente.Email = req.Email
	docente.IDTipoContrato = req.IDTipoContrato
	docente.Activo = *req.Activo

	if err := s.docentes.Update(ctx, docente); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "docente no encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo actualizar el docente")
	}
	return docente, nil
}

// Desactivar soft-deletes a teacher. Existing assignments are untouched; the
// teacher simply stops being eligible for new ones.
func (s *DocenteService) Desactivar(ctx context.Context, codDocente int64) error {
	if err := s.docentes.Desactivar(ctx, codDocente); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "docente no encontrado")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo desactivar el docente")
	}
	s.logger.Info("docente desactivado", zap.Int64("cod_docente", codDocente))
	return nil
}
