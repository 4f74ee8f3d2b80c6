package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
)

type aulaRepo interface {
	RunInTx(ctx context.Context, fn func(context.Context) error) error
	List(ctx context.Context, filter models.AulaFilter) ([]models.AulaDetalle, error)
	FindByID(ctx context.Context, id int64) (*models.AulaDetalle, error)
	ExistsByNombre(ctx context.Context, nombre string, excludeID int64) (bool, error)
	TiposAula(ctx context.Context) ([]models.TipoAula, error)
	Create(ctx context.Context, aula *models.Aula) error
	Update(ctx context.Context, aula *models.Aula) error
	SetMantenimiento(ctx context.Context, id int64, mantenimiento bool) error
	Desactivar(ctx context.Context, id int64) error
	Reactivar(ctx context.Context, id int64) error
	TieneHorariosActivos(ctx context.Context, id int64) (bool, error)
}

type disponibilidadInvalidator interface {
	Invalidar(ctx context.Context)
}

// AulaRequest describes the classroom payload.
type AulaRequest struct {
	Nombre     string `json:"nombre" validate:"required,min=2,max=40"`
	Capacidad  int    `json:"capacidad" validate:"required,min=1"`
	Piso       int    `json:"piso" validate:"min=0"`
	IDTipoAula int64  `json:"id_tipo_aula" validate:"required"`
}

// AulaService manages classrooms. Mutations invalidate the availability cache
// so resolver results never show stale maintenance or occupancy state.
type AulaService struct {
	aulas          aulaRepo
	disponibilidad disponibilidadInvalidator
	validator      *validator.Validate
	logger         *zap.Logger
}

// NewAulaService creates a service instance.
func NewAulaService(aulas aulaRepo, disponibilidad disponibilidadInvalidator, validate *validator.Validate, logger *zap.Logger) *AulaService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AulaService{aulas: aulas, disponibilidad: disponibilidad, validator: validate, logger: logger}
}

// List returns classrooms matching the filter.
func (s *AulaService) List(ctx context.Context, filter models.AulaFilter) ([]models.AulaDetalle, error) {
	aulas, err := s.aulas.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudieron listar las aulas")
	}
	return aulas, nil
}

// Get returns one classroom.
func (s *AulaService) Get(ctx context.Context, id int64) (*models.AulaDetalle, error) {
	aula, err := s.aulas.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "aula no encontrada")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar el aula")
	}
	return aula, nil
}

// TiposAula lists the classroom-type catalogue.
func (s *AulaService) TiposAula(ctx context.Context) ([]models.TipoAula, error) {
	tipos, err := s.aulas.TiposAula(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudieron listar los tipos de aula")
	}
	return tipos, nil
}

// Crear registers a new classroom.
func (s *AulaService) Crear(ctx context.Context, req AulaRequest) (*models.Aula, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de aula inválidos")
	}

	existe, err := s.aulas.ExistsByNombre(ctx, req.Nombre, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo verificar el nombre")
	}
	if existe {
		return nil, appErrors.Clone(appErrors.ErrConflict, "ya existe un aula con ese nombre")
	}

	aula := &models.Aula{
		Nombre:     req.Nombre,
		Capacidad:  req.Capacidad,
		Piso:       req.Piso,
		IDTipoAula: req.IDTipoAula,
	}
	if err := s.aulas.Create(ctx, aula); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo crear el aula")
	}

	s.disponibilidad.Invalidar(ctx)
	return aula, nil
}

// Actualizar modifies a classroom.
func (s *AulaService) Actualizar(ctx context.Context, id int64, req AulaRequest) (*models.Aula, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de aula inválidos")
	}

	detalle, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	existe, err := s.aulas.ExistsByNombre(ctx, req.Nombre, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo verificar el nombre")
	}
	if existe {
		return nil, appErrors.Clone(appErrors.ErrConflict, "ya existe un aula con ese nombre")
	}

	aula := detalle.Aula
	aula.Nombre = req.Nombre
	aula.Capacidad = req.Capacidad
	aula.Piso = req.Piso
	aula.IDTipoAula = req.IDTipoAula
	if err := s.aulas.Update(ctx, &aula); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo actualizar el aula")
	}

	s.disponibilidad.Invalidar(ctx)
	return &aula, nil
}

// SetMantenimiento toggles the maintenance flag. While set, the availability
// resolver reports the classroom as NO DISPONIBLE regardless of occupancy.
func (s *AulaService) SetMantenimiento(ctx context.Context, id int64, mantenimiento bool) error {
	if err := s.aulas.SetMantenimiento(ctx, id, mantenimiento); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "aula no encontrada")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cambiar el estado de mantenimiento")
	}

	s.disponibilidad.Invalidar(ctx)
	s.logger.Info("mantenimiento de aula actualizado", zap.Int64("id_aula", id), zap.Bool("mantenimiento", mantenimiento))
	return nil
}

// Desactivar soft-deletes a classroom unless active schedules occupy it. The
// occupancy check and the write share a transaction so a concurrent horario
// insert cannot slip between them.
func (s *AulaService) Desactivar(ctx context.Context, id int64) error {
	err := s.aulas.RunInTx(ctx, func(ctx context.Context) error {
		ocupada, err := s.aulas.TieneHorariosActivos(ctx, id)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo verificar el uso del aula")
		}
		if ocupada {
			return appErrors.Clone(appErrors.ErrAulaHasActiveSchedules, "")
		}

		if err := s.aulas.Desactivar(ctx, id); err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotFound, "aula no encontrada")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo desactivar el aula")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.disponibilidad.Invalidar(ctx)
	return nil
}

// Reactivar restores a retired classroom.
func (s *AulaService) Reactivar(ctx context.Context, id int64) error {
	if err := s.aulas.Reactivar(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "aula no encontrada o ya activa")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo reactivar el aula")
	}

	s.disponibilidad.Invalidar(ctx)
	return nil
}
