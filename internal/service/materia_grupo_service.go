package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
)

type materiaGrupoRepo interface {
	ListByGestion(ctx context.Context, idGestion int64) ([]models.MateriaGrupoDetalle, error)
	FindByID(ctx context.Context, id int64) (*models.MateriaGrupo, error)
	FindDetalleByID(ctx context.Context, id int64) (*models.MateriaGrupoDetalle, error)
	ExisteTupla(ctx context.Context, idMateria, idGrupo, idGestion int64) (bool, error)
	Create(ctx context.Context, tupla *models.MateriaGrupo) error
	Update(ctx context.Context, tupla *models.MateriaGrupo) error
	SetActivo(ctx context.Context, id int64, activo bool) error
	TieneAsignacionActiva(ctx context.Context, id int64) (bool, error)
	SinDocente(ctx context.Context, idGestion int64) ([]models.MateriaGrupoDetalle, error)
}

type materiaReader interface {
	FindByID(ctx context.Context, id int64) (*models.Materia, error)
}

type grupoReader interface {
	FindByID(ctx context.Context, id int64) (*models.Grupo, error)
}

// CrearMateriaGrupoRequest binds a materia and a grupo in the active gestión.
type CrearMateriaGrupoRequest struct {
	IDMateria   int64   `json:"id_materia" validate:"required"`
	IDGrupo     int64   `json:"id_grupo" validate:"required"`
	Observacion *string `json:"observacion,omitempty" validate:"omitempty,max=255"`
}

// MateriaGrupoService manages the materia <-> grupo offer per gestión.
type MateriaGrupoService struct {
	materiaGrupos materiaGrupoRepo
	materias      materiaReader
	grupos        grupoReader
	gestiones     gestionActivaReader
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewMateriaGrupoService creates a service instance.
func NewMateriaGrupoService(
	materiaGrupos materiaGrupoRepo,
	materias materiaReader,
	grupos grupoReader,
	gestiones gestionActivaReader,
	validate *validator.Validate,
	logger *zap.Logger,
) *MateriaGrupoService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MateriaGrupoService{
		materiaGrupos: materiaGrupos,
		materias:      materias,
		grupos:        grupos,
		gestiones:     gestiones,
		validator:     validate,
		logger:        logger,
	}
}

func (s *MateriaGrupoService) gestionActiva(ctx context.Context) (*models.Gestion, error) {
	gestion, err := s.gestiones.FindActiva(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNoActivePeriod, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar la gestión activa")
	}
	return gestion, nil
}

// List returns the offer of the active gestión.
func (s *MateriaGrupoService) List(ctx context.Context) ([]models.MateriaGrupoDetalle, error) {
	gestion, err := s.gestionActiva(ctx)
	if err != nil {
		return nil, err
	}
	tuplas, err := s.materiaGrupos.ListByGestion(ctx, gestion.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudieron listar las materias-grupo")
	}
	return tuplas, nil
}

// SinDocente returns the active tuples lacking a teacher, the candidate pool
// for new assignments.
func (s *MateriaGrupoService) SinDocente(ctx context.Context) ([]models.MateriaGrupoDetalle, error) {
	gestion, err := s.gestionActiva(ctx)
	if err != nil {
		return nil, err
	}
	tuplas, err := s.materiaGrupos.SinDocente(ctx, gestion.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudieron listar las materias-grupo sin docente")
	}
	return tuplas, nil
}

// Get returns one tuple with display fields.
func (s *MateriaGrupoService) Get(ctx context.Context, id int64) (*models.MateriaGrupoDetalle, error) {
	detalle, err := s.materiaGrupos.FindDetalleByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "materia-grupo no encontrada")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar la materia-grupo")
	}
	return detalle, nil
}

// Crear binds a materia and grupo in the active gestión. Both references must
// be active and the triple must be unique.
func (s *MateriaGrupoService) Crear(ctx context.Context, req CrearMateriaGrupoRequest) (*models.MateriaGrupo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de materia-grupo inválidos")
	}

	gestion, err := s.gestionActiva(ctx)
	if err != nil {
		return nil, err
	}

	materia, err := s.materias.FindByID(ctx, req.IDMateria)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "materia no encontrada")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar la materia")
	}
	if !materia.Activo {
		return nil, appErrors.Clone(appErrors.ErrConflict, "la materia está inactiva")
	}

	grupo, err := s.grupos.FindByID(ctx, req.IDGrupo)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grupo no encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar el grupo")
	}
	if !grupo.Activo {
		return nil, appErrors.Clone(appErrors.ErrConflict, "el grupo está inactivo")
	}

	existe, err := s.materiaGrupos.ExisteTupla(ctx, req.IDMateria, req.IDGrupo, gestion.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo verificar la materia-grupo")
	}
	if existe {
		return nil, appErrors.Clone(appErrors.ErrConflict, "la materia ya está ofertada para ese grupo en la gestión activa")
	}

	tupla := &models.MateriaGrupo{
		IDMateria:   req.IDMateria,
		IDGrupo:     req.IDGrupo,
		IDGestion:   gestion.ID,
		Observacion: req.Observacion,
	}
	if err := s.materiaGrupos.Create(ctx, tupla); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo crear la materia-grupo")
	}

	s.logger.Info("materia-grupo creada", zap.Int64("id_materia_grupo", tupla.ID), zap.Int64("id_gestion", gestion.ID))
	return tupla, nil
}

// ActualizarObservacion changes the tuple's note.
func (s *MateriaGrupoService) ActualizarObservacion(ctx context.Context, id int64, observacion *string) (*models.MateriaGrupo, error) {
	tupla, err := s.materiaGrupos.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "materia-grupo no encontrada")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar la materia-grupo")
	}

	tupla.Observacion = observacion
	if err := s.materiaGrupos.Update(ctx, tupla); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo actualizar la materia-grupo")
	}
	return tupla, nil
}

// Desactivar retires a tuple from the offer. Tuples with an active assignment
// must release the teacher first.
func (s *MateriaGrupoService) Desactivar(ctx context.Context, id int64) error {
	asignada, err := s.materiaGrupos.TieneAsignacionActiva(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo verificar la asignación")
	}
	if asignada {
		return appErrors.Clone(appErrors.ErrConflict, "la materia-grupo tiene un docente asignado")
	}

	if err := s.materiaGrupos.SetActivo(ctx, id, false); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "materia-grupo no encontrada")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo desactivar la materia-grupo")
	}
	return nil
}

// Reactivar restores a retired tuple.
func (s *MateriaGrupoService) Reactivar(ctx context.Context, id int64) error {
	if err := s.materiaGrupos.SetActivo(ctx, id, true); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "materia-grupo no encontrada o ya activa")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo reactivar la materia-grupo")
	}
	return nil
}
