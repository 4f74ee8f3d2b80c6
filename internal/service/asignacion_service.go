package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
)

type asignacionRepo interface {
	RunInTx(ctx context.Context, fn func(context.Context) error) error
	List(ctx context.Context, filter models.AsignacionFilter) ([]models.AsignacionDetalle, error)
	FindByID(ctx context.Context, id int64) (*models.AsignacionDocente, error)
	FindDetalleByID(ctx context.Context, id int64) (*models.AsignacionDetalle, error)
	ExisteAsignacion(ctx context.Context, codDocente, idMateriaGrupo int64) (bool, error)
	MateriaGrupoTieneDocente(ctx context.Context, idMateriaGrupo int64) (bool, error)
	HorasAsignadas(ctx context.Context, codDocente, idGestion int64) (int, error)
	Create(ctx context.Context, asignacion *models.AsignacionDocente) error
	ActualizarHoras(ctx context.Context, id int64, hrs int) error
	Desactivar(ctx context.Context, id int64) error
}

type gestionActivaReader interface {
	FindActiva(ctx context.Context) (*models.Gestion, error)
}

type materiaGrupoActivaReader interface {
	FindActivaByID(ctx context.Context, id int64, forUpdate bool) (*models.MateriaGrupo, error)
}

type limiteContratoReader interface {
	LimiteContrato(ctx context.Context, codDocente int64, forUpdate bool) (*models.LimiteContrato, error)
}

type horariosDeAsignacion interface {
	DesactivarPorAsignacion(ctx context.Context, idAsignacion int64) (int64, error)
}

// CrearAsignacionRequest describes the assignment payload.
type CrearAsignacionRequest struct {
	CodDocente     int64 `json:"cod_docente" validate:"required"`
	IDMateriaGrupo int64 `json:"id_materia_grupo" validate:"required"`
	HrsAsignadas   int   `json:"hrs_asignadas" validate:"required,min=1,max=40"`
}

// ActualizarHorasRequest carries the new weekly hours for an assignment.
type ActualizarHorasRequest struct {
	HrsAsignadas int `json:"hrs_asignadas" validate:"required,min=1,max=40"`
}

// AsignacionService implements teacher assignment with load-capacity
// validation. Every create/update runs its checks and the write inside one
// transaction, locking the docente row so concurrent requests against the
// same teacher serialize.
type AsignacionService struct {
	asignaciones  asignacionRepo
	gestiones     gestionActivaReader
	materiaGrupos materiaGrupoActivaReader
	docentes      limiteContratoReader
	horarios      horariosDeAsignacion
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewAsignacionService creates a service instance.
func NewAsignacionService(
	asignaciones asignacionRepo,
	gestiones gestionActivaReader,
	materiaGrupos materiaGrupoActivaReader,
	docentes limiteContratoReader,
	horarios horariosDeAsignacion,
	validate *validator.Validate,
	logger *zap.Logger,
) *AsignacionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AsignacionService{
		asignaciones:  asignaciones,
		gestiones:     gestiones,
		materiaGrupos: materiaGrupos,
		docentes:      docentes,
		horarios:      horarios,
		validator:     validate,
		logger:        logger,
	}
}

// List returns active assignments, optionally filtered by gestión or docente.
func (s *AsignacionService) List(ctx context.Context, filter models.AsignacionFilter) ([]models.AsignacionDetalle, error) {
	asignaciones, err := s.asignaciones.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudieron listar las asignaciones")
	}
	return asignaciones, nil
}

// Get returns one assignment with display fields.
func (s *AsignacionService) Get(ctx context.Context, id int64) (*models.AsignacionDetalle, error) {
	detalle, err := s.asignaciones.FindDetalleByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "asignación no encontrada")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar la asignación")
	}
	return detalle, nil
}

// Crear validates and creates an assignment. The checks run in a fixed order
// and the first failure is returned alone:
//
//	active gestión, materia-grupo valid, docente active, no duplicate,
//	group unassigned, load within the contract ceiling.
func (s *AsignacionService) Crear(ctx context.Context, req CrearAsignacionRequest) (*models.AsignacionDocente, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de asignación inválidos")
	}

	var asignacion *models.AsignacionDocente
	err := s.asignaciones.RunInTx(ctx, func(ctx context.Context) error {
		gestion, err := s.gestionActiva(ctx)
		if err != nil {
			return err
		}

		materiaGrupo, err := s.materiaGrupoVigente(ctx, req.IDMateriaGrupo, gestion.ID)
		if err != nil {
			return err
		}

		limite, err := s.docenteHabilitado(ctx, req.CodDocente)
		if err != nil {
			return err
		}

		duplicada, err := s.asignaciones.ExisteAsignacion(ctx, req.CodDocente, req.IDMateriaGrupo)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo verificar duplicados")
		}
		if duplicada {
			return appErrors.Clone(appErrors.ErrDuplicateAssignment, "")
		}

		ocupado, err := s.asignaciones.MateriaGrupoTieneDocente(ctx, req.IDMateriaGrupo)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo verificar el grupo")
		}
		if ocupado {
			return appErrors.Clone(appErrors.ErrGroupAlreadyAssigned, "")
		}

		actuales, err := s.asignaciones.HorasAsignadas(ctx, req.CodDocente, gestion.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo calcular la carga actual")
		}
		if actuales+req.HrsAsignadas > limite.HrsMaximas {
			return s.excesoDeCarga(actuales, req.HrsAsignadas, limite)
		}

		asignacion = &models.AsignacionDocente{
			CodDocente:     req.CodDocente,
			IDMateriaGrupo: materiaGrupo.ID,
			HrsAsignadas:   req.HrsAsignadas,
		}
		if err := s.asignaciones.Create(ctx, asignacion); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo crear la asignación")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("asignación creada",
		zap.Int64("id_asignacion", asignacion.ID),
		zap.Int64("cod_docente", asignacion.CodDocente),
		zap.Int64("id_materia_grupo", asignacion.IDMateriaGrupo),
		zap.Int("hrs_asignadas", asignacion.HrsAsignadas))
	return asignacion, nil
}

// ActualizarHoras changes the weekly hours of an active assignment. The load
// check re-bases the sum over the gestión the assignment belongs to: the
// row's current hours are subtracted before the new value is added, so
// reducing hours always succeeds.
func (s *AsignacionService) ActualizarHoras(ctx context.Context, id int64, req ActualizarHorasRequest) (*models.AsignacionDocente, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de asignación inválidos")
	}

	var asignacion *models.AsignacionDocente
	err := s.asignaciones.RunInTx(ctx, func(ctx context.Context) error {
		actual, err := s.asignaciones.FindByID(ctx, id)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotFound, "asignación no encontrada")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar la asignación")
		}
		if !actual.Activo {
			return appErrors.Clone(appErrors.ErrNotFound, "asignación no encontrada")
		}

		materiaGrupo, err := s.materiaGrupos.FindActivaByID(ctx, actual.IDMateriaGrupo, false)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrInvalidMateriaGrupo, "")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar la materia-grupo")
		}

		limite, err := s.docenteHabilitado(ctx, actual.CodDocente)
		if err != nil {
			return err
		}

		actuales, err := s.asignaciones.HorasAsignadas(ctx, actual.CodDocente, materiaGrupo.IDGestion)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo calcular la carga actual")
		}
		base := actuales - actual.HrsAsignadas
		if base+req.HrsAsignadas > limite.HrsMaximas {
			return s.excesoDeCarga(base, req.HrsAsignadas, limite)
		}

		if err := s.asignaciones.ActualizarHoras(ctx, id, req.HrsAsignadas); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo actualizar la asignación")
		}
		actual.HrsAsignadas = req.HrsAsignadas
		asignacion = actual
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("asignación actualizada",
		zap.Int64("id_asignacion", asignacion.ID),
		zap.Int("hrs_asignadas", asignacion.HrsAsignadas))
	return asignacion, nil
}

// Desactivar soft-deletes an assignment and every schedule hanging from it.
func (s *AsignacionService) Desactivar(ctx context.Context, id int64) error {
	err := s.asignaciones.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.asignaciones.Desactivar(ctx, id); err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotFound, "asignación no encontrada")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo desactivar la asignación")
		}
		horarios, err := s.horarios.DesactivarPorAsignacion(ctx, id)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudieron desactivar los horarios")
		}
		if horarios > 0 {
			s.logger.Info("horarios desactivados junto a la asignación",
				zap.Int64("id_asignacion", id), zap.Int64("horarios", horarios))
		}
		return nil
	})
	return err
}

// Carga summarises the teacher's load within the active gestión.
func (s *AsignacionService) Carga(ctx context.Context, codDocente int64) (*models.CargaDocente, error) {
	gestion, err := s.gestionActiva(ctx)
	if err != nil {
		return nil, err
	}

	limite, err := s.docentes.LimiteContrato(ctx, codDocente, false)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "docente no encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar el docente")
	}

	asignadas, err := s.asignaciones.HorasAsignadas(ctx, codDocente, gestion.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo calcular la carga")
	}

	return &models.CargaDocente{
		CodDocente:      limite.CodDocente,
		Docente:         limite.NombreCompleto,
		TipoContrato:    limite.NombreContrato,
		HrsAsignadas:    asignadas,
		HrsMaximas:      limite.HrsMaximas,
		HrsDisponibles:  limite.HrsMaximas - asignadas,
		PorcentajeCarga: porcentajeCarga(asignadas, limite.HrsMaximas),
	}, nil
}

func (s *AsignacionService) gestionActiva(ctx context.Context) (*models.Gestion, error) {
	gestion, err := s.gestiones.FindActiva(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNoActivePeriod, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar la gestión activa")
	}
	return gestion, nil
}

func (s *AsignacionService) materiaGrupoVigente(ctx context.Context, id, idGestion int64) (*models.MateriaGrupo, error) {
	materiaGrupo, err := s.materiaGrupos.FindActivaByID(ctx, id, true)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrInvalidMateriaGrupo, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar la materia-grupo")
	}
	if materiaGrupo.IDGestion != idGestion {
		return nil, appErrors.Clone(appErrors.ErrInvalidMateriaGrupo, "la relación materia-grupo no pertenece a la gestión activa")
	}
	return materiaGrupo, nil
}

func (s *AsignacionService) docenteHabilitado(ctx context.Context, codDocente int64) (*models.LimiteContrato, error) {
	limite, err := s.docentes.LimiteContrato(ctx, codDocente, true)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrTeacherUnavailable, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar el docente")
	}
	if !limite.Activo {
		return nil, appErrors.Clone(appErrors.ErrTeacherUnavailable, "")
	}
	return limite, nil
}

func (s *AsignacionService) excesoDeCarga(actuales, nuevas int, limite *models.LimiteContrato) error {
	return appErrors.Clone(appErrors.ErrExceedsMaxLoad, fmt.Sprintf(
		"el docente excedería la carga horaria máxima: actual %d h + nuevas %d h = %d h, máximo %d h (%s)",
		actuales, nuevas, actuales+nuevas, limite.HrsMaximas, limite.NombreContrato))
}

func porcentajeCarga(asignadas, maximas int) float64 {
	if maximas <= 0 {
		return 0
	}
	return math.Round(float64(asignadas)/float64(maximas)*100*100) / 100
}
