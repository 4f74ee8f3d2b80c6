package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
)

type horarioRepo interface {
	RunInTx(ctx context.Context, fn func(context.Context) error) error
	Dias(ctx context.Context) ([]models.Dia, error)
	Bloques(ctx context.Context) ([]models.BloqueHorario, error)
	TiposClase(ctx context.Context) ([]models.TipoClase, error)
	ExisteDia(ctx context.Context, id int64) (bool, error)
	ExisteBloque(ctx context.Context, id int64) (bool, error)
	ExisteTipoClase(ctx context.Context, id int64) (bool, error)
	AulaOcupada(ctx context.Context, idAula, idDia, idBloque int64) (bool, error)
	DocenteOcupado(ctx context.Context, codDocente, idDia, idBloque int64) (bool, error)
	ListByAsignacion(ctx context.Context, idAsignacion int64) ([]models.HorarioDetalle, error)
	ListByDocente(ctx context.Context, codDocente, idGestion int64) ([]models.HorarioDetalle, error)
	FindDetalleByID(ctx context.Context, id int64) (*models.HorarioDetalle, error)
	Create(ctx context.Context, horario *models.HorarioClase) error
	Desactivar(ctx context.Context, id int64) error
}

type asignacionReader interface {
	FindByID(ctx context.Context, id int64) (*models.AsignacionDocente, error)
}

type aulaReader interface {
	FindByID(ctx context.Context, id int64) (*models.AulaDetalle, error)
}

// CrearHorarioRequest places a session of an assignment into an aula slot.
type CrearHorarioRequest struct {
	IDAsignacion int64 `json:"id_asignacion_docente" validate:"required"`
	IDAula       int64 `json:"id_aula" validate:"required"`
	IDDia        int64 `json:"id_dia" validate:"required"`
	IDBloque     int64 `json:"id_bloque_horario" validate:"required"`
	IDTipoClase  int64 `json:"id_tipo_clase" validate:"required"`
}

// HorarioService schedules class sessions. A slot admits one session per aula
// and one per teacher; both checks and the insert share a transaction.
type HorarioService struct {
	horarios       horarioRepo
	asignaciones   asignacionReader
	aulas          aulaReader
	gestiones      gestionActivaReader
	disponibilidad disponibilidadInvalidator
	validator      *validator.Validate
	logger         *zap.Logger
}

// NewHorarioService creates a service instance.
func NewHorarioService(
	horarios horarioRepo,
	asignaciones asignacionReader,
	aulas aulaReader,
	gestiones gestionActivaReader,
	disponibilidad disponibilidadInvalidator,
	validate *validator.Validate,
	logger *zap.Logger,
) *HorarioService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HorarioService{
		horarios:       horarios,
		asignaciones:   asignaciones,
		aulas:          aulas,
		gestiones:      gestiones,
		disponibilidad: disponibilidad,
		validator:      validate,
		logger:         logger,
	}
}

// Dias lists weekday reference data.
func (s *HorarioService) Dias(ctx context.Context) ([]models.Dia, error) {
	dias, err := s.horarios.Dias(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudieron listar los días")
	}
	return dias, nil
}

// Bloques lists time-block reference data.
func (s *HorarioService) Bloques(ctx context.Context) ([]models.BloqueHorario, error) {
	bloques, err := s.horarios.Bloques(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudieron listar los bloques horarios")
	}
	return bloques, nil
}

// TiposClase lists session-type reference data.
func (s *HorarioService) TiposClase(ctx context.Context) ([]models.TipoClase, error) {
	tipos, err := s.horarios.TiposClase(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudieron listar los tipos de clase")
	}
	return tipos, nil
}

// ListByAsignacion returns the sessions of one assignment.
func (s *HorarioService) ListByAsignacion(ctx context.Context, idAsignacion int64) ([]models.HorarioDetalle, error) {
	horarios, err := s.horarios.ListByAsignacion(ctx, idAsignacion)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudieron listar los horarios")
	}
	return horarios, nil
}

// ListByDocente returns the teacher's weekly schedule in the active gestión.
func (s *HorarioService) ListByDocente(ctx context.Context, codDocente int64) ([]models.HorarioDetalle, error) {
	gestion, err := s.gestiones.FindActiva(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNoActivePeriod, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar la gestión activa")
	}
	horarios, err := s.horarios.ListByDocente(ctx, codDocente, gestion.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudieron listar los horarios del docente")
	}
	return horarios, nil
}

// Crear schedules a session after checking the slot is free for both the aula
// and the teacher.
func (s *HorarioService) Crear(ctx context.Context, req CrearHorarioRequest) (*models.HorarioClase, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de horario inválidos")
	}

	var horario *models.HorarioClase
	err := s.horarios.RunInTx(ctx, func(ctx context.Context) error {
		asignacion, err := s.asignaciones.FindByID(ctx, req.IDAsignacion)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotFound, "asignación no encontrada")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar la asignación")
		}
		if !asignacion.Activo {
			return appErrors.Clone(appErrors.ErrNotFound, "asignación no encontrada")
		}

		aula, err := s.aulas.FindByID(ctx, req.IDAula)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotFound, "aula no encontrada")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar el aula")
		}
		if !aula.Activo {
			return appErrors.Clone(appErrors.ErrConflict, "el aula está inactiva")
		}
		if aula.Mantenimiento {
			return appErrors.Clone(appErrors.ErrConflict, "el aula está en mantenimiento")
		}

		if err := s.validarReferencias(ctx, req); err != nil {
			return err
		}

		ocupada, err := s.horarios.AulaOcupada(ctx, req.IDAula, req.IDDia, req.IDBloque)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo verificar el aula")
		}
		if ocupada {
			return appErrors.Clone(appErrors.ErrConflict, "el aula ya tiene una clase en ese horario")
		}

		ocupado, err := s.horarios.DocenteOcupado(ctx, asignacion.CodDocente, req.IDDia, req.IDBloque)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo verificar al docente")
		}
		if ocupado {
			return appErrors.Clone(appErrors.ErrConflict, "el docente ya tiene una clase en ese horario")
		}

		horario = &models.HorarioClase{
			IDAsignacion: req.IDAsignacion,
			IDAula:       req.IDAula,
			IDDia:        req.IDDia,
			IDBloque:     req.IDBloque,
			IDTipoClase:  req.IDTipoClase,
		}
		if err := s.horarios.Create(ctx, horario); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo crear el horario")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.disponibilidad.Invalidar(ctx)
	s.logger.Info("horario creado",
		zap.Int64("id_horario_clase", horario.ID),
		zap.Int64("id_aula", horario.IDAula),
		zap.Int64("id_dia", horario.IDDia),
		zap.Int64("id_bloque_horario", horario.IDBloque))
	return horario, nil
}

// Desactivar removes a session from the timetable.
func (s *HorarioService) Desactivar(ctx context.Context, id int64) error {
	if err := s.horarios.Desactivar(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "horario no encontrado")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo desactivar el horario")
	}
	s.disponibilidad.Invalidar(ctx)
	return nil
}

func (s *HorarioService) validarReferencias(ctx context.Context, req CrearHorarioRequest) error {
	existeDia, err := s.horarios.ExisteDia(ctx, req.IDDia)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo validar el día")
	}
	if !existeDia {
		return appErrors.Clone(appErrors.ErrValidation, "el día indicado no existe")
	}
	existeBloque, err := s.horarios.ExisteBloque(ctx, req.IDBloque)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo validar el bloque horario")
	}
	if !existeBloque {
		return appErrors.Clone(appErrors.ErrValidation, "el bloque horario indicado no existe")
	}
	existeTipo, err := s.horarios.ExisteTipoClase(ctx, req.IDTipoClase)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo validar el tipo de clase")
	}
	if !existeTipo {
		return appErrors.Clone(appErrors.ErrValidation, "el tipo de clase indicado no existe")
	}
	return nil
}
