package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
)

type asistenciaRepo interface {
	RunInTx(ctx context.Context, fn func(context.Context) error) error
	List(ctx context.Context, filtro models.ReporteAsistenciaFiltro) ([]models.AsistenciaDetalle, error)
	FindByID(ctx context.Context, id int64) (*models.Asistencia, error)
	ExisteRegistro(ctx context.Context, idHorarioClase int64, fecha time.Time) (bool, error)
	Create(ctx context.Context, asistencia *models.Asistencia) error
	ActualizarEstado(ctx context.Context, id int64, estado string, observacion *string) error
	ResumenPorDocente(ctx context.Context, idGestion int64) ([]models.ResumenAsistencia, error)
}

type justificacionRepo interface {
	RunInTx(ctx context.Context, fn func(context.Context) error) error
	ListPendientes(ctx context.Context) ([]models.Justificacion, error)
	ListByAsistencia(ctx context.Context, idAsistencia int64) ([]models.Justificacion, error)
	FindByID(ctx context.Context, id int64) (*models.Justificacion, error)
	ExistePendiente(ctx context.Context, idAsistencia int64) (bool, error)
	Create(ctx context.Context, justificacion *models.Justificacion) error
	Revisar(ctx context.Context, id int64, estado string, comentario *string, revisadoPor string) error
}

type horarioReader interface {
	FindByID(ctx context.Context, id int64) (*models.HorarioClase, error)
}

// RegistrarAsistenciaRequest records attendance for one session on one date.
type RegistrarAsistenciaRequest struct {
	IDHorarioClase int64   `json:"id_horario_clase" validate:"required"`
	Fecha          string  `json:"fecha" validate:"required,datetime=2006-01-02"`
	Estado         string  `json:"estado" validate:"required,oneof=PRESENTE AUSENTE RETRASO"`
	Observacion    *string `json:"observacion,omitempty" validate:"omitempty,max=255"`
}

// CrearJustificacionRequest files a justification against an absence.
type CrearJustificacionRequest struct {
	IDAsistencia int64  `json:"id_asistencia" validate:"required"`
	Motivo       string `json:"motivo" validate:"required,min=10,max=500"`
}

// RevisarJustificacionRequest carries the reviewer's decision.
type RevisarJustificacionRequest struct {
	Estado     string  `json:"estado" validate:"required,oneof=APROBADA RECHAZADA"`
	Comentario *string `json:"comentario,omitempty" validate:"omitempty,max=255"`
}

// AsistenciaService records attendance and manages justifications. An
// approved justification over an absence converts the mark to PRESENTE with
// the review noted.
type AsistenciaService struct {
	asistencias     asistenciaRepo
	justificaciones justificacionRepo
	horarios        horarioReader
	validator       *validator.Validate
	logger          *zap.Logger
}

// NewAsistenciaService creates a service instance.
func NewAsistenciaService(
	asistencias asistenciaRepo,
	justificaciones justificacionRepo,
	horarios horarioReader,
	validate *validator.Validate,
	logger *zap.Logger,
) *AsistenciaService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AsistenciaService{
		asistencias:     asistencias,
		justificaciones: justificaciones,
		horarios:        horarios,
		validator:       validate,
		logger:          logger,
	}
}

// List returns attendance rows for the report filter.
func (s *AsistenciaService) List(ctx context.Context, filtro models.ReporteAsistenciaFiltro) ([]models.AsistenciaDetalle, error) {
	if err := s.validator.Struct(filtro); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "filtro de asistencia inválido")
	}
	asistencias, err := s.asistencias.List(ctx, filtro)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudieron listar las asistencias")
	}
	return asistencias, nil
}

// ResumenPorDocente aggregates attendance counters per teacher for a gestión.
func (s *AsistenciaService) ResumenPorDocente(ctx context.Context, idGestion int64) ([]models.ResumenAsistencia, error) {
	resumen, err := s.asistencias.ResumenPorDocente(ctx, idGestion)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo generar el resumen de asistencias")
	}
	return resumen, nil
}

// Registrar records attendance for a session. One row per (horario, fecha);
// re-registering the same date is rejected.
func (s *AsistenciaService) Registrar(ctx context.Context, req RegistrarAsistenciaRequest, tipoRegistro string) (*models.Asistencia, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de asistencia inválidos")
	}
	fecha, err := time.Parse("2006-01-02", req.Fecha)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fecha inválida")
	}
	if tipoRegistro == "" {
		tipoRegistro = models.RegistroManual
	}

	var asistencia *models.Asistencia
	err = s.asistencias.RunInTx(ctx, func(ctx context.Context) error {
		horario, err := s.horarios.FindByID(ctx, req.IDHorarioClase)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotFound, "horario no encontrado")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar el horario")
		}
		if !horario.Activo {
			return appErrors.Clone(appErrors.ErrNotFound, "horario no encontrado")
		}

		existe, err := s.asistencias.ExisteRegistro(ctx, req.IDHorarioClase, fecha)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo verificar duplicados")
		}
		if existe {
			return appErrors.Clone(appErrors.ErrConflict, "la asistencia de esa fecha ya fue registrada")
		}

		asistencia = &models.Asistencia{
			IDAsignacion:   horario.IDAsignacion,
			IDHorarioClase: req.IDHorarioClase,
			FechaRegistro:  fecha,
			HoraRegistro:   time.Now().UTC().Format("15:04:05"),
			Estado:         req.Estado,
			TipoRegistro:   tipoRegistro,
			Observacion:    req.Observacion,
		}
		if err := s.asistencias.Create(ctx, asistencia); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo registrar la asistencia")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("asistencia registrada",
		zap.Int64("id_asistencia", asistencia.ID),
		zap.String("estado", asistencia.Estado),
		zap.String("fecha", req.Fecha))
	return asistencia, nil
}

// Justificar files a pending justification against an absence or late mark.
func (s *AsistenciaService) Justificar(ctx context.Context, req CrearJustificacionRequest) (*models.Justificacion, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de justificación inválidos")
	}

	asistencia, err := s.asistencias.FindByID(ctx, req.IDAsistencia)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "asistencia no encontrada")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar la asistencia")
	}
	if asistencia.Estado == models.AsistenciaPresente {
		return nil, appErrors.Clone(appErrors.ErrConflict, "solo se justifican ausencias o retrasos")
	}

	pendiente, err := s.justificaciones.ExistePendiente(ctx, req.IDAsistencia)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo verificar justificaciones previas")
	}
	if pendiente {
		return nil, appErrors.Clone(appErrors.ErrConflict, "ya existe una justificación pendiente para esa asistencia")
	}

	justificacion := &models.Justificacion{
		IDAsistencia: req.IDAsistencia,
		Motivo:       req.Motivo,
	}
	if err := s.justificaciones.Create(ctx, justificacion); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo crear la justificación")
	}
	return justificacion, nil
}

// JustificacionesDeAsistencia lists every justification filed against one
// attendance row, newest first.
func (s *AsistenciaService) JustificacionesDeAsistencia(ctx context.Context, idAsistencia int64) ([]models.Justificacion, error) {
	justificaciones, err := s.justificaciones.ListByAsistencia(ctx, idAsistencia)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudieron listar las justificaciones")
	}
	return justificaciones, nil
}

// JustificacionesPendientes lists the review queue.
func (s *AsistenciaService) JustificacionesPendientes(ctx context.Context) ([]models.Justificacion, error) {
	justificaciones, err := s.justificaciones.ListPendientes(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudieron listar las justificaciones")
	}
	return justificaciones, nil
}

// RevisarJustificacion records the decision. Approval converts the underlying
// absence into a justified PRESENTE mark; rejection leaves it untouched.
func (s *AsistenciaService) RevisarJustificacion(ctx context.Context, id int64, req RevisarJustificacionRequest, revisadoPor string) (*models.Justificacion, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de revisión inválidos")
	}

	var justificacion *models.Justificacion
	err := s.justificaciones.RunInTx(ctx, func(ctx context.Context) error {
		actual, err := s.justificaciones.FindByID(ctx, id)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotFound, "justificación no encontrada")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar la justificación")
		}
		if actual.EstadoRevision != models.JustificacionPendiente {
			return appErrors.Clone(appErrors.ErrConflict, "la justificación ya fue revisada")
		}

		if err := s.justificaciones.Revisar(ctx, id, req.Estado, req.Comentario, revisadoPor); err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrConflict, "la justificación ya fue revisada")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo revisar la justificación")
		}

		if req.Estado == models.JustificacionAprobada {
			observacion := "ausencia justificada"
			if err := s.asistencias.ActualizarEstado(ctx, actual.IDAsistencia, models.AsistenciaPresente, &observacion); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo actualizar la asistencia")
			}
		}

		actual.EstadoRevision = req.Estado
		actual.ComentarioRevision = req.Comentario
		actual.RevisadoPor = &revisadoPor
		justificacion = actual
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("justificación revisada",
		zap.Int64("id_justificacion", id),
		zap.String("estado", req.Estado))
	return justificacion, nil
}
