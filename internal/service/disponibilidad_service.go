package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
)

type aulasActivasReader interface {
	ListActivas(ctx context.Context) ([]models.AulaDetalle, error)
}

type aulasOcupadasReader interface {
	AulasOcupadas(ctx context.Context, idDia, idBloque int64) ([]int64, error)
	ExisteDia(ctx context.Context, id int64) (bool, error)
	ExisteBloque(ctx context.Context, id int64) (bool, error)
}

type disponibilidadCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type cacheMetricsRecorder interface {
	RecordCacheOperation(hit bool)
}

const disponibilidadCachePrefix = "disponibilidad"

// DisponibilidadService resolves classroom availability for a (día, bloque)
// slot. Classification priority is fixed: maintenance wins over occupancy,
// occupancy wins over availability. The resolver only reads, so repeated
// queries over unchanged data return identical results.
type DisponibilidadService struct {
	aulas    aulasActivasReader
	horarios aulasOcupadasReader
	cache    disponibilidadCache
	cacheTTL time.Duration
	metrics  cacheMetricsRecorder
	logger   *zap.Logger
}

// NewDisponibilidadService creates a service instance. A nil cache disables
// caching.
func NewDisponibilidadService(
	aulas aulasActivasReader,
	horarios aulasOcupadasReader,
	cache disponibilidadCache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *DisponibilidadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DisponibilidadService{
		aulas:    aulas,
		horarios: horarios,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Consultar classifies every active classroom for the requested slot.
func (s *DisponibilidadService) Consultar(ctx context.Context, idDia, idBloque int64) (*models.ConsultaDisponibilidad, error) {
	if err := s.validarSlot(ctx, idDia, idBloque); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s:%d:%d", disponibilidadCachePrefix, idDia, idBloque)
	if s.cache != nil {
		var cached models.ConsultaDisponibilidad
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.recordCache(true)
			return &cached, nil
		} else if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("fallo al leer cache de disponibilidad", zap.Error(err))
		}
		s.recordCache(false)
	}

	consulta, err := s.resolver(ctx, idDia, idBloque)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, consulta, s.cacheTTL); err != nil {
			s.logger.Warn("fallo al escribir cache de disponibilidad", zap.Error(err))
		}
	}
	return consulta, nil
}

// SetMetrics attaches a hit/miss recorder for the cache.
func (s *DisponibilidadService) SetMetrics(metrics cacheMetricsRecorder) {
	s.metrics = metrics
}

func (s *DisponibilidadService) recordCache(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(hit)
	}
}

// Invalidar drops every cached availability payload. Called after any aula or
// horario mutation.
func (s *DisponibilidadService) Invalidar(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, disponibilidadCachePrefix+":*"); err != nil {
		s.logger.Warn("fallo al invalidar cache de disponibilidad", zap.Error(err))
	}
}

func (s *DisponibilidadService) validarSlot(ctx context.Context, idDia, idBloque int64) error {
	if idDia <= 0 || idBloque <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "día y bloque horario son requeridos")
	}
	existeDia, err := s.horarios.ExisteDia(ctx, idDia)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo validar el día")
	}
	if !existeDia {
		return appErrors.Clone(appErrors.ErrValidation, "el día indicado no existe")
	}
	existeBloque, err := s.horarios.ExisteBloque(ctx, idBloque)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo validar el bloque horario")
	}
	if !existeBloque {
		return appErrors.Clone(appErrors.ErrValidation, "el bloque horario indicado no existe")
	}
	return nil
}

func (s *DisponibilidadService) resolver(ctx context.Context, idDia, idBloque int64) (*models.ConsultaDisponibilidad, error) {
	aulas, err := s.aulas.ListActivas(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudieron listar las aulas")
	}
	if len(aulas) == 0 {
		return &models.ConsultaDisponibilidad{
			Aulas:   []models.AulaDisponibilidad{},
			Mensaje: "no hay aulas activas registradas",
		}, nil
	}

	ocupadasIDs, err := s.horarios.AulasOcupadas(ctx, idDia, idBloque)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudieron cargar las aulas ocupadas")
	}
	ocupadas := make(map[int64]bool, len(ocupadasIDs))
	for _, id := range ocupadasIDs {
		ocupadas[id] = true
	}

	consulta := &models.ConsultaDisponibilidad{
		Aulas: make([]models.AulaDisponibilidad, 0, len(aulas)),
	}
	for _, aula := range aulas {
		item := models.AulaDisponibilidad{
			IDAula:    aula.ID,
			Nombre:    aula.Nombre,
			Capacidad: aula.Capacidad,
			Piso:      aula.Piso,
			TipoAula:  aula.TipoAulaNombre,
		}
		switch {
		case aula.Mantenimiento:
			item.Estado = models.EstadoNoDisponible
			motivo := models.MotivoMantenimiento
			item.Motivo = &motivo
			consulta.Resumen.NoDisponibles++
		case ocupadas[aula.ID]:
			item.Estado = models.EstadoOcupada
			motivo := models.MotivoClaseAsignada
			item.Motivo = &motivo
			consulta.Resumen.Ocupadas++
		default:
			item.Estado = models.EstadoDisponible
			consulta.Resumen.Disponibles++
		}
		consulta.Resumen.Total++
		consulta.Aulas = append(consulta.Aulas, item)
	}
	return consulta, nil
}
