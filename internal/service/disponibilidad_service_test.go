package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
)

type aulasStub struct {
	aulas []models.AulaDetalle
	calls int
}

func (s *aulasStub) ListActivas(ctx context.Context) ([]models.AulaDetalle, error) {
	s.calls++
	return s.aulas, nil
}

type slotsStub struct {
	ocupadas []int64
}

func (s *slotsStub) AulasOcupadas(ctx context.Context, idDia, idBloque int64) ([]int64, error) {
	return s.ocupadas, nil
}

func (s *slotsStub) ExisteDia(ctx context.Context, id int64) (bool, error) {
	return id >= 1 && id <= 7, nil
}

func (s *slotsStub) ExisteBloque(ctx context.Context, id int64) (bool, error) {
	return id >= 1 && id <= 10, nil
}

type cacheStub struct {
	sets    int
	deletes int
	store   map[string]*models.ConsultaDisponibilidad
}

func newCacheStub() *cacheStub {
	return &cacheStub{store: map[string]*models.ConsultaDisponibilidad{}}
}

func (c *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	cached, ok := c.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*dest.(*models.ConsultaDisponibilidad) = *cached
	return nil
}

func (c *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.sets++
	consulta := value.(*models.ConsultaDisponibilidad)
	cp := *consulta
	c.store[key] = &cp
	return nil
}

func (c *cacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	c.deletes++
	c.store = map[string]*models.ConsultaDisponibilidad{}
	return nil
}

func aulaFixture(id int64, nombre string, piso int, mantenimiento bool) models.AulaDetalle {
	tipo := "Aula común"
	return models.AulaDetalle{
		Aula: models.Aula{
			ID: id, Nombre: nombre, Capacidad: 40, Piso: piso,
			IDTipoAula: 1, Mantenimiento: mantenimiento, Activo: true,
		},
		TipoAulaNombre: &tipo,
	}
}

func TestDisponibilidadClasificacion(t *testing.T) {
	aulas := &aulasStub{aulas: []models.AulaDetalle{
		aulaFixture(1, "AULA-101", 1, false),
		aulaFixture(2, "AULA-102", 1, true),
		aulaFixture(3, "AULA-201", 2, false),
	}}
	horarios := &slotsStub{ocupadas: []int64{3}}
	svc := NewDisponibilidadService(aulas, horarios, nil, 0, zap.NewNop())

	consulta, err := svc.Consultar(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, consulta.Aulas, 3)

	assert.Equal(t, models.EstadoDisponible, consulta.Aulas[0].Estado)
	assert.Nil(t, consulta.Aulas[0].Motivo)

	assert.Equal(t, models.EstadoNoDisponible, consulta.Aulas[1].Estado)
	require.NotNil(t, consulta.Aulas[1].Motivo)
	assert.Equal(t, models.MotivoMantenimiento, *consulta.Aulas[1].Motivo)

	assert.Equal(t, models.EstadoOcupada, consulta.Aulas[2].Estado)
	require.NotNil(t, consulta.Aulas[2].Motivo)
	assert.Equal(t, models.MotivoClaseAsignada, *consulta.Aulas[2].Motivo)

	assert.Equal(t, models.ResumenDisponibilidad{Total: 3, Disponibles: 1, Ocupadas: 1, NoDisponibles: 1}, consulta.Resumen)
}

func TestDisponibilidadMantenimientoGanaAOcupacion(t *testing.T) {
	aulas := &aulasStub{aulas: []models.AulaDetalle{aulaFixture(1, "AULA-101", 1, true)}}
	horarios := &slotsStub{ocupadas: []int64{1}}
	svc := NewDisponibilidadService(aulas, horarios, nil, 0, zap.NewNop())

	consulta, err := svc.Consultar(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, consulta.Aulas, 1)
	assert.Equal(t, models.EstadoNoDisponible, consulta.Aulas[0].Estado)
	assert.Equal(t, models.MotivoMantenimiento, *consulta.Aulas[0].Motivo)
	assert.Equal(t, 0, consulta.Resumen.Ocupadas)
	assert.Equal(t, 1, consulta.Resumen.NoDisponibles)
}

func TestDisponibilidadSinAulas(t *testing.T) {
	svc := NewDisponibilidadService(&aulasStub{}, &slotsStub{}, nil, 0, zap.NewNop())

	consulta, err := svc.Consultar(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Empty(t, consulta.Aulas)
	assert.NotEmpty(t, consulta.Mensaje)
	assert.Equal(t, 0, consulta.Resumen.Total)
}

func TestDisponibilidadSlotInvalido(t *testing.T) {
	svc := NewDisponibilidadService(&aulasStub{}, &slotsStub{}, nil, 0, zap.NewNop())

	_, err := svc.Consultar(context.Background(), 0, 2)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Consultar(context.Background(), 9, 2)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Consultar(context.Background(), 1, 99)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestDisponibilidadIdempotente(t *testing.T) {
	aulas := &aulasStub{aulas: []models.AulaDetalle{
		aulaFixture(1, "AULA-101", 1, false),
		aulaFixture(2, "AULA-102", 1, true),
	}}
	horarios := &slotsStub{ocupadas: []int64{1}}
	svc := NewDisponibilidadService(aulas, horarios, nil, 0, zap.NewNop())

	primera, err := svc.Consultar(context.Background(), 1, 2)
	require.NoError(t, err)
	segunda, err := svc.Consultar(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, primera, segunda)
}

func TestDisponibilidadCacheHitYInvalidacion(t *testing.T) {
	aulas := &aulasStub{aulas: []models.AulaDetalle{aulaFixture(1, "AULA-101", 1, false)}}
	horarios := &slotsStub{}
	cache := newCacheStub()
	svc := NewDisponibilidadService(aulas, horarios, cache, time.Minute, zap.NewNop())

	_, err := svc.Consultar(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, aulas.calls)
	assert.Equal(t, 1, cache.sets)

	// Second query is served from cache.
	_, err = svc.Consultar(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, aulas.calls)

	svc.Invalidar(context.Background())
	assert.Equal(t, 1, cache.deletes)

	_, err = svc.Consultar(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, aulas.calls)
}
