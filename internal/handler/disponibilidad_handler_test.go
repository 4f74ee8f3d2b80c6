package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	"github.com/jcalderon-dev/sigha-api/internal/service"
)

type aulasActivasStub struct {
	aulas []models.AulaDetalle
}

func (s *aulasActivasStub) ListActivas(ctx context.Context) ([]models.AulaDetalle, error) {
	return s.aulas, nil
}

type aulasOcupadasStub struct {
	ocupadas []int64
}

func (s *aulasOcupadasStub) AulasOcupadas(ctx context.Context, idDia, idBloque int64) ([]int64, error) {
	return s.ocupadas, nil
}

func (s *aulasOcupadasStub) ExisteDia(ctx context.Context, id int64) (bool, error) {
	return id >= 1 && id <= 6, nil
}

func (s *aulasOcupadasStub) ExisteBloque(ctx context.Context, id int64) (bool, error) {
	return id >= 1 && id <= 8, nil
}

func aulaDetalle(id int64, nombre string, mantenimiento bool) models.AulaDetalle {
	return models.AulaDetalle{Aula: models.Aula{
		ID:            id,
		Nombre:        nombre,
		Capacidad:     40,
		Piso:          1,
		Mantenimiento: mantenimiento,
		Activo:        true,
	}}
}

func newDisponibilidadHandler(aulas []models.AulaDetalle, ocupadas []int64) *DisponibilidadHandler {
	svc := service.NewDisponibilidadService(
		&aulasActivasStub{aulas: aulas},
		&aulasOcupadasStub{ocupadas: ocupadas},
		nil,
		0,
		nil,
	)
	return NewDisponibilidadHandler(svc)
}

func TestDisponibilidadHandlerConsultar(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newDisponibilidadHandler([]models.AulaDetalle{
		aulaDetalle(1, "690A", false),
		aulaDetalle(2, "690B", false),
		aulaDetalle(3, "LAB-1", true),
	}, []int64{2, 3})

	c, w := newGinContext(http.MethodGet, "/disponibilidad?dia=1&bloque=2", nil)

	handler.Consultar(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data models.ConsultaDisponibilidad `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data.Aulas, 3)
	require.Equal(t, 3, body.Data.Resumen.Total)
	require.Equal(t, 1, body.Data.Resumen.Disponibles)
	require.Equal(t, 1, body.Data.Resumen.Ocupadas)
	require.Equal(t, 1, body.Data.Resumen.NoDisponibles)

	// maintenance wins even though the room also has a class in the slot
	require.Equal(t, models.EstadoNoDisponible, body.Data.Aulas[2].Estado)
}

func TestDisponibilidadHandlerConsultarSinParametros(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newDisponibilidadHandler(nil, nil)

	c, w := newGinContext(http.MethodGet, "/disponibilidad?bloque=2", nil)

	handler.Consultar(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDisponibilidadHandlerConsultarDiaInexistente(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newDisponibilidadHandler(nil, nil)

	c, w := newGinContext(http.MethodGet, "/disponibilidad?dia=9&bloque=2", nil)

	handler.Consultar(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
