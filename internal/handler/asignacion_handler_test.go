package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	"github.com/jcalderon-dev/sigha-api/internal/service"
)

type asignacionRepoStub struct {
	existe       bool
	grupoTomado  bool
	horas        int
	created      []*models.AsignacionDocente
	detalles     map[int64]*models.AsignacionDetalle
	asignaciones map[int64]*models.AsignacionDocente
}

func (s *asignacionRepoStub) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (s *asignacionRepoStub) List(ctx context.Context, filter models.AsignacionFilter) ([]models.AsignacionDetalle, error) {
	out := make([]models.AsignacionDetalle, 0, len(s.detalles))
	for _, d := range s.detalles {
		out = append(out, *d)
	}
	return out, nil
}

func (s *asignacionRepoStub) FindByID(ctx context.Context, id int64) (*models.AsignacionDocente, error) {
	if a, ok := s.asignaciones[id]; ok {
		return a, nil
	}
	return nil, sql.ErrNoRows
}

func (s *asignacionRepoStub) FindDetalleByID(ctx context.Context, id int64) (*models.AsignacionDetalle, error) {
	if d, ok := s.detalles[id]; ok {
		return d, nil
	}
	return nil, sql.ErrNoRows
}

func (s *asignacionRepoStub) ExisteAsignacion(ctx context.Context, codDocente, idMateriaGrupo int64) (bool, error) {
	return s.existe, nil
}

func (s *asignacionRepoStub) MateriaGrupoTieneDocente(ctx context.Context, idMateriaGrupo int64) (bool, error) {
	return s.grupoTomado, nil
}

func (s *asignacionRepoStub) HorasAsignadas(ctx context.Context, codDocente, idGestion int64) (int, error) {
	return s.horas, nil
}

func (s *asignacionRepoStub) Create(ctx context.Context, asignacion *models.AsignacionDocente) error {
	asignacion.ID = int64(len(s.created) + 1)
	s.created = append(s.created, asignacion)
	return nil
}

func (s *asignacionRepoStub) ActualizarHoras(ctx context.Context, id int64, hrs int) error {
	return nil
}

func (s *asignacionRepoStub) Desactivar(ctx context.Context, id int64) error {
	return nil
}

type gestionActivaStub struct {
	gestion *models.Gestion
}

func (s *gestionActivaStub) FindActiva(ctx context.Context) (*models.Gestion, error) {
	if s.gestion == nil {
		return nil, sql.ErrNoRows
	}
	return s.gestion, nil
}

type materiaGrupoActivaStub struct {
	oferta *models.MateriaGrupo
}

func (s *materiaGrupoActivaStub) FindActivaByID(ctx context.Context, id int64, forUpdate bool) (*models.MateriaGrupo, error) {
	if s.oferta != nil && s.oferta.ID == id {
		return s.oferta, nil
	}
	return nil, sql.ErrNoRows
}

type limiteContratoStub struct {
	limite *models.LimiteContrato
}

func (s *limiteContratoStub) LimiteContrato(ctx context.Context, codDocente int64, forUpdate bool) (*models.LimiteContrato, error) {
	if s.limite != nil && s.limite.CodDocente == codDocente {
		return s.limite, nil
	}
	return nil, sql.ErrNoRows
}

type horariosDeAsignacionStub struct{}

func (s *horariosDeAsignacionStub) DesactivarPorAsignacion(ctx context.Context, idAsignacion int64) (int64, error) {
	return 0, nil
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func newAsignacionHandler(repo *asignacionRepoStub, horas int, maxHoras int) *AsignacionHandler {
	repo.horas = horas
	svc := service.NewAsignacionService(
		repo,
		&gestionActivaStub{gestion: &models.Gestion{ID: 1, Anio: 2025, Semestre: "II", Activo: true}},
		&materiaGrupoActivaStub{oferta: &models.MateriaGrupo{ID: 10, IDGestion: 1, Activo: true}},
		&limiteContratoStub{limite: &models.LimiteContrato{CodDocente: 5, NombreCompleto: "Juan Pérez", Activo: true, NombreContrato: "Tiempo completo", HrsMaximas: maxHoras}},
		&horariosDeAsignacionStub{},
		nil,
		nil,
	)
	return NewAsignacionHandler(svc)
}

func TestAsignacionHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &asignacionRepoStub{}
	handler := newAsignacionHandler(repo, 35, 40)

	payload, _ := json.Marshal(service.CrearAsignacionRequest{CodDocente: 5, IDMateriaGrupo: 10, HrsAsignadas: 5})
	c, w := newGinContext(http.MethodPost, "/asignaciones", payload)

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, repo.created, 1)
	require.Equal(t, 5, repo.created[0].HrsAsignadas)
}

func TestAsignacionHandlerCreateExceedsMaxLoad(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAsignacionHandler(&asignacionRepoStub{}, 35, 40)

	payload, _ := json.Marshal(service.CrearAsignacionRequest{CodDocente: 5, IDMateriaGrupo: 10, HrsAsignadas: 6})
	c, w := newGinContext(http.MethodPost, "/asignaciones", payload)

	handler.Create(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), "EXCEEDS_MAX_LOAD")
}

func TestAsignacionHandlerCreateBadJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAsignacionHandler(&asignacionRepoStub{}, 0, 40)

	c, w := newGinContext(http.MethodPost, "/asignaciones", []byte("{no es json"))

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAsignacionHandlerListFiltroInvalido(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAsignacionHandler(&asignacionRepoStub{}, 0, 40)

	c, w := newGinContext(http.MethodGet, "/asignaciones?id_gestion=abc", nil)

	handler.List(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAsignacionHandlerGetIDInvalido(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAsignacionHandler(&asignacionRepoStub{}, 0, 40)

	c, w := newGinContext(http.MethodGet, "/asignaciones/0", nil)
	c.Params = gin.Params{{Key: "id", Value: "0"}}

	handler.Get(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
