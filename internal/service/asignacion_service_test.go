package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
)

type asignacionRepoStub struct {
	detalles        []models.AsignacionDetalle
	porID           map[int64]*models.AsignacionDocente
	existe          bool
	grupoOcupado    bool
	horas           int
	horasPorGestion map[int64]int
	created         []*models.AsignacionDocente
	actualizadas    map[int64]int
	desactivadas    []int64
}

func (s *asignacionRepoStub) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (s *asignacionRepoStub) List(ctx context.Context, filter models.AsignacionFilter) ([]models.AsignacionDetalle, error) {
	return s.detalles, nil
}

func (s *asignacionRepoStub) FindByID(ctx context.Context, id int64) (*models.AsignacionDocente, error) {
	if a, ok := s.porID[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *asignacionRepoStub) FindDetalleByID(ctx context.Context, id int64) (*models.AsignacionDetalle, error) {
	return nil, sql.ErrNoRows
}

func (s *asignacionRepoStub) ExisteAsignacion(ctx context.Context, codDocente, idMateriaGrupo int64) (bool, error) {
	return s.existe, nil
}

func (s *asignacionRepoStub) MateriaGrupoTieneDocente(ctx context.Context, idMateriaGrupo int64) (bool, error) {
	return s.grupoOcupado, nil
}

func (s *asignacionRepoStub) HorasAsignadas(ctx context.Context, codDocente, idGestion int64) (int, error) {
	if s.horasPorGestion != nil {
		return s.horasPorGestion[idGestion], nil
	}
	return s.horas, nil
}

func (s *asignacionRepoStub) Create(ctx context.Context, asignacion *models.AsignacionDocente) error {
	asignacion.ID = int64(len(s.created) + 1)
	asignacion.Activo = true
	s.created = append(s.created, asignacion)
	return nil
}

func (s *asignacionRepoStub) ActualizarHoras(ctx context.Context, id int64, hrs int) error {
	if s.actualizadas == nil {
		s.actualizadas = map[int64]int{}
	}
	s.actualizadas[id] = hrs
	return nil
}

func (s *asignacionRepoStub) Desactivar(ctx context.Context, id int64) error {
	if _, ok := s.porID[id]; !ok {
		return sql.ErrNoRows
	}
	s.desactivadas = append(s.desactivadas, id)
	return nil
}

type gestionStub struct {
	gestion *models.Gestion
}

func (s *gestionStub) FindActiva(ctx context.Context) (*models.Gestion, error) {
	if s.gestion == nil {
		return nil, sql.ErrNoRows
	}
	cp := *s.gestion
	return &cp, nil
}

type materiaGrupoStub struct {
	items map[int64]*models.MateriaGrupo
}

func (s *materiaGrupoStub) FindActivaByID(ctx context.Context, id int64, forUpdate bool) (*models.MateriaGrupo, error) {
	if mg, ok := s.items[id]; ok {
		cp := *mg
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type docenteStub struct {
	limites map[int64]*models.LimiteContrato
}

func (s *docenteStub) LimiteContrato(ctx context.Context, codDocente int64, forUpdate bool) (*models.LimiteContrato, error) {
	if l, ok := s.limites[codDocente]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type horariosStub struct {
	desactivados map[int64]int64
}

func (s *horariosStub) DesactivarPorAsignacion(ctx context.Context, idAsignacion int64) (int64, error) {
	if s.desactivados == nil {
		s.desactivados = map[int64]int64{}
	}
	s.desactivados[idAsignacion] = 2
	return 2, nil
}

func newAsignacionFixture(repo *asignacionRepoStub) (*AsignacionService, *gestionStub, *materiaGrupoStub, *docenteStub, *horariosStub) {
	gestiones := &gestionStub{gestion: &models.Gestion{ID: 1, Anio: 2025, Semestre: "II", Activo: true}}
	materiaGrupos := &materiaGrupoStub{items: map[int64]*models.MateriaGrupo{
		5: {ID: 5, IDMateria: 1, IDGrupo: 1, IDGestion: 1, Activo: true},
	}}
	docentes := &docenteStub{limites: map[int64]*models.LimiteContrato{
		10: {CodDocente: 10, NombreCompleto: "Juan Perez", Activo: true, NombreContrato: "Tiempo Completo", HrsMaximas: 40},
	}}
	horarios := &horariosStub{}
	svc := NewAsignacionService(repo, gestiones, materiaGrupos, docentes, horarios, validator.New(), zap.NewNop())
	return svc, gestiones, materiaGrupos, docentes, horarios
}

func TestAsignacionCrearOK(t *testing.T) {
	repo := &asignacionRepoStub{}
	svc, _, _, _, _ := newAsignacionFixture(repo)

	asignacion, err := svc.Crear(context.Background(), CrearAsignacionRequest{CodDocente: 10, IDMateriaGrupo: 5, HrsAsignadas: 6})
	require.NoError(t, err)
	assert.Equal(t, int64(10), asignacion.CodDocente)
	assert.True(t, asignacion.Activo)
	require.Len(t, repo.created, 1)
}

func TestAsignacionCrearSinGestionActiva(t *testing.T) {
	repo := &asignacionRepoStub{}
	svc, gestiones, _, _, _ := newAsignacionFixture(repo)
	gestiones.gestion = nil

	_, err := svc.Crear(context.Background(), CrearAsignacionRequest{CodDocente: 10, IDMateriaGrupo: 5, HrsAsignadas: 6})
	assert.True(t, appErrors.Is(err, appErrors.ErrNoActivePeriod))
	assert.Empty(t, repo.created)
}

func TestAsignacionCrearMateriaGrupoInvalida(t *testing.T) {
	repo := &asignacionRepoStub{}
	svc, _, _, _, _ := newAsignacionFixture(repo)

	_, err := svc.Crear(context.Background(), CrearAsignacionRequest{CodDocente: 10, IDMateriaGrupo: 404, HrsAsignadas: 6})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidMateriaGrupo))
}

func TestAsignacionCrearMateriaGrupoDeOtraGestion(t *testing.T) {
	repo := &asignacionRepoStub{}
	svc, _, materiaGrupos, _, _ := newAsignacionFixture(repo)
	materiaGrupos.items[6] = &models.MateriaGrupo{ID: 6, IDGestion: 99, Activo: true}

	_, err := svc.Crear(context.Background(), CrearAsignacionRequest{CodDocente: 10, IDMateriaGrupo: 6, HrsAsignadas: 6})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidMateriaGrupo))
}

func TestAsignacionCrearDocenteInactivo(t *testing.T) {
	repo := &asignacionRepoStub{}
	svc, _, _, docentes, _ := newAsignacionFixture(repo)
	docentes.limites[10].Activo = false

	_, err := svc.Crear(context.Background(), CrearAsignacionRequest{CodDocente: 10, IDMateriaGrupo: 5, HrsAsignadas: 6})
	assert.True(t, appErrors.Is(err, appErrors.ErrTeacherUnavailable))
}

func TestAsignacionCrearDocenteInexistente(t *testing.T) {
	repo := &asignacionRepoStub{}
	svc, _, _, _, _ := newAsignacionFixture(repo)

	_, err := svc.Crear(context.Background(), CrearAsignacionRequest{CodDocente: 999, IDMateriaGrupo: 5, HrsAsignadas: 6})
	assert.True(t, appErrors.Is(err, appErrors.ErrTeacherUnavailable))
}

func TestAsignacionCrearDuplicada(t *testing.T) {
	repo := &asignacionRepoStub{existe: true}
	svc, _, _, _, _ := newAsignacionFixture(repo)

	_, err := svc.Crear(context.Background(), CrearAsignacionRequest{CodDocente: 10, IDMateriaGrupo: 5, HrsAsignadas: 6})
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicateAssignment))
}

func TestAsignacionCrearGrupoYaAsignado(t *testing.T) {
	repo := &asignacionRepoStub{grupoOcupado: true}
	svc, _, _, _, _ := newAsignacionFixture(repo)

	_, err := svc.Crear(context.Background(), CrearAsignacionRequest{CodDocente: 10, IDMateriaGrupo: 5, HrsAsignadas: 6})
	assert.True(t, appErrors.Is(err, appErrors.ErrGroupAlreadyAssigned))
}

func TestAsignacionCrearCargaEnElLimite(t *testing.T) {
	repo := &asignacionRepoStub{horas: 35}
	svc, _, _, _, _ := newAsignacionFixture(repo)

	// 35 + 5 = 40 equals the ceiling, allowed.
	_, err := svc.Crear(context.Background(), CrearAsignacionRequest{CodDocente: 10, IDMateriaGrupo: 5, HrsAsignadas: 5})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
}

func TestAsignacionCrearExcedeCarga(t *testing.T) {
	repo := &asignacionRepoStub{horas: 35}
	svc, _, _, _, _ := newAsignacionFixture(repo)

	_, err := svc.Crear(context.Background(), CrearAsignacionRequest{CodDocente: 10, IDMateriaGrupo: 5, HrsAsignadas: 6})
	assert.True(t, appErrors.Is(err, appErrors.ErrExceedsMaxLoad))
	assert.Contains(t, err.Error(), "35")
	assert.Contains(t, err.Error(), "41")
	assert.Contains(t, err.Error(), "40")
	assert.Empty(t, repo.created)
}

func TestAsignacionCrearValidacionDeHoras(t *testing.T) {
	repo := &asignacionRepoStub{}
	svc, _, _, _, _ := newAsignacionFixture(repo)

	_, err := svc.Crear(context.Background(), CrearAsignacionRequest{CodDocente: 10, IDMateriaGrupo: 5, HrsAsignadas: 0})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Crear(context.Background(), CrearAsignacionRequest{CodDocente: 10, IDMateriaGrupo: 5, HrsAsignadas: 41})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestAsignacionActualizarHorasRebase(t *testing.T) {
	repo := &asignacionRepoStub{
		horas: 20,
		porID: map[int64]*models.AsignacionDocente{
			7: {ID: 7, CodDocente: 10, IDMateriaGrupo: 5, HrsAsignadas: 10, Activo: true},
		},
	}
	svc, _, _, docentes, _ := newAsignacionFixture(repo)
	docentes.limites[10].HrsMaximas = 20

	// 20 - 10 + 10 = 20 stays at the ceiling, allowed.
	asignacion, err := svc.ActualizarHoras(context.Background(), 7, ActualizarHorasRequest{HrsAsignadas: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, asignacion.HrsAsignadas)
	assert.Equal(t, 10, repo.actualizadas[7])
}

func TestAsignacionActualizarHorasExcede(t *testing.T) {
	repo := &asignacionRepoStub{
		horas: 20,
		porID: map[int64]*models.AsignacionDocente{
			7: {ID: 7, CodDocente: 10, IDMateriaGrupo: 5, HrsAsignadas: 10, Activo: true},
		},
	}
	svc, _, _, docentes, _ := newAsignacionFixture(repo)
	docentes.limites[10].HrsMaximas = 20

	// 20 - 10 + 11 = 21 exceeds 20.
	_, err := svc.ActualizarHoras(context.Background(), 7, ActualizarHorasRequest{HrsAsignadas: 11})
	assert.True(t, appErrors.Is(err, appErrors.ErrExceedsMaxLoad))
}

func TestAsignacionActualizarHorasSumaSobreGestionDeLaAsignacion(t *testing.T) {
	// The assignment belongs to gestión 99, not the active one. The teacher
	// already holds 20 h there (10 of them on this row), so raising the row
	// to 20 h would total 30 h against a 20 h ceiling.
	repo := &asignacionRepoStub{
		horasPorGestion: map[int64]int{99: 20, 1: 0},
		porID: map[int64]*models.AsignacionDocente{
			7: {ID: 7, CodDocente: 10, IDMateriaGrupo: 6, HrsAsignadas: 10, Activo: true},
		},
	}
	svc, _, materiaGrupos, docentes, _ := newAsignacionFixture(repo)
	materiaGrupos.items[6] = &models.MateriaGrupo{ID: 6, IDMateria: 2, IDGrupo: 2, IDGestion: 99, Activo: true}
	docentes.limites[10].HrsMaximas = 20

	_, err := svc.ActualizarHoras(context.Background(), 7, ActualizarHorasRequest{HrsAsignadas: 20})
	assert.True(t, appErrors.Is(err, appErrors.ErrExceedsMaxLoad))
	assert.Empty(t, repo.actualizadas)
}

func TestAsignacionActualizarHorasSinGestionActiva(t *testing.T) {
	// Updating hours never depends on an active gestión: the sum runs over
	// the gestión of the row's own materia-grupo.
	repo := &asignacionRepoStub{
		horasPorGestion: map[int64]int{99: 10},
		porID: map[int64]*models.AsignacionDocente{
			7: {ID: 7, CodDocente: 10, IDMateriaGrupo: 6, HrsAsignadas: 10, Activo: true},
		},
	}
	svc, gestiones, materiaGrupos, _, _ := newAsignacionFixture(repo)
	gestiones.gestion = nil
	materiaGrupos.items[6] = &models.MateriaGrupo{ID: 6, IDMateria: 2, IDGrupo: 2, IDGestion: 99, Activo: true}

	asignacion, err := svc.ActualizarHoras(context.Background(), 7, ActualizarHorasRequest{HrsAsignadas: 12})
	require.NoError(t, err)
	assert.Equal(t, 12, asignacion.HrsAsignadas)
	assert.Equal(t, 12, repo.actualizadas[7])
}

func TestAsignacionActualizarHorasInactiva(t *testing.T) {
	repo := &asignacionRepoStub{
		porID: map[int64]*models.AsignacionDocente{
			7: {ID: 7, CodDocente: 10, IDMateriaGrupo: 5, HrsAsignadas: 10, Activo: false},
		},
	}
	svc, _, _, _, _ := newAsignacionFixture(repo)

	_, err := svc.ActualizarHoras(context.Background(), 7, ActualizarHorasRequest{HrsAsignadas: 5})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestAsignacionDesactivarCascadaHorarios(t *testing.T) {
	repo := &asignacionRepoStub{
		porID: map[int64]*models.AsignacionDocente{
			7: {ID: 7, CodDocente: 10, IDMateriaGrupo: 5, HrsAsignadas: 10, Activo: true},
		},
	}
	svc, _, _, _, horarios := newAsignacionFixture(repo)

	require.NoError(t, svc.Desactivar(context.Background(), 7))
	assert.Equal(t, []int64{7}, repo.desactivadas)
	assert.Equal(t, int64(2), horarios.desactivados[7])
}

func TestAsignacionDesactivarNoEncontrada(t *testing.T) {
	repo := &asignacionRepoStub{porID: map[int64]*models.AsignacionDocente{}}
	svc, _, _, _, _ := newAsignacionFixture(repo)

	err := svc.Desactivar(context.Background(), 99)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestAsignacionCarga(t *testing.T) {
	repo := &asignacionRepoStub{horas: 30}
	svc, _, _, _, _ := newAsignacionFixture(repo)

	carga, err := svc.Carga(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 30, carga.HrsAsignadas)
	assert.Equal(t, 10, carga.HrsDisponibles)
	assert.Equal(t, 75.0, carga.PorcentajeCarga)
}

func TestPorcentajeCargaRedondeo(t *testing.T) {
	assert.Equal(t, 33.33, porcentajeCarga(10, 30))
	assert.Equal(t, 66.67, porcentajeCarga(20, 30))
	assert.Equal(t, 100.0, porcentajeCarga(40, 40))
	assert.Equal(t, 0.0, porcentajeCarga(0, 40))
	assert.Equal(t, 0.0, porcentajeCarga(10, 0))
}
