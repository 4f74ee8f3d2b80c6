package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
)

type horarioRepoStub struct {
	aulaOcupada    bool
	docenteOcupado bool
	created        []*models.HorarioClase
	desactivados   []int64
	porAsignacion  []models.HorarioDetalle
	porDocente     []models.HorarioDetalle
}

func (s *horarioRepoStub) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (s *horarioRepoStub) Dias(ctx context.Context) ([]models.Dia, error) {
	return []models.Dia{{ID: 1, Nombre: "LUNES"}}, nil
}

func (s *horarioRepoStub) Bloques(ctx context.Context) ([]models.BloqueHorario, error) {
	return []models.BloqueHorario{{ID: 1}}, nil
}

func (s *horarioRepoStub) TiposClase(ctx context.Context) ([]models.TipoClase, error) {
	return []models.TipoClase{{ID: 1, Nombre: "TEORIA"}}, nil
}

func (s *horarioRepoStub) ExisteDia(ctx context.Context, id int64) (bool, error) {
	return id >= 1 && id <= 6, nil
}

func (s *horarioRepoStub) ExisteBloque(ctx context.Context, id int64) (bool, error) {
	return id >= 1 && id <= 8, nil
}

func (s *horarioRepoStub) ExisteTipoClase(ctx context.Context, id int64) (bool, error) {
	return id >= 1 && id <= 3, nil
}

func (s *horarioRepoStub) AulaOcupada(ctx context.Context, idAula, idDia, idBloque int64) (bool, error) {
	return s.aulaOcupada, nil
}

func (s *horarioRepoStub) DocenteOcupado(ctx context.Context, codDocente, idDia, idBloque int64) (bool, error) {
	return s.docenteOcupado, nil
}

func (s *horarioRepoStub) ListByAsignacion(ctx context.Context, idAsignacion int64) ([]models.HorarioDetalle, error) {
	return s.porAsignacion, nil
}

func (s *horarioRepoStub) ListByDocente(ctx context.Context, codDocente, idGestion int64) ([]models.HorarioDetalle, error) {
	return s.porDocente, nil
}

func (s *horarioRepoStub) FindDetalleByID(ctx context.Context, id int64) (*models.HorarioDetalle, error) {
	return nil, sql.ErrNoRows
}

func (s *horarioRepoStub) Create(ctx context.Context, horario *models.HorarioClase) error {
	horario.ID = int64(len(s.created) + 1)
	horario.Activo = true
	s.created = append(s.created, horario)
	return nil
}

func (s *horarioRepoStub) Desactivar(ctx context.Context, id int64) error {
	if id == 99 {
		return sql.ErrNoRows
	}
	s.desactivados = append(s.desactivados, id)
	return nil
}

type asignacionLookupStub struct {
	porID map[int64]*models.AsignacionDocente
}

func (s *asignacionLookupStub) FindByID(ctx context.Context, id int64) (*models.AsignacionDocente, error) {
	if a, ok := s.porID[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type aulaLookupStub struct {
	porID map[int64]*models.AulaDetalle
}

func (s *aulaLookupStub) FindByID(ctx context.Context, id int64) (*models.AulaDetalle, error) {
	if a, ok := s.porID[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type invalidatorStub struct {
	llamadas int
}

func (s *invalidatorStub) Invalidar(ctx context.Context) {
	s.llamadas++
}

func newHorarioFixture() (*HorarioService, *horarioRepoStub, *invalidatorStub) {
	repo := &horarioRepoStub{}
	invalidator := &invalidatorStub{}
	svc := NewHorarioService(
		repo,
		&asignacionLookupStub{porID: map[int64]*models.AsignacionDocente{
			3: {ID: 3, CodDocente: 5, IDMateriaGrupo: 10, HrsAsignadas: 4, Activo: true},
			4: {ID: 4, CodDocente: 5, IDMateriaGrupo: 11, HrsAsignadas: 4, Activo: false},
		}},
		&aulaLookupStub{porID: map[int64]*models.AulaDetalle{
			1: {Aula: models.Aula{ID: 1, Nombre: "690A", Activo: true}},
			2: {Aula: models.Aula{ID: 2, Nombre: "LAB-1", Mantenimiento: true, Activo: true}},
		}},
		&gestionStub{gestion: &models.Gestion{ID: 1, Anio: 2025, Semestre: "II", Activo: true}},
		invalidator,
		nil,
		nil,
	)
	return svc, repo, invalidator
}

func TestHorarioCrear(t *testing.T) {
	svc, repo, invalidator := newHorarioFixture()

	horario, err := svc.Crear(context.Background(), CrearHorarioRequest{
		IDAsignacion: 3, IDAula: 1, IDDia: 1, IDBloque: 2, IDTipoClase: 1,
	})

	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Equal(t, int64(1), horario.IDAula)
	assert.Equal(t, 1, invalidator.llamadas)
}

func TestHorarioCrearAsignacionInactiva(t *testing.T) {
	svc, repo, _ := newHorarioFixture()

	_, err := svc.Crear(context.Background(), CrearHorarioRequest{
		IDAsignacion: 4, IDAula: 1, IDDia: 1, IDBloque: 2, IDTipoClase: 1,
	})

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Empty(t, repo.created)
}

func TestHorarioCrearAulaEnMantenimiento(t *testing.T) {
	svc, repo, _ := newHorarioFixture()

	_, err := svc.Crear(context.Background(), CrearHorarioRequest{
		IDAsignacion: 3, IDAula: 2, IDDia: 1, IDBloque: 2, IDTipoClase: 1,
	})

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Empty(t, repo.created)
}

func TestHorarioCrearAulaOcupada(t *testing.T) {
	svc, repo, _ := newHorarioFixture()
	repo.aulaOcupada = true

	_, err := svc.Crear(context.Background(), CrearHorarioRequest{
		IDAsignacion: 3, IDAula: 1, IDDia: 1, IDBloque: 2, IDTipoClase: 1,
	})

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestHorarioCrearDocenteOcupado(t *testing.T) {
	svc, repo, _ := newHorarioFixture()
	repo.docenteOcupado = true

	_, err := svc.Crear(context.Background(), CrearHorarioRequest{
		IDAsignacion: 3, IDAula: 1, IDDia: 1, IDBloque: 2, IDTipoClase: 1,
	})

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestHorarioCrearDiaInexistente(t *testing.T) {
	svc, _, _ := newHorarioFixture()

	_, err := svc.Crear(context.Background(), CrearHorarioRequest{
		IDAsignacion: 3, IDAula: 1, IDDia: 7, IDBloque: 2, IDTipoClase: 1,
	})

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestHorarioDesactivarInvalidaCache(t *testing.T) {
	svc, repo, invalidator := newHorarioFixture()

	err := svc.Desactivar(context.Background(), 8)

	require.NoError(t, err)
	assert.Equal(t, []int64{8}, repo.desactivados)
	assert.Equal(t, 1, invalidator.llamadas)
}

func TestHorarioDesactivarInexistente(t *testing.T) {
	svc, _, invalidator := newHorarioFixture()

	err := svc.Desactivar(context.Background(), 99)

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Zero(t, invalidator.llamadas)
}

func TestHorarioListByDocenteSinGestionActiva(t *testing.T) {
	repo := &horarioRepoStub{}
	svc := NewHorarioService(
		repo,
		&asignacionLookupStub{},
		&aulaLookupStub{},
		&gestionStub{},
		&invalidatorStub{},
		nil,
		nil,
	)

	_, err := svc.ListByDocente(context.Background(), 5)

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNoActivePeriod))
}
