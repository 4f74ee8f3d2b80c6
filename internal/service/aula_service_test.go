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

type aulaRepoStub struct {
	nombreExiste   bool
	conHorarios    bool
	created        []*models.Aula
	desactivadas   []int64
	reactivadas    []int64
	mantenimientos map[int64]bool
	transacciones  int
}

func (s *aulaRepoStub) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	s.transacciones++
	return fn(ctx)
}

func (s *aulaRepoStub) List(ctx context.Context, filter models.AulaFilter) ([]models.AulaDetalle, error) {
	return nil, nil
}

func (s *aulaRepoStub) FindByID(ctx context.Context, id int64) (*models.AulaDetalle, error) {
	return nil, sql.ErrNoRows
}

func (s *aulaRepoStub) ExistsByNombre(ctx context.Context, nombre string, excludeID int64) (bool, error) {
	return s.nombreExiste, nil
}

func (s *aulaRepoStub) TiposAula(ctx context.Context) ([]models.TipoAula, error) {
	return nil, nil
}

func (s *aulaRepoStub) Create(ctx context.Context, aula *models.Aula) error {
	aula.ID = int64(len(s.created) + 1)
	s.created = append(s.created, aula)
	return nil
}

func (s *aulaRepoStub) Update(ctx context.Context, aula *models.Aula) error {
	return nil
}

func (s *aulaRepoStub) SetMantenimiento(ctx context.Context, id int64, mantenimiento bool) error {
	if s.mantenimientos == nil {
		s.mantenimientos = map[int64]bool{}
	}
	s.mantenimientos[id] = mantenimiento
	return nil
}

func (s *aulaRepoStub) Desactivar(ctx context.Context, id int64) error {
	s.desactivadas = append(s.desactivadas, id)
	return nil
}

func (s *aulaRepoStub) Reactivar(ctx context.Context, id int64) error {
	if id == 99 {
		return sql.ErrNoRows
	}
	s.reactivadas = append(s.reactivadas, id)
	return nil
}

func (s *aulaRepoStub) TieneHorariosActivos(ctx context.Context, id int64) (bool, error) {
	return s.conHorarios, nil
}

func newAulaFixture() (*AulaService, *aulaRepoStub, *invalidatorStub) {
	repo := &aulaRepoStub{}
	invalidator := &invalidatorStub{}
	return NewAulaService(repo, invalidator, nil, nil), repo, invalidator
}

func TestAulaCrear(t *testing.T) {
	svc, repo, invalidator := newAulaFixture()

	aula, err := svc.Crear(context.Background(), AulaRequest{
		Nombre: "690A", Capacidad: 40, Piso: 6, IDTipoAula: 1,
	})

	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "690A", aula.Nombre)
	assert.Equal(t, 1, invalidator.llamadas)
}

func TestAulaCrearNombreDuplicado(t *testing.T) {
	svc, repo, _ := newAulaFixture()
	repo.nombreExiste = true

	_, err := svc.Crear(context.Background(), AulaRequest{
		Nombre: "690A", Capacidad: 40, IDTipoAula: 1,
	})

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Empty(t, repo.created)
}

func TestAulaDesactivarConHorariosActivos(t *testing.T) {
	svc, repo, invalidator := newAulaFixture()
	repo.conHorarios = true

	err := svc.Desactivar(context.Background(), 1)

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAulaHasActiveSchedules))
	assert.Empty(t, repo.desactivadas)
	assert.Zero(t, invalidator.llamadas)
}

func TestAulaDesactivarInvalidaCache(t *testing.T) {
	svc, repo, invalidator := newAulaFixture()

	err := svc.Desactivar(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, []int64{1}, repo.desactivadas)
	assert.Equal(t, 1, repo.transacciones)
	assert.Equal(t, 1, invalidator.llamadas)
}

func TestAulaReactivar(t *testing.T) {
	svc, repo, invalidator := newAulaFixture()

	err := svc.Reactivar(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, []int64{3}, repo.reactivadas)
	assert.Equal(t, 1, invalidator.llamadas)
}

func TestAulaReactivarInexistente(t *testing.T) {
	svc, _, invalidator := newAulaFixture()

	err := svc.Reactivar(context.Background(), 99)

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Zero(t, invalidator.llamadas)
}

func TestAulaSetMantenimientoInvalidaCache(t *testing.T) {
	svc, repo, invalidator := newAulaFixture()

	err := svc.SetMantenimiento(context.Background(), 2, true)

	require.NoError(t, err)
	assert.True(t, repo.mantenimientos[2])
	assert.Equal(t, 1, invalidator.llamadas)
}
