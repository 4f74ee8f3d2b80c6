package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcalderon-dev/sigha-api/internal/models"
)

func TestHorarioRepositoryAulasOcupadas(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewHorarioRepository(db)

	rows := sqlmock.NewRows([]string{"id_aula"}).AddRow(int64(1)).AddRow(int64(3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT id_aula FROM horario_clase WHERE id_dia = $1 AND id_bloque_horario = $2 AND activo = TRUE")).
		WithArgs(int64(2), int64(4)).
		WillReturnRows(rows)

	ids, err := repo.AulasOcupadas(context.Background(), 2, 4)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHorarioRepositoryAulaOcupada(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewHorarioRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM horario_clase WHERE id_aula = $1 AND id_dia = $2 AND id_bloque_horario = $3 AND activo = TRUE LIMIT 1")).
		WithArgs(int64(1), int64(2), int64(4)).
		WillReturnError(sql.ErrNoRows)

	ocupada, err := repo.AulaOcupada(context.Background(), 1, 2, 4)
	require.NoError(t, err)
	assert.False(t, ocupada)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHorarioRepositoryDocenteOcupado(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewHorarioRepository(db)

	mock.ExpectQuery("JOIN asignacion_docente ad ON ad.id_asignacion_docente = hc.id_asignacion_docente").
		WithArgs(int64(10), int64(2), int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	ocupado, err := repo.DocenteOcupado(context.Background(), 10, 2, 4)
	require.NoError(t, err)
	assert.True(t, ocupado)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHorarioRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewHorarioRepository(db)

	mock.ExpectQuery("INSERT INTO horario_clase").
		WithArgs(int64(7), int64(1), int64(2), int64(4), int64(1), true, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id_horario_clase"}).AddRow(int64(55)))

	horario := &models.HorarioClase{IDAsignacion: 7, IDAula: 1, IDDia: 2, IDBloque: 4, IDTipoClase: 1}
	require.NoError(t, repo.Create(context.Background(), horario))
	assert.Equal(t, int64(55), horario.ID)
	assert.True(t, horario.Activo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHorarioRepositoryDesactivarPorAsignacion(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewHorarioRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE horario_clase SET activo = FALSE WHERE id_asignacion_docente = $1 AND activo = TRUE")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := repo.DesactivarPorAsignacion(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}
