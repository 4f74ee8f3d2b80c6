package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcalderon-dev/sigha-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAsignacionRepositoryExisteAsignacion(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAsignacionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM asignacion_docente WHERE cod_docente = $1 AND id_materia_grupo = $2 AND activo = TRUE LIMIT 1")).
		WithArgs(int64(10), int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExisteAsignacion(context.Background(), 10, 5)
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM asignacion_docente WHERE cod_docente = $1 AND id_materia_grupo = $2 AND activo = TRUE LIMIT 1")).
		WithArgs(int64(10), int64(6)).
		WillReturnError(sql.ErrNoRows)

	exists, err = repo.ExisteAsignacion(context.Background(), 10, 6)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAsignacionRepositoryHorasAsignadas(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAsignacionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(ad.hrs_asignadas), 0)
FROM asignacion_docente ad
JOIN materia_grupo mg ON mg.id_materia_grupo = ad.id_materia_grupo
WHERE ad.cod_docente = $1 AND ad.activo = TRUE AND mg.id_gestion = $2`)).
		WithArgs(int64(10), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(35))

	total, err := repo.HorasAsignadas(context.Background(), 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 35, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAsignacionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAsignacionRepository(db)

	mock.ExpectQuery("INSERT INTO asignacion_docente").
		WithArgs(int64(10), int64(5), 6, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id_asignacion_docente"}).AddRow(int64(99)))

	asignacion := &models.AsignacionDocente{
		CodDocente:     10,
		IDMateriaGrupo: 5,
		HrsAsignadas:   6,
	}
	require.NoError(t, repo.Create(context.Background(), asignacion))
	assert.Equal(t, int64(99), asignacion.ID)
	assert.True(t, asignacion.Activo)
	assert.False(t, asignacion.FechaAsignacion.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAsignacionRepositoryDesactivarNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAsignacionRepository(db)

	mock.ExpectExec("UPDATE asignacion_docente SET activo = FALSE").
		WithArgs(sqlmock.AnyArg(), int64(123)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Desactivar(context.Background(), 123)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAsignacionRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAsignacionRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id_asignacion_docente", "cod_docente", "id_materia_grupo", "hrs_asignadas", "activo", "fecha_asignacion", "fecha_modificacion",
		"docente_nombre", "materia_sigla", "materia_nombre", "grupo_nombre", "gestion_semestre", "gestion_anio",
	}).AddRow(int64(1), int64(10), int64(5), 6, true, now, now, "Juan Perez", "INF-101", "Programación I", "SA", "II", 2025)

	mock.ExpectQuery("SELECT ad.id_asignacion_docente, ad.cod_docente").
		WithArgs(int64(1)).
		WillReturnRows(rows)

	gestion := int64(1)
	asignaciones, err := repo.List(context.Background(), models.AsignacionFilter{IDGestion: &gestion})
	require.NoError(t, err)
	require.Len(t, asignaciones, 1)
	assert.Equal(t, "Juan Perez", asignaciones[0].DocenteNombre)
	assert.Equal(t, 6, asignaciones[0].HrsAsignadas)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAsignacionRepositoryRunInTxCommitsChecksAndWrite(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAsignacionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM asignacion_docente WHERE cod_docente = $1 AND id_materia_grupo = $2 AND activo = TRUE LIMIT 1")).
		WithArgs(int64(10), int64(5)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO asignacion_docente").
		WithArgs(int64(10), int64(5), 4, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id_asignacion_docente"}).AddRow(int64(7)))
	mock.ExpectCommit()

	err := repo.RunInTx(context.Background(), func(ctx context.Context) error {
		exists, err := repo.ExisteAsignacion(ctx, 10, 5)
		require.NoError(t, err)
		require.False(t, exists)
		return repo.Create(ctx, &models.AsignacionDocente{CodDocente: 10, IDMateriaGrupo: 5, HrsAsignadas: 4})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
