package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcalderon-dev/sigha-api/internal/models"
)

func TestDocenteRepositoryLimiteContrato(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocenteRepository(db)

	rows := sqlmock.NewRows([]string{"cod_docente", "nombre_completo", "activo", "nombre_contrato", "hrs_maximas"}).
		AddRow(int64(10), "Juan Perez", true, "Tiempo Completo", 40)
	mock.ExpectQuery("JOIN tipo_contrato tc ON tc.id_tipo_contrato = d.id_tipo_contrato").
		WithArgs(int64(10)).
		WillReturnRows(rows)

	limite, err := repo.LimiteContrato(context.Background(), 10, false)
	require.NoError(t, err)
	assert.Equal(t, 40, limite.HrsMaximas)
	assert.True(t, limite.Activo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocenteRepositoryLimiteContratoForUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocenteRepository(db)

	rows := sqlmock.NewRows([]string{"cod_docente", "nombre_completo", "activo", "nombre_contrato", "hrs_maximas"}).
		AddRow(int64(10), "Juan Perez", true, "Medio Tiempo", 20)
	mock.ExpectQuery("FOR UPDATE OF d").
		WithArgs(int64(10)).
		WillReturnRows(rows)

	limite, err := repo.LimiteContrato(context.Background(), 10, true)
	require.NoError(t, err)
	assert.Equal(t, 20, limite.HrsMaximas)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocenteRepositoryLimiteContratoMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocenteRepository(db)

	mock.ExpectQuery("JOIN tipo_contrato tc").
		WithArgs(int64(77)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.LimiteContrato(context.Background(), 77, false)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocenteRepositoryListWithSearch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocenteRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"cod_docente", "nombre_completo", "email", "id_tipo_contrato", "activo", "fecha_creacion", "fecha_modificacion"}).
		AddRow(int64(10), "Juan Perez", "jperez@uni.edu.bo", int64(1), true, now, now)
	mock.ExpectQuery("SELECT cod_docente, nombre_completo, email").
		WithArgs("%perez%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("%perez%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	docentes, total, err := repo.List(context.Background(), models.DocenteFilter{Search: "perez"})
	require.NoError(t, err)
	assert.Len(t, docentes, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocenteRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocenteRepository(db)

	mock.ExpectQuery("INSERT INTO docente").
		WithArgs("Ana Rojas", "arojas@uni.edu.bo", int64(2), true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"cod_docente"}).AddRow(int64(11)))

	docente := &models.Docente{NombreCompleto: "Ana Rojas", Email: "arojas@uni.edu.bo", IDTipoContrato: 2}
	require.NoError(t, repo.Create(context.Background(), docente))
	assert.Equal(t, int64(11), docente.CodDocente)
	assert.NoError(t, mock.ExpectationsWereMet())
}
