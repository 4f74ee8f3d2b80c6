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

func TestGestionRepositoryFindActiva(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGestionRepository(db)

	rows := sqlmock.NewRows([]string{"id_gestion", "anio", "semestre", "activo", "fecha_creacion"}).
		AddRow(int64(3), 2025, "II", true, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id_gestion, anio, semestre, activo, fecha_creacion FROM gestion WHERE activo = TRUE LIMIT 1")).
		WillReturnRows(rows)

	gestion, err := repo.FindActiva(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), gestion.ID)
	assert.Equal(t, "II", gestion.Semestre)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGestionRepositoryFindActivaNone(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGestionRepository(db)

	mock.ExpectQuery("SELECT id_gestion, anio, semestre").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindActiva(context.Background())
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGestionRepositoryActivar(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGestionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE gestion SET activo = FALSE WHERE activo = TRUE AND id_gestion <> $1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE gestion SET activo = TRUE WHERE id_gestion = $1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Activar(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGestionRepositoryActivarMissingRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGestionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE gestion SET activo = FALSE").
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE gestion SET activo = TRUE").
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Activar(context.Background(), 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGestionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGestionRepository(db)

	mock.ExpectQuery("INSERT INTO gestion").
		WithArgs(2026, "I", false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id_gestion"}).AddRow(int64(4)))

	gestion := &models.Gestion{Anio: 2026, Semestre: "I"}
	require.NoError(t, repo.Create(context.Background(), gestion))
	assert.Equal(t, int64(4), gestion.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
