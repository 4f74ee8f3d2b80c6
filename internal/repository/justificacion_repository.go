package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	"github.com/jcalderon-dev/sigha-api/pkg/database"
)

// JustificacionRepository handles persistence for absence justifications.
type JustificacionRepository struct {
	db *sqlx.DB
}

// NewJustificacionRepository constructs the repository.
func NewJustificacionRepository(db *sqlx.DB) *JustificacionRepository {
	return &JustificacionRepository{db: db}
}

func (r *JustificacionRepository) q(ctx context.Context) sqlx.ExtContext {
	return database.Queryer(ctx, r.db)
}

// RunInTx executes fn inside one transaction.
func (r *JustificacionRepository) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return database.RunInTx(ctx, r.db, fn)
}

const justificacionColumns = `id_justificacion, id_asistencia, motivo, estado_revision, comentario_revision, revisado_por, fecha_revision, fecha_creacion`

// ListPendientes returns justifications awaiting review, oldest first.
func (r *JustificacionRepository) ListPendientes(ctx context.Context) ([]models.Justificacion, error) {
	query := fmt.Sprintf("SELECT %s FROM justificacion WHERE estado_revision = $1 ORDER BY fecha_creacion", justificacionColumns)
	var justificaciones []models.Justificacion
	if err := sqlx.SelectContext(ctx, r.q(ctx), &justificaciones, query, models.JustificacionPendiente); err != nil {
		return nil, fmt.Errorf("list justificaciones pendientes: %w", err)
	}
	return justificaciones, nil
}

// ListByAsistencia returns the justifications filed against one attendance row.
func (r *JustificacionRepository) ListByAsistencia(ctx context.Context, idAsistencia int64) ([]models.Justificacion, error) {
	query := fmt.Sprintf("SELECT %s FROM justificacion WHERE id_asistencia = $1 ORDER BY fecha_creacion DESC", justificacionColumns)
	var justificaciones []models.Justificacion
	if err := sqlx.SelectContext(ctx, r.q(ctx), &justificaciones, query, idAsistencia); err != nil {
		return nil, fmt.Errorf("list justificaciones: %w", err)
	}
	return justificaciones, nil
}

// FindByID loads one justification.
func (r *JustificacionRepository) FindByID(ctx context.Context, id int64) (*models.Justificacion, error) {
	query := fmt.Sprintf("SELECT %s FROM justificacion WHERE id_justificacion = $1", justificacionColumns)
	var justificacion models.Justificacion
	if err := sqlx.GetContext(ctx, r.q(ctx), &justificacion, query, id); err != nil {
		return nil, err
	}
	return &justificacion, nil
}

// ExistePendiente reports whether the attendance row already has a pending
// justification. Only one may be open at a time.
func (r *JustificacionRepository) ExistePendiente(ctx context.Context, idAsistencia int64) (bool, error) {
	const query = `SELECT 1 FROM justificacion WHERE id_asistencia = $1 AND estado_revision = $2 LIMIT 1`
	var exists int
	if err := sqlx.GetContext(ctx, r.q(ctx), &exists, query, idAsistencia, models.JustificacionPendiente); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check justificacion pendiente: %w", err)
	}
	return true, nil
}

// Create files a new pending justification.
func (r *JustificacionRepository) Create(ctx context.Context, justificacion *models.Justificacion) error {
	justificacion.EstadoRevision = models.JustificacionPendiente
	justificacion.FechaCreacion = time.Now().UTC()

	const query = `INSERT INTO justificacion (id_asistencia, motivo, estado_revision, fecha_creacion)
VALUES ($1, $2, $3, $4) RETURNING id_justificacion`
	row := r.q(ctx).QueryRowxContext(ctx, query,
		justificacion.IDAsistencia, justificacion.Motivo, justificacion.EstadoRevision, justificacion.FechaCreacion)
	if err := row.Scan(&justificacion.ID); err != nil {
		return fmt.Errorf("create justificacion: %w", err)
	}
	return nil
}

// Revisar records the reviewer's decision on a pending justification. Rows
// already reviewed are left untouched and reported via sql.ErrNoRows.
func (r *JustificacionRepository) Revisar(ctx context.Context, id int64, estado string, comentario *string, revisadoPor string) error {
	const query = `UPDATE justificacion
SET estado_revision = $1, comentario_revision = $2, revisado_por = $3, fecha_revision = $4
WHERE id_justificacion = $5 AND estado_revision = $6`
	result, err := r.q(ctx).ExecContext(ctx, query, estado, comentario, revisadoPor, time.Now().UTC(), id, models.JustificacionPendiente)
	if err != nil {
		return fmt.Errorf("revisar justificacion: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check reviewed justificacion rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
