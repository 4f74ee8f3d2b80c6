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

// MateriaRepository handles persistence for the subject catalogue.
type MateriaRepository struct {
	db *sqlx.DB
}

// NewMateriaRepository constructs the repository.
func NewMateriaRepository(db *sqlx.DB) *MateriaRepository {
	return &MateriaRepository{db: db}
}

func (r *MateriaRepository) q(ctx context.Context) sqlx.ExtContext {
	return database.Queryer(ctx, r.db)
}

// List returns subjects ordered by sigla. Inactive rows are included only
// when incluirInactivas is set.
func (r *MateriaRepository) List(ctx context.Context, incluirInactivas bool) ([]models.Materia, error) {
	query := `SELECT id_materia, sigla, nombre, activo, fecha_creacion FROM materia`
	if !incluirInactivas {
		query += ` WHERE activo = TRUE`
	}
	query += ` ORDER BY sigla`

	var materias []models.Materia
	if err := sqlx.SelectContext(ctx, r.q(ctx), &materias, query); err != nil {
		return nil, fmt.Errorf("list materias: %w", err)
	}
	return materias, nil
}

// FindByID loads one subject.
func (r *MateriaRepository) FindByID(ctx context.Context, id int64) (*models.Materia, error) {
	const query = `SELECT id_materia, sigla, nombre, activo, fecha_creacion FROM materia WHERE id_materia = $1`
	var materia models.Materia
	if err := sqlx.GetContext(ctx, r.q(ctx), &materia, query, id); err != nil {
		return nil, err
	}
	return &materia, nil
}

// ExistsBySigla checks sigla uniqueness optionally excluding one subject.
func (r *MateriaRepository) ExistsBySigla(ctx context.Context, sigla string, excludeID int64) (bool, error) {
	base := "SELECT 1 FROM materia WHERE sigla = $1"
	args := []interface{}{sigla}
	if excludeID > 0 {
		base += " AND id_materia <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := sqlx.GetContext(ctx, r.q(ctx), &exists, base+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check materia sigla: %w", err)
	}
	return true, nil
}

// Create inserts a new subject.
func (r *MateriaRepository) Create(ctx context.Context, materia *models.Materia) error {
	materia.Activo = true
	materia.FechaCreacion = time.Now().UTC()

	const query = `INSERT INTO materia (sigla, nombre, activo, fecha_creacion) VALUES ($1, $2, $3, $4) RETURNING id_materia`
	row := r.q(ctx).QueryRowxContext(ctx, query, materia.Sigla, materia.Nombre, materia.Activo, materia.FechaCreacion)
	if err := row.Scan(&materia.ID); err != nil {
		return fmt.Errorf("create materia: %w", err)
	}
	return nil
}

// Update modifies an existing subject.
func (r *MateriaRepository) Update(ctx context.Context, materia *models.Materia) error {
	const query = `UPDATE materia SET sigla = $1, nombre = $2, activo = $3 WHERE id_materia = $4`
	result, err := r.q(ctx).ExecContext(ctx, query, materia.Sigla, materia.Nombre, materia.Activo, materia.ID)
	if err != nil {
		return fmt.Errorf("update materia: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated materia rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Desactivar soft-deletes a subject.
func (r *MateriaRepository) Desactivar(ctx context.Context, id int64) error {
	const query = `UPDATE materia SET activo = FALSE WHERE id_materia = $1 AND activo = TRUE`
	result, err := r.q(ctx).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("desactivar materia: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deactivated materia rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// TieneMateriaGruposActivos reports whether any active materia_grupo still
// references the subject. Active tuples block deactivation.
func (r *MateriaRepository) TieneMateriaGruposActivos(ctx context.Context, id int64) (bool, error) {
	const query = `SELECT 1 FROM materia_grupo WHERE id_materia = $1 AND activo = TRUE LIMIT 1`
	var exists int
	if err := sqlx.GetContext(ctx, r.q(ctx), &exists, query, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check materia en uso: %w", err)
	}
	return true, nil
}
