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

// GestionRepository handles persistence for academic periods.
type GestionRepository struct {
	db *sqlx.DB
}

// NewGestionRepository constructs the repository.
func NewGestionRepository(db *sqlx.DB) *GestionRepository {
	return &GestionRepository{db: db}
}

func (r *GestionRepository) q(ctx context.Context) sqlx.ExtContext {
	return database.Queryer(ctx, r.db)
}

// List returns all periods, newest first.
func (r *GestionRepository) List(ctx context.Context) ([]models.Gestion, error) {
	const query = `SELECT id_gestion, anio, semestre, activo, fecha_creacion FROM gestion ORDER BY anio DESC, semestre DESC`
	var gestiones []models.Gestion
	if err := sqlx.SelectContext(ctx, r.q(ctx), &gestiones, query); err != nil {
		return nil, fmt.Errorf("list gestiones: %w", err)
	}
	return gestiones, nil
}

// FindByID loads one period.
func (r *GestionRepository) FindByID(ctx context.Context, id int64) (*models.Gestion, error) {
	const query = `SELECT id_gestion, anio, semestre, activo, fecha_creacion FROM gestion WHERE id_gestion = $1`
	var gestion models.Gestion
	if err := sqlx.GetContext(ctx, r.q(ctx), &gestion, query, id); err != nil {
		return nil, err
	}
	return &gestion, nil
}

// FindActiva is the single accessor for the active period. Callers translate
// sql.ErrNoRows into the NO_ACTIVE_PERIOD rejection.
func (r *GestionRepository) FindActiva(ctx context.Context) (*models.Gestion, error) {
	const query = `SELECT id_gestion, anio, semestre, activo, fecha_creacion FROM gestion WHERE activo = TRUE LIMIT 1`
	var gestion models.Gestion
	if err := sqlx.GetContext(ctx, r.q(ctx), &gestion, query); err != nil {
		return nil, err
	}
	return &gestion, nil
}

// Create inserts a new, initially inactive, period.
func (r *GestionRepository) Create(ctx context.Context, gestion *models.Gestion) error {
	gestion.FechaCreacion = time.Now().UTC()
	const query = `INSERT INTO gestion (anio, semestre, activo, fecha_creacion) VALUES ($1, $2, $3, $4) RETURNING id_gestion`
	row := r.q(ctx).QueryRowxContext(ctx, query, gestion.Anio, gestion.Semestre, gestion.Activo, gestion.FechaCreacion)
	if err := row.Scan(&gestion.ID); err != nil {
		return fmt.Errorf("create gestion: %w", err)
	}
	return nil
}

// ExisteGestion checks uniqueness of (anio, semestre).
func (r *GestionRepository) ExisteGestion(ctx context.Context, anio int, semestre string) (bool, error) {
	const query = `SELECT 1 FROM gestion WHERE anio = $1 AND semestre = $2 LIMIT 1`
	var exists int
	if err := sqlx.GetContext(ctx, r.q(ctx), &exists, query, anio, semestre); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check gestion: %w", err)
	}
	return true, nil
}

// Activar marks the provided period as active and deactivates the rest in one
// transaction, keeping the "exactly one active gestión" invariant.
func (r *GestionRepository) Activar(ctx context.Context, id int64) error {
	return database.RunInTx(ctx, r.db, func(ctx context.Context) error {
		if _, err := r.q(ctx).ExecContext(ctx, `UPDATE gestion SET activo = FALSE WHERE activo = TRUE AND id_gestion <> $1`, id); err != nil {
			return fmt.Errorf("desactivar otras gestiones: %w", err)
		}
		result, err := r.q(ctx).ExecContext(ctx, `UPDATE gestion SET activo = TRUE WHERE id_gestion = $1`, id)
		if err != nil {
			return fmt.Errorf("activar gestion: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("check activated gestion rows: %w", err)
		}
		if affected == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
}
