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

// GrupoRepository handles persistence for student groups.
type GrupoRepository struct {
	db *sqlx.DB
}

// NewGrupoRepository constructs the repository.
func NewGrupoRepository(db *sqlx.DB) *GrupoRepository {
	return &GrupoRepository{db: db}
}

func (r *GrupoRepository) q(ctx context.Context) sqlx.ExtContext {
	return database.Queryer(ctx, r.db)
}

const grupoColumns = `id_grupo, nombre, descripcion, cupos, capacidad_maxima, activo, fecha_creacion, fecha_modificacion`

// List returns groups ordered by name.
func (r *GrupoRepository) List(ctx context.Context, incluirInactivos bool) ([]models.Grupo, error) {
	query := fmt.Sprintf("SELECT %s FROM grupo", grupoColumns)
	if !incluirInactivos {
		query += " WHERE activo = TRUE"
	}
	query += " ORDER BY nombre"

	var grupos []models.Grupo
	if err := sqlx.SelectContext(ctx, r.q(ctx), &grupos, query); err != nil {
		return nil, fmt.Errorf("list grupos: %w", err)
	}
	return grupos, nil
}

// FindByID loads one group.
func (r *GrupoRepository) FindByID(ctx context.Context, id int64) (*models.Grupo, error) {
	query := fmt.Sprintf("SELECT %s FROM grupo WHERE id_grupo = $1", grupoColumns)
	var grupo models.Grupo
	if err := sqlx.GetContext(ctx, r.q(ctx), &grupo, query, id); err != nil {
		return nil, err
	}
	return &grupo, nil
}

// ExistsByNombre checks group-name uniqueness optionally excluding one group.
func (r *GrupoRepository) ExistsByNombre(ctx context.Context, nombre string, excludeID int64) (bool, error) {
	base := "SELECT 1 FROM grupo WHERE nombre = $1"
	args := []interface{}{nombre}
	if excludeID > 0 {
		base += " AND id_grupo <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := sqlx.GetContext(ctx, r.q(ctx), &exists, base+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check grupo nombre: %w", err)
	}
	return true, nil
}

// Create inserts a new group.
func (r *GrupoRepository) Create(ctx context.Context, grupo *models.Grupo) error {
	now := time.Now().UTC()
	grupo.Activo = true
	grupo.FechaCreacion = now
	grupo.FechaModificacion = now

	const query = `INSERT INTO grupo (nombre, descripcion, cupos, capacidad_maxima, activo, fecha_creacion, fecha_modificacion)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id_grupo`
	row := r.q(ctx).QueryRowxContext(ctx, query,
		grupo.Nombre, grupo.Descripcion, grupo.Cupos, grupo.CapacidadMaxima, grupo.Activo, grupo.FechaCreacion, grupo.FechaModificacion)
	if err := row.Scan(&grupo.ID); err != nil {
		return fmt.Errorf("create grupo: %w", err)
	}
	return nil
}

// Update modifies an existing group.
func (r *GrupoRepository) Update(ctx context.Context, grupo *models.Grupo) error {
	grupo.FechaModificacion = time.Now().UTC()
	const query = `UPDATE grupo SET nombre = $1, descripcion = $2, cupos = $3, capacidad_maxima = $4, activo = $5, fecha_modificacion = $6 WHERE id_grupo = $7`
	result, err := r.q(ctx).ExecContext(ctx, query,
		grupo.Nombre, grupo.Descripcion, grupo.Cupos, grupo.CapacidadMaxima, grupo.Activo, grupo.FechaModificacion, grupo.ID)
	if err != nil {
		return fmt.Errorf("update grupo: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated grupo rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Desactivar soft-deletes a group.
func (r *GrupoRepository) Desactivar(ctx context.Context, id int64) error {
	const query = `UPDATE grupo SET activo = FALSE, fecha_modificacion = $1 WHERE id_grupo = $2 AND activo = TRUE`
	result, err := r.q(ctx).ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("desactivar grupo: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deactivated grupo rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// TieneMateriaGruposActivos reports whether any active materia_grupo still
// references the group.
func (r *GrupoRepository) TieneMateriaGruposActivos(ctx context.Context, id int64) (bool, error) {
	const query = `SELECT 1 FROM materia_grupo WHERE id_grupo = $1 AND activo = TRUE LIMIT 1`
	var exists int
	if err := sqlx.GetContext(ctx, r.q(ctx), &exists, query, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check grupo en uso: %w", err)
	}
	return true, nil
}
