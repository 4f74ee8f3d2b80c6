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

// MateriaGrupoRepository handles persistence for materia <-> grupo tuples.
type MateriaGrupoRepository struct {
	db *sqlx.DB
}

// NewMateriaGrupoRepository constructs the repository.
func NewMateriaGrupoRepository(db *sqlx.DB) *MateriaGrupoRepository {
	return &MateriaGrupoRepository{db: db}
}

func (r *MateriaGrupoRepository) q(ctx context.Context) sqlx.ExtContext {
	return database.Queryer(ctx, r.db)
}

const materiaGrupoDetalleQuery = `SELECT mg.id_materia_grupo, mg.id_materia, mg.id_grupo, mg.id_gestion, mg.observacion, mg.activo, mg.fecha_creacion,
       m.sigla AS materia_sigla, m.nombre AS materia_nombre, g.nombre AS grupo_nombre,
       ge.semestre AS gestion_semestre, ge.anio AS gestion_anio,
       d.nombre_completo AS docente_asignado
FROM materia_grupo mg
JOIN materia m ON m.id_materia = mg.id_materia
JOIN grupo g ON g.id_grupo = mg.id_grupo
JOIN gestion ge ON ge.id_gestion = mg.id_gestion
LEFT JOIN asignacion_docente ad ON ad.id_materia_grupo = mg.id_materia_grupo AND ad.activo = TRUE
LEFT JOIN docente d ON d.cod_docente = ad.cod_docente`

// ListByGestion returns the active tuples of one gestión with display fields
// and the currently assigned teacher, if any.
func (r *MateriaGrupoRepository) ListByGestion(ctx context.Context, idGestion int64) ([]models.MateriaGrupoDetalle, error) {
	query := materiaGrupoDetalleQuery + `
WHERE mg.id_gestion = $1 AND mg.activo = TRUE
ORDER BY m.sigla, g.nombre`

	var tuplas []models.MateriaGrupoDetalle
	if err := sqlx.SelectContext(ctx, r.q(ctx), &tuplas, query, idGestion); err != nil {
		return nil, fmt.Errorf("list materia-grupos: %w", err)
	}
	return tuplas, nil
}

// FindByID loads one tuple regardless of active flag.
func (r *MateriaGrupoRepository) FindByID(ctx context.Context, id int64) (*models.MateriaGrupo, error) {
	const query = `SELECT id_materia_grupo, id_materia, id_grupo, id_gestion, observacion, activo, fecha_creacion
FROM materia_grupo WHERE id_materia_grupo = $1`
	var tupla models.MateriaGrupo
	if err := sqlx.GetContext(ctx, r.q(ctx), &tupla, query, id); err != nil {
		return nil, err
	}
	return &tupla, nil
}

// FindDetalleByID loads one tuple with display fields.
func (r *MateriaGrupoRepository) FindDetalleByID(ctx context.Context, id int64) (*models.MateriaGrupoDetalle, error) {
	query := materiaGrupoDetalleQuery + " WHERE mg.id_materia_grupo = $1"
	var detalle models.MateriaGrupoDetalle
	if err := sqlx.GetContext(ctx, r.q(ctx), &detalle, query, id); err != nil {
		return nil, err
	}
	return &detalle, nil
}

// FindActivaByID loads an active tuple. sql.ErrNoRows covers both missing and
// inactive rows so the assignment validator treats them alike. With forUpdate
// the row is locked until the surrounding transaction ends.
func (r *MateriaGrupoRepository) FindActivaByID(ctx context.Context, id int64, forUpdate bool) (*models.MateriaGrupo, error) {
	query := `SELECT id_materia_grupo, id_materia, id_grupo, id_gestion, observacion, activo, fecha_creacion
FROM materia_grupo WHERE id_materia_grupo = $1 AND activo = TRUE`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var tupla models.MateriaGrupo
	if err := sqlx.GetContext(ctx, r.q(ctx), &tupla, query, id); err != nil {
		return nil, err
	}
	return &tupla, nil
}

// ExisteTupla reports whether an active tuple already binds the triple.
func (r *MateriaGrupoRepository) ExisteTupla(ctx context.Context, idMateria, idGrupo, idGestion int64) (bool, error) {
	const query = `SELECT 1 FROM materia_grupo WHERE id_materia = $1 AND id_grupo = $2 AND id_gestion = $3 AND activo = TRUE LIMIT 1`
	var exists int
	if err := sqlx.GetContext(ctx, r.q(ctx), &exists, query, idMateria, idGrupo, idGestion); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check materia-grupo duplicado: %w", err)
	}
	return true, nil
}

// Create inserts a new active tuple.
func (r *MateriaGrupoRepository) Create(ctx context.Context, tupla *models.MateriaGrupo) error {
	tupla.Activo = true
	tupla.FechaCreacion = time.Now().UTC()

	const query = `INSERT INTO materia_grupo (id_materia, id_grupo, id_gestion, observacion, activo, fecha_creacion)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id_materia_grupo`
	row := r.q(ctx).QueryRowxContext(ctx, query,
		tupla.IDMateria, tupla.IDGrupo, tupla.IDGestion, tupla.Observacion, tupla.Activo, tupla.FechaCreacion)
	if err := row.Scan(&tupla.ID); err != nil {
		return fmt.Errorf("create materia-grupo: %w", err)
	}
	return nil
}

// Update modifies the observación of one tuple.
func (r *MateriaGrupoRepository) Update(ctx context.Context, tupla *models.MateriaGrupo) error {
	const query = `UPDATE materia_grupo SET observacion = $1 WHERE id_materia_grupo = $2`
	result, err := r.q(ctx).ExecContext(ctx, query, tupla.Observacion, tupla.ID)
	if err != nil {
		return fmt.Errorf("update materia-grupo: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated materia-grupo rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetActivo toggles the active flag of one tuple.
func (r *MateriaGrupoRepository) SetActivo(ctx context.Context, id int64, activo bool) error {
	const query = `UPDATE materia_grupo SET activo = $1 WHERE id_materia_grupo = $2 AND activo = $3`
	result, err := r.q(ctx).ExecContext(ctx, query, activo, id, !activo)
	if err != nil {
		return fmt.Errorf("set materia-grupo activo: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check toggled materia-grupo rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// TieneAsignacionActiva reports whether an active assignment owns the tuple.
func (r *MateriaGrupoRepository) TieneAsignacionActiva(ctx context.Context, id int64) (bool, error) {
	const query = `SELECT 1 FROM asignacion_docente WHERE id_materia_grupo = $1 AND activo = TRUE LIMIT 1`
	var exists int
	if err := sqlx.GetContext(ctx, r.q(ctx), &exists, query, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check materia-grupo asignado: %w", err)
	}
	return true, nil
}

// SinDocente returns the active tuples of one gestión lacking an active
// assignment, used to offer selectable groups during assignment.
func (r *MateriaGrupoRepository) SinDocente(ctx context.Context, idGestion int64) ([]models.MateriaGrupoDetalle, error) {
	query := materiaGrupoDetalleQuery + `
WHERE mg.id_gestion = $1 AND mg.activo = TRUE AND ad.id_asignacion_docente IS NULL
ORDER BY m.sigla, g.nombre`

	var tuplas []models.MateriaGrupoDetalle
	if err := sqlx.SelectContext(ctx, r.q(ctx), &tuplas, query, idGestion); err != nil {
		return nil, fmt.Errorf("list materia-grupos sin docente: %w", err)
	}
	return tuplas, nil
}
