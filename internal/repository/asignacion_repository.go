package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	"github.com/jcalderon-dev/sigha-api/pkg/database"
)

// AsignacionRepository persists docente <-> materia-grupo assignments. Reads
// used by the assignment validator honour the context transaction installed
// by RunInTx so check-then-write sequences stay atomic.
type AsignacionRepository struct {
	db *sqlx.DB
}

// NewAsignacionRepository constructs the repository.
func NewAsignacionRepository(db *sqlx.DB) *AsignacionRepository {
	return &AsignacionRepository{db: db}
}

func (r *AsignacionRepository) q(ctx context.Context) sqlx.ExtContext {
	return database.Queryer(ctx, r.db)
}

// RunInTx executes fn inside one transaction.
func (r *AsignacionRepository) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return database.RunInTx(ctx, r.db, fn)
}

const asignacionDetalleColumns = `ad.id_asignacion_docente, ad.cod_docente, ad.id_materia_grupo, ad.hrs_asignadas, ad.activo, ad.fecha_asignacion, ad.fecha_modificacion,
       d.nombre_completo AS docente_nombre, m.sigla AS materia_sigla, m.nombre AS materia_nombre, g.nombre AS grupo_nombre,
       ge.semestre AS gestion_semestre, ge.anio AS gestion_anio`

const asignacionDetalleJoins = `FROM asignacion_docente ad
JOIN docente d ON d.cod_docente = ad.cod_docente
JOIN materia_grupo mg ON mg.id_materia_grupo = ad.id_materia_grupo
JOIN materia m ON m.id_materia = mg.id_materia
JOIN grupo g ON g.id_grupo = mg.id_grupo
JOIN gestion ge ON ge.id_gestion = mg.id_gestion`

// List returns active assignments enriched for display.
func (r *AsignacionRepository) List(ctx context.Context, filter models.AsignacionFilter) ([]models.AsignacionDetalle, error) {
	where := []string{"ad.activo = TRUE"}
	args := []interface{}{}
	if filter.IDGestion != nil {
		where = append(where, fmt.Sprintf("mg.id_gestion = $%d", len(args)+1))
		args = append(args, *filter.IDGestion)
	}
	if filter.CodDocente != nil {
		where = append(where, fmt.Sprintf("ad.cod_docente = $%d", len(args)+1))
		args = append(args, *filter.CodDocente)
	}

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY ad.fecha_asignacion DESC",
		asignacionDetalleColumns, asignacionDetalleJoins, strings.Join(where, " AND "))

	var asignaciones []models.AsignacionDetalle
	if err := sqlx.SelectContext(ctx, r.q(ctx), &asignaciones, query, args...); err != nil {
		return nil, fmt.Errorf("list asignaciones: %w", err)
	}
	return asignaciones, nil
}

// FindByID loads one assignment row regardless of active flag.
func (r *AsignacionRepository) FindByID(ctx context.Context, id int64) (*models.AsignacionDocente, error) {
	const query = `SELECT id_asignacion_docente, cod_docente, id_materia_grupo, hrs_asignadas, activo, fecha_asignacion, fecha_modificacion
FROM asignacion_docente WHERE id_asignacion_docente = $1`
	var asignacion models.AsignacionDocente
	if err := sqlx.GetContext(ctx, r.q(ctx), &asignacion, query, id); err != nil {
		return nil, err
	}
	return &asignacion, nil
}

// FindDetalleByID loads one assignment with display fields.
func (r *AsignacionRepository) FindDetalleByID(ctx context.Context, id int64) (*models.AsignacionDetalle, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE ad.id_asignacion_docente = $1", asignacionDetalleColumns, asignacionDetalleJoins)
	var detalle models.AsignacionDetalle
	if err := sqlx.GetContext(ctx, r.q(ctx), &detalle, query, id); err != nil {
		return nil, err
	}
	return &detalle, nil
}

// ExisteAsignacion reports whether an active row already binds the pair.
func (r *AsignacionRepository) ExisteAsignacion(ctx context.Context, codDocente, idMateriaGrupo int64) (bool, error) {
	const query = `SELECT 1 FROM asignacion_docente WHERE cod_docente = $1 AND id_materia_grupo = $2 AND activo = TRUE LIMIT 1`
	var exists int
	if err := sqlx.GetContext(ctx, r.q(ctx), &exists, query, codDocente, idMateriaGrupo); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check asignacion duplicada: %w", err)
	}
	return true, nil
}

// MateriaGrupoTieneDocente reports whether any active row owns the group.
func (r *AsignacionRepository) MateriaGrupoTieneDocente(ctx context.Context, idMateriaGrupo int64) (bool, error) {
	const query = `SELECT 1 FROM asignacion_docente WHERE id_materia_grupo = $1 AND activo = TRUE LIMIT 1`
	var exists int
	if err := sqlx.GetContext(ctx, r.q(ctx), &exists, query, idMateriaGrupo); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check materia-grupo asignada: %w", err)
	}
	return true, nil
}

// HorasAsignadas sums active assigned hours for a docente within a gestión.
// A docente with no assignments yields 0.
func (r *AsignacionRepository) HorasAsignadas(ctx context.Context, codDocente, idGestion int64) (int, error) {
	const query = `SELECT COALESCE(SUM(ad.hrs_asignadas), 0)
FROM asignacion_docente ad
JOIN materia_grupo mg ON mg.id_materia_grupo = ad.id_materia_grupo
WHERE ad.cod_docente = $1 AND ad.activo = TRUE AND mg.id_gestion = $2`
	var total int
	if err := sqlx.GetContext(ctx, r.q(ctx), &total, query, codDocente, idGestion); err != nil {
		return 0, fmt.Errorf("sum horas asignadas: %w", err)
	}
	return total, nil
}

// Create inserts a new active assignment.
func (r *AsignacionRepository) Create(ctx context.Context, asignacion *models.AsignacionDocente) error {
	now := time.Now().UTC()
	asignacion.Activo = true
	asignacion.FechaAsignacion = now
	asignacion.FechaModificacion = now

	const query = `INSERT INTO asignacion_docente (cod_docente, id_materia_grupo, hrs_asignadas, activo, fecha_asignacion, fecha_modificacion)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id_asignacion_docente`
	row := r.q(ctx).QueryRowxContext(ctx, query,
		asignacion.CodDocente, asignacion.IDMateriaGrupo, asignacion.HrsAsignadas,
		asignacion.Activo, asignacion.FechaAsignacion, asignacion.FechaModificacion)
	if err := row.Scan(&asignacion.ID); err != nil {
		return fmt.Errorf("create asignacion: %w", err)
	}
	return nil
}

// ActualizarHoras updates the assigned hours of one row.
func (r *AsignacionRepository) ActualizarHoras(ctx context.Context, id int64, hrs int) error {
	const query = `UPDATE asignacion_docente SET hrs_asignadas = $1, fecha_modificacion = $2 WHERE id_asignacion_docente = $3`
	result, err := r.q(ctx).ExecContext(ctx, query, hrs, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update horas asignadas: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated asignacion rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Desactivar soft-deletes an assignment. Rows are never removed.
func (r *AsignacionRepository) Desactivar(ctx context.Context, id int64) error {
	const query = `UPDATE asignacion_docente SET activo = FALSE, fecha_modificacion = $1 WHERE id_asignacion_docente = $2 AND activo = TRUE`
	result, err := r.q(ctx).ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("desactivar asignacion: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deactivated asignacion rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
