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

// AulaRepository handles persistence for classrooms.
type AulaRepository struct {
	db *sqlx.DB
}

// NewAulaRepository constructs the repository.
func NewAulaRepository(db *sqlx.DB) *AulaRepository {
	return &AulaRepository{db: db}
}

func (r *AulaRepository) q(ctx context.Context) sqlx.ExtContext {
	return database.Queryer(ctx, r.db)
}

// RunInTx executes fn inside one transaction.
func (r *AulaRepository) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return database.RunInTx(ctx, r.db, fn)
}

const aulaDetalleColumns = `a.id_aula, a.nombre, a.capacidad, a.piso, a.id_tipo_aula, a.mantenimiento, a.activo, a.fecha_creacion,
       ta.nombre AS tipo_aula_nombre`

const aulaDetalleJoins = `FROM aula a
LEFT JOIN tipo_aula ta ON ta.id_tipo_aula = a.id_tipo_aula`

// List returns classrooms matching the filter, ordered by piso then nombre.
func (r *AulaRepository) List(ctx context.Context, filter models.AulaFilter) ([]models.AulaDetalle, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if !filter.IncluirInactivas {
		where = append(where, "a.activo = TRUE")
	}
	if filter.SoloDisponibles {
		where = append(where, "a.mantenimiento = FALSE")
	}
	if filter.EnMantenimiento {
		where = append(where, "a.mantenimiento = TRUE")
	}
	if filter.IDTipoAula != nil {
		where = append(where, fmt.Sprintf("a.id_tipo_aula = $%d", len(args)+1))
		args = append(args, *filter.IDTipoAula)
	}

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY a.piso, a.nombre",
		aulaDetalleColumns, aulaDetalleJoins, strings.Join(where, " AND "))

	var aulas []models.AulaDetalle
	if err := sqlx.SelectContext(ctx, r.q(ctx), &aulas, query, args...); err != nil {
		return nil, fmt.Errorf("list aulas: %w", err)
	}
	return aulas, nil
}

// ListActivas returns every active classroom, the availability resolver's
// working set, ordered by piso then nombre.
func (r *AulaRepository) ListActivas(ctx context.Context) ([]models.AulaDetalle, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE a.activo = TRUE ORDER BY a.piso, a.nombre", aulaDetalleColumns, aulaDetalleJoins)
	var aulas []models.AulaDetalle
	if err := sqlx.SelectContext(ctx, r.q(ctx), &aulas, query); err != nil {
		return nil, fmt.Errorf("list aulas activas: %w", err)
	}
	return aulas, nil
}

// FindByID loads one classroom with its tipo de aula.
func (r *AulaRepository) FindByID(ctx context.Context, id int64) (*models.AulaDetalle, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE a.id_aula = $1", aulaDetalleColumns, aulaDetalleJoins)
	var aula models.AulaDetalle
	if err := sqlx.GetContext(ctx, r.q(ctx), &aula, query, id); err != nil {
		return nil, err
	}
	return &aula, nil
}

// ExistsByNombre checks classroom-name uniqueness optionally excluding one.
func (r *AulaRepository) ExistsByNombre(ctx context.Context, nombre string, excludeID int64) (bool, error) {
	base := "SELECT 1 FROM aula WHERE nombre = $1"
	args := []interface{}{nombre}
	if excludeID > 0 {
		base += " AND id_aula <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := sqlx.GetContext(ctx, r.q(ctx), &exists, base+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check aula nombre: %w", err)
	}
	return true, nil
}

// TiposAula lists classroom-type reference data.
func (r *AulaRepository) TiposAula(ctx context.Context) ([]models.TipoAula, error) {
	const query = `SELECT id_tipo_aula, nombre FROM tipo_aula ORDER BY nombre`
	var tipos []models.TipoAula
	if err := sqlx.SelectContext(ctx, r.q(ctx), &tipos, query); err != nil {
		return nil, fmt.Errorf("list tipos de aula: %w", err)
	}
	return tipos, nil
}

// Create inserts a new classroom.
func (r *AulaRepository) Create(ctx context.Context, aula *models.Aula) error {
	aula.Activo = true
	aula.FechaCreacion = time.Now().UTC()

	const query = `INSERT INTO aula (nombre, capacidad, piso, id_tipo_aula, mantenimiento, activo, fecha_creacion)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id_aula`
	row := r.q(ctx).QueryRowxContext(ctx, query,
		aula.Nombre, aula.Capacidad, aula.Piso, aula.IDTipoAula, aula.Mantenimiento, aula.Activo, aula.FechaCreacion)
	if err := row.Scan(&aula.ID); err != nil {
		return fmt.Errorf("create aula: %w", err)
	}
	return nil
}

// Update modifies an existing classroom.
func (r *AulaRepository) Update(ctx context.Context, aula *models.Aula) error {
	const query = `UPDATE aula SET nombre = $1, capacidad = $2, piso = $3, id_tipo_aula = $4, mantenimiento = $5, activo = $6 WHERE id_aula = $7`
	result, err := r.q(ctx).ExecContext(ctx, query,
		aula.Nombre, aula.Capacidad, aula.Piso, aula.IDTipoAula, aula.Mantenimiento, aula.Activo, aula.ID)
	if err != nil {
		return fmt.Errorf("update aula: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated aula rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetMantenimiento toggles the maintenance flag.
func (r *AulaRepository) SetMantenimiento(ctx context.Context, id int64, mantenimiento bool) error {
	const query = `UPDATE aula SET mantenimiento = $1 WHERE id_aula = $2`
	result, err := r.q(ctx).ExecContext(ctx, query, mantenimiento, id)
	if err != nil {
		return fmt.Errorf("set aula mantenimiento: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check aula mantenimiento rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Desactivar soft-deletes a classroom.
func (r *AulaRepository) Desactivar(ctx context.Context, id int64) error {
	const query = `UPDATE aula SET activo = FALSE WHERE id_aula = $1 AND activo = TRUE`
	result, err := r.q(ctx).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("desactivar aula: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deactivated aula rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Reactivar restores a soft-deleted classroom.
func (r *AulaRepository) Reactivar(ctx context.Context, id int64) error {
	const query = `UPDATE aula SET activo = TRUE WHERE id_aula = $1 AND activo = FALSE`
	result, err := r.q(ctx).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("reactivar aula: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check reactivated aula rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// TieneHorariosActivos reports whether active schedules still occupy the
// classroom. Such classrooms cannot be deactivated.
func (r *AulaRepository) TieneHorariosActivos(ctx context.Context, id int64) (bool, error) {
	const query = `SELECT 1 FROM horario_clase WHERE id_aula = $1 AND activo = TRUE LIMIT 1`
	var exists int
	if err := sqlx.GetContext(ctx, r.q(ctx), &exists, query, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check aula en uso: %w", err)
	}
	return true, nil
}
