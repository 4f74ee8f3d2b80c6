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

// HorarioRepository handles persistence for scheduled sessions and the
// day/time-block reference tables.
type HorarioRepository struct {
	db *sqlx.DB
}

// NewHorarioRepository constructs the repository.
func NewHorarioRepository(db *sqlx.DB) *HorarioRepository {
	return &HorarioRepository{db: db}
}

func (r *HorarioRepository) q(ctx context.Context) sqlx.ExtContext {
	return database.Queryer(ctx, r.db)
}

// RunInTx executes fn inside one transaction.
func (r *HorarioRepository) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return database.RunInTx(ctx, r.db, fn)
}

// Dias lists weekday reference data in calendar order.
func (r *HorarioRepository) Dias(ctx context.Context) ([]models.Dia, error) {
	const query = `SELECT id_dia, nombre FROM dia ORDER BY id_dia`
	var dias []models.Dia
	if err := sqlx.SelectContext(ctx, r.q(ctx), &dias, query); err != nil {
		return nil, fmt.Errorf("list dias: %w", err)
	}
	return dias, nil
}

// Bloques lists time-block reference data in chronological order.
func (r *HorarioRepository) Bloques(ctx context.Context) ([]models.BloqueHorario, error) {
	const query = `SELECT id_bloque_horario, nombre, hora_inicio, hora_fin FROM bloque_horario ORDER BY hora_inicio`
	var bloques []models.BloqueHorario
	if err := sqlx.SelectContext(ctx, r.q(ctx), &bloques, query); err != nil {
		return nil, fmt.Errorf("list bloques horarios: %w", err)
	}
	return bloques, nil
}

// TiposClase lists session-type reference data.
func (r *HorarioRepository) TiposClase(ctx context.Context) ([]models.TipoClase, error) {
	const query = `SELECT id_tipo_clase, nombre FROM tipo_clase ORDER BY nombre`
	var tipos []models.TipoClase
	if err := sqlx.SelectContext(ctx, r.q(ctx), &tipos, query); err != nil {
		return nil, fmt.Errorf("list tipos de clase: %w", err)
	}
	return tipos, nil
}

// ExisteDia reports whether the weekday id exists.
func (r *HorarioRepository) ExisteDia(ctx context.Context, id int64) (bool, error) {
	return r.existsRef(ctx, `SELECT 1 FROM dia WHERE id_dia = $1`, id, "check dia")
}

// ExisteBloque reports whether the time-block id exists.
func (r *HorarioRepository) ExisteBloque(ctx context.Context, id int64) (bool, error) {
	return r.existsRef(ctx, `SELECT 1 FROM bloque_horario WHERE id_bloque_horario = $1`, id, "check bloque")
}

// ExisteTipoClase reports whether the session-type id exists.
func (r *HorarioRepository) ExisteTipoClase(ctx context.Context, id int64) (bool, error) {
	return r.existsRef(ctx, `SELECT 1 FROM tipo_clase WHERE id_tipo_clase = $1`, id, "check tipo de clase")
}

func (r *HorarioRepository) existsRef(ctx context.Context, query string, id int64, op string) (bool, error) {
	var exists int
	if err := sqlx.GetContext(ctx, r.q(ctx), &exists, query, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// AulasOcupadas returns the ids of classrooms holding an active session in
// the slot, feeding the availability resolver.
func (r *HorarioRepository) AulasOcupadas(ctx context.Context, idDia, idBloque int64) ([]int64, error) {
	const query = `SELECT DISTINCT id_aula FROM horario_clase WHERE id_dia = $1 AND id_bloque_horario = $2 AND activo = TRUE`
	var ids []int64
	if err := sqlx.SelectContext(ctx, r.q(ctx), &ids, query, idDia, idBloque); err != nil {
		return nil, fmt.Errorf("list aulas ocupadas: %w", err)
	}
	return ids, nil
}

// AulaOcupada reports whether the classroom already holds an active session
// in the slot.
func (r *HorarioRepository) AulaOcupada(ctx context.Context, idAula, idDia, idBloque int64) (bool, error) {
	const query = `SELECT 1 FROM horario_clase WHERE id_aula = $1 AND id_dia = $2 AND id_bloque_horario = $3 AND activo = TRUE LIMIT 1`
	var exists int
	if err := sqlx.GetContext(ctx, r.q(ctx), &exists, query, idAula, idDia, idBloque); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check aula ocupada: %w", err)
	}
	return true, nil
}

// DocenteOcupado reports whether the assignment's teacher already teaches in
// the slot, through any of their active assignments.
func (r *HorarioRepository) DocenteOcupado(ctx context.Context, codDocente, idDia, idBloque int64) (bool, error) {
	const query = `SELECT 1
FROM horario_clase hc
JOIN asignacion_docente ad ON ad.id_asignacion_docente = hc.id_asignacion_docente
WHERE ad.cod_docente = $1 AND hc.id_dia = $2 AND hc.id_bloque_horario = $3 AND hc.activo = TRUE AND ad.activo = TRUE
LIMIT 1`
	var exists int
	if err := sqlx.GetContext(ctx, r.q(ctx), &exists, query, codDocente, idDia, idBloque); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check docente ocupado: %w", err)
	}
	return true, nil
}

const horarioDetalleQuery = `SELECT hc.id_horario_clase, hc.id_asignacion_docente, hc.id_aula, hc.id_dia, hc.id_bloque_horario, hc.id_tipo_clase, hc.activo, hc.fecha_creacion,
       di.nombre AS dia_nombre, bh.nombre AS bloque_nombre, bh.hora_inicio, bh.hora_fin,
       a.nombre AS aula_nombre, tc.nombre AS tipo_clase,
       m.sigla AS materia_sigla, m.nombre AS materia_nombre, g.nombre AS grupo_nombre
FROM horario_clase hc
JOIN dia di ON di.id_dia = hc.id_dia
JOIN bloque_horario bh ON bh.id_bloque_horario = hc.id_bloque_horario
JOIN aula a ON a.id_aula = hc.id_aula
JOIN tipo_clase tc ON tc.id_tipo_clase = hc.id_tipo_clase
JOIN asignacion_docente ad ON ad.id_asignacion_docente = hc.id_asignacion_docente
JOIN materia_grupo mg ON mg.id_materia_grupo = ad.id_materia_grupo
JOIN materia m ON m.id_materia = mg.id_materia
JOIN grupo g ON g.id_grupo = mg.id_grupo`

// ListByAsignacion returns the active sessions of one assignment.
func (r *HorarioRepository) ListByAsignacion(ctx context.Context, idAsignacion int64) ([]models.HorarioDetalle, error) {
	query := horarioDetalleQuery + `
WHERE hc.id_asignacion_docente = $1 AND hc.activo = TRUE
ORDER BY hc.id_dia, bh.hora_inicio`

	var horarios []models.HorarioDetalle
	if err := sqlx.SelectContext(ctx, r.q(ctx), &horarios, query, idAsignacion); err != nil {
		return nil, fmt.Errorf("list horarios por asignacion: %w", err)
	}
	return horarios, nil
}

// ListByDocente returns the teacher's active weekly schedule for a gestión.
func (r *HorarioRepository) ListByDocente(ctx context.Context, codDocente, idGestion int64) ([]models.HorarioDetalle, error) {
	query := horarioDetalleQuery + `
WHERE ad.cod_docente = $1 AND mg.id_gestion = $2 AND hc.activo = TRUE AND ad.activo = TRUE
ORDER BY hc.id_dia, bh.hora_inicio`

	var horarios []models.HorarioDetalle
	if err := sqlx.SelectContext(ctx, r.q(ctx), &horarios, query, codDocente, idGestion); err != nil {
		return nil, fmt.Errorf("list horarios por docente: %w", err)
	}
	return horarios, nil
}

// FindByID loads one session row regardless of active flag.
func (r *HorarioRepository) FindByID(ctx context.Context, id int64) (*models.HorarioClase, error) {
	const query = `SELECT id_horario_clase, id_asignacion_docente, id_aula, id_dia, id_bloque_horario, id_tipo_clase, activo, fecha_creacion
FROM horario_clase WHERE id_horario_clase = $1`
	var horario models.HorarioClase
	if err := sqlx.GetContext(ctx, r.q(ctx), &horario, query, id); err != nil {
		return nil, err
	}
	return &horario, nil
}

// FindDetalleByID loads one session with display fields.
func (r *HorarioRepository) FindDetalleByID(ctx context.Context, id int64) (*models.HorarioDetalle, error) {
	query := horarioDetalleQuery + " WHERE hc.id_horario_clase = $1"
	var detalle models.HorarioDetalle
	if err := sqlx.GetContext(ctx, r.q(ctx), &detalle, query, id); err != nil {
		return nil, err
	}
	return &detalle, nil
}

// Create inserts a new active session.
func (r *HorarioRepository) Create(ctx context.Context, horario *models.HorarioClase) error {
	horario.Activo = true
	horario.FechaCreacion = time.Now().UTC()

	const query = `INSERT INTO horario_clase (id_asignacion_docente, id_aula, id_dia, id_bloque_horario, id_tipo_clase, activo, fecha_creacion)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id_horario_clase`
	row := r.q(ctx).QueryRowxContext(ctx, query,
		horario.IDAsignacion, horario.IDAula, horario.IDDia, horario.IDBloque, horario.IDTipoClase, horario.Activo, horario.FechaCreacion)
	if err := row.Scan(&horario.ID); err != nil {
		return fmt.Errorf("create horario: %w", err)
	}
	return nil
}

// Desactivar soft-deletes one session.
func (r *HorarioRepository) Desactivar(ctx context.Context, id int64) error {
	const query = `UPDATE horario_clase SET activo = FALSE WHERE id_horario_clase = $1 AND activo = TRUE`
	result, err := r.q(ctx).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("desactivar horario: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deactivated horario rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DesactivarPorAsignacion soft-deletes every active session of an assignment,
// invoked when the assignment itself is deactivated.
func (r *HorarioRepository) DesactivarPorAsignacion(ctx context.Context, idAsignacion int64) (int64, error) {
	const query = `UPDATE horario_clase SET activo = FALSE WHERE id_asignacion_docente = $1 AND activo = TRUE`
	result, err := r.q(ctx).ExecContext(ctx, query, idAsignacion)
	if err != nil {
		return 0, fmt.Errorf("desactivar horarios de asignacion: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check deactivated horario rows: %w", err)
	}
	return affected, nil
}
