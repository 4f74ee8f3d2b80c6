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

// AsistenciaRepository handles persistence for attendance rows.
type AsistenciaRepository struct {
	db *sqlx.DB
}

// NewAsistenciaRepository constructs the repository.
func NewAsistenciaRepository(db *sqlx.DB) *AsistenciaRepository {
	return &AsistenciaRepository{db: db}
}

func (r *AsistenciaRepository) q(ctx context.Context) sqlx.ExtContext {
	return database.Queryer(ctx, r.db)
}

// RunInTx executes fn inside one transaction.
func (r *AsistenciaRepository) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return database.RunInTx(ctx, r.db, fn)
}

const asistenciaDetalleColumns = `asi.id_asistencia, asi.id_asignacion_docente, asi.id_horario_clase, asi.fecha_registro, asi.hora_registro, asi.estado, asi.tipo_registro, asi.observacion,
       ad.cod_docente, d.nombre_completo AS docente_nombre, m.nombre AS materia_nombre, g.nombre AS grupo_nombre,
       di.nombre AS dia_nombre, bh.nombre AS bloque_nombre`

const asistenciaDetalleJoins = `FROM asistencia asi
JOIN asignacion_docente ad ON ad.id_asignacion_docente = asi.id_asignacion_docente
JOIN docente d ON d.cod_docente = ad.cod_docente
JOIN materia_grupo mg ON mg.id_materia_grupo = ad.id_materia_grupo
JOIN materia m ON m.id_materia = mg.id_materia
JOIN grupo g ON g.id_grupo = mg.id_grupo
JOIN horario_clase hc ON hc.id_horario_clase = asi.id_horario_clase
JOIN dia di ON di.id_dia = hc.id_dia
JOIN bloque_horario bh ON bh.id_bloque_horario = hc.id_bloque_horario`

func asistenciaFiltroWhere(filtro models.ReporteAsistenciaFiltro) (string, []interface{}) {
	where := []string{"mg.id_gestion = $1"}
	args := []interface{}{filtro.IDGestion}

	if filtro.CodDocente != nil {
		where = append(where, fmt.Sprintf("ad.cod_docente = $%d", len(args)+1))
		args = append(args, *filtro.CodDocente)
	}
	if filtro.IDMateria != nil {
		where = append(where, fmt.Sprintf("mg.id_materia = $%d", len(args)+1))
		args = append(args, *filtro.IDMateria)
	}
	if filtro.IDGrupo != nil {
		where = append(where, fmt.Sprintf("mg.id_grupo = $%d", len(args)+1))
		args = append(args, *filtro.IDGrupo)
	}
	if filtro.FechaInicio != nil {
		where = append(where, fmt.Sprintf("asi.fecha_registro >= $%d", len(args)+1))
		args = append(args, *filtro.FechaInicio)
	}
	if filtro.FechaFin != nil {
		where = append(where, fmt.Sprintf("asi.fecha_registro <= $%d", len(args)+1))
		args = append(args, *filtro.FechaFin)
	}
	return strings.Join(where, " AND "), args
}

// List returns the attendance rows matching the report filter, newest first.
func (r *AsistenciaRepository) List(ctx context.Context, filtro models.ReporteAsistenciaFiltro) ([]models.AsistenciaDetalle, error) {
	where, args := asistenciaFiltroWhere(filtro)
	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY asi.fecha_registro DESC, asi.hora_registro DESC",
		asistenciaDetalleColumns, asistenciaDetalleJoins, where)

	var asistencias []models.AsistenciaDetalle
	if err := sqlx.SelectContext(ctx, r.q(ctx), &asistencias, query, args...); err != nil {
		return nil, fmt.Errorf("list asistencias: %w", err)
	}
	return asistencias, nil
}

// FindByID loads one attendance row.
func (r *AsistenciaRepository) FindByID(ctx context.Context, id int64) (*models.Asistencia, error) {
	const query = `SELECT id_asistencia, id_asignacion_docente, id_horario_clase, fecha_registro, hora_registro, estado, tipo_registro, observacion
FROM asistencia WHERE id_asistencia = $1`
	var asistencia models.Asistencia
	if err := sqlx.GetContext(ctx, r.q(ctx), &asistencia, query, id); err != nil {
		return nil, err
	}
	return &asistencia, nil
}

// ExisteRegistro reports whether attendance was already taken for the session
// on the given date. One row per (horario, fecha).
func (r *AsistenciaRepository) ExisteRegistro(ctx context.Context, idHorarioClase int64, fecha time.Time) (bool, error) {
	const query = `SELECT 1 FROM asistencia WHERE id_horario_clase = $1 AND fecha_registro = $2 LIMIT 1`
	var exists int
	if err := sqlx.GetContext(ctx, r.q(ctx), &exists, query, idHorarioClase, fecha); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check asistencia duplicada: %w", err)
	}
	return true, nil
}

// Create inserts a new attendance row.
func (r *AsistenciaRepository) Create(ctx context.Context, asistencia *models.Asistencia) error {
	const query = `INSERT INTO asistencia (id_asignacion_docente, id_horario_clase, fecha_registro, hora_registro, estado, tipo_registro, observacion)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id_asistencia`
	row := r.q(ctx).QueryRowxContext(ctx, query,
		asistencia.IDAsignacion, asistencia.IDHorarioClase, asistencia.FechaRegistro, asistencia.HoraRegistro,
		asistencia.Estado, asistencia.TipoRegistro, asistencia.Observacion)
	if err := row.Scan(&asistencia.ID); err != nil {
		return fmt.Errorf("create asistencia: %w", err)
	}
	return nil
}

// ActualizarEstado changes the state of one attendance row, used when an
// approved justification converts an absence.
func (r *AsistenciaRepository) ActualizarEstado(ctx context.Context, id int64, estado string, observacion *string) error {
	const query = `UPDATE asistencia SET estado = $1, observacion = COALESCE($2, observacion) WHERE id_asistencia = $3`
	result, err := r.q(ctx).ExecContext(ctx, query, estado, observacion, id)
	if err != nil {
		return fmt.Errorf("update estado asistencia: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated asistencia rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ResumenPorDocente returns per-teacher attendance counters for a gestión.
func (r *AsistenciaRepository) ResumenPorDocente(ctx context.Context, idGestion int64) ([]models.ResumenAsistencia, error) {
	const query = `SELECT ad.cod_docente, d.nombre_completo AS docente_nombre,
       COUNT(*) FILTER (WHERE asi.estado = 'PRESENTE') AS presentes,
       COUNT(*) FILTER (WHERE asi.estado = 'AUSENTE') AS ausentes,
       COUNT(*) FILTER (WHERE asi.estado = 'RETRASO') AS retrasos,
       COUNT(*) AS total
FROM asistencia asi
JOIN asignacion_docente ad ON ad.id_asignacion_docente = asi.id_asignacion_docente
JOIN docente d ON d.cod_docente = ad.cod_docente
JOIN materia_grupo mg ON mg.id_materia_grupo = ad.id_materia_grupo
WHERE mg.id_gestion = $1
GROUP BY ad.cod_docente, d.nombre_completo
ORDER BY d.nombre_completo`

	var resumen []models.ResumenAsistencia
	if err := sqlx.SelectContext(ctx, r.q(ctx), &resumen, query, idGestion); err != nil {
		return nil, fmt.Errorf("resumen asistencias: %w", err)
	}
	return resumen, nil
}
