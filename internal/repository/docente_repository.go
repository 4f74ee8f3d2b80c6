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

// DocenteRepository handles persistence for teachers.
type DocenteRepository struct {
	db *sqlx.DB
}

// NewDocenteRepository constructs the repository.
func NewDocenteRepository(db *sqlx.DB) *DocenteRepository {
	return &DocenteRepository{db: db}
}

func (r *DocenteRepository) q(ctx context.Context) sqlx.ExtContext {
	return database.Queryer(ctx, r.db)
}

// List returns teachers matching the provided filters.
func (r *DocenteRepository) List(ctx context.Context, filter models.DocenteFilter) ([]models.Docente, int, error) {
	base := "FROM docente WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(nombre_completo ILIKE $%d OR email ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Activo != nil {
		conditions = append(conditions, fmt.Sprintf("activo = $%d", len(args)+1))
		args = append(args, *filter.Activo)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"nombre_completo": true,
		"email":           true,
		"fecha_creacion":  true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "nombre_completo"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT cod_docente, nombre_completo, email, id_tipo_contrato, activo, fecha_creacion, fecha_modificacion %s ORDER BY %s %s LIMIT %d OFFSET %d",
		base, sortBy, order, size, offset)

	var docentes []models.Docente
	if err := sqlx.SelectContext(ctx, r.q(ctx), &docentes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list docentes: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := sqlx.GetContext(ctx, r.q(ctx), &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count docentes: %w", err)
	}

	return docentes, total, nil
}

// FindByCod loads a teacher by its canonical key.
func (r *DocenteRepository) FindByCod(ctx context.Context, codDocente int64) (*models.Docente, error) {
	const query = `SELECT cod_docente, nombre_completo, email, id_tipo_contrato, activo, fecha_creacion, fecha_modificacion FROM docente WHERE cod_docente = $1`
	var docente models.Docente
	if err := sqlx.GetContext(ctx, r.q(ctx), &docente, query, codDocente); err != nil {
		return nil, err
	}
	return &docente, nil
}

// ExistsByEmail checks email uniqueness optionally excluding one teacher.
func (r *DocenteRepository) ExistsByEmail(ctx context.Context, email string, excludeCod int64) (bool, error) {
	base := "SELECT 1 FROM docente WHERE email = $1"
	args := []interface{}{email}
	if excludeCod > 0 {
		base += " AND cod_docente <> $2"
		args = append(args, excludeCod)
	}
	var exists int
	if err := sqlx.GetContext(ctx, r.q(ctx), &exists, base+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check docente email: %w", err)
	}
	return true, nil
}

// LimiteContrato returns the flat contract-limit view for the validator.
// When forUpdate is true the docente row is locked for the duration of the
// surrounding transaction, serializing concurrent load checks per teacher.
func (r *DocenteRepository) LimiteContrato(ctx context.Context, codDocente int64, forUpdate bool) (*models.LimiteContrato, error) {
	query := `SELECT d.cod_docente, d.nombre_completo, d.activo, tc.nombre AS nombre_contrato, tc.hrs_maximas
FROM docente d
JOIN tipo_contrato tc ON tc.id_tipo_contrato = d.id_tipo_contrato
WHERE d.cod_docente = $1`
	if forUpdate {
		query += " FOR UPDATE OF d"
	}
	var limite models.LimiteContrato
	if err := sqlx.GetContext(ctx, r.q(ctx), &limite, query, codDocente); err != nil {
		return nil, err
	}
	return &limite, nil
}

// TiposContrato lists the contract reference data.
func (r *DocenteRepository) TiposContrato(ctx context.Context) ([]models.TipoContrato, error) {
	const query = `SELECT id_tipo_contrato, nombre, hrs_maximas FROM tipo_contrato ORDER BY nombre`
	var tipos []models.TipoContrato
	if err := sqlx.SelectContext(ctx, r.q(ctx), &tipos, query); err != nil {
		return nil, fmt.Errorf("list tipos de contrato: %w", err)
	}
	return tipos, nil
}

// Create inserts a new teacher.
func (r *DocenteRepository) Create(ctx context.Context, docente *models.Docente) error {
	now := time.Now().UTC()
	docente.Activo = true
	docente.FechaCreacion = now
	docente.FechaModificacion = now

	const query = `INSERT INTO docente (nombre_completo, email, id_tipo_contrato, activo, fecha_creacion, fecha_modificacion)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING cod_docente`
	row := r.q(ctx).QueryRowxContext(ctx, query,
		docente.NombreCompleto, docente.Email, docente.IDTipoContrato, docente.Activo, docente.FechaCreacion, docente.FechaModificacion)
	if err := row.Scan(&docente.CodDocente); err != nil {
		return fmt.Errorf("create docente: %w", err)
	}
	return nil
}

// Update modifies an existing teacher.
func (r *DocenteRepository) Update(ctx context.Context, docente *models.Docente) error {
	docente.FechaModificacion = time.Now().UTC()
	const query = `UPDATE docente SET nombre_completo = $1, email = $2, id_tipo_contrato = $3, activo = $4, fecha_modificacion = $5 WHERE cod_docente = $6`
	result, err := r.q(ctx).ExecContext(ctx, query,
		docente.NombreCompleto, docente.Email, docente.IDTipoContrato, docente.Activo, docente.FechaModificacion, docente.CodDocente)
	if err != nil {
		return fmt.Errorf("update docente: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated docente rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Desactivar soft-deletes a teacher.
func (r *DocenteRepository) Desactivar(ctx context.Context, codDocente int64) error {
	const query = `UPDATE docente SET activo = FALSE, fecha_modificacion = $1 WHERE cod_docente = $2 AND activo = TRUE`
	result, err := r.q(ctx).ExecContext(ctx, query, time.Now().UTC(), codDocente)
	if err != nil {
		return fmt.Errorf("desactivar docente: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deactivated docente rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
