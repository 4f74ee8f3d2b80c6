package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jcalderon-dev/sigha-api/internal/models"
)

// ReporteRepository persists export job metadata.
type ReporteRepository struct {
	db *sqlx.DB
}

// NewReporteRepository constructs the repository.
func NewReporteRepository(db *sqlx.DB) *ReporteRepository {
	return &ReporteRepository{db: db}
}

const reporteJobColumns = `id, user_id, formato, estado, filtros, archivo, error, created_at, updated_at, expires_at`

// Create inserts a new job row with generated defaults.
func (r *ReporteRepository) Create(ctx context.Context, job *models.ReporteJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Estado == "" {
		job.Estado = models.ReporteJobPendiente
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	const query = `INSERT INTO reporte_jobs (id, user_id, formato, estado, filtros, archivo, error, created_at, updated_at, expires_at)
VALUES (:id, :user_id, :formato, :estado, :filtros, :archivo, :error, :created_at, :updated_at, :expires_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create reporte job: %w", err)
	}
	return nil
}

// GetByID returns a job row by its identifier.
func (r *ReporteRepository) GetByID(ctx context.Context, id string) (*models.ReporteJob, error) {
	query := fmt.Sprintf("SELECT %s FROM reporte_jobs WHERE id = $1", reporteJobColumns)
	var job models.ReporteJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateReporteJobParams defines the mutable fields.
type UpdateReporteJobParams struct {
	Estado    *string
	Archivo   *string
	Error     *string
	ExpiresAt *time.Time
}

// Update persists the provided changes for a job row.
func (r *ReporteRepository) Update(ctx context.Context, id string, params UpdateReporteJobParams) error {
	set := []string{}
	args := []interface{}{}
	argPos := 1

	if params.Estado != nil {
		set = append(set, fmt.Sprintf("estado = $%d", argPos))
		args = append(args, *params.Estado)
		argPos++
	}
	if params.Archivo != nil {
		set = append(set, fmt.Sprintf("archivo = $%d", argPos))
		args = append(args, *params.Archivo)
		argPos++
	}
	if params.Error != nil {
		set = append(set, fmt.Sprintf("error = $%d", argPos))
		args = append(args, *params.Error)
		argPos++
	}
	if params.ExpiresAt != nil {
		set = append(set, fmt.Sprintf("expires_at = $%d", argPos))
		args = append(args, *params.ExpiresAt)
		argPos++
	}

	if len(set) == 0 {
		return nil
	}

	set = append(set, fmt.Sprintf("updated_at = $%d", argPos))
	args = append(args, time.Now().UTC())
	argPos++

	query := fmt.Sprintf("UPDATE reporte_jobs SET %s WHERE id = $%d", strings.Join(set, ", "), argPos)
	args = append(args, id)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update reporte job: %w", err)
	}
	return nil
}

// ListPendientes fetches queued jobs, used for cold-start recovery.
func (r *ReporteRepository) ListPendientes(ctx context.Context, limit int) ([]models.ReporteJob, error) {
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf("SELECT %s FROM reporte_jobs WHERE estado = 'PENDIENTE' ORDER BY created_at ASC LIMIT $1", reporteJobColumns)
	var jobs []models.ReporteJob
	if err := r.db.SelectContext(ctx, &jobs, query, limit); err != nil {
		return nil, fmt.Errorf("list reporte jobs pendientes: %w", err)
	}
	return jobs, nil
}

// ListExpirados retrieves completed jobs whose files can be removed.
func (r *ReporteRepository) ListExpirados(ctx context.Context, cutoff time.Time, limit int) ([]models.ReporteJob, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf("SELECT %s FROM reporte_jobs WHERE estado = 'COMPLETADO' AND expires_at IS NOT NULL AND expires_at < $1 ORDER BY expires_at ASC LIMIT $2", reporteJobColumns)
	var jobs []models.ReporteJob
	if err := r.db.SelectContext(ctx, &jobs, query, cutoff, limit); err != nil {
		return nil, fmt.Errorf("list reporte jobs expirados: %w", err)
	}
	return jobs, nil
}
