package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	"github.com/jcalderon-dev/sigha-api/internal/repository"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
	"github.com/jcalderon-dev/sigha-api/pkg/export"
	"github.com/jcalderon-dev/sigha-api/pkg/jobs"
	"github.com/jcalderon-dev/sigha-api/pkg/storage"
)

type reporteJobStore interface {
	Create(ctx context.Context, job *models.ReporteJob) error
	GetByID(ctx context.Context, id string) (*models.ReporteJob, error)
	Update(ctx context.Context, id string, params repository.UpdateReporteJobParams) error
	ListPendientes(ctx context.Context, limit int) ([]models.ReporteJob, error)
	ListExpirados(ctx context.Context, cutoff time.Time, limit int) ([]models.ReporteJob, error)
}

type asistenciaListadoReader interface {
	List(ctx context.Context, filtro models.ReporteAsistenciaFiltro) ([]models.AsistenciaDetalle, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Formato      string
	ExpiresAt    time.Time
}

// ExporterConfig tunes export behaviour.
type ExporterConfig struct {
	APIPrefix string
}

// ReporteExporter turns a stored job into a rendered attendance file on disk.
type ReporteExporter struct {
	asistencias asistenciaListadoReader
	storage     fileStorage
	csv         csvRenderer
	pdf         pdfRenderer
	signer      *storage.SignedURLSigner
	logger      *zap.Logger
	cfg         ExporterConfig
}

// NewReporteExporter constructs an exporter. Nil renderers default to the
// package implementations.
func NewReporteExporter(asistencias asistenciaListadoReader, store fileStorage, signer *storage.SignedURLSigner, cfg ExporterConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ReporteExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ReporteExporter{
		asistencias: asistencias,
		storage:     store,
		csv:         csv,
		pdf:         pdf,
		signer:      signer,
		logger:      logger,
		cfg:         cfg,
	}
}

// Generate builds the attendance dataset for the job's stored filters and
// persists the rendered export.
func (e *ReporteExporter) Generate(ctx context.Context, job *models.ReporteJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	var filtro models.ReporteAsistenciaFiltro
	if err := json.Unmarshal(job.Filtros, &filtro); err != nil {
		return nil, fmt.Errorf("decode filtros: %w", err)
	}

	dataset, title, err := e.buildDataset(ctx, filtro)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Formato {
	case models.FormatoCSV:
		payload, err = e.csv.Render(dataset)
	case models.FormatoPDF:
		payload, err = e.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("formato no soportado %s", job.Formato)
	}
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("asistencia_gestion%d_%s.%s", filtro.IDGestion, time.Now().UTC().Format("20060102_150405"), job.Formato)
	relPath, err := e.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := e.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(e.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	url := fmt.Sprintf("%s/reportes/descargas/%s", prefix, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          url,
		Formato:      job.Formato,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (e *ReporteExporter) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return e.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (e *ReporteExporter) Open(relPath string) (*os.File, error) {
	return e.storage.Open(relPath)
}

// Delete removes a stored export file.
func (e *ReporteExporter) Delete(relPath string) error {
	return e.storage.Delete(relPath)
}

// Cleanup removes files older than ttl.
func (e *ReporteExporter) Cleanup(ttl time.Duration) ([]string, error) {
	return e.storage.CleanupOlderThan(ttl)
}

func (e *ReporteExporter) buildDataset(ctx context.Context, filtro models.ReporteAsistenciaFiltro) (export.Dataset, string, error) {
	rows, err := e.asistencias.List(ctx, filtro)
	if err != nil {
		return export.Dataset{}, "", err
	}
	headers := []string{"Fecha", "Hora", "Docente", "Materia", "Grupo", "Día", "Bloque", "Estado", "Tipo registro", "Observación"}
	dataRows := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		observacion := ""
		if row.Observacion != nil {
			observacion = *row.Observacion
		}
		dataRows = append(dataRows, map[string]string{
			"Fecha":         row.FechaRegistro.Format("02/01/2006"),
			"Hora":          row.HoraRegistro,
			"Docente":       row.DocenteNombre,
			"Materia":       row.MateriaNombre,
			"Grupo":         row.GrupoNombre,
			"Día":           row.DiaNombre,
			"Bloque":        row.BloqueNombre,
			"Estado":        row.Estado,
			"Tipo registro": row.TipoRegistro,
			"Observación":   observacion,
		})
	}
	dataset := export.Dataset{Headers: headers, Rows: dataRows}
	title := fmt.Sprintf("Reporte de Asistencia - Gestión %d", filtro.IDGestion)
	return dataset, title, nil
}

// CrearReporteRequest queues an asynchronous attendance export.
type CrearReporteRequest struct {
	Formato string                         `json:"formato" validate:"required,oneof=csv pdf"`
	Filtro  models.ReporteAsistenciaFiltro `json:"filtro"`
}

// ReporteDescarga aggregates resolved download data.
type ReporteDescarga struct {
	File      *os.File
	Filename  string
	Formato   string
	ExpiresAt time.Time
}

// ReporteServiceConfig governs queue recovery and cleanup.
type ReporteServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
	MaxRetries      int
}

// ReporteService orchestrates the export job lifecycle: creation, queueing,
// status, signed downloads and expiry cleanup.
type ReporteService struct {
	repo      reporteJobStore
	queue     jobDispatcher
	exporter  *ReporteExporter
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ReporteServiceConfig
}

// NewReporteService constructs the service.
func NewReporteService(repo reporteJobStore, queue jobDispatcher, exporter *ReporteExporter, cfg ReporteServiceConfig, validate *validator.Validate, logger *zap.Logger) *ReporteService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &ReporteService{
		repo:      repo,
		queue:     queue,
		exporter:  exporter,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Crear validates the request, persists the job and enqueues processing.
func (s *ReporteService) Crear(ctx context.Context, req CrearReporteRequest, userID string) (*models.ReporteJob, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de reporte inválidos")
	}

	filtros, err := json.Marshal(req.Filtro)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo serializar el filtro")
	}

	job := &models.ReporteJob{
		Formato: req.Formato,
		Estado:  models.ReporteJobPendiente,
		Filtros: filtros,
	}
	if userID != "" {
		job.UserID = &userID
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo crear el reporte")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "reporte_asistencia"}); err != nil {
		estado := models.ReporteJobFallido
		msg := "no se pudo encolar el reporte"
		_ = s.repo.Update(ctx, job.ID, repository.UpdateReporteJobParams{Estado: &estado, Error: &msg})
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo encolar el reporte")
	}

	s.logger.Info("reporte encolado", zap.String("id", job.ID), zap.String("formato", job.Formato))
	return job, nil
}

// Estado exposes job metadata. Docentes only see their own jobs.
func (s *ReporteService) Estado(ctx context.Context, id, userID string, rol models.UserRole) (*models.ReporteJob, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reporte no encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar el reporte")
	}
	if rol == models.RoleDocente && (job.UserID == nil || *job.UserID != userID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	return job, nil
}

// Descargar validates the signed token and opens the stored file.
func (s *ReporteService) Descargar(ctx context.Context, token string) (*ReporteDescarga, error) {
	jobID, relPath, expiresAt, err := s.exporter.ParseToken(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "enlace de descarga inválido o expirado")
	}
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reporte no encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar el reporte")
	}
	if job.Archivo == nil || !strings.HasSuffix(*job.Archivo, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "enlace de descarga inválido")
	}
	if job.Estado != models.ReporteJobCompletado {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "el reporte aún no está listo")
	}
	file, err := s.exporter.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo abrir el archivo del reporte")
	}
	return &ReporteDescarga{
		File:      file,
		Filename:  filepath.Base(relPath),
		Formato:   job.Formato,
		ExpiresAt: expiresAt,
	}, nil
}

// RecuperarPendientes replays queued jobs after a process restart.
func (s *ReporteService) RecuperarPendientes(ctx context.Context) {
	pendientes, err := s.repo.ListPendientes(ctx, 50)
	if err != nil {
		s.logger.Warn("no se pudieron recuperar los reportes pendientes", zap.Error(err))
		return
	}
	for _, job := range pendientes {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "reporte_asistencia"}); err != nil {
			s.logger.Warn("no se pudo reencolar el reporte", zap.String("id", job.ID), zap.Error(err))
		}
	}
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ReporteService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpirados(ctx)
			}
		}
	}()
}

func (s *ReporteService) cleanupExpirados(ctx context.Context) {
	cutoff := time.Now().UTC()
	expirados, err := s.repo.ListExpirados(ctx, cutoff, 100)
	if err != nil {
		s.logger.Warn("no se pudieron listar los reportes expirados", zap.Error(err))
		return
	}
	for _, job := range expirados {
		if job.Archivo == nil {
			continue
		}
		token := extractToken(*job.Archivo)
		if token == "" {
			continue
		}
		_, relPath, _, err := s.exporter.ParseToken(token, true)
		if err != nil {
			continue
		}
		if err := s.exporter.Delete(relPath); err != nil {
			s.logger.Warn("no se pudo eliminar el archivo expirado", zap.String("id", job.ID), zap.Error(err))
			continue
		}
		// A cleared archivo marks the file as already removed.
		vacio := ""
		_ = s.repo.Update(ctx, job.ID, repository.UpdateReporteJobParams{Archivo: &vacio})
	}
	if _, err := s.exporter.Cleanup(s.cfg.ResultTTL); err != nil {
		s.logger.Warn("no se pudieron limpiar los archivos antiguos", zap.Error(err))
	}
}

func extractToken(url string) string {
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}

type exportGenerator interface {
	Generate(ctx context.Context, job *models.ReporteJob) (*ExportResult, error)
}

// ReporteWorker bridges queue jobs to the exporter, advancing the job state
// PENDIENTE -> PROCESANDO -> COMPLETADO o FALLIDO.
type ReporteWorker struct {
	repo       reporteJobStore
	exporter   exportGenerator
	logger     *zap.Logger
	maxRetries int
}

// NewReporteWorker constructs a worker.
func NewReporteWorker(repo reporteJobStore, exporter exportGenerator, maxRetries int, logger *zap.Logger) *ReporteWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &ReporteWorker{repo: repo, exporter: exporter, logger: logger, maxRetries: maxRetries}
}

// Handle processes one queue job.
func (w *ReporteWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}

	procesando := models.ReporteJobProcesando
	if err := w.repo.Update(ctx, job.ID, repository.UpdateReporteJobParams{Estado: &procesando}); err != nil {
		return err
	}

	result, err := w.exporter.Generate(ctx, record)
	if err != nil {
		msg := err.Error()
		if job.Attempt >= w.maxRetries {
			fallido := models.ReporteJobFallido
			if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateReporteJobParams{Estado: &fallido, Error: &msg}); updateErr != nil {
				w.logger.Warn("no se pudo marcar el reporte como fallido", zap.String("id", job.ID), zap.Error(updateErr))
			}
		} else {
			pendiente := models.ReporteJobPendiente
			if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateReporteJobParams{Estado: &pendiente, Error: &msg}); updateErr != nil {
				w.logger.Warn("no se pudo reencolar el reporte", zap.String("id", job.ID), zap.Error(updateErr))
			}
		}
		return err
	}

	completado := models.ReporteJobCompletado
	clear := ""
	if err := w.repo.Update(ctx, job.ID, repository.UpdateReporteJobParams{
		Estado:    &completado,
		Archivo:   &result.URL,
		Error:     &clear,
		ExpiresAt: &result.ExpiresAt,
	}); err != nil {
		w.logger.Warn("no se pudo marcar el reporte como completado", zap.String("id", job.ID), zap.Error(err))
		return err
	}
	return nil
}
