package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	"github.com/jcalderon-dev/sigha-api/internal/repository"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
	"github.com/jcalderon-dev/sigha-api/pkg/jobs"
	"github.com/jcalderon-dev/sigha-api/pkg/storage"
)

type reporteStoreStub struct {
	porID   map[string]*models.ReporteJob
	updates map[string][]repository.UpdateReporteJobParams
}

func newReporteStoreStub() *reporteStoreStub {
	return &reporteStoreStub{
		porID:   map[string]*models.ReporteJob{},
		updates: map[string][]repository.UpdateReporteJobParams{},
	}
}

func (s *reporteStoreStub) Create(ctx context.Context, job *models.ReporteJob) error {
	if job.ID == "" {
		job.ID = fmt.Sprintf("job-%d", len(s.porID)+1)
	}
	cp := *job
	s.porID[job.ID] = &cp
	return nil
}

func (s *reporteStoreStub) GetByID(ctx context.Context, id string) (*models.ReporteJob, error) {
	if job, ok := s.porID[id]; ok {
		cp := *job
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *reporteStoreStub) Update(ctx context.Context, id string, params repository.UpdateReporteJobParams) error {
	s.updates[id] = append(s.updates[id], params)
	job, ok := s.porID[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Estado != nil {
		job.Estado = *params.Estado
	}
	if params.Archivo != nil {
		archivo := *params.Archivo
		job.Archivo = &archivo
	}
	if params.Error != nil {
		errMsg := *params.Error
		job.Error = &errMsg
	}
	if params.ExpiresAt != nil {
		expires := *params.ExpiresAt
		job.ExpiresAt = &expires
	}
	return nil
}

func (s *reporteStoreStub) ListPendientes(ctx context.Context, limit int) ([]models.ReporteJob, error) {
	var pendientes []models.ReporteJob
	for _, job := range s.porID {
		if job.Estado == models.ReporteJobPendiente {
			pendientes = append(pendientes, *job)
		}
	}
	return pendientes, nil
}

func (s *reporteStoreStub) ListExpirados(ctx context.Context, cutoff time.Time, limit int) ([]models.ReporteJob, error) {
	return nil, nil
}

type queueStub struct {
	enqueued []jobs.Job
	fail     bool
}

func (s *queueStub) Enqueue(job jobs.Job) error {
	if s.fail {
		return fmt.Errorf("queue cerrada")
	}
	s.enqueued = append(s.enqueued, job)
	return nil
}

type asistenciaListadoStub struct {
	rows []models.AsistenciaDetalle
}

func (s *asistenciaListadoStub) List(ctx context.Context, filtro models.ReporteAsistenciaFiltro) ([]models.AsistenciaDetalle, error) {
	return s.rows, nil
}

func filtroJSON(t *testing.T, filtro models.ReporteAsistenciaFiltro) []byte {
	t.Helper()
	raw, err := json.Marshal(filtro)
	require.NoError(t, err)
	return raw
}

func newExporterFixture(t *testing.T, rows []models.AsistenciaDetalle) *ReporteExporter {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secreto-de-prueba", time.Hour)
	return NewReporteExporter(&asistenciaListadoStub{rows: rows}, store, signer, ExporterConfig{APIPrefix: "/api/v1"}, nil, nil, nil)
}

func TestReporteCrearEncola(t *testing.T) {
	repo := newReporteStoreStub()
	queue := &queueStub{}
	svc := NewReporteService(repo, queue, nil, ReporteServiceConfig{}, nil, nil)

	job, err := svc.Crear(context.Background(), CrearReporteRequest{
		Formato: models.FormatoCSV,
		Filtro:  models.ReporteAsistenciaFiltro{IDGestion: 1},
	}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReporteJobPendiente, job.Estado)
	require.NotNil(t, job.UserID)
	assert.Equal(t, "user-1", *job.UserID)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, job.ID, queue.enqueued[0].ID)
}

func TestReporteCrearFormatoInvalido(t *testing.T) {
	svc := NewReporteService(newReporteStoreStub(), &queueStub{}, nil, ReporteServiceConfig{}, nil, nil)

	_, err := svc.Crear(context.Background(), CrearReporteRequest{
		Formato: "xlsx",
		Filtro:  models.ReporteAsistenciaFiltro{IDGestion: 1},
	}, "user-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestReporteCrearSinGestion(t *testing.T) {
	svc := NewReporteService(newReporteStoreStub(), &queueStub{}, nil, ReporteServiceConfig{}, nil, nil)

	_, err := svc.Crear(context.Background(), CrearReporteRequest{Formato: models.FormatoCSV}, "user-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestReporteCrearEnqueueFallido(t *testing.T) {
	repo := newReporteStoreStub()
	svc := NewReporteService(repo, &queueStub{fail: true}, nil, ReporteServiceConfig{}, nil, nil)

	_, err := svc.Crear(context.Background(), CrearReporteRequest{
		Formato: models.FormatoPDF,
		Filtro:  models.ReporteAsistenciaFiltro{IDGestion: 1},
	}, "user-1")
	require.Error(t, err)
	require.Len(t, repo.porID, 1)
	for _, job := range repo.porID {
		assert.Equal(t, models.ReporteJobFallido, job.Estado)
	}
}

func TestReporteEstadoRestringeDocente(t *testing.T) {
	repo := newReporteStoreStub()
	owner := "user-1"
	repo.porID["job-1"] = &models.ReporteJob{ID: "job-1", UserID: &owner, Estado: models.ReporteJobPendiente}
	svc := NewReporteService(repo, &queueStub{}, nil, ReporteServiceConfig{}, nil, nil)

	_, err := svc.Estado(context.Background(), "job-1", "user-2", models.RoleDocente)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	job, err := svc.Estado(context.Background(), "job-1", "user-1", models.RoleDocente)
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)

	job, err = svc.Estado(context.Background(), "job-1", "admin-1", models.RoleAdministrador)
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)
}

func TestReporteExporterGeneraCSV(t *testing.T) {
	rows := []models.AsistenciaDetalle{
		{
			Asistencia: models.Asistencia{
				FechaRegistro: time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC),
				HoraRegistro:  "08:05:00",
				Estado:        models.AsistenciaPresente,
				TipoRegistro:  models.RegistroManual,
			},
			DocenteNombre: "Juan Pérez",
			MateriaNombre: "Cálculo I",
			GrupoNombre:   "A",
			DiaNombre:     "Lunes",
			BloqueNombre:  "08:00-09:30",
		},
	}
	exporter := newExporterFixture(t, rows)

	job := &models.ReporteJob{
		ID:      "job-1",
		Formato: models.FormatoCSV,
		Filtros: filtroJSON(t, models.ReporteAsistenciaFiltro{IDGestion: 1}),
	}
	result, err := exporter.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.URL, "/api/v1/reportes/descargas/"))
	assert.True(t, result.ExpiresAt.After(time.Now()))

	jobID, relPath, _, err := exporter.ParseToken(result.Token, false)
	require.NoError(t, err)
	assert.Equal(t, "job-1", jobID)
	assert.Equal(t, result.RelativePath, relPath)

	file, err := exporter.Open(relPath)
	require.NoError(t, err)
	defer file.Close()
}

func TestReporteDescargar(t *testing.T) {
	exporter := newExporterFixture(t, nil)
	repo := newReporteStoreStub()

	job := &models.ReporteJob{
		ID:      "job-1",
		Formato: models.FormatoCSV,
		Filtros: filtroJSON(t, models.ReporteAsistenciaFiltro{IDGestion: 1}),
	}
	result, err := exporter.Generate(context.Background(), job)
	require.NoError(t, err)

	repo.porID["job-1"] = &models.ReporteJob{
		ID:      "job-1",
		Formato: models.FormatoCSV,
		Estado:  models.ReporteJobCompletado,
		Archivo: &result.URL,
	}
	svc := NewReporteService(repo, &queueStub{}, exporter, ReporteServiceConfig{}, nil, nil)

	descarga, err := svc.Descargar(context.Background(), result.Token)
	require.NoError(t, err)
	defer descarga.File.Close()
	assert.Equal(t, models.FormatoCSV, descarga.Formato)
	assert.NotEmpty(t, descarga.Filename)
}

func TestReporteDescargarNoListo(t *testing.T) {
	exporter := newExporterFixture(t, nil)
	repo := newReporteStoreStub()

	job := &models.ReporteJob{
		ID:      "job-1",
		Formato: models.FormatoCSV,
		Filtros: filtroJSON(t, models.ReporteAsistenciaFiltro{IDGestion: 1}),
	}
	result, err := exporter.Generate(context.Background(), job)
	require.NoError(t, err)

	repo.porID["job-1"] = &models.ReporteJob{
		ID:      "job-1",
		Formato: models.FormatoCSV,
		Estado:  models.ReporteJobProcesando,
		Archivo: &result.URL,
	}
	svc := NewReporteService(repo, &queueStub{}, exporter, ReporteServiceConfig{}, nil, nil)

	_, err = svc.Descargar(context.Background(), result.Token)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestReporteWorkerCompleta(t *testing.T) {
	repo := newReporteStoreStub()
	repo.porID["job-1"] = &models.ReporteJob{
		ID:      "job-1",
		Formato: models.FormatoCSV,
		Estado:  models.ReporteJobPendiente,
		Filtros: filtroJSON(t, models.ReporteAsistenciaFiltro{IDGestion: 1}),
	}
	exporter := newExporterFixture(t, nil)
	worker := NewReporteWorker(repo, exporter, 3, nil)

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1"})
	require.NoError(t, err)

	job := repo.porID["job-1"]
	assert.Equal(t, models.ReporteJobCompletado, job.Estado)
	require.NotNil(t, job.Archivo)
	assert.Contains(t, *job.Archivo, "/reportes/descargas/")
	require.NotNil(t, job.ExpiresAt)
}

type failingExporter struct{}

func (failingExporter) Generate(ctx context.Context, job *models.ReporteJob) (*ExportResult, error) {
	return nil, fmt.Errorf("sin datos")
}

func TestReporteWorkerAgotaReintentos(t *testing.T) {
	repo := newReporteStoreStub()
	repo.porID["job-1"] = &models.ReporteJob{
		ID:      "job-1",
		Formato: models.FormatoCSV,
		Estado:  models.ReporteJobPendiente,
	}
	worker := NewReporteWorker(repo, failingExporter{}, 2, nil)

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1", Attempt: 2})
	require.Error(t, err)
	assert.Equal(t, models.ReporteJobFallido, repo.porID["job-1"].Estado)

	repo.porID["job-2"] = &models.ReporteJob{
		ID:      "job-2",
		Formato: models.FormatoCSV,
		Estado:  models.ReporteJobPendiente,
	}
	err = worker.Handle(context.Background(), jobs.Job{ID: "job-2", Attempt: 0})
	require.Error(t, err)
	assert.Equal(t, models.ReporteJobPendiente, repo.porID["job-2"].Estado)
}
