package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/jcalderon-dev/sigha-api/api/swagger"
	"github.com/jcalderon-dev/sigha-api/internal/handler"
	"github.com/jcalderon-dev/sigha-api/internal/middleware"
	"github.com/jcalderon-dev/sigha-api/internal/models"
	"github.com/jcalderon-dev/sigha-api/internal/repository"
	"github.com/jcalderon-dev/sigha-api/internal/service"
	"github.com/jcalderon-dev/sigha-api/pkg/cache"
	"github.com/jcalderon-dev/sigha-api/pkg/config"
	"github.com/jcalderon-dev/sigha-api/pkg/database"
	"github.com/jcalderon-dev/sigha-api/pkg/export"
	"github.com/jcalderon-dev/sigha-api/pkg/jobs"
	"github.com/jcalderon-dev/sigha-api/pkg/logger"
	corsmiddleware "github.com/jcalderon-dev/sigha-api/pkg/middleware/cors"
	reqidmiddleware "github.com/jcalderon-dev/sigha-api/pkg/middleware/requestid"
	"github.com/jcalderon-dev/sigha-api/pkg/storage"
)

// @title SIGHA API
// @version 1.0.0
// @description Sistema de Gestión de Horarios y Asignaciones académicas
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	validate := validator.New()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	gestionRepo := repository.NewGestionRepository(db)
	docenteRepo := repository.NewDocenteRepository(db)
	materiaRepo := repository.NewMateriaRepository(db)
	grupoRepo := repository.NewGrupoRepository(db)
	materiaGrupoRepo := repository.NewMateriaGrupoRepository(db)
	asignacionRepo := repository.NewAsignacionRepository(db)
	aulaRepo := repository.NewAulaRepository(db)
	horarioRepo := repository.NewHorarioRepository(db)
	asistenciaRepo := repository.NewAsistenciaRepository(db)
	justificacionRepo := repository.NewJustificacionRepository(db)
	reporteRepo := repository.NewReporteRepository(db)

	// Availability cache is optional; a nil cache disables it.
	var disponibilidadCache *repository.CacheRepository
	if cfg.Disponibilidad.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
		disponibilidadCache = repository.NewCacheRepository(redisClient, logr)
	}

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "sigha-api",
	})
	bitacoraSvc := service.NewBitacoraService(userRepo, logr)
	userSvc := service.NewUserService(userRepo, docenteRepo, validate, logr)
	gestionSvc := service.NewGestionService(gestionRepo, validate, logr)
	docenteSvc := service.NewDocenteService(docenteRepo, validate, logr)
	materiaSvc := service.NewMateriaService(materiaRepo, validate, logr)
	grupoSvc := service.NewGrupoService(grupoRepo, validate, logr)
	materiaGrupoSvc := service.NewMateriaGrupoService(materiaGrupoRepo, materiaRepo, grupoRepo, gestionRepo, validate, logr)
	asignacionSvc := service.NewAsignacionService(asignacionRepo, gestionRepo, materiaGrupoRepo, docenteRepo, horarioRepo, validate, logr)

	var disponibilidadSvc *service.DisponibilidadService
	if disponibilidadCache != nil {
		disponibilidadSvc = service.NewDisponibilidadService(aulaRepo, horarioRepo, disponibilidadCache, cfg.Disponibilidad.CacheTTL, logr)
	} else {
		disponibilidadSvc = service.NewDisponibilidadService(aulaRepo, horarioRepo, nil, cfg.Disponibilidad.CacheTTL, logr)
	}
	disponibilidadSvc.SetMetrics(metricsSvc)

	aulaSvc := service.NewAulaService(aulaRepo, disponibilidadSvc, validate, logr)
	horarioSvc := service.NewHorarioService(horarioRepo, asignacionRepo, aulaRepo, gestionRepo, disponibilidadSvc, validate, logr)
	asistenciaSvc := service.NewAsistenciaService(asistenciaRepo, justificacionRepo, horarioRepo, validate, logr)

	// Attendance report export pipeline: exporter -> queue worker -> service.
	reportStorage, err := storage.NewLocalStorage(cfg.Reportes.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init report storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reportes.SignedURLSecret, cfg.Reportes.SignedURLTTL)
	exporter := service.NewReporteExporter(asistenciaRepo, reportStorage, signer,
		service.ExporterConfig{APIPrefix: cfg.APIPrefix}, logr,
		export.NewCSVExporter(), export.NewPDFExporter())
	reporteWorker := service.NewReporteWorker(reporteRepo, exporter, cfg.Reportes.WorkerRetries, logr)
	reporteQueue := jobs.NewQueue("reportes", reporteWorker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reportes.WorkerConcurrency,
		BufferSize: 100,
		MaxRetries: cfg.Reportes.WorkerRetries,
		RetryDelay: 5 * time.Second,
		Logger:     logr,
	})
	reporteSvc := service.NewReporteService(reporteRepo, reporteQueue, exporter, service.ReporteServiceConfig{
		ResultTTL:       cfg.Reportes.SignedURLTTL,
		CleanupInterval: time.Hour,
		MaxRetries:      cfg.Reportes.WorkerRetries,
	}, validate, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reporteQueue.Start(ctx)
	defer reporteQueue.Stop()
	reporteSvc.RecuperarPendientes(ctx)
	reporteSvc.StartCleanup(ctx)

	handlers := routeHandlers{
		auth:           handler.NewAuthHandler(authSvc),
		users:          handler.NewUserHandler(userSvc),
		gestiones:      handler.NewGestionHandler(gestionSvc),
		docentes:       handler.NewDocenteHandler(docenteSvc, asignacionSvc, horarioSvc),
		materias:       handler.NewMateriaHandler(materiaSvc),
		grupos:         handler.NewGrupoHandler(grupoSvc),
		materiaGrupos:  handler.NewMateriaGrupoHandler(materiaGrupoSvc),
		asignaciones:   handler.NewAsignacionHandler(asignacionSvc),
		aulas:          handler.NewAulaHandler(aulaSvc),
		disponibilidad: handler.NewDisponibilidadHandler(disponibilidadSvc),
		horarios:       handler.NewHorarioHandler(horarioSvc),
		asistencias:    handler.NewAsistenciaHandler(asistenciaSvc),
		reportes:       handler.NewReporteHandler(reporteSvc),
		bitacora:       handler.NewBitacoraHandler(bitacoraSvc),
	}

	r := buildRouter(cfg, logr, db.PingContext, handlers, authSvc, bitacoraSvc, metricsSvc)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

type routeHandlers struct {
	auth           *handler.AuthHandler
	users          *handler.UserHandler
	gestiones      *handler.GestionHandler
	docentes       *handler.DocenteHandler
	materias       *handler.MateriaHandler
	grupos         *handler.GrupoHandler
	materiaGrupos  *handler.MateriaGrupoHandler
	asignaciones   *handler.AsignacionHandler
	aulas          *handler.AulaHandler
	disponibilidad *handler.DisponibilidadHandler
	horarios       *handler.HorarioHandler
	asistencias    *handler.AsistenciaHandler
	reportes       *handler.ReporteHandler
	bitacora       *handler.BitacoraHandler
}

func buildRouter(
	cfg *config.Config,
	logr *zap.Logger,
	ping func(context.Context) error,
	h routeHandlers,
	authSvc *service.AuthService,
	bitacoraSvc *service.BitacoraService,
	metricsSvc *service.MetricsService,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// Public
	api.POST("/auth/login", h.auth.Login)
	api.POST("/auth/refresh", h.auth.Refresh)
	// Signed token is the credential; no session required.
	api.GET("/reportes/descargas/:token", h.reportes.Descargar)

	auth := api.Group("")
	auth.Use(middleware.JWT(authSvc))

	auth.POST("/auth/logout", h.auth.Logout)
	auth.POST("/auth/change-password", h.auth.ChangePassword)
	auth.GET("/auth/me", h.auth.Me)

	admin := middleware.RequireRoles(models.RoleAdministrador)
	adminCoord := middleware.RequireRoles(models.RoleAdministrador, models.RoleCoordinador)
	coordinador := middleware.RequireRoles(models.RoleCoordinador)
	adminAutoridad := middleware.RequireRoles(models.RoleAdministrador, models.RoleAutoridad)
	lectura := middleware.RequireRoles(models.RoleAdministrador, models.RoleCoordinador, models.RoleAutoridad)
	docente := middleware.RequireRoles(models.RoleDocente)
	todos := middleware.RequireRoles(models.RoleAdministrador, models.RoleCoordinador, models.RoleAutoridad, models.RoleDocente)

	// Usuarios (Administrador)
	auth.GET("/usuarios", admin, h.users.List)
	auth.GET("/usuarios/:id", admin, h.users.Get)
	auth.POST("/usuarios", admin,
		middleware.Audit(bitacoraSvc, models.AccionCrear, "usuarios"), h.users.Create)
	auth.PUT("/usuarios/:id", admin,
		middleware.Audit(bitacoraSvc, models.AccionActualizar, "usuarios"), h.users.Update)
	auth.DELETE("/usuarios/:id", admin,
		middleware.Audit(bitacoraSvc, models.AccionDesactivar, "usuarios"), h.users.Delete)

	// Gestiones
	auth.GET("/gestiones", lectura, h.gestiones.List)
	auth.GET("/gestiones/activa", todos, h.gestiones.Activa)
	auth.POST("/gestiones", admin,
		middleware.Audit(bitacoraSvc, models.AccionCrear, "gestiones"), h.gestiones.Create)
	auth.PUT("/gestiones/:id/activar", admin,
		middleware.Audit(bitacoraSvc, models.AccionActualizar, "gestiones"), h.gestiones.Activar)

	// Docentes
	auth.GET("/docentes", lectura, h.docentes.List)
	auth.GET("/docentes/tipos-contrato", lectura, h.docentes.TiposContrato)
	auth.GET("/docentes/:cod", lectura, h.docentes.Get)
	auth.GET("/docentes/:cod/carga", lectura, h.docentes.Carga)
	auth.GET("/docentes/:cod/horario", todos, h.docentes.Horario)
	auth.POST("/docentes", adminCoord,
		middleware.Audit(bitacoraSvc, models.AccionCrear, "docentes"), h.docentes.Create)
	auth.PUT("/docentes/:cod", adminCoord,
		middleware.Audit(bitacoraSvc, models.AccionActualizar, "docentes"), h.docentes.Update)
	auth.DELETE("/docentes/:cod", adminCoord,
		middleware.Audit(bitacoraSvc, models.AccionDesactivar, "docentes"), h.docentes.Delete)

	// Materias
	auth.GET("/materias", lectura, h.materias.List)
	auth.GET("/materias/:id", lectura, h.materias.Get)
	auth.POST("/materias", adminCoord,
		middleware.Audit(bitacoraSvc, models.AccionCrear, "materias"), h.materias.Create)
	auth.PUT("/materias/:id", adminCoord,
		middleware.Audit(bitacoraSvc, models.AccionActualizar, "materias"), h.materias.Update)
	auth.DELETE("/materias/:id", adminCoord,
		middleware.Audit(bitacoraSvc, models.AccionDesactivar, "materias"), h.materias.Delete)

	// Grupos
	auth.GET("/grupos", lectura, h.grupos.List)
	auth.GET("/grupos/:id", lectura, h.grupos.Get)
	auth.POST("/grupos", adminCoord,
		middleware.Audit(bitacoraSvc, models.AccionCrear, "grupos"), h.grupos.Create)
	auth.PUT("/grupos/:id", adminCoord,
		middleware.Audit(bitacoraSvc, models.AccionActualizar, "grupos"), h.grupos.Update)
	auth.DELETE("/grupos/:id", adminCoord,
		middleware.Audit(bitacoraSvc, models.AccionDesactivar, "grupos"), h.grupos.Delete)

	// Materias-grupos (oferta por gestión)
	auth.GET("/materias-grupos", lectura, h.materiaGrupos.List)
	auth.GET("/materias-grupos/sin-docente", lectura, h.materiaGrupos.SinDocente)
	auth.GET("/materias-grupos/:id", lectura, h.materiaGrupos.Get)
	auth.POST("/materias-grupos", adminCoord,
		middleware.Audit(bitacoraSvc, models.AccionCrear, "materias_grupos"), h.materiaGrupos.Create)
	auth.PATCH("/materias-grupos/:id", adminCoord,
		middleware.Audit(bitacoraSvc, models.AccionActualizar, "materias_grupos"), h.materiaGrupos.UpdateObservacion)
	auth.PUT("/materias-grupos/:id/reactivar", adminCoord,
		middleware.Audit(bitacoraSvc, models.AccionActualizar, "materias_grupos"), h.materiaGrupos.Reactivar)
	auth.DELETE("/materias-grupos/:id", adminCoord,
		middleware.Audit(bitacoraSvc, models.AccionDesactivar, "materias_grupos"), h.materiaGrupos.Delete)

	// Asignaciones (Coordinador)
	auth.GET("/asignaciones", lectura, h.asignaciones.List)
	auth.GET("/asignaciones/:id", lectura, h.asignaciones.Get)
	auth.GET("/asignaciones/:id/horarios", todos, h.horarios.ListByAsignacion)
	auth.POST("/asignaciones", coordinador,
		middleware.Audit(bitacoraSvc, models.AccionAsignarDocente, "asignaciones"), h.asignaciones.Create)
	auth.PUT("/asignaciones/:id/horas", coordinador,
		middleware.Audit(bitacoraSvc, models.AccionActualizarAsignacion, "asignaciones"), h.asignaciones.UpdateHoras)
	auth.DELETE("/asignaciones/:id", coordinador,
		middleware.Audit(bitacoraSvc, models.AccionDesactivarAsignacion, "asignaciones"), h.asignaciones.Delete)

	// Aulas
	auth.GET("/aulas", lectura, h.aulas.List)
	auth.GET("/aulas/tipos", lectura, h.aulas.TiposAula)
	auth.GET("/aulas/:id", lectura, h.aulas.Get)
	auth.POST("/aulas", adminCoord,
		middleware.Audit(bitacoraSvc, models.AccionCrear, "aulas"), h.aulas.Create)
	auth.PUT("/aulas/:id", adminCoord,
		middleware.Audit(bitacoraSvc, models.AccionActualizar, "aulas"), h.aulas.Update)
	auth.PUT("/aulas/:id/mantenimiento", adminCoord,
		middleware.Audit(bitacoraSvc, models.AccionActualizar, "aulas"), h.aulas.SetMantenimiento)
	auth.PUT("/aulas/:id/reactivar", adminCoord,
		middleware.Audit(bitacoraSvc, models.AccionActualizar, "aulas"), h.aulas.Reactivar)
	auth.DELETE("/aulas/:id", adminCoord,
		middleware.Audit(bitacoraSvc, models.AccionDesactivar, "aulas"), h.aulas.Delete)

	// Disponibilidad (Coordinador)
	auth.GET("/disponibilidad", coordinador,
		middleware.Audit(bitacoraSvc, models.AccionConsultaDisponib, "disponibilidad"), h.disponibilidad.Consultar)

	// Horarios
	auth.GET("/horarios/dias", todos, h.horarios.Dias)
	auth.GET("/horarios/bloques", todos, h.horarios.Bloques)
	auth.GET("/horarios/tipos-clase", todos, h.horarios.TiposClase)
	auth.POST("/horarios", coordinador,
		middleware.Audit(bitacoraSvc, models.AccionCrear, "horarios"), h.horarios.Create)
	auth.DELETE("/horarios/:id", coordinador,
		middleware.Audit(bitacoraSvc, models.AccionDesactivar, "horarios"), h.horarios.Delete)

	// Asistencias y justificaciones
	auth.GET("/asistencias", todos, h.asistencias.List)
	auth.GET("/asistencias/resumen", lectura, h.asistencias.Resumen)
	auth.GET("/asistencias/:id/justificaciones", todos, h.asistencias.JustificacionesDeAsistencia)
	auth.POST("/asistencias", docente,
		middleware.Audit(bitacoraSvc, models.AccionCrear, "asistencias"), h.asistencias.Registrar)
	auth.POST("/justificaciones", docente,
		middleware.Audit(bitacoraSvc, models.AccionCrear, "justificaciones"), h.asistencias.Justificar)
	auth.GET("/justificaciones/pendientes", adminAutoridad, h.asistencias.JustificacionesPendientes)
	auth.PUT("/justificaciones/:id/revisar", adminAutoridad,
		middleware.Audit(bitacoraSvc, models.AccionActualizar, "justificaciones"), h.asistencias.Revisar)

	// Reportes (Administrador y Autoridad crean; dueño o rol consulta estado)
	auth.POST("/reportes", adminAutoridad,
		middleware.Audit(bitacoraSvc, models.AccionCrear, "reportes"), h.reportes.Crear)
	auth.GET("/reportes/:id", todos, h.reportes.Estado)

	// Bitácora
	auth.GET("/bitacora", adminAutoridad, h.bitacora.List)

	return r
}
