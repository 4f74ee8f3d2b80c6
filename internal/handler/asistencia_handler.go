package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	"github.com/jcalderon-dev/sigha-api/internal/service"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
	"github.com/jcalderon-dev/sigha-api/pkg/response"
)

// AsistenciaHandler exposes attendance and justification endpoints.
type AsistenciaHandler struct {
	asistencias *service.AsistenciaService
}

// NewAsistenciaHandler constructs the handler.
func NewAsistenciaHandler(asistencias *service.AsistenciaService) *AsistenciaHandler {
	return &AsistenciaHandler{asistencias: asistencias}
}

func parseFiltroAsistencia(c *gin.Context) (models.ReporteAsistenciaFiltro, error) {
	var filtro models.ReporteAsistenciaFiltro

	idGestion, err := strconv.ParseInt(c.Query("id_gestion"), 10, 64)
	if err != nil || idGestion <= 0 {
		return filtro, appErrors.Clone(appErrors.ErrValidation, "el parámetro id_gestion es requerido")
	}
	filtro.IDGestion = idGestion

	parseID := func(param string, dst **int64) error {
		raw := c.Query(param)
		if raw == "" {
			return nil
		}
		val, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "el parámetro "+param+" es inválido")
		}
		*dst = &val
		return nil
	}
	parseFecha := func(param string, dst **time.Time) error {
		raw := c.Query(param)
		if raw == "" {
			return nil
		}
		fecha, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "el parámetro "+param+" debe tener formato YYYY-MM-DD")
		}
		*dst = &fecha
		return nil
	}

	if err := parseID("cod_docente", &filtro.CodDocente); err != nil {
		return filtro, err
	}
	if err := parseID("id_materia", &filtro.IDMateria); err != nil {
		return filtro, err
	}
	if err := parseID("id_grupo", &filtro.IDGrupo); err != nil {
		return filtro, err
	}
	if err := parseFecha("fecha_inicio", &filtro.FechaInicio); err != nil {
		return filtro, err
	}
	if err := parseFecha("fecha_fin", &filtro.FechaFin); err != nil {
		return filtro, err
	}
	return filtro, nil
}

// List godoc
// @Summary List attendance records
// @Description Filter by period (required), teacher, subject, group and date range.
// Teachers only see their own records.
// @Tags Asistencias
// @Produce json
// @Param id_gestion query int true "Academic period ID"
// @Param cod_docente query int false "Teacher code"
// @Param id_materia query int false "Subject ID"
// @Param id_grupo query int false "Group ID"
// @Param fecha_inicio query string false "Start date (YYYY-MM-DD)"
// @Param fecha_fin query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /asistencias [get]
func (h *AsistenciaHandler) List(c *gin.Context) {
	filtro, err := parseFiltroAsistencia(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleDocente {
		filtro.CodDocente = claims.CodDocente
	}

	asistencias, err := h.asistencias.List(c.Request.Context(), filtro)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, asistencias, nil)
}

// Resumen godoc
// @Summary Attendance summary per teacher
// @Description Aggregates presentes, ausentes and retrasos for a period
// @Tags Asistencias
// @Produce json
// @Param id_gestion query int true "Academic period ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /asistencias/resumen [get]
func (h *AsistenciaHandler) Resumen(c *gin.Context) {
	idGestion, err := strconv.ParseInt(c.Query("id_gestion"), 10, 64)
	if err != nil || idGestion <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "el parámetro id_gestion es requerido"))
		return
	}
	resumen, err := h.asistencias.ResumenPorDocente(c.Request.Context(), idGestion)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resumen, nil)
}

// Registrar godoc
// @Summary Register attendance for a class schedule
// @Description One record per schedule per date
// @Tags Asistencias
// @Accept json
// @Produce json
// @Param payload body service.RegistrarAsistenciaRequest true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /asistencias [post]
func (h *AsistenciaHandler) Registrar(c *gin.Context) {
	var req service.RegistrarAsistenciaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "datos de asistencia inválidos"))
		return
	}
	asistencia, err := h.asistencias.Registrar(c.Request.Context(), req, models.RegistroManual)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, asistencia)
}

// Justificar godoc
// @Summary File a justification against an absence or delay
// @Tags Justificaciones
// @Accept json
// @Produce json
// @Param payload body service.CrearJustificacionRequest true "Justification payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /justificaciones [post]
func (h *AsistenciaHandler) Justificar(c *gin.Context) {
	var req service.CrearJustificacionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "datos de justificación inválidos"))
		return
	}
	justificacion, err := h.asistencias.Justificar(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, justificacion)
}

// JustificacionesPendientes godoc
// @Summary List justifications awaiting review
// @Tags Justificaciones
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /justificaciones/pendientes [get]
func (h *AsistenciaHandler) JustificacionesPendientes(c *gin.Context) {
	pendientes, err := h.asistencias.JustificacionesPendientes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pendientes, nil)
}

// JustificacionesDeAsistencia godoc
// @Summary List justifications filed against an attendance record
// @Tags Justificaciones
// @Produce json
// @Param id path int true "Attendance ID"
// @Success 200 {object} response.Envelope
// @Router /asistencias/{id}/justificaciones [get]
func (h *AsistenciaHandler) JustificacionesDeAsistencia(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	justificaciones, err := h.asistencias.JustificacionesDeAsistencia(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, justificaciones, nil)
}

// Revisar godoc
// @Summary Review a pending justification
// @Description Approving a justification marks the attendance as PRESENTE
// @Tags Justificaciones
// @Accept json
// @Produce json
// @Param id path int true "Justification ID"
// @Param payload body service.RevisarJustificacionRequest true "Review payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /justificaciones/{id}/revisar [put]
func (h *AsistenciaHandler) Revisar(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.RevisarJustificacionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "datos de revisión inválidos"))
		return
	}
	justificacion, err := h.asistencias.RevisarJustificacion(c.Request.Context(), id, req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, justificacion, nil)
}
