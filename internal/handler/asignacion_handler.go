package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	"github.com/jcalderon-dev/sigha-api/internal/service"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
	"github.com/jcalderon-dev/sigha-api/pkg/response"
)

// AsignacionHandler exposes teacher-assignment operations.
type AsignacionHandler struct {
	asignaciones *service.AsignacionService
}

// NewAsignacionHandler constructs the handler.
func NewAsignacionHandler(asignaciones *service.AsignacionService) *AsignacionHandler {
	return &AsignacionHandler{asignaciones: asignaciones}
}

// List godoc
// @Summary List teacher assignments
// @Tags Asignaciones
// @Produce json
// @Param id_gestion query int false "Filter by academic period"
// @Param cod_docente query int false "Filter by teacher code"
// @Success 200 {object} response.Envelope
// @Router /asignaciones [get]
func (h *AsignacionHandler) List(c *gin.Context) {
	var filter models.AsignacionFilter
	if raw := c.Query("id_gestion"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id_gestion inválido"))
			return
		}
		filter.IDGestion = &id
	}
	if raw := c.Query("cod_docente"); raw != "" {
		cod, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "cod_docente inválido"))
			return
		}
		filter.CodDocente = &cod
	}

	asignaciones, err := h.asignaciones.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, asignaciones, nil)
}

// Get godoc
// @Summary Get assignment detail
// @Tags Asignaciones
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /asignaciones/{id} [get]
func (h *AsignacionHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	asignacion, err := h.asignaciones.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, asignacion, nil)
}

// Create godoc
// @Summary Assign a teacher to a subject-group
// @Description Validates the contract hour ceiling and offer availability
// before creating the assignment
// @Tags Asignaciones
// @Accept json
// @Produce json
// @Param payload body service.CrearAsignacionRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /asignaciones [post]
func (h *AsignacionHandler) Create(c *gin.Context) {
	var req service.CrearAsignacionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "datos de asignación inválidos"))
		return
	}
	asignacion, err := h.asignaciones.Crear(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, asignacion)
}

// UpdateHoras godoc
// @Summary Update assigned weekly hours
// @Description Re-validates the teacher's contract ceiling with the new hours
// @Tags Asignaciones
// @Accept json
// @Produce json
// @Param id path int true "Assignment ID"
// @Param payload body service.ActualizarHorasRequest true "Hours payload"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /asignaciones/{id}/horas [put]
func (h *AsignacionHandler) UpdateHoras(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.ActualizarHorasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "horas inválidas"))
		return
	}
	asignacion, err := h.asignaciones.ActualizarHoras(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, asignacion, nil)
}

// Delete godoc
// @Summary Release a teacher assignment
// @Description Deactivates the assignment together with its class schedules
// @Tags Asignaciones
// @Param id path int true "Assignment ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /asignaciones/{id} [delete]
func (h *AsignacionHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.asignaciones.Desactivar(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
