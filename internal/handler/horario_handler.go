package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jcalderon-dev/sigha-api/internal/service"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
	"github.com/jcalderon-dev/sigha-api/pkg/response"
)

// HorarioHandler exposes class-schedule operations and timetable catalogs.
type HorarioHandler struct {
	horarios *service.HorarioService
}

// NewHorarioHandler constructs the handler.
func NewHorarioHandler(horarios *service.HorarioService) *HorarioHandler {
	return &HorarioHandler{horarios: horarios}
}

// Dias godoc
// @Summary List week days
// @Tags Horarios
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /horarios/dias [get]
func (h *HorarioHandler) Dias(c *gin.Context) {
	dias, err := h.horarios.Dias(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dias, nil)
}

// Bloques godoc
// @Summary List time blocks
// @Tags Horarios
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /horarios/bloques [get]
func (h *HorarioHandler) Bloques(c *gin.Context) {
	bloques, err := h.horarios.Bloques(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bloques, nil)
}

// TiposClase godoc
// @Summary List class types
// @Tags Horarios
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /horarios/tipos-clase [get]
func (h *HorarioHandler) TiposClase(c *gin.Context) {
	tipos, err := h.horarios.TiposClase(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tipos, nil)
}

// ListByAsignacion godoc
// @Summary List class schedules of an assignment
// @Tags Horarios
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /asignaciones/{id}/horarios [get]
func (h *HorarioHandler) ListByAsignacion(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	horarios, err := h.horarios.ListByAsignacion(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, horarios, nil)
}

// Create godoc
// @Summary Schedule a class in a room, day and time block
// @Description Rejects room, teacher and group collisions for the same slot
// @Tags Horarios
// @Accept json
// @Produce json
// @Param payload body service.CrearHorarioRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /horarios [post]
func (h *HorarioHandler) Create(c *gin.Context) {
	var req service.CrearHorarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "datos de horario inválidos"))
		return
	}
	horario, err := h.horarios.Crear(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, horario)
}

// Delete godoc
// @Summary Deactivate a class schedule
// @Tags Horarios
// @Param id path int true "Schedule ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /horarios/{id} [delete]
func (h *HorarioHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.horarios.Desactivar(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
