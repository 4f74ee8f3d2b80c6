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

// AulaHandler exposes classroom management.
type AulaHandler struct {
	aulas *service.AulaService
}

// NewAulaHandler constructs the handler.
func NewAulaHandler(aulas *service.AulaService) *AulaHandler {
	return &AulaHandler{aulas: aulas}
}

// List godoc
// @Summary List classrooms
// @Tags Aulas
// @Produce json
// @Param disponibles query bool false "Only rooms free of maintenance"
// @Param mantenimiento query bool false "Only rooms under maintenance"
// @Param incluir_inactivas query bool false "Include inactive rooms"
// @Param id_tipo_aula query int false "Filter by room type"
// @Success 200 {object} response.Envelope
// @Router /aulas [get]
func (h *AulaHandler) List(c *gin.Context) {
	filter := models.AulaFilter{
		SoloDisponibles:  c.Query("disponibles") == "true",
		EnMantenimiento:  c.Query("mantenimiento") == "true",
		IncluirInactivas: c.Query("incluir_inactivas") == "true",
	}
	if raw := c.Query("id_tipo_aula"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id_tipo_aula inválido"))
			return
		}
		filter.IDTipoAula = &id
	}

	aulas, err := h.aulas.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, aulas, nil)
}

// TiposAula godoc
// @Summary List classroom types
// @Tags Aulas
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /aulas/tipos [get]
func (h *AulaHandler) TiposAula(c *gin.Context) {
	tipos, err := h.aulas.TiposAula(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tipos, nil)
}

// Get godoc
// @Summary Get classroom detail
// @Tags Aulas
// @Produce json
// @Param id path int true "Classroom ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /aulas/{id} [get]
func (h *AulaHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	aula, err := h.aulas.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, aula, nil)
}

// Create godoc
// @Summary Create classroom
// @Tags Aulas
// @Accept json
// @Produce json
// @Param payload body service.AulaRequest true "Classroom payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /aulas [post]
func (h *AulaHandler) Create(c *gin.Context) {
	var req service.AulaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "datos de aula inválidos"))
		return
	}
	aula, err := h.aulas.Crear(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, aula)
}

// Update godoc
// @Summary Update classroom
// @Tags Aulas
// @Accept json
// @Produce json
// @Param id path int true "Classroom ID"
// @Param payload body service.AulaRequest true "Classroom payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /aulas/{id} [put]
func (h *AulaHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.AulaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "datos de aula inválidos"))
		return
	}
	aula, err := h.aulas.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, aula, nil)
}

// SetMantenimiento godoc
// @Summary Toggle classroom maintenance flag
// @Description Rooms under maintenance stop appearing as available
// @Tags Aulas
// @Accept json
// @Produce json
// @Param id path int true "Classroom ID"
// @Param payload body object true "Maintenance payload"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /aulas/{id}/mantenimiento [put]
func (h *AulaHandler) SetMantenimiento(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var payload struct {
		EnMantenimiento *bool `json:"en_mantenimiento" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "en_mantenimiento es requerido"))
		return
	}
	if err := h.aulas.SetMantenimiento(c.Request.Context(), id, *payload.EnMantenimiento); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reactivar godoc
// @Summary Reactivate classroom
// @Tags Aulas
// @Param id path int true "Classroom ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /aulas/{id}/reactivar [put]
func (h *AulaHandler) Reactivar(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.aulas.Reactivar(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Deactivate classroom
// @Description Fails while the room still has active class schedules
// @Tags Aulas
// @Param id path int true "Classroom ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /aulas/{id} [delete]
func (h *AulaHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.aulas.Desactivar(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
