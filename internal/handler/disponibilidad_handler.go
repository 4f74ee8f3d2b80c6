package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jcalderon-dev/sigha-api/internal/service"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
	"github.com/jcalderon-dev/sigha-api/pkg/response"
)

// DisponibilidadHandler answers classroom availability queries.
type DisponibilidadHandler struct {
	disponibilidad *service.DisponibilidadService
}

// NewDisponibilidadHandler constructs the handler.
func NewDisponibilidadHandler(disponibilidad *service.DisponibilidadService) *DisponibilidadHandler {
	return &DisponibilidadHandler{disponibilidad: disponibilidad}
}

// Consultar godoc
// @Summary Query classroom availability for a day and time block
// @Description Resolves free and occupied classrooms for the active period,
// excluding rooms under maintenance
// @Tags Disponibilidad
// @Produce json
// @Param dia query int true "Day ID"
// @Param bloque query int true "Time block ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /disponibilidad [get]
func (h *DisponibilidadHandler) Consultar(c *gin.Context) {
	idDia, err := strconv.ParseInt(c.Query("dia"), 10, 64)
	if err != nil || idDia <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "el parámetro dia es requerido"))
		return
	}
	idBloque, err := strconv.ParseInt(c.Query("bloque"), 10, 64)
	if err != nil || idBloque <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "el parámetro bloque es requerido"))
		return
	}

	consulta, err := h.disponibilidad.Consultar(c.Request.Context(), idDia, idBloque)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, consulta, nil)
}
