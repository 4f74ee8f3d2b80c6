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

// BitacoraHandler exposes the audit trail.
type BitacoraHandler struct {
	bitacora *service.BitacoraService
}

// NewBitacoraHandler constructs the handler.
func NewBitacoraHandler(bitacora *service.BitacoraService) *BitacoraHandler {
	return &BitacoraHandler{bitacora: bitacora}
}

// List godoc
// @Summary List audit trail entries
// @Tags Bitacora
// @Produce json
// @Param user_id query string false "Filter by actor"
// @Param accion query string false "Filter by action"
// @Param desde query string false "From date (YYYY-MM-DD)"
// @Param hasta query string false "To date (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /bitacora [get]
func (h *BitacoraHandler) List(c *gin.Context) {
	filter := models.BitacoraFilter{
		UserID: c.Query("user_id"),
		Accion: c.Query("accion"),
	}
	if raw := c.Query("desde"); raw != "" {
		desde, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "el parámetro desde debe tener formato YYYY-MM-DD"))
			return
		}
		filter.Desde = &desde
	}
	if raw := c.Query("hasta"); raw != "" {
		hasta, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "el parámetro hasta debe tener formato YYYY-MM-DD"))
			return
		}
		filter.Hasta = &hasta
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = size
	}

	entradas, pagination, err := h.bitacora.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entradas, pagination)
}
