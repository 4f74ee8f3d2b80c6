package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jcalderon-dev/sigha-api/internal/service"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
	"github.com/jcalderon-dev/sigha-api/pkg/response"
)

// GestionHandler exposes academic period management.
type GestionHandler struct {
	gestiones *service.GestionService
}

// NewGestionHandler constructs the handler.
func NewGestionHandler(gestiones *service.GestionService) *GestionHandler {
	return &GestionHandler{gestiones: gestiones}
}

// List godoc
// @Summary List academic periods
// @Tags Gestiones
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /gestiones [get]
func (h *GestionHandler) List(c *gin.Context) {
	gestiones, err := h.gestiones.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gestiones, nil)
}

// Activa godoc
// @Summary Get the active academic period
// @Tags Gestiones
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /gestiones/activa [get]
func (h *GestionHandler) Activa(c *gin.Context) {
	gestion, err := h.gestiones.Activa(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gestion, nil)
}

// Create godoc
// @Summary Create academic period
// @Tags Gestiones
// @Accept json
// @Produce json
// @Param payload body service.CrearGestionRequest true "Period payload"
// @Success 201 {object} response.Envelope
// @Router /gestiones [post]
func (h *GestionHandler) Create(c *gin.Context) {
	var req service.CrearGestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "datos de gestión inválidos"))
		return
	}
	gestion, err := h.gestiones.Crear(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gestion)
}

// Activar godoc
// @Summary Activate an academic period
// @Description Activates the period and deactivates any other active one
// @Tags Gestiones
// @Produce json
// @Param id path int true "Period ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /gestiones/{id}/activar [put]
func (h *GestionHandler) Activar(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	gestion, err := h.gestiones.Activar(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gestion, nil)
}
