package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jcalderon-dev/sigha-api/internal/service"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
	"github.com/jcalderon-dev/sigha-api/pkg/response"
)

// GrupoHandler exposes group management.
type GrupoHandler struct {
	grupos *service.GrupoService
}

// NewGrupoHandler constructs the handler.
func NewGrupoHandler(grupos *service.GrupoService) *GrupoHandler {
	return &GrupoHandler{grupos: grupos}
}

// List godoc
// @Summary List groups
// @Tags Grupos
// @Produce json
// @Param incluir_inactivos query bool false "Include inactive groups"
// @Success 200 {object} response.Envelope
// @Router /grupos [get]
func (h *GrupoHandler) List(c *gin.Context) {
	grupos, err := h.grupos.List(c.Request.Context(), c.Query("incluir_inactivos") == "true")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grupos, nil)
}

// Get godoc
// @Summary Get group detail
// @Tags Grupos
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /grupos/{id} [get]
func (h *GrupoHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	grupo, err := h.grupos.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grupo, nil)
}

// Create godoc
// @Summary Create group
// @Tags Grupos
// @Accept json
// @Produce json
// @Param payload body service.GrupoRequest true "Group payload"
// @Success 201 {object} response.Envelope
// @Router /grupos [post]
func (h *GrupoHandler) Create(c *gin.Context) {
	var req service.GrupoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "datos de grupo inválidos"))
		return
	}
	grupo, err := h.grupos.Crear(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grupo)
}

// Update godoc
// @Summary Update group
// @Tags Grupos
// @Accept json
// @Produce json
// @Param id path int true "Group ID"
// @Param payload body service.GrupoRequest true "Group payload"
// @Success 200 {object} response.Envelope
// @Router /grupos/{id} [put]
func (h *GrupoHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.GrupoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "datos de grupo inválidos"))
		return
	}
	grupo, err := h.grupos.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grupo, nil)
}

// Delete godoc
// @Summary Deactivate group
// @Tags Grupos
// @Param id path int true "Group ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /grupos/{id} [delete]
func (h *GrupoHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.grupos.Desactivar(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
