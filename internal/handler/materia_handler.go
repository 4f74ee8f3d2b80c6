package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jcalderon-dev/sigha-api/internal/service"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
	"github.com/jcalderon-dev/sigha-api/pkg/response"
)

// MateriaHandler exposes subject management.
type MateriaHandler struct {
	materias *service.MateriaService
}

// NewMateriaHandler constructs the handler.
func NewMateriaHandler(materias *service.MateriaService) *MateriaHandler {
	return &MateriaHandler{materias: materias}
}

// List godoc
// @Summary List subjects
// @Tags Materias
// @Produce json
// @Param incluir_inactivas query bool false "Include inactive subjects"
// @Success 200 {object} response.Envelope
// @Router /materias [get]
func (h *MateriaHandler) List(c *gin.Context) {
	materias, err := h.materias.List(c.Request.Context(), c.Query("incluir_inactivas") == "true")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, materias, nil)
}

// Get godoc
// @Summary Get subject detail
// @Tags Materias
// @Produce json
// @Param id path int true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /materias/{id} [get]
func (h *MateriaHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	materia, err := h.materias.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, materia, nil)
}

// Create godoc
// @Summary Create subject
// @Tags Materias
// @Accept json
// @Produce json
// @Param payload body service.MateriaRequest true "Subject payload"
// @Success 201 {object} response.Envelope
// @Router /materias [post]
func (h *MateriaHandler) Create(c *gin.Context) {
	var req service.MateriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "datos de materia inválidos"))
		return
	}
	materia, err := h.materias.Crear(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, materia)
}

// Update godoc
// @Summary Update subject
// @Tags Materias
// @Accept json
// @Produce json
// @Param id path int true "Subject ID"
// @Param payload body service.MateriaRequest true "Subject payload"
// @Success 200 {object} response.Envelope
// @Router /materias/{id} [put]
func (h *MateriaHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.MateriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "datos de materia inválidos"))
		return
	}
	materia, err := h.materias.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, materia, nil)
}

// Delete godoc
// @Summary Deactivate subject
// @Tags Materias
// @Param id path int true "Subject ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /materias/{id} [delete]
func (h *MateriaHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.materias.Desactivar(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
