package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jcalderon-dev/sigha-api/internal/service"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
	"github.com/jcalderon-dev/sigha-api/pkg/response"
)

// MateriaGrupoHandler exposes the subject-group offer catalog.
type MateriaGrupoHandler struct {
	ofertas *service.MateriaGrupoService
}

// NewMateriaGrupoHandler constructs the handler.
func NewMateriaGrupoHandler(ofertas *service.MateriaGrupoService) *MateriaGrupoHandler {
	return &MateriaGrupoHandler{ofertas: ofertas}
}

// List godoc
// @Summary List subject-group offers of the active period
// @Tags MateriasGrupos
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /materias-grupos [get]
func (h *MateriaGrupoHandler) List(c *gin.Context) {
	ofertas, err := h.ofertas.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ofertas, nil)
}

// SinDocente godoc
// @Summary List offers without an assigned teacher
// @Tags MateriasGrupos
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /materias-grupos/sin-docente [get]
func (h *MateriaGrupoHandler) SinDocente(c *gin.Context) {
	ofertas, err := h.ofertas.SinDocente(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ofertas, nil)
}

// Get godoc
// @Summary Get offer detail
// @Tags MateriasGrupos
// @Produce json
// @Param id path int true "Offer ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /materias-grupos/{id} [get]
func (h *MateriaGrupoHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	oferta, err := h.ofertas.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, oferta, nil)
}

// Create godoc
// @Summary Open a subject-group offer in the active period
// @Tags MateriasGrupos
// @Accept json
// @Produce json
// @Param payload body service.CrearMateriaGrupoRequest true "Offer payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /materias-grupos [post]
func (h *MateriaGrupoHandler) Create(c *gin.Context) {
	var req service.CrearMateriaGrupoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "datos de oferta inválidos"))
		return
	}
	oferta, err := h.ofertas.Crear(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, oferta)
}

// UpdateObservacion godoc
// @Summary Update the offer's observation note
// @Tags MateriasGrupos
// @Accept json
// @Produce json
// @Param id path int true "Offer ID"
// @Param payload body object true "Observation payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /materias-grupos/{id} [patch]
func (h *MateriaGrupoHandler) UpdateObservacion(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var payload struct {
		Observacion *string `json:"observacion"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "observación inválida"))
		return
	}
	oferta, err := h.ofertas.ActualizarObservacion(c.Request.Context(), id, payload.Observacion)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, oferta, nil)
}

// Delete godoc
// @Summary Close a subject-group offer
// @Tags MateriasGrupos
// @Param id path int true "Offer ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /materias-grupos/{id} [delete]
func (h *MateriaGrupoHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.ofertas.Desactivar(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reactivar godoc
// @Summary Reopen a closed subject-group offer
// @Tags MateriasGrupos
// @Param id path int true "Offer ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /materias-grupos/{id}/reactivar [put]
func (h *MateriaGrupoHandler) Reactivar(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.ofertas.Reactivar(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
