package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	"github.com/jcalderon-dev/sigha-api/internal/service"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
	"github.com/jcalderon-dev/sigha-api/pkg/response"
)

// DocenteHandler wires teacher services to HTTP routes.
type DocenteHandler struct {
	docentes     *service.DocenteService
	asignaciones *service.AsignacionService
	horarios     *service.HorarioService
}

// NewDocenteHandler constructs a new DocenteHandler.
func NewDocenteHandler(docentes *service.DocenteService, asignaciones *service.AsignacionService, horarios *service.HorarioService) *DocenteHandler {
	return &DocenteHandler{docentes: docentes, asignaciones: asignaciones, horarios: horarios}
}

// List godoc
// @Summary List teachers
// @Tags Docentes
// @Produce json
// @Param search query string false "Search by name or email"
// @Param activo query bool false "Filter by active status"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort field (nombre_completo,email,cod_docente)"
// @Param order query string false "Sort order (asc/desc)"
// @Success 200 {object} response.Envelope
// @Router /docentes [get]
func (h *DocenteHandler) List(c *gin.Context) {
	filter := models.DocenteFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	if activo := c.Query("activo"); activo != "" {
		switch strings.ToLower(activo) {
		case "true":
			val := true
			filter.Activo = &val
		case "false":
			val := false
			filter.Activo = &val
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	docentes, pagination, err := h.docentes.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docentes, pagination)
}

// Get godoc
// @Summary Get teacher detail
// @Tags Docentes
// @Produce json
// @Param cod path int true "Teacher code"
// @Success 200 {object} response.Envelope
// @Router /docentes/{cod} [get]
func (h *DocenteHandler) Get(c *gin.Context) {
	cod, err := pathID(c, "cod")
	if err != nil {
		response.Error(c, err)
		return
	}
	docente, err := h.docentes.Get(c.Request.Context(), cod)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docente, nil)
}

// TiposContrato godoc
// @Summary List contract types
// @Tags Docentes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /docentes/tipos-contrato [get]
func (h *DocenteHandler) TiposContrato(c *gin.Context) {
	tipos, err := h.docentes.TiposContrato(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tipos, nil)
}

// Create godoc
// @Summary Create teacher
// @Tags Docentes
// @Accept json
// @Produce json
// @Param payload body service.CrearDocenteRequest true "Teacher payload"
// @Success 201 {object} response.Envelope
// @Router /docentes [post]
func (h *DocenteHandler) Create(c *gin.Context) {
	var req service.CrearDocenteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "datos de docente inválidos"))
		return
	}
	docente, err := h.docentes.Crear(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, docente)
}

// Update godoc
// @Summary Update teacher
// @Tags Docentes
// @Accept json
// @Produce json
// @Param cod path int true "Teacher code"
// @Param payload body service.ActualizarDocenteRequest true "Teacher payload"
// @Success 200 {object} response.Envelope
// @Router /docentes/{cod} [put]
func (h *DocenteHandler) Update(c *gin.Context) {
	cod, err := pathID(c, "cod")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.ActualizarDocenteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "datos de docente inválidos"))
		return
	}
	docente, err := h.docentes.Actualizar(c.Request.Context(), cod, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docente, nil)
}

// Delete godoc
// @Summary Deactivate teacher
// @Tags Docentes
// @Param cod path int true "Teacher code"
// @Success 204
// @Router /docentes/{cod} [delete]
func (h *DocenteHandler) Delete(c *gin.Context) {
	cod, err := pathID(c, "cod")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.docentes.Desactivar(c.Request.Context(), cod); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Carga godoc
// @Summary Get teacher workload in the active period
// @Description Returns assigned hours, contract ceiling and load percentage
// @Tags Docentes
// @Produce json
// @Param cod path int true "Teacher code"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /docentes/{cod}/carga [get]
func (h *DocenteHandler) Carga(c *gin.Context) {
	cod, err := pathID(c, "cod")
	if err != nil {
		response.Error(c, err)
		return
	}
	carga, err := h.asignaciones.Carga(c.Request.Context(), cod)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, carga, nil)
}

// Horario godoc
// @Summary Get the teacher's weekly schedule
// @Tags Docentes
// @Produce json
// @Param cod path int true "Teacher code"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /docentes/{cod}/horario [get]
func (h *DocenteHandler) Horario(c *gin.Context) {
	cod, err := pathID(c, "cod")
	if err != nil {
		response.Error(c, err)
		return
	}
	horarios, err := h.horarios.ListByDocente(c.Request.Context(), cod)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, horarios, nil)
}
