package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	"github.com/jcalderon-dev/sigha-api/internal/service"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
	"github.com/jcalderon-dev/sigha-api/pkg/response"
)

// ReporteHandler exposes asynchronous attendance report generation.
type ReporteHandler struct {
	reportes *service.ReporteService
}

// NewReporteHandler constructs the handler.
func NewReporteHandler(reportes *service.ReporteService) *ReporteHandler {
	return &ReporteHandler{reportes: reportes}
}

// Crear godoc
// @Summary Request an attendance report export
// @Description Enqueues CSV or PDF generation; poll the job status for the
// signed download URL
// @Tags Reportes
// @Accept json
// @Produce json
// @Param payload body service.CrearReporteRequest true "Report payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reportes [post]
func (h *ReporteHandler) Crear(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CrearReporteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "datos de reporte inválidos"))
		return
	}

	job, err := h.reportes.Crear(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, job)
}

// Estado godoc
// @Summary Get report job status
// @Tags Reportes
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reportes/{id} [get]
func (h *ReporteHandler) Estado(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	job, err := h.reportes.Estado(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Descargar godoc
// @Summary Download a generated report through its signed token
// @Description The token embeds job identity, expiry and an HMAC signature;
// no session is required
// @Tags Reportes
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reportes/descargas/{token} [get]
func (h *ReporteHandler) Descargar(c *gin.Context) {
	descarga, err := h.reportes.Descargar(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer descarga.File.Close()

	info, err := descarga.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "no se pudo leer el archivo"))
		return
	}

	contentType := "text/csv"
	if descarga.Formato == models.FormatoPDF {
		contentType = "application/pdf"
	}
	c.DataFromReader(http.StatusOK, info.Size(), contentType, descarga.File, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", descarga.Filename),
	})
}
