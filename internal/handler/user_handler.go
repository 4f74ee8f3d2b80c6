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

// UserHandler exposes account administration.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler constructs the handler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func clientMeta(c *gin.Context) service.ClientMeta {
	return service.ClientMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
}

// List godoc
// @Summary List user accounts
// @Tags Usuarios
// @Produce json
// @Param role query string false "Filter by role"
// @Param active query bool false "Filter by active status"
// @Param search query string false "Search by name or email"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /usuarios [get]
func (h *UserHandler) List(c *gin.Context) {
	filter := models.UserFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	if raw := c.Query("role"); raw != "" {
		role := models.UserRole(strings.ToUpper(raw))
		filter.Role = &role
	}
	if raw := c.Query("active"); raw != "" {
		active := strings.EqualFold(raw, "true")
		filter.Active = &active
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	users, pagination, err := h.users.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, pagination)
}

// Get godoc
// @Summary Get user account
// @Tags Usuarios
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /usuarios/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Create godoc
// @Summary Create user account
// @Description Teacher accounts require an existing cod_docente without one
// @Tags Usuarios
// @Accept json
// @Produce json
// @Param payload body service.CreateUserRequest true "Account payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /usuarios [post]
func (h *UserHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "datos de usuario inválidos"))
		return
	}

	user, err := h.users.Create(c.Request.Context(), req, claims.UserID, clientMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Update godoc
// @Summary Update user account
// @Tags Usuarios
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body service.UpdateUserRequest true "Account payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /usuarios/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "datos de usuario inválidos"))
		return
	}

	user, err := h.users.Update(c.Request.Context(), c.Param("id"), req, claims.UserID, clientMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Delete godoc
// @Summary Deactivate user account
// @Tags Usuarios
// @Param id path string true "User ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /usuarios/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.users.Delete(c.Request.Context(), c.Param("id"), claims.UserID, clientMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
