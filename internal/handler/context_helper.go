package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jcalderon-dev/sigha-api/internal/middleware"
	"github.com/jcalderon-dev/sigha-api/internal/models"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// pathID parses a numeric path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "identificador inválido")
	}
	return id, nil
}
