package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	"github.com/jcalderon-dev/sigha-api/internal/service"
)

// Audit records a bitácora entry after each successful request.
func Audit(bitacora *service.BitacoraService, accion, recurso string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		var userID *string
		if claims, ok := c.Get(ContextUserKey); ok {
			user := claims.(*models.JWTClaims)
			userID = &user.UserID
		}

		bitacora.Registrar(c.Request.Context(), service.RegistroBitacora{
			UserID:      userID,
			Accion:      accion,
			Recurso:     recurso,
			Descripcion: c.Request.Method + " " + c.FullPath(),
			Detalle: map[string]interface{}{
				"path":    c.FullPath(),
				"method":  c.Request.Method,
				"status":  c.Writer.Status(),
				"latency": time.Since(start).Milliseconds(),
			},
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		})
	}
}
