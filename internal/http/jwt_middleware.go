package http

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"task-manager/internal/domain"
	"task-manager/internal/metrics"
	"task-manager/internal/service"
)

const identityKey = "auth_identity"

// JWTAuthMiddleware valida el bearer token y guarda la identidad en el contexto.
// No consulta el store ni verifica pertenencia de recursos.
func JWTAuthMiddleware(logger *zap.Logger, jwtSvc *service.JWTService, rec metrics.Recorder) gin.HandlerFunc {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return func(c *gin.Context) {
		if jwtSvc == nil {
			respondError(c, logger, domain.NewInternalError(errors.New("jwt not configured")))
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "bearer ") {
			rec.RecordAuthEvent(metrics.EventTokenDenied)
			respondError(c, logger, domain.ErrUnauthenticated)
			return
		}
		token := strings.TrimSpace(header[len("Bearer "):])
		if token == "" {
			rec.RecordAuthEvent(metrics.EventTokenDenied)
			respondError(c, logger, domain.ErrUnauthenticated)
			return
		}

		claims, err := jwtSvc.Parse(token)
		if err != nil {
			rec.RecordAuthEvent(metrics.EventTokenDenied)
			respondError(c, logger, domain.ErrInvalidToken)
			return
		}

		c.Set(identityKey, domain.Identity{UserID: claims.UserID})
		c.Next()
	}
}

// IdentityFrom obtiene la identidad autenticada desde el contexto.
func IdentityFrom(c *gin.Context) (domain.Identity, bool) {
	val, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	identity, ok := val.(domain.Identity)
	return identity, ok && identity.UserID != ""
}
