package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthHandler responde las rutas publicas de estado.
type HealthHandler struct {
	logger *zap.Logger
	ping   func(ctx context.Context) error
}

// NewHealthHandler recibe la funcion que verifica el store; nil significa siempre sano.
func NewHealthHandler(logger *zap.Logger, ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{logger: logger, ping: ping}
}

// Home maneja GET /.
func (h *HealthHandler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Home page"})
}

// Healthz maneja GET /healthz.
func (h *HealthHandler) Healthz(c *gin.Context) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
