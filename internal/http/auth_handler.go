package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"task-manager/internal/domain"
	"task-manager/internal/metrics"
	"task-manager/internal/service"
)

// AuthHandler mantiene dependencias para registro y login.
type AuthHandler struct {
	logger   *zap.Logger
	authServ *service.AuthService
	metrics  metrics.Recorder
}

// NewAuthHandler crea una instancia de AuthHandler con dependencias necesarias.
func NewAuthHandler(logger *zap.Logger, authServ *service.AuthService, rec metrics.Recorder) *AuthHandler {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &AuthHandler{
		logger:   logger,
		authServ: authServ,
		metrics:  rec,
	}
}

// Register maneja POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := bindJSON(c, &req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		respondError(c, h.logger, err)
		return
	}

	user, err := h.authServ.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if domain.KindOf(err) != domain.KindInternal {
			h.logger.Warn("register rejected", zap.Error(err))
		}
		respondError(c, h.logger, err)
		return
	}

	h.metrics.RecordAuthEvent(metrics.EventRegister)
	c.JSON(http.StatusCreated, user)
}

// Login maneja POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := bindJSON(c, &req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		respondError(c, h.logger, err)
		return
	}

	res, err := h.authServ.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.RecordAuthEvent(metrics.EventLoginFailure)
		respondError(c, h.logger, err)
		return
	}

	h.metrics.RecordAuthEvent(metrics.EventLoginSuccess)
	c.JSON(http.StatusOK, res)
}
