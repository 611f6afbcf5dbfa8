package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"task-manager/internal/metrics"
	"task-manager/internal/service"
)

// RouterConfig agrupa las opciones de transporte del router.
type RouterConfig struct {
	CORSAllowedOrigin string
	// MetricsHandler se monta en /metrics cuando no es nil.
	MetricsHandler http.Handler
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	rec metrics.Recorder,
	jwtSvc *service.JWTService,
	authH *AuthHandler,
	taskH *TaskHandler,
	healthH *HealthHandler,
	cfg RouterConfig,
) *gin.Engine {
	if rec == nil {
		rec = metrics.Nop{}
	}
	r := gin.New()

	// Middlewares basicos: logging, recovery, CORS y JSON content-type.
	r.Use(zapLoggerMiddleware(logger, rec), gin.Recovery(), corsMiddleware(cfg.CORSAllowedOrigin), jsonContentTypeMiddleware())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found."})
	})

	r.GET("/", healthH.Home)
	r.GET("/healthz", healthH.Healthz)
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)

	guard := JWTAuthMiddleware(logger, jwtSvc, rec)

	tasks := api.Group("/tasks", guard)
	tasks.POST("", taskH.CreateTask)
	tasks.GET("", taskH.ListTasks)
	tasks.GET("/:id", taskH.GetTask)
	tasks.PUT("/:id", taskH.UpdateTask)
	tasks.DELETE("/:id", taskH.DeleteTask)

	api.GET("/dashboard", guard, taskH.Dashboard)

	return r
}

// zapLoggerMiddleware loguea cada request y alimenta las metricas HTTP.
func zapLoggerMiddleware(logger *zap.Logger, rec metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		rec.RecordRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), latency)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
