package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"task-manager/internal/domain"
	"task-manager/internal/metrics"
	"task-manager/internal/service"
)

// TaskHandler mantiene dependencias para endpoints de tareas.
// Todas sus rutas van detras de JWTAuthMiddleware.
type TaskHandler struct {
	logger   *zap.Logger
	taskServ *service.TaskService
	metrics  metrics.Recorder
}

// NewTaskHandler crea una instancia de TaskHandler con dependencias necesarias.
func NewTaskHandler(logger *zap.Logger, taskServ *service.TaskService, rec metrics.Recorder) *TaskHandler {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &TaskHandler{
		logger:   logger,
		taskServ: taskServ,
		metrics:  rec,
	}
}

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   *bool  `json:"completed"`
}

// identity corta la request si el middleware no dejo identidad.
func (h *TaskHandler) identity(c *gin.Context) (domain.Identity, bool) {
	identity, ok := IdentityFrom(c)
	if !ok {
		respondError(c, h.logger, domain.ErrUnauthenticated)
	}
	return identity, ok
}

// CreateTask maneja POST /api/tasks.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	var req taskRequest
	if err := bindJSON(c, &req); err != nil {
		h.logger.Warn("invalid create task request", zap.Error(err))
		respondError(c, h.logger, err)
		return
	}

	task, err := h.taskServ.Create(c.Request.Context(), identity, service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.metrics.RecordTaskOperation("create")
	c.JSON(http.StatusCreated, task)
}

// ListTasks maneja GET /api/tasks.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	tasks, err := h.taskServ.List(c.Request.Context(), identity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// GetTask maneja GET /api/tasks/:id.
func (h *TaskHandler) GetTask(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	task, err := h.taskServ.Get(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTask maneja PUT /api/tasks/:id.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	var req taskRequest
	if err := bindJSON(c, &req); err != nil {
		h.logger.Warn("invalid update task request", zap.Error(err))
		respondError(c, h.logger, err)
		return
	}

	task, err := h.taskServ.Update(c.Request.Context(), identity, c.Param("id"), service.UpdateTaskInput{
		TaskInput: service.TaskInput{
			Title:       req.Title,
			Description: req.Description,
		},
		Completed: req.Completed,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.metrics.RecordTaskOperation("update")
	c.JSON(http.StatusOK, task)
}

// DeleteTask maneja DELETE /api/tasks/:id.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	if err := h.taskServ.Delete(c.Request.Context(), identity, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.metrics.RecordTaskOperation("delete")
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted."})
}

// Dashboard maneja GET /api/dashboard.
func (h *TaskHandler) Dashboard(c *gin.Context) {
	identity, ok := h.identity(c)
	if !ok {
		return
	}
	summary, err := h.taskServ.Summary(c.Request.Context(), identity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
