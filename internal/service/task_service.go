package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"task-manager/internal/domain"
	"task-manager/internal/repository"
)

// TaskService aplica validacion y filtro por dueño a cada operacion sobre tareas.
type TaskService struct {
	logger   *zap.Logger
	tasks    repository.TaskRepository
	validate *validator.Validate
}

func NewTaskService(logger *zap.Logger, tasks repository.TaskRepository) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{
		logger:   logger,
		tasks:    tasks,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// TaskInput son los campos editables. El orden de los campos define
// cual se reporta primero cuando varios fallan.
type TaskInput struct {
	Title       string `validate:"required,min=3,max=100"`
	Description string `validate:"required,min=5,max=500"`
}

type UpdateTaskInput struct {
	TaskInput
	Completed *bool
}

func (s *TaskService) Create(ctx context.Context, identity domain.Identity, input TaskInput) (domain.Task, error) {
	if err := s.validateInput(input); err != nil {
		return domain.Task{}, err
	}
	if s.tasks == nil {
		return domain.Task{}, domain.NewInternalError(errors.New("task service not configured"))
	}

	task, err := s.tasks.Create(ctx, domain.Task{
		UserID:      identity.UserID,
		Title:       input.Title,
		Description: input.Description,
		Completed:   false,
	})
	if err != nil {
		return domain.Task{}, s.storeError("create task", err)
	}
	return task, nil
}

// Get no distingue entre tarea inexistente y tarea de otro usuario.
func (s *TaskService) Get(ctx context.Context, identity domain.Identity, id string) (domain.Task, error) {
	if !isTaskID(id) {
		return domain.Task{}, domain.ErrNotFound
	}
	if s.tasks == nil {
		return domain.Task{}, domain.NewInternalError(errors.New("task service not configured"))
	}
	task, err := s.tasks.GetByOwner(ctx, id, identity.UserID)
	if err != nil {
		return domain.Task{}, s.storeError("get task", err)
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context, identity domain.Identity) ([]domain.Task, error) {
	if s.tasks == nil {
		return nil, domain.NewInternalError(errors.New("task service not configured"))
	}
	tasks, err := s.tasks.ListByOwner(ctx, identity.UserID)
	if err != nil {
		return nil, s.storeError("list tasks", err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

func (s *TaskService) Update(ctx context.Context, identity domain.Identity, id string, input UpdateTaskInput) (domain.Task, error) {
	if err := s.validateInput(input.TaskInput); err != nil {
		return domain.Task{}, err
	}
	if !isTaskID(id) {
		return domain.Task{}, domain.ErrNotFound
	}
	if s.tasks == nil {
		return domain.Task{}, domain.NewInternalError(errors.New("task service not configured"))
	}

	task, err := s.tasks.Update(ctx, id, identity.UserID, repository.TaskUpdate{
		Title:       input.Title,
		Description: input.Description,
		Completed:   input.Completed,
	})
	if err != nil {
		return domain.Task{}, s.storeError("update task", err)
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, identity domain.Identity, id string) error {
	if !isTaskID(id) {
		return domain.ErrNotFound
	}
	if s.tasks == nil {
		return domain.NewInternalError(errors.New("task service not configured"))
	}
	if err := s.tasks.Delete(ctx, id, identity.UserID); err != nil {
		return s.storeError("delete task", err)
	}
	return nil
}

// Summary calcula los contadores del dashboard del usuario.
func (s *TaskService) Summary(ctx context.Context, identity domain.Identity) (domain.TaskSummary, error) {
	tasks, err := s.List(ctx, identity)
	if err != nil {
		return domain.TaskSummary{}, err
	}
	return domain.Summarize(tasks), nil
}

func (s *TaskService) validateInput(input TaskInput) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.NewInternalError(err)
	}
	fe := fieldErrs[0]
	return domain.NewValidationError(strings.ToLower(fe.Field()), validationMessage(fe))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s should be at least %s characters long", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s should be less than or equal to %s characters long", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func (s *TaskService) storeError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ErrNotFound
	}
	s.logger.Error(op+" failed", zap.Error(err))
	return domain.NewInternalError(err)
}

func isTaskID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
