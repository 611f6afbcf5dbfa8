package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"task-manager/internal/domain"
)

// MemoryUserRepository guarda usuarios en memoria del proceso.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string
	now     func() time.Time
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.Email]; exists {
		return domain.User{}, ErrDuplicateEmail
	}
	user.ID = uuid.NewString()
	user.CreatedAt = r.now()
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user.ID
	return user, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return r.byID[id], nil
}

// MemoryTaskRepository guarda tareas en memoria conservando el orden de alta.
type MemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]domain.Task
	order []string
	now   func() time.Time
}

func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{
		tasks: make(map[string]domain.Task),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryTaskRepository) Create(_ context.Context, task domain.Task) (domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	task.ID = uuid.NewString()
	task.CreatedAt = now
	task.UpdatedAt = now
	r.tasks[task.ID] = task
	r.order = append(r.order, task.ID)
	return task, nil
}

func (r *MemoryTaskRepository) GetByOwner(_ context.Context, id, ownerID string) (domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(id, ownerID)
}

func (r *MemoryTaskRepository) ListByOwner(_ context.Context, ownerID string) ([]domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tasks := make([]domain.Task, 0)
	for _, id := range r.order {
		if task := r.tasks[id]; task.UserID == ownerID {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (r *MemoryTaskRepository) Update(_ context.Context, id, ownerID string, upd TaskUpdate) (domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, err := r.lookup(id, ownerID)
	if err != nil {
		return domain.Task{}, err
	}
	task.Title = upd.Title
	task.Description = upd.Description
	if upd.Completed != nil {
		task.Completed = *upd.Completed
	}
	task.UpdatedAt = r.now()
	r.tasks[id] = task
	return task, nil
}

func (r *MemoryTaskRepository) Delete(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.lookup(id, ownerID); err != nil {
		return err
	}
	delete(r.tasks, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// lookup requiere el lock tomado.
func (r *MemoryTaskRepository) lookup(id, ownerID string) (domain.Task, error) {
	task, ok := r.tasks[id]
	if !ok || task.UserID != ownerID {
		return domain.Task{}, ErrNotFound
	}
	return task, nil
}
