package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"task-manager/internal/domain"
)

// redisDocClient es el subconjunto de comandos que usan los repositorios redis.
type redisDocClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	SetXX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
}

type userDocument struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// RedisUserRepository guarda cada usuario como documento JSON en "user:<id>"
// y reserva "user:email:<email>" con SETNX para garantizar unicidad.
type RedisUserRepository struct {
	client redisDocClient
	prefix string
	now    func() time.Time
}

func NewRedisUserRepository(client *redis.Client) *RedisUserRepository {
	return newRedisUserRepository(client)
}

func newRedisUserRepository(client redisDocClient) *RedisUserRepository {
	return &RedisUserRepository{
		client: client,
		prefix: "user:",
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *RedisUserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	user.ID = uuid.NewString()
	user.CreatedAt = r.now()

	emailKey := r.prefix + "email:" + user.Email
	ok, err := r.client.SetNX(ctx, emailKey, user.ID, 0).Result()
	if err != nil {
		return domain.User{}, fmt.Errorf("reserve email: %w", err)
	}
	if !ok {
		return domain.User{}, ErrDuplicateEmail
	}

	payload, err := json.Marshal(userDocument(user))
	if err != nil {
		_ = r.client.Del(ctx, emailKey).Err()
		return domain.User{}, err
	}
	if err := r.client.Set(ctx, r.prefix+user.ID, payload, 0).Err(); err != nil {
		_ = r.client.Del(ctx, emailKey).Err()
		return domain.User{}, fmt.Errorf("store user: %w", err)
	}
	return user, nil
}

func (r *RedisUserRepository) getByID(ctx context.Context, id string) (domain.User, error) {
	raw, err := r.client.Get(ctx, r.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	var doc userDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.User{}, fmt.Errorf("decode user: %w", err)
	}
	return domain.User(doc), nil
}

func (r *RedisUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	id, err := r.client.Get(ctx, r.prefix+"email:"+email).Result()
	if errors.Is(err, redis.Nil) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("lookup email: %w", err)
	}
	return r.getByID(ctx, id)
}

// RedisTaskRepository guarda cada tarea en "task:<id>" y mantiene el indice
// de dueño en el set "user:<uid>:tasks".
type RedisTaskRepository struct {
	client redisDocClient
	prefix string
	now    func() time.Time
}

func NewRedisTaskRepository(client *redis.Client) *RedisTaskRepository {
	return newRedisTaskRepository(client)
}

func newRedisTaskRepository(client redisDocClient) *RedisTaskRepository {
	return &RedisTaskRepository{
		client: client,
		prefix: "task:",
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *RedisTaskRepository) ownerKey(ownerID string) string {
	return "user:" + ownerID + ":tasks"
}

func (r *RedisTaskRepository) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	now := r.now()
	task.ID = uuid.NewString()
	task.CreatedAt = now
	task.UpdatedAt = now
	if err := r.save(ctx, task); err != nil {
		return domain.Task{}, err
	}
	if err := r.client.SAdd(ctx, r.ownerKey(task.UserID), task.ID).Err(); err != nil {
		_ = r.client.Del(ctx, r.prefix+task.ID).Err()
		return domain.Task{}, fmt.Errorf("index task: %w", err)
	}
	return task, nil
}

func (r *RedisTaskRepository) GetByOwner(ctx context.Context, id, ownerID string) (domain.Task, error) {
	task, err := r.load(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	if task.UserID != ownerID {
		return domain.Task{}, ErrNotFound
	}
	return task, nil
}

func (r *RedisTaskRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error) {
	ids, err := r.client.SMembers(ctx, r.ownerKey(ownerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list task index: %w", err)
	}
	tasks := make([]domain.Task, 0, len(ids))
	for _, id := range ids {
		task, err := r.load(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if task.UserID == ownerID {
			tasks = append(tasks, task)
		}
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (r *RedisTaskRepository) Update(ctx context.Context, id, ownerID string, upd TaskUpdate) (domain.Task, error) {
	task, err := r.GetByOwner(ctx, id, ownerID)
	if err != nil {
		return domain.Task{}, err
	}
	task.Title = upd.Title
	task.Description = upd.Description
	if upd.Completed != nil {
		task.Completed = *upd.Completed
	}
	task.UpdatedAt = r.now()
	payload, err := json.Marshal(task)
	if err != nil {
		return domain.Task{}, err
	}
	// SET XX: si un Delete borro el documento desde el GET, no se recrea.
	ok, err := r.client.SetXX(ctx, r.prefix+task.ID, payload, 0).Result()
	if err != nil {
		return domain.Task{}, fmt.Errorf("store task: %w", err)
	}
	if !ok {
		return domain.Task{}, ErrNotFound
	}
	return task, nil
}

func (r *RedisTaskRepository) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := r.GetByOwner(ctx, id, ownerID); err != nil {
		return err
	}
	if err := r.client.Del(ctx, r.prefix+id).Err(); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if err := r.client.SRem(ctx, r.ownerKey(ownerID), id).Err(); err != nil {
		return fmt.Errorf("unindex task: %w", err)
	}
	return nil
}

func (r *RedisTaskRepository) save(ctx context.Context, task domain.Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.prefix+task.ID, payload, 0).Err(); err != nil {
		return fmt.Errorf("store task: %w", err)
	}
	return nil
}

func (r *RedisTaskRepository) load(ctx context.Context, id string) (domain.Task, error) {
	raw, err := r.client.Get(ctx, r.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Task{}, ErrNotFound
	}
	if err != nil {
		return domain.Task{}, fmt.Errorf("load task: %w", err)
	}
	var task domain.Task
	if err := json.Unmarshal(raw, &task); err != nil {
		return domain.Task{}, fmt.Errorf("decode task: %w", err)
	}
	return task, nil
}
