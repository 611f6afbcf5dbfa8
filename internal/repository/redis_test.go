package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"task-manager/internal/domain"
)

type fakeRedis struct {
	values map[string]string
	sets   map[string]map[string]struct{}
	setErr error
	// afterGet corre despues de cada GET; simula escrituras concurrentes.
	afterGet func(key string)
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		values: make(map[string]string),
		sets:   make(map[string]map[string]struct{}),
	}
}

func toString(v interface{}) string {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	v, ok := f.values[key]
	if f.afterGet != nil {
		hook := f.afterGet
		f.afterGet = nil
		hook(key)
	}
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if f.setErr != nil {
		cmd.SetErr(f.setErr)
		return cmd
	}
	f.values[key] = toString(value)
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx)
	if _, exists := f.values[key]; exists {
		cmd.SetVal(false)
		return cmd
	}
	f.values[key] = toString(value)
	cmd.SetVal(true)
	return cmd
}

func (f *fakeRedis) SetXX(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx)
	if f.setErr != nil {
		cmd.SetErr(f.setErr)
		return cmd
	}
	if _, exists := f.values[key]; !exists {
		cmd.SetVal(false)
		return cmd
	}
	f.values[key] = toString(value)
	cmd.SetVal(true)
	return cmd
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	var n int64
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			delete(f.values, k)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func (f *fakeRedis) SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	set, ok := f.sets[key]
	if !ok {
		set = make(map[string]struct{})
		f.sets[key] = set
	}
	for _, m := range members {
		set[toString(m)] = struct{}{}
	}
	cmd.SetVal(int64(len(members)))
	return cmd
}

func (f *fakeRedis) SRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	for _, m := range members {
		delete(f.sets[key], toString(m))
	}
	cmd.SetVal(int64(len(members)))
	return cmd
}

func (f *fakeRedis) SMembers(ctx context.Context, key string) *redis.StringSliceCmd {
	cmd := redis.NewStringSliceCmd(ctx)
	members := make([]string, 0, len(f.sets[key]))
	for m := range f.sets[key] {
		members = append(members, m)
	}
	cmd.SetVal(members)
	return cmd
}

func TestRedisUserRepository_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	repo := newRedisUserRepository(fake)

	created, err := repo.Create(ctx, domain.User{Name: "Ann", Email: "ann@x.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if fake.values["user:email:ann@x.com"] != created.ID {
		t.Fatalf("email key should point to %s, got %q", created.ID, fake.values["user:email:ann@x.com"])
	}

	got, err := repo.GetByEmail(ctx, "ann@x.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.ID != created.ID || got.PasswordHash != "hash" {
		t.Fatalf("unexpected user: %+v", got)
	}

	if _, err := repo.GetByEmail(ctx, "missing@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	fake.values["user:email:stale@x.com"] = "gone"
	if _, err := repo.GetByEmail(ctx, "stale@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for dangling email key, got %v", err)
	}
}

func TestRedisUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := newRedisUserRepository(newFakeRedis())

	if _, err := repo.Create(ctx, domain.User{Name: "Ann", Email: "ann@x.com"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := repo.Create(ctx, domain.User{Name: "Ann2", Email: "ann@x.com"}); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestRedisUserRepository_ReleasesEmailOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	fake.setErr = errors.New("readonly replica")
	repo := newRedisUserRepository(fake)

	if _, err := repo.Create(ctx, domain.User{Name: "Ann", Email: "ann@x.com"}); err == nil {
		t.Fatalf("expected error")
	}
	if _, reserved := fake.values["user:email:ann@x.com"]; reserved {
		t.Fatalf("email reservation should be released")
	}
}

func TestRedisTaskRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	repo := newRedisTaskRepository(fake)
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first, err := repo.Create(ctx, domain.Task{UserID: "alice", Title: "one", Description: "first task"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	second, err := repo.Create(ctx, domain.Task{UserID: "alice", Title: "two", Description: "second task"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := repo.Create(ctx, domain.Task{UserID: "bob", Title: "bob", Description: "bob's task"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	tasks, err := repo.ListByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != first.ID || tasks[1].ID != second.ID {
		t.Fatalf("expected tasks in creation order, got %+v", tasks)
	}

	if _, err := repo.GetByOwner(ctx, first.ID, "bob"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}

	done := true
	updated, err := repo.Update(ctx, first.ID, "alice", TaskUpdate{Title: "uno", Description: "primera tarea", Completed: &done})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if !updated.Completed || !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatalf("unexpected updated task: %+v", updated)
	}

	stored, err := repo.GetByOwner(ctx, first.ID, "alice")
	if err != nil {
		t.Fatalf("GetByOwner error: %v", err)
	}
	if stored.Title != "uno" {
		t.Fatalf("expected stored title uno, got %q", stored.Title)
	}

	if err := repo.Delete(ctx, first.ID, "alice"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := repo.Delete(ctx, first.ID, "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, indexed := fake.sets["user:alice:tasks"][first.ID]; indexed {
		t.Fatalf("deleted task still indexed")
	}
}

func TestRedisTaskRepository_UpdateDoesNotRecreateDeletedTask(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	repo := newRedisTaskRepository(fake)

	task, err := repo.Create(ctx, domain.Task{UserID: "alice", Title: "old", Description: "old task"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// Un Delete llega entre el GET y la escritura del Update.
	fake.afterGet = func(string) {
		if err := repo.Delete(ctx, task.ID, "alice"); err != nil {
			t.Errorf("concurrent Delete error: %v", err)
		}
	}
	if _, err := repo.Update(ctx, task.ID, "alice", TaskUpdate{Title: "new", Description: "new task"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := repo.GetByOwner(ctx, task.ID, "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted task came back: %v", err)
	}
	tasks, err := repo.ListByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected no tasks, got %+v", tasks)
	}
}

func TestRedisTaskRepository_ListSkipsStaleIndex(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	repo := newRedisTaskRepository(fake)
	fake.sets["user:alice:tasks"] = map[string]struct{}{"ghost": {}}

	tasks, err := repo.ListByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected no tasks, got %+v", tasks)
	}
}
