package v1

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/adanyl0v/task-api/internal/models"
	"github.com/adanyl0v/task-api/internal/repository"
)

type memoryTaskRepository struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]models.Task
}

func newMemoryTaskRepository() *memoryTaskRepository {
	return &memoryTaskRepository{tasks: make(map[int64]models.Task)}
}

func (r *memoryTaskRepository) Get(_ context.Context, id int64) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &task, nil
}

func (r *memoryTaskRepository) List(_ context.Context, filter models.TaskFilter, offset, limit int) ([]*models.Task, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []models.Task
	for _, task := range r.tasks {
		if filter.Status == nil || task.Status == *filter.Status {
			matched = append(matched, task)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	items := make([]*models.Task, 0, limit)
	for i := offset; i < len(matched) && len(items) < limit; i++ {
		task := matched[i]
		items = append(items, &task)
	}
	return items, int64(len(matched)), nil
}

func (r *memoryTaskRepository) Create(_ context.Context, task *models.Task) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	stored := *task
	stored.ID = r.nextID
	r.tasks[stored.ID] = stored
	return &stored, nil
}

func (r *memoryTaskRepository) Update(_ context.Context, id int64, patch models.TaskPatch, updatedAt time.Time) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Title.Set {
		task.Title = patch.Title.Value
	}
	if patch.Description.Set {
		task.Description = patch.Description.Value
	}
	if patch.Status.Set {
		task.Status = patch.Status.Value
	}
	task.UpdatedAt = updatedAt
	r.tasks[id] = task
	return &task, nil
}

func (r *memoryTaskRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

type memoryUserRepository struct {
	users map[string]models.User
}

func (r *memoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := r.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

var errDatabaseDown = errors.New("connection refused")

type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}
