package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/adanyl0v/task-api/internal/models"
	"github.com/adanyl0v/task-api/internal/repository"
)

type fakeTaskRepository struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]models.Task
}

func newFakeTaskRepository() *fakeTaskRepository {
	return &fakeTaskRepository{tasks: make(map[int64]models.Task)}
}

func (r *fakeTaskRepository) Get(_ context.Context, id int64) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &task, nil
}

func (r *fakeTaskRepository) List(_ context.Context, filter models.TaskFilter, offset, limit int) ([]*models.Task, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]models.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		if filter.Status != nil && task.Status != *filter.Status {
			continue
		}
		matched = append(matched, task)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	items := make([]*models.Task, 0, limit)
	for i := offset; i < len(matched) && len(items) < limit; i++ {
		task := matched[i]
		items = append(items, &task)
	}
	return items, int64(len(matched)), nil
}

func (r *fakeTaskRepository) Create(_ context.Context, task *models.Task) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	stored := *task
	stored.ID = r.nextID
	r.tasks[stored.ID] = stored
	return &stored, nil
}

func (r *fakeTaskRepository) Update(_ context.Context, id int64, patch models.TaskPatch, updatedAt time.Time) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if patch.Empty() {
		return nil, repository.ErrEmptyPatch
	}
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

func (r *fakeTaskRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

type fakeUserRepository struct {
	users map[string]models.User
	err   error
}

func (r *fakeUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	user, ok := r.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

// fakePasswords treats "hash:<password>" as the hash of password.
type fakePasswords struct {
	dummyCalls int
}

func (p *fakePasswords) Verify(password, hash string) bool {
	return hash == "hash:"+password
}

func (p *fakePasswords) VerifyDummy(string) {
	p.dummyCalls++
}

type fakeTokens struct {
	subject string
	ttl     time.Duration
}

func (t *fakeTokens) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	t.subject = subject
	t.ttl = ttl
	return "token-for-" + subject, time.Unix(0, 0).Add(ttl), nil
}

// steppingClock advances by one second on every call.
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}
