package services

import (
	"context"
	"errors"
	"math"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-api/internal/models"
	"github.com/adanyl0v/task-api/internal/repository"
)

type TaskRepository interface {
	Get(ctx context.Context, id int64) (*models.Task, error)
	List(ctx context.Context, filter models.TaskFilter, offset, limit int) ([]*models.Task, int64, error)
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	Update(ctx context.Context, id int64, patch models.TaskPatch, updatedAt time.Time) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
}

type taskServiceImpl struct {
	logger zerolog.Logger
	tasks  TaskRepository
	now    func() time.Time
}

// NewTaskService uses time.Now when now is nil.
func NewTaskService(
	logger zerolog.Logger,
	tasks TaskRepository,
	now func() time.Time,
) TaskService {
	if now == nil {
		now = time.Now
	}
	return &taskServiceImpl{
		logger: logger,
		tasks:  tasks,
		now:    now,
	}
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	status := params.Status
	if status == 0 {
		status = models.TaskStatusPending
	}

	verr := &ValidationError{}
	validateTitle(verr, params.Title)
	validateStatus(verr, status)
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	now := s.now()
	task, err := s.tasks.Create(ctx, &models.Task{
		Title:       params.Title,
		Description: params.Description,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to create task")
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to get task")
		return nil, err
	}
	return task, nil
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, params ListTasksParams) (*TaskPage, error) {
	verr := &ValidationError{}
	if params.Page < 1 {
		verr.add("page", "must be greater than or equal to 1")
	}
	if params.PageSize < 1 || params.PageSize > MaxPageSize {
		verr.add("page_size", "must be between 1 and 100")
	} else if params.Page-1 > math.MaxInt/params.PageSize {
		verr.add("page", "is too large for the given page_size")
	}
	if params.Status != nil {
		validateStatus(verr, *params.Status)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	offset := (params.Page - 1) * params.PageSize
	tasks, total, err := s.tasks.List(ctx, models.TaskFilter{Status: params.Status}, offset, params.PageSize)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		return nil, err
	}

	page := &TaskPage{
		Items:      tasks,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages(total, params.PageSize),
	}

	s.logger.Debug().
		Int("count", len(tasks)).
		Int64("total", total).
		Int("page", page.Page).
		Msg("listed tasks")
	return page, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, id int64, patch models.TaskPatch) (*models.Task, error) {
	if patch.Empty() {
		// A missing task wins over an empty payload.
		_, err := s.GetTask(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, ErrNoFieldsProvided
	}

	verr := &ValidationError{}
	if patch.Title.Set {
		validateTitle(verr, patch.Title.Value)
	}
	if patch.Status.Set {
		validateStatus(verr, patch.Status.Value)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	task, err := s.tasks.Update(ctx, id, patch, s.now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrTaskNotFound
		case errors.Is(err, repository.ErrEmptyPatch):
			return nil, ErrNoFieldsProvided
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to update task")
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, id int64) error {
	err := s.tasks.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to delete task")
		return err
	}

	s.logger.Info().
		Int64("task_id", id).
		Msg("deleted task")
	return nil
}

func validateTitle(verr *ValidationError, title string) {
	n := utf8.RuneCountInString(title)
	if n < 1 || n > MaxTitleLength {
		verr.add("title", "must be between 1 and 255 characters")
	}
}

func validateStatus(verr *ValidationError, status models.TaskStatus) {
	if !status.Valid() {
		verr.add("status", "must be one of pending, in_progress, done")
	}
}

func totalPages(total int64, pageSize int) int {
	if total <= 0 {
		return 0
	}
	size := int64(pageSize)
	return int((total + size - 1) / size)
}
