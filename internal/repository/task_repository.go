package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-api/internal/models"
)

type TaskRepository struct {
	logger zerolog.Logger
	db     DB
}

func NewTaskRepository(logger zerolog.Logger, db DB) *TaskRepository {
	return &TaskRepository{
		logger: logger,
		db:     db,
	}
}

// taskRow mirrors a tasks row; status is kept as its wire string until
// toModel parses it.
type taskRow struct {
	ID          int64
	Title       string
	Description *string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (r *taskRow) scanTargets() []any {
	return []any{
		&r.ID,
		&r.Title,
		&r.Description,
		&r.Status,
		&r.CreatedAt,
		&r.UpdatedAt,
	}
}

func (r *taskRow) toModel() (*models.Task, error) {
	status, err := models.ParseTaskStatus(r.Status)
	if err != nil {
		return nil, fmt.Errorf("task %d: %w", r.ID, err)
	}
	return &models.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      status,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

func (r *TaskRepository) Get(ctx context.Context, id int64) (*models.Task, error) {
	const selectTaskByIDQuery = `
SELECT id,
       title,
       description,
       status::text,
       created_at,
       updated_at
FROM tasks
WHERE id = $1
`
	var row taskRow
	err := r.db.QueryRow(
		ctx,
		selectTaskByIDQuery,
		id,
	).Scan(row.scanTargets()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().
				Int64("task_id", id).
				Msg("task not found")
			return nil, ErrNotFound
		}

		r.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to select task by id")
		return nil, err
	}

	return row.toModel()
}

// List returns one window of tasks matching filter, newest first, together
// with the number of all matching rows. Both reads share a snapshot.
func (r *TaskRepository) List(ctx context.Context, filter models.TaskFilter, offset, limit int) ([]*models.Task, int64, error) {
	var status *string
	if filter.Status != nil {
		s := filter.Status.String()
		status = &s
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return nil, 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const countTasksQuery = `
SELECT count(*)
FROM tasks
WHERE ($1::text IS NULL OR status = $1::text::task_status)
`
	var total int64
	err = tx.QueryRow(
		ctx,
		countTasksQuery,
		status,
	).Scan(&total)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to count tasks")
		return nil, 0, err
	}

	const selectTasksQuery = `
SELECT id,
       title,
       description,
       status::text,
       created_at,
       updated_at
FROM tasks
WHERE ($1::text IS NULL OR status = $1::text::task_status)
ORDER BY created_at DESC, id ASC
LIMIT $2 OFFSET $3
`
	rows, err := tx.Query(
		ctx,
		selectTasksQuery,
		status,
		limit,
		offset,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, 0, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0, limit)
	for rows.Next() {
		var row taskRow
		err = rows.Scan(row.scanTargets()...)
		if err != nil {
			r.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, 0, err
		}

		task, err := row.toModel()
		if err != nil {
			r.logger.Error().
				Err(err).
				Msg("failed to map task")
			return nil, 0, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, 0, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return nil, 0, err
	}

	r.logger.Debug().
		Int("count", len(tasks)).
		Int64("total", total).
		Int("offset", offset).
		Int("limit", limit).
		Msg("selected tasks")
	return tasks, total, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	const insertTaskQuery = `
INSERT INTO tasks (title,
                   description,
                   status,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3::text::task_status, $4, $5)
RETURNING id,
          title,
          description,
          status::text,
          created_at,
          updated_at
`
	var row taskRow
	err := r.db.QueryRow(
		ctx,
		insertTaskQuery,
		task.Title,
		task.Description,
		task.Status.String(),
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(row.scanTargets()...)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}
	r.logger.Debug().
		Int64("task_id", row.ID).
		Msg("inserted task")

	return row.toModel()
}

// Update writes the fields set in patch and always refreshes updated_at.
// Absent fields are bound as NULL and never read by the CASE branches.
func (r *TaskRepository) Update(ctx context.Context, id int64, patch models.TaskPatch, updatedAt time.Time) (*models.Task, error) {
	if patch.Empty() {
		return nil, ErrEmptyPatch
	}

	var title, status *string
	if patch.Title.Set {
		title = &patch.Title.Value
	}
	if patch.Status.Set {
		s := patch.Status.Value.String()
		status = &s
	}
	var description *string
	if patch.Description.Set {
		description = patch.Description.Value
	}

	const updateTaskQuery = `
UPDATE tasks
SET title = CASE WHEN $1::boolean THEN $2 ELSE title END,
    description = CASE WHEN $3::boolean THEN $4 ELSE description END,
    status = CASE WHEN $5::boolean THEN $6::text::task_status ELSE status END,
    updated_at = $7
WHERE id = $8
RETURNING id,
          title,
          description,
          status::text,
          created_at,
          updated_at
`
	var row taskRow
	err := r.db.QueryRow(
		ctx,
		updateTaskQuery,
		patch.Title.Set,
		title,
		patch.Description.Set,
		description,
		patch.Status.Set,
		status,
		updatedAt,
		id,
	).Scan(row.scanTargets()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().
				Int64("task_id", id).
				Msg("task not found")
			return nil, ErrNotFound
		}

		r.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to update task")
		return nil, err
	}
	r.logger.Debug().
		Int64("task_id", id).
		Msg("updated task")

	return row.toModel()
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1
`
	tag, err := r.db.Exec(
		ctx,
		deleteTaskQuery,
		id,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		r.logger.Debug().
			Int64("task_id", id).
			Msg("task not found")
		return ErrNotFound
	}
	r.logger.Debug().
		Int64("task_id", id).
		Msg("deleted task")

	return nil
}

func (r *TaskRepository) Count(ctx context.Context) (int64, error) {
	const countAllTasksQuery = `
SELECT count(*)
FROM tasks
`
	var total int64
	err := r.db.QueryRow(ctx, countAllTasksQuery).Scan(&total)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to count tasks")
		return 0, err
	}
	return total, nil
}
