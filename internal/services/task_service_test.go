package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-api/internal/models"
)

func newTestTaskService() (TaskService, *fakeTaskRepository) {
	repo := newFakeTaskRepository()
	clock := &steppingClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewTaskService(zerolog.Nop(), repo, clock.Now), repo
}

func strPtr(s string) *string {
	return &s
}

func TestTaskService_CreateThenGet(t *testing.T) {
	svc, _ := newTestTaskService()
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, CreateTaskParams{
		Title:       "Buy milk",
		Description: strPtr("2 liters"),
		Status:      models.TaskStatusInProgress,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.CreatedAt.After(created.UpdatedAt) {
		t.Fatalf("created_at %v after updated_at %v", created.CreatedAt, created.UpdatedAt)
	}

	got, err := svc.GetTask(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Title != "Buy milk" || *got.Description != "2 liters" || got.Status != models.TaskStatusInProgress {
		t.Fatalf("unexpected task: %+v", got)
	}
}

func TestTaskService_CreateDefaultsToPending(t *testing.T) {
	svc, _ := newTestTaskService()

	task, err := svc.CreateTask(context.Background(), CreateTaskParams{Title: "Buy milk"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Status != models.TaskStatusPending {
		t.Fatalf("expected pending, got %v", task.Status)
	}
	if task.Description != nil {
		t.Fatalf("expected no description, got %q", *task.Description)
	}
}

func TestTaskService_CreateValidation(t *testing.T) {
	svc, repo := newTestTaskService()

	tests := []struct {
		name   string
		params CreateTaskParams
		field  string
	}{
		{"empty title", CreateTaskParams{Title: ""}, "title"},
		{"long title", CreateTaskParams{Title: string(make([]rune, 256))}, "title"},
		{"bad status", CreateTaskParams{Title: "ok", Status: models.TaskStatus(9)}, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTask(context.Background(), tt.params)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if len(verr.Fields) != 1 || verr.Fields[0].Field != tt.field {
				t.Fatalf("expected a %s error, got %+v", tt.field, verr.Fields)
			}
		})
	}
	if len(repo.tasks) != 0 {
		t.Fatalf("expected nothing persisted, got %d tasks", len(repo.tasks))
	}
}

func TestTaskService_CreateAcceptsMultibyteTitleAtLimit(t *testing.T) {
	svc, _ := newTestTaskService()

	title := ""
	for i := 0; i < MaxTitleLength; i++ {
		title += "é"
	}
	if _, err := svc.CreateTask(context.Background(), CreateTaskParams{Title: title}); err != nil {
		t.Fatalf("expected 255 characters to be accepted: %v", err)
	}
}

func TestTaskService_UpdateStatusOnly(t *testing.T) {
	svc, _ := newTestTaskService()
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, CreateTaskParams{Title: "Buy milk", Description: strPtr("2 liters")})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	updated, err := svc.UpdateTask(ctx, created.ID, models.TaskPatch{
		Status: models.Some(models.TaskStatusDone),
	})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.Title != "Buy milk" || *updated.Description != "2 liters" {
		t.Fatalf("expected title and description unchanged, got %+v", updated)
	}
	if updated.Status != models.TaskStatusDone {
		t.Fatalf("expected done, got %v", updated.Status)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("expected updated_at to move forward: %v -> %v", created.UpdatedAt, updated.UpdatedAt)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at changed: %v -> %v", created.CreatedAt, updated.CreatedAt)
	}
}

func TestTaskService_UpdateEmptyPatch(t *testing.T) {
	svc, repo := newTestTaskService()
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, CreateTaskParams{Title: "Buy milk"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	_, err = svc.UpdateTask(ctx, created.ID, models.TaskPatch{})
	if !errors.Is(err, ErrNoFieldsProvided) {
		t.Fatalf("expected ErrNoFieldsProvided, got %v", err)
	}
	if stored := repo.tasks[created.ID]; stored != *created {
		t.Fatalf("record changed: %+v -> %+v", *created, stored)
	}
}

func TestTaskService_UpdateEmptyPatchOnMissingTask(t *testing.T) {
	svc, _ := newTestTaskService()

	_, err := svc.UpdateTask(context.Background(), 999, models.TaskPatch{})
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskService_UpdateValidation(t *testing.T) {
	svc, _ := newTestTaskService()
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, CreateTaskParams{Title: "Buy milk"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	_, err = svc.UpdateTask(ctx, created.ID, models.TaskPatch{Title: models.Some("")})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
}

func TestTaskService_UpdateMissing(t *testing.T) {
	svc, _ := newTestTaskService()

	_, err := svc.UpdateTask(context.Background(), 99, models.TaskPatch{Title: models.Some("x")})
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskService_DeleteTwice(t *testing.T) {
	svc, _ := newTestTaskService()
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, CreateTaskParams{Title: "Buy milk"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if err = svc.DeleteTask(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, err = svc.GetTask(ctx, created.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound after delete, got %v", err)
	}
	if err = svc.DeleteTask(ctx, created.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound on repeated delete, got %v", err)
	}
}

func TestTaskService_ListPagination(t *testing.T) {
	svc, _ := newTestTaskService()
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		status := models.TaskStatusPending
		if i%3 == 0 {
			status = models.TaskStatusDone
		}
		_, err := svc.CreateTask(ctx, CreateTaskParams{Title: fmt.Sprintf("task %d", i), Status: status})
		if err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
	}

	page, err := svc.ListTasks(ctx, ListTasksParams{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if page.Total != 25 || page.TotalPages != 3 || len(page.Items) != 10 {
		t.Fatalf("unexpected page: total=%d pages=%d items=%d", page.Total, page.TotalPages, len(page.Items))
	}
	for i := 1; i < len(page.Items); i++ {
		if !page.Items[i-1].CreatedAt.After(page.Items[i].CreatedAt) {
			t.Fatalf("items not ordered by created_at desc at %d", i)
		}
	}
	if page.Items[0].Title != "task 24" {
		t.Fatalf("expected newest task first, got %q", page.Items[0].Title)
	}

	last, err := svc.ListTasks(ctx, ListTasksParams{Page: 3, PageSize: 10})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(last.Items) != 5 {
		t.Fatalf("expected 5 items on the last page, got %d", len(last.Items))
	}

	beyond, err := svc.ListTasks(ctx, ListTasksParams{Page: 4, PageSize: 10})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(beyond.Items) != 0 || beyond.Total != 25 {
		t.Fatalf("expected an empty page with total 25, got %d items total %d", len(beyond.Items), beyond.Total)
	}
}

func TestTaskService_ListFilterIndependentOfPageSize(t *testing.T) {
	svc, _ := newTestTaskService()
	ctx := context.Background()

	pendingCount := 0
	for i := 0; i < 12; i++ {
		status := models.TaskStatusInProgress
		if i%2 == 0 {
			status = models.TaskStatusPending
			pendingCount++
		}
		if _, err := svc.CreateTask(ctx, CreateTaskParams{Title: "t", Status: status}); err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
	}

	pending := models.TaskStatusPending
	for _, size := range []int{1, 4, 100} {
		page, err := svc.ListTasks(ctx, ListTasksParams{Page: 1, PageSize: size, Status: &pending})
		if err != nil {
			t.Fatalf("ListTasks: %v", err)
		}
		if page.Total != int64(pendingCount) {
			t.Fatalf("page_size %d: expected total %d, got %d", size, pendingCount, page.Total)
		}
		for _, item := range page.Items {
			if item.Status != models.TaskStatusPending {
				t.Fatalf("unexpected status %v in filtered list", item.Status)
			}
		}
	}
}

func TestTaskService_ListEmpty(t *testing.T) {
	svc, _ := newTestTaskService()

	page, err := svc.ListTasks(context.Background(), ListTasksParams{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if page.Total != 0 || page.TotalPages != 0 {
		t.Fatalf("expected zero totals, got total=%d pages=%d", page.Total, page.TotalPages)
	}
}

func TestTaskService_ListBounds(t *testing.T) {
	svc, _ := newTestTaskService()

	for _, params := range []ListTasksParams{
		{Page: 0, PageSize: 10},
		{Page: 1, PageSize: 0},
		{Page: 1, PageSize: 101},
		{Page: math.MaxInt / 50, PageSize: 100},
		{Page: math.MaxInt, PageSize: 2},
	} {
		_, err := svc.ListTasks(context.Background(), params)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%+v: expected *ValidationError, got %v", params, err)
		}
	}
}

func TestTaskService_ListLastAddressablePage(t *testing.T) {
	svc, _ := newTestTaskService()

	for _, params := range []ListTasksParams{
		{Page: math.MaxInt, PageSize: 1},
		{Page: math.MaxInt/100 + 1, PageSize: 100},
	} {
		page, err := svc.ListTasks(context.Background(), params)
		if err != nil {
			t.Fatalf("%+v: ListTasks: %v", params, err)
		}
		if len(page.Items) != 0 {
			t.Fatalf("%+v: expected empty page, got %d items", params, len(page.Items))
		}
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total    int64
		pageSize int
		want     int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{100, 1, 100},
	}
	for _, tt := range tests {
		if got := totalPages(tt.total, tt.pageSize); got != tt.want {
			t.Fatalf("totalPages(%d, %d) = %d, want %d", tt.total, tt.pageSize, got, tt.want)
		}
	}
}
