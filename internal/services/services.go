package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adanyl0v/task-api/internal/models"
)

const (
	TokenTypeBearer = "bearer"

	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
	MaxTitleLength  = 255
)

var (
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrTaskNotFound       = errors.New("task not found")
	ErrNoFieldsProvided   = errors.New("no fields provided for update")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries one entry per rejected input field.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

type AuthService interface {
	// Authenticate looks the user up by exact email and verifies the
	// password. It returns a nil user and a nil error when either step
	// fails, so callers cannot tell the two apart.
	Authenticate(ctx context.Context, email, password string) (*models.User, error)

	// Login authenticates the user and issues an access token with the
	// user's email as subject.
	//
	// It returns ErrInvalidCredentials if Authenticate yields no user.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Identify resolves a token subject to the user it was issued for.
	//
	// It returns ErrInvalidCredentials if the user no longer exists.
	Identify(ctx context.Context, subject string) (*models.User, error)
}

type TaskService interface {
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// GetTask returns ErrTaskNotFound if there is no task with the given id.
	GetTask(ctx context.Context, id int64) (*models.Task, error)

	// ListTasks returns one page of tasks ordered by creation time, newest
	// first. Out-of-range page parameters yield a *ValidationError.
	ListTasks(ctx context.Context, params ListTasksParams) (*TaskPage, error)

	// UpdateTask applies only the fields set in patch and refreshes
	// updated_at. It returns ErrTaskNotFound if the task doesn't exist,
	// even for an empty patch, and ErrNoFieldsProvided otherwise when
	// patch is empty.
	UpdateTask(ctx context.Context, id int64, patch models.TaskPatch) (*models.Task, error)

	// DeleteTask removes the task permanently. Deleting an absent task,
	// including one deleted before, returns ErrTaskNotFound.
	DeleteTask(ctx context.Context, id int64) error
}

type LoginParams struct {
	Email    string
	Password string
}

type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

type CreateTaskParams struct {
	Title       string
	Description *string
	// Zero means pending.
	Status models.TaskStatus
}

type ListTasksParams struct {
	Page     int
	PageSize int
	Status   *models.TaskStatus
}

type TaskPage struct {
	Items      []*models.Task
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}
