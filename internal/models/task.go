package models

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

type TaskStatus uint8

const (
	TaskStatusPending TaskStatus = iota + 1
	TaskStatusInProgress
	TaskStatusDone
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// ParseTaskStatus maps a wire string to its status.
// It returns an error for anything but the three lowercase names.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch s {
	case StatusPending:
		return TaskStatusPending, nil
	case StatusInProgress:
		return TaskStatusInProgress, nil
	case StatusDone:
		return TaskStatusDone, nil
	default:
		return 0, fmt.Errorf("unknown task status: %q", s)
	}
}

func (s TaskStatus) String() string {
	switch s {
	case TaskStatusPending:
		return StatusPending
	case TaskStatusInProgress:
		return StatusInProgress
	case TaskStatusDone:
		return StatusDone
	default:
		return fmt.Sprintf("TaskStatus(%d)", uint8(s))
	}
}

func (s TaskStatus) Valid() bool {
	return s >= TaskStatusPending && s <= TaskStatusDone
}

func (s TaskStatus) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid task status: %d", uint8(s))
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON rejects null and unknown names with a *json.UnmarshalTypeError,
// which the decoder annotates with the offending field path.
func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return &json.UnmarshalTypeError{
			Value: "null",
			Type:  reflect.TypeOf(*s),
		}
	}

	var str string
	err := json.Unmarshal(data, &str)
	if err != nil {
		return &json.UnmarshalTypeError{
			Value: "non-string",
			Type:  reflect.TypeOf(*s),
		}
	}

	status, err := ParseTaskStatus(str)
	if err != nil {
		return &json.UnmarshalTypeError{
			Value: "string " + strconv.Quote(str),
			Type:  reflect.TypeOf(*s),
		}
	}
	*s = status
	return nil
}

type Task struct {
	ID          int64
	Title       string
	Description *string
	Status      TaskStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TaskFilter struct {
	Status *TaskStatus
}

// Optional marks whether a field was present in a partial update.
// A present JSON null leaves Value at its zero value with Set true.
type Optional[T any] struct {
	Value T
	Set   bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	return json.Unmarshal(data, &o.Value)
}

type TaskPatch struct {
	Title       Optional[string]
	Description Optional[*string]
	Status      Optional[TaskStatus]
}

func (p TaskPatch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Status.Set
}
