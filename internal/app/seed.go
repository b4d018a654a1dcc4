package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-api/internal/config"
	"github.com/adanyl0v/task-api/internal/models"
	"github.com/adanyl0v/task-api/internal/repository"
)

type UserCreator interface {
	Create(ctx context.Context, user *models.User) error
}

type TaskSeeder interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
}

type sampleTask struct {
	title       string
	description string
	status      models.TaskStatus
}

var sampleTasks = []sampleTask{
	{"Complete project documentation", "Write comprehensive README and API documentation", models.TaskStatusInProgress},
	{"Implement user authentication", "Set up JWT authentication with secure password hashing", models.TaskStatusDone},
	{"Add pagination to task list", "Implement cursor-based pagination for better performance", models.TaskStatusDone},
	{"Write unit tests", "Create comprehensive test suite for all endpoints", models.TaskStatusPending},
	{"Set up CI/CD pipeline", "Configure GitHub Actions for automated testing and deployment", models.TaskStatusPending},
	{"Optimize database queries", "Add appropriate indexes and optimize N+1 queries", models.TaskStatusInProgress},
	{"Implement rate limiting", "Add rate limiting middleware to prevent abuse", models.TaskStatusPending},
	{"Add logging and monitoring", "Set up structured logging and application monitoring", models.TaskStatusPending},
	{"Create Docker deployment", "Containerize application for easy deployment", models.TaskStatusPending},
	{"Review code quality", "Perform code review and refactoring where necessary", models.TaskStatusPending},
}

// Seeder provisions the initial user and, optionally, demo tasks. Running
// it again is harmless.
type Seeder struct {
	logger    zerolog.Logger
	users     UserCreator
	tasks     TaskSeeder
	passwords PasswordHasher
	now       func() time.Time
}

func NewSeeder(
	logger zerolog.Logger,
	users UserCreator,
	tasks TaskSeeder,
	passwords PasswordHasher,
) *Seeder {
	return &Seeder{
		logger:    logger,
		users:     users,
		tasks:     tasks,
		passwords: passwords,
		now:       time.Now,
	}
}

func (s *Seeder) Seed(ctx context.Context, initialUser config.InitialUserConfig, withSampleTasks bool) error {
	err := s.seedUser(ctx, initialUser)
	if err != nil {
		return err
	}

	if !withSampleTasks {
		return nil
	}
	return s.seedTasks(ctx)
}

func (s *Seeder) seedUser(ctx context.Context, cfg config.InitialUserConfig) error {
	if cfg.Email == "" || cfg.Password == "" {
		return errors.New("initial user email and password are required")
	}

	hash, err := s.passwords.Hash(cfg.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &models.User{
		Email:        cfg.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			s.logger.Info().
				Str("email", cfg.Email).
				Msg("initial user already exists")
			return nil
		}
		return fmt.Errorf("failed to create initial user: %w", err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("email", user.Email).
		Msg("created initial user")
	return nil
}

func (s *Seeder) seedTasks(ctx context.Context) error {
	count, err := s.tasks.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count tasks: %w", err)
	}
	if count > 0 {
		s.logger.Info().
			Int64("count", count).
			Msg("tasks already exist, skipping sample tasks")
		return nil
	}

	for _, sample := range sampleTasks {
		description := sample.description
		now := s.now()
		_, err = s.tasks.Create(ctx, &models.Task{
			Title:       sample.title,
			Description: &description,
			Status:      sample.status,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return fmt.Errorf("failed to create sample task %q: %w", sample.title, err)
		}
	}

	s.logger.Info().
		Int("count", len(sampleTasks)).
		Msg("created sample tasks")
	return nil
}
