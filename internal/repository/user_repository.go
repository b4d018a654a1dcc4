package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-api/internal/models"
)

type UserRepository struct {
	logger zerolog.Logger
	db     DB
}

func NewUserRepository(logger zerolog.Logger, db DB) *UserRepository {
	return &UserRepository{
		logger: logger,
		db:     db,
	}
}

// GetByEmail matches the email exactly, including case.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{Email: email}

	const selectUserByEmailQuery = `
SELECT id,
       password_hash,
       created_at,
       updated_at
FROM users
WHERE email = $1
`
	err := r.db.QueryRow(
		ctx,
		selectUserByEmailQuery,
		user.Email,
	).Scan(
		&user.ID,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().
				Str("email", user.Email).
				Msg("user not found")
			return nil, ErrNotFound
		}

		r.logger.Error().
			Err(err).
			Str("email", user.Email).
			Msg("failed to select user by email")
		return nil, err
	}
	r.logger.Debug().
		Int64("user_id", user.ID).
		Str("email", user.Email).
		Msg("selected user")

	return user, nil
}

// Create inserts the user and fills in its id. It returns ErrAlreadyExists
// when the email is taken.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	const insertUserQuery = `
INSERT INTO users (email,
                   password_hash,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4)
RETURNING id
`
	err := r.db.QueryRow(
		ctx,
		insertUserQuery,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			r.logger.Debug().
				Str("email", user.Email).
				Msg("user with this email already exists")
			return ErrAlreadyExists
		}

		r.logger.Error().
			Err(err).
			Str("email", user.Email).
			Msg("failed to insert user")
		return err
	}
	r.logger.Debug().
		Int64("user_id", user.ID).
		Str("email", user.Email).
		Msg("inserted user")

	return nil
}
