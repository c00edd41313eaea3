package postgres

import (
	"context"
	"errors"

	"courier-dispatch/internal/domain/user"
	"courier-dispatch/internal/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// UserRepo persists users using pgx and plain SQL.
type UserRepo struct{}

// NewUserRepo constructs a new UserRepo.
func NewUserRepo() ports.UserRepository {
	return &UserRepo{}
}

// CreateUser inserts a new user row. A unique-violation on email maps to
// user.ErrEmailTaken so callers can return a client error instead of a 500.
func (repo *UserRepo) CreateUser(ctx context.Context, u *user.User) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name, phone, user_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`,
		u.Email,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		u.Phone,
		u.Role.String(),
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.ErrEmailTaken
		}
		return err
	}

	return nil
}

// GetByID returns one user by id.
func (repo *UserRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	return scanUser(tx.QueryRow(ctx, `
		SELECT id, created_at, updated_at, email, password_hash, first_name, last_name, phone, user_type
		FROM users
		WHERE id = $1
	`, id))
}

// GetByEmail returns one user by email. Emails are stored lowercase.
func (repo *UserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	return scanUser(tx.QueryRow(ctx, `
		SELECT id, created_at, updated_at, email, password_hash, first_name, last_name, phone, user_type
		FROM users
		WHERE email = lower($1)
	`, email))
}

func scanUser(row pgx.Row) (*user.User, error) {
	var out user.User
	var roleText string

	err := row.Scan(
		&out.ID, &out.CreatedAt, &out.UpdatedAt,
		&out.Email, &out.PasswordHash, &out.FirstName, &out.LastName, &out.Phone, &roleText,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	out.Role = user.Role(roleText)

	return &out, nil
}
