// Package users holds the operator accounts that own leads and appointments.
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Roles assignable to a user.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User represents the user database model.
type User struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}

// Repository provides database operations for users.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new users repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, name, email, role, created_at`

// FindOperator returns the oldest user that is either an admin or carries
// one of the configured operator email addresses. Returns nil when no
// such user exists.
func (r *Repository) FindOperator(ctx context.Context, operatorEmails []string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users
		WHERE role = $1 OR email = ANY($2)
		ORDER BY created_at ASC LIMIT 1`, userColumns)

	var u User
	err := r.pool.QueryRow(ctx, query, RoleAdmin, operatorEmails).Scan(
		&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find operator user: %w", err)
	}
	return &u, nil
}

// FindFirst returns the oldest registered user, or nil when the table is empty.
func (r *Repository) FindFirst(ctx context.Context) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY created_at ASC LIMIT 1`, userColumns)

	var u User
	err := r.pool.QueryRow(ctx, query).Scan(
		&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find first user: %w", err)
	}
	return &u, nil
}

// GetByID retrieves a user by its ID. Returns nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	var u User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}
