package users

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, name, password_hash, role_id, is_active, created_at, updated_at`

// uq_users_email backs email uniqueness.
const uniqueEmailConstraint = "uq_users_email"

func duplicateEmail(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == uniqueEmailConstraint
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	var roleID pgtype.Int8
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &roleID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return User{}, err
	}
	if roleID.Valid {
		u.RoleID = &roleID.Int64
	}
	return u, nil
}

// ListUsers returns all users.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// FindByEmail fetches a user by email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

// CreateUser inserts a new account.
func (r *Repository) CreateUser(ctx context.Context, user User) (User, error) {
	now := time.Now()
	var roleID pgtype.Int8
	if user.RoleID != nil {
		roleID = pgtype.Int8{Int64: *user.RoleID, Valid: true}
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, name, password_hash, role_id, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		user.Email, user.Name, user.PasswordHash, roleID, user.IsActive, now, now,
	).Scan(&user.ID)
	if err != nil {
		if duplicateEmail(err) {
			return User{}, ErrDuplicateEmail
		}
		return User{}, err
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	return user, nil
}

// SetActive toggles an account.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_active = $1, updated_at = $2 WHERE id = $3`, active, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
