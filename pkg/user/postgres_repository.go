package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresRepository implements Repository using PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE app_user (
//	    id            UUID PRIMARY KEY,
//	    email         TEXT NOT NULL UNIQUE,
//	    name          TEXT NOT NULL DEFAULT '',
//	    avatar        TEXT NOT NULL DEFAULT '',
//	    timezone      TEXT NOT NULL DEFAULT 'UTC',
//	    created_at    TIMESTAMPTZ NOT NULL,
//	    last_login_at TIMESTAMPTZ
//	);
type PostgresRepository struct {
	db DBTX
}

// NewPostgresRepository creates a new PostgreSQL user repository
func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = "id, email, name, avatar, timezone, created_at, last_login_at"

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Avatar, &u.Timezone, &u.CreatedAt, &u.LastLoginAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// GetByID returns a user by ID
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	query := `SELECT ` + userColumns + ` FROM app_user WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// GetByEmail returns a user by canonical email
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM app_user WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

// GetOrCreate resolves a user by email, creating the record if none
// exists. The unique constraint on email plus ON CONFLICT DO UPDATE make
// concurrent first-time creations resolve to a single row.
func (r *PostgresRepository) GetOrCreate(ctx context.Context, email string) (User, error) {
	query := `
		INSERT INTO app_user (id, email, timezone, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET email = excluded.email
		RETURNING ` + userColumns

	return scanUser(r.db.QueryRow(ctx, query, uuid.New(), email, DefaultTimezone, time.Now().UTC()))
}

// RecordLogin updates the user's last-login timestamp
func (r *PostgresRepository) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE app_user SET last_login_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Update mutates profile fields; nil fields are left unchanged
func (r *PostgresRepository) Update(ctx context.Context, params UpdateParams) (User, error) {
	query := `
		UPDATE app_user
		SET name     = COALESCE($2, name),
		    avatar   = COALESCE($3, avatar),
		    timezone = COALESCE($4, timezone)
		WHERE id = $1
		RETURNING ` + userColumns

	return scanUser(r.db.QueryRow(ctx, query, params.ID, params.Name, params.Avatar, params.Timezone))
}
