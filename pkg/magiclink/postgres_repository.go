package magiclink

import (
	"context"
	"errors"
	"time"

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
//	CREATE TABLE magic_link_token (
//	    token        TEXT PRIMARY KEY,
//	    email        TEXT NOT NULL,
//	    redirect_url TEXT NOT NULL DEFAULT '',
//	    created_at   TIMESTAMPTZ NOT NULL,
//	    expires_at   TIMESTAMPTZ NOT NULL,
//	    used_at      TIMESTAMPTZ
//	);
type PostgresRepository struct {
	db DBTX
}

// NewPostgresRepository creates a new PostgreSQL magic-link repository
func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists a new unconsumed token
func (r *PostgresRepository) Create(ctx context.Context, token Token) error {
	query := `
		INSERT INTO magic_link_token (token, email, redirect_url, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		token.Token,
		token.Email,
		token.RedirectURL,
		token.CreatedAt,
		token.ExpiresAt,
	)
	return err
}

// ConsumeIfValid atomically marks the token consumed and returns it. The
// conditional UPDATE guarded by "used_at IS NULL" is the single atomic
// check-and-mark: of two concurrent redemptions exactly one matches the
// guard. When the update matches no row, a follow-up read disambiguates
// the failure reason.
func (r *PostgresRepository) ConsumeIfValid(ctx context.Context, tokenValue string, now time.Time) (Token, error) {
	query := `
		UPDATE magic_link_token
		SET used_at = $2
		WHERE token = $1 AND used_at IS NULL AND expires_at > $2
		RETURNING token, email, redirect_url, created_at, expires_at, used_at
	`

	var token Token
	err := r.db.QueryRow(ctx, query, tokenValue, now).Scan(
		&token.Token,
		&token.Email,
		&token.RedirectURL,
		&token.CreatedAt,
		&token.ExpiresAt,
		&token.UsedAt,
	)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Token{}, err
	}

	existing, getErr := r.Get(ctx, tokenValue)
	if getErr != nil {
		return Token{}, getErr
	}
	if existing.Consumed() {
		return Token{}, ErrTokenAlreadyUsed
	}
	return Token{}, ErrTokenExpired
}

// Get returns a token by value without consuming it
func (r *PostgresRepository) Get(ctx context.Context, tokenValue string) (Token, error) {
	query := `
		SELECT token, email, redirect_url, created_at, expires_at, used_at
		FROM magic_link_token
		WHERE token = $1
	`

	var token Token
	err := r.db.QueryRow(ctx, query, tokenValue).Scan(
		&token.Token,
		&token.Email,
		&token.RedirectURL,
		&token.CreatedAt,
		&token.ExpiresAt,
		&token.UsedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Token{}, ErrTokenNotFound
	}
	if err != nil {
		return Token{}, err
	}
	return token, nil
}

// CountPendingByEmail counts unconsumed, unexpired tokens for an email
func (r *PostgresRepository) CountPendingByEmail(ctx context.Context, email string, now time.Time) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM magic_link_token
		WHERE email = $1 AND used_at IS NULL AND expires_at > $2
	`

	var count int64
	err := r.db.QueryRow(ctx, query, email, now).Scan(&count)
	return count, err
}

// DeleteExpired removes tokens whose expiry is before the given time
func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM magic_link_token WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
