// Package users provides the PostgreSQL-backed repository for application
// accounts.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/michosso/memepump-auth/internal/common"
	"github.com/michosso/memepump-auth/internal/dbx"
	"github.com/michosso/memepump-auth/internal/server/models"
)

// PostgresRepository implements account storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user. Unique-constraint violations (duplicate
// telegram_id or email) are reported as common.ErrAlreadyExists so that
// callers can recover from concurrent creation races.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (full_name, email, telegram_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		nullString(user.FullName), nullString(user.Email), nullString(user.TelegramID)).
		Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// GetByID returns the user with the given id, or common.ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, full_name, email, is_verified_email, telegram_id, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetByTelegramID returns the user with the given external identity,
// or common.ErrNotFound.
func (r *PostgresRepository) GetByTelegramID(ctx context.Context, telegramID string) (*models.User, error) {
	query := `
		SELECT id, full_name, email, is_verified_email, telegram_id, created_at
		FROM users
		WHERE telegram_id = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, telegramID))
}

func (r *PostgresRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var fullName, email, telegramID sql.NullString

	err := row.Scan(&user.ID, &fullName, &email, &user.IsVerifiedEmail, &telegramID, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.FullName = fullName.String
	user.Email = email.String
	user.TelegramID = telegramID.String
	return user, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
