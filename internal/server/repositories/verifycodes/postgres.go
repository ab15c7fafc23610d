// Package verifycodes provides the PostgreSQL-backed repository for
// single-use verification codes.
package verifycodes

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

// PostgresRepository implements verification code storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts an unused code row. A collision with an existing code value
// is reported as common.ErrAlreadyExists; the caller is expected to generate
// a fresh code and retry instead of overwriting.
func (r *PostgresRepository) Create(ctx context.Context, code *models.VerifyCode) (*models.VerifyCode, error) {
	query := `
		INSERT INTO verify_codes (user_id, code, type, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		code.UserID, code.Code, int(code.Kind), code.ExpiresAt).
		Scan(&code.ID, &code.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return code, nil
}

// FindUnused returns the most recently issued unused code row matching
// (userID, code, kind), or common.ErrNotFound. Expiry is not checked here;
// the caller decides what an expired row means.
func (r *PostgresRepository) FindUnused(ctx context.Context, userID int64, code string, kind models.CodeKind) (*models.VerifyCode, error) {
	query := `
		SELECT id, user_id, code, type, is_used, expires_at, created_at
		FROM verify_codes
		WHERE user_id = $1 AND code = $2 AND type = $3 AND is_used = FALSE
		ORDER BY created_at DESC
		LIMIT 1
	`

	vc := &models.VerifyCode{}
	var kindValue int

	err := r.db.QueryRowContext(ctx, query, userID, code, int(kind)).
		Scan(&vc.ID, &vc.UserID, &vc.Code, &kindValue, &vc.Used, &vc.ExpiresAt, &vc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	vc.Kind = models.CodeKind(kindValue)
	return vc, nil
}

// MarkUsed flips is_used on the given row. Marking an already-used row is
// reported as common.ErrNotFound so that consumption stays exactly-once.
func (r *PostgresRepository) MarkUsed(ctx context.Context, id int64) error {
	query := `
		UPDATE verify_codes
		SET is_used = TRUE
		WHERE id = $1 AND is_used = FALSE
	`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
