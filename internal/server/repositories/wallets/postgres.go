// Package wallets provides the PostgreSQL-backed repository for custodial
// wallet records.
package wallets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/michosso/memepump-auth/internal/common"
	"github.com/michosso/memepump-auth/internal/dbx"
	"github.com/michosso/memepump-auth/internal/server/models"
)

// sortColumns whitelists the ORDER BY targets of List.
var sortColumns = map[string]struct{}{
	"name":        {},
	"sol_address": {},
	"wallet_type": {},
	"created_at":  {},
}

// PostgresRepository implements wallet storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new wallet row.
func (r *PostgresRepository) Create(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error) {
	query := `
		INSERT INTO wallets (user_id, sol_address, name, private_key, wallet_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		wallet.UserID, wallet.SolAddress, nullString(wallet.Name), wallet.PrivateKey, string(wallet.Kind)).
		Scan(&wallet.ID, &wallet.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return wallet, nil
}

// GetFirstByUserID returns the oldest wallet of a user, or common.ErrNotFound.
// The provisioner uses it as the "has a wallet already" existence check.
func (r *PostgresRepository) GetFirstByUserID(ctx context.Context, userID int64) (*models.Wallet, error) {
	query := `
		SELECT id, user_id, sol_address, name, private_key, wallet_type, created_at
		FROM wallets
		WHERE user_id = $1
		ORDER BY id
		LIMIT 1
	`

	wallet := &models.Wallet{}
	var name sql.NullString
	var kind string

	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&wallet.ID, &wallet.UserID, &wallet.SolAddress, &name, &wallet.PrivateKey, &kind, &wallet.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	wallet.Name = name.String
	wallet.Kind = models.WalletKind(kind)
	return wallet, nil
}

// List returns a page of the user's wallets as a public projection:
// the private key column is never selected.
func (r *PostgresRepository) List(ctx context.Context, userID int64, q ListQuery) ([]models.Wallet, error) {
	where, args := listFilter(userID, q.Search)

	query := fmt.Sprintf(`
		SELECT id, sol_address, name, wallet_type, created_at
		FROM wallets
		%s
		ORDER BY %s %s
		LIMIT %d OFFSET %d
	`, where, sortColumn(q.SortBy), sortDirection(q.SortOrder), q.Limit, q.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Wallet
	for rows.Next() {
		var w models.Wallet
		var name sql.NullString
		var kind string

		if err := rows.Scan(&w.ID, &w.SolAddress, &name, &kind, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}

		w.UserID = userID
		w.Name = name.String
		w.Kind = models.WalletKind(kind)
		result = append(result, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Count returns the number of wallets matching the listing filter.
func (r *PostgresRepository) Count(ctx context.Context, userID int64, search string) (int64, error) {
	where, args := listFilter(userID, search)

	var total int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM wallets "+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return total, nil
}

func listFilter(userID int64, search string) (string, []any) {
	if search == "" {
		return "WHERE user_id = $1", []any{userID}
	}
	return "WHERE user_id = $1 AND (name ILIKE $2 OR sol_address ILIKE $2)",
		[]any{userID, "%" + search + "%"}
}

func sortColumn(col string) string {
	if _, ok := sortColumns[col]; ok {
		return col
	}
	return "created_at"
}

func sortDirection(dir string) string {
	if strings.EqualFold(dir, "DESC") {
		return "DESC"
	}
	return "ASC"
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
