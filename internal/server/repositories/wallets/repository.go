package wallets

import (
	"context"

	"github.com/michosso/memepump-auth/internal/server/models"
)

// ListQuery narrows and orders a wallet listing. Search matches the wallet
// name or address. SortBy must be one of the allowed columns; invalid values
// fall back to created_at.
type ListQuery struct {
	Search    string
	SortBy    string
	SortOrder string
	Offset    int
	Limit     int
}

type Repository interface {
	Create(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error)
	GetFirstByUserID(ctx context.Context, userID int64) (*models.Wallet, error)
	List(ctx context.Context, userID int64, q ListQuery) ([]models.Wallet, error)
	Count(ctx context.Context, userID int64, search string) (int64, error)
}
