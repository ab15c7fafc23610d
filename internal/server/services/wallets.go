package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/michosso/memepump-auth/internal/server/models"
	"github.com/michosso/memepump-auth/internal/server/repositories/repomanager"
	"github.com/michosso/memepump-auth/internal/server/repositories/wallets"
)

const (
	walletsDefaultLimit = 10
	walletsMaxLimit     = 100
)

// WalletListRequest carries raw listing parameters as received from the
// transport layer. Zero values select the defaults.
type WalletListRequest struct {
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// WalletInfo is the public projection of a wallet. It never carries the
// private key.
type WalletInfo struct {
	ID         int64             `json:"id"`
	SolAddress string            `json:"sol_address"`
	Name       string            `json:"name,omitempty"`
	Kind       models.WalletKind `json:"wallet_type"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Pagination describes the page a listing call returned.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// WalletList is a page of wallets plus the paging metadata.
type WalletList struct {
	Wallets    []WalletInfo `json:"wallets"`
	Pagination Pagination   `json:"pagination"`
}

// WalletService serves wallet listings for authenticated users.
type WalletService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

func NewWalletService(db *sql.DB, repos repomanager.RepositoryManager) *WalletService {
	return &WalletService{db: db, repos: repos}
}

// List returns one page of the user's wallets. Out-of-range paging
// parameters are clamped rather than rejected, and unknown sort columns
// fall back to creation order.
func (s *WalletService) List(ctx context.Context, userID int64, req WalletListRequest) (*WalletList, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 {
		limit = walletsDefaultLimit
	}
	if limit > walletsMaxLimit {
		limit = walletsMaxLimit
	}

	order := strings.ToUpper(strings.TrimSpace(req.SortOrder))
	if order != "DESC" {
		order = "ASC"
	}

	q := wallets.ListQuery{
		Search:    strings.TrimSpace(req.Search),
		SortBy:    req.SortBy,
		SortOrder: order,
		Offset:    (page - 1) * limit,
		Limit:     limit,
	}

	repo := s.repos.Wallets(s.db)

	items, err := repo.List(ctx, userID, q)
	if err != nil {
		return nil, err
	}
	total, err := repo.Count(ctx, userID, q.Search)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	list := &WalletList{
		Wallets: make([]WalletInfo, 0, len(items)),
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}
	for _, w := range items {
		list.Wallets = append(list.Wallets, WalletInfo{
			ID:         w.ID,
			SolAddress: w.SolAddress,
			Name:       w.Name,
			Kind:       w.Kind,
			CreatedAt:  w.CreatedAt,
		})
	}
	return list, nil
}
