package verifycodes

import (
	"context"

	"github.com/michosso/memepump-auth/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, code *models.VerifyCode) (*models.VerifyCode, error)
	FindUnused(ctx context.Context, userID int64, code string, kind models.CodeKind) (*models.VerifyCode, error)
	MarkUsed(ctx context.Context, id int64) error
}
