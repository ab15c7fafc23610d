package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/michosso/memepump-auth/internal/dbx"
	"github.com/michosso/memepump-auth/internal/logging"
	"github.com/michosso/memepump-auth/internal/server/models"
	usersrepo "github.com/michosso/memepump-auth/internal/server/repositories/users"
	verifycodesrepo "github.com/michosso/memepump-auth/internal/server/repositories/verifycodes"
	walletsrepo "github.com/michosso/memepump-auth/internal/server/repositories/wallets"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

type fakeUsersRepo struct {
	createFn          func(ctx context.Context, u *models.User) (*models.User, error)
	getByIDFn         func(ctx context.Context, id int64) (*models.User, error)
	getByTelegramIDFn func(ctx context.Context, telegramID string) (*models.User, error)
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	return f.createFn(ctx, u)
}
func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return f.getByIDFn(ctx, id)
}
func (f *fakeUsersRepo) GetByTelegramID(ctx context.Context, telegramID string) (*models.User, error) {
	return f.getByTelegramIDFn(ctx, telegramID)
}

type fakeWalletsRepo struct {
	createFn func(ctx context.Context, w *models.Wallet) (*models.Wallet, error)
	firstFn  func(ctx context.Context, userID int64) (*models.Wallet, error)
	listFn   func(ctx context.Context, userID int64, q walletsrepo.ListQuery) ([]models.Wallet, error)
	countFn  func(ctx context.Context, userID int64, search string) (int64, error)
}

func (f *fakeWalletsRepo) Create(ctx context.Context, w *models.Wallet) (*models.Wallet, error) {
	return f.createFn(ctx, w)
}
func (f *fakeWalletsRepo) GetFirstByUserID(ctx context.Context, userID int64) (*models.Wallet, error) {
	return f.firstFn(ctx, userID)
}
func (f *fakeWalletsRepo) List(ctx context.Context, userID int64, q walletsrepo.ListQuery) ([]models.Wallet, error) {
	return f.listFn(ctx, userID, q)
}
func (f *fakeWalletsRepo) Count(ctx context.Context, userID int64, search string) (int64, error) {
	return f.countFn(ctx, userID, search)
}

type fakeVerifyCodesRepo struct {
	createFn     func(ctx context.Context, c *models.VerifyCode) (*models.VerifyCode, error)
	findUnusedFn func(ctx context.Context, userID int64, code string, kind models.CodeKind) (*models.VerifyCode, error)
	markUsedFn   func(ctx context.Context, id int64) error
}

func (f *fakeVerifyCodesRepo) Create(ctx context.Context, c *models.VerifyCode) (*models.VerifyCode, error) {
	return f.createFn(ctx, c)
}
func (f *fakeVerifyCodesRepo) FindUnused(ctx context.Context, userID int64, code string, kind models.CodeKind) (*models.VerifyCode, error) {
	return f.findUnusedFn(ctx, userID, code, kind)
}
func (f *fakeVerifyCodesRepo) MarkUsed(ctx context.Context, id int64) error {
	return f.markUsedFn(ctx, id)
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	w *fakeWalletsRepo
	v *fakeVerifyCodesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return m.u }
func (m *fakeRepoManager) Wallets(db dbx.DBTX) walletsrepo.Repository  { return m.w }
func (m *fakeRepoManager) VerifyCodes(db dbx.DBTX) verifycodesrepo.Repository {
	return m.v
}
