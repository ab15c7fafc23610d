package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/michosso/memepump-auth/internal/common"
	"github.com/michosso/memepump-auth/internal/cryptox"
	"github.com/michosso/memepump-auth/internal/server/models"
)

var testWalletKey = bytes.Repeat([]byte{0x42}, 32)

func TestEnsureUser_ExistingUser(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		u: &fakeUsersRepo{
			getByTelegramIDFn: func(ctx context.Context, telegramID string) (*models.User, error) {
				return &models.User{ID: 1, TelegramID: telegramID}, nil
			},
		},
	}

	s := NewProvisionService(db, rm, testWalletKey, nopLogger{})
	user, created, err := s.EnsureUser(context.Background(), "123456789")
	if err != nil {
		t.Fatalf("EnsureUser error: %v", err)
	}
	if created {
		t.Error("created = true for existing user")
	}
	if user.ID != 1 {
		t.Errorf("user id = %d, want 1", user.ID)
	}
}

func TestEnsureUser_CreatesOnFirstContact(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		u: &fakeUsersRepo{
			getByTelegramIDFn: func(ctx context.Context, telegramID string) (*models.User, error) {
				return nil, common.ErrNotFound
			},
			createFn: func(ctx context.Context, u *models.User) (*models.User, error) {
				u.ID = 5
				return u, nil
			},
		},
	}

	s := NewProvisionService(db, rm, testWalletKey, nopLogger{})
	user, created, err := s.EnsureUser(context.Background(), "123456789")
	if err != nil {
		t.Fatalf("EnsureUser error: %v", err)
	}
	if !created {
		t.Error("created = false for first contact")
	}
	if user.TelegramID != "123456789" {
		t.Errorf("telegram_id = %q", user.TelegramID)
	}
}

func TestEnsureUser_RecoversCreateRace(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	gets := 0
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{
			getByTelegramIDFn: func(ctx context.Context, telegramID string) (*models.User, error) {
				gets++
				if gets == 1 {
					return nil, common.ErrNotFound
				}
				return &models.User{ID: 9, TelegramID: telegramID}, nil
			},
			createFn: func(ctx context.Context, u *models.User) (*models.User, error) {
				return nil, common.ErrAlreadyExists
			},
		},
	}

	s := NewProvisionService(db, rm, testWalletKey, nopLogger{})
	user, created, err := s.EnsureUser(context.Background(), "123456789")
	if err != nil {
		t.Fatalf("EnsureUser error: %v", err)
	}
	if created {
		t.Error("created = true after losing the race")
	}
	if user.ID != 9 {
		t.Errorf("user id = %d, want the racer's row", user.ID)
	}
}

func TestEnsureUser_InconsistentStore(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		u: &fakeUsersRepo{
			getByTelegramIDFn: func(ctx context.Context, telegramID string) (*models.User, error) {
				return nil, common.ErrNotFound
			},
			createFn: func(ctx context.Context, u *models.User) (*models.User, error) {
				return nil, common.ErrAlreadyExists
			},
		},
	}

	s := NewProvisionService(db, rm, testWalletKey, nopLogger{})
	_, _, err := s.EnsureUser(context.Background(), "123456789")
	if !errors.Is(err, common.ErrProvisioningFailed) {
		t.Fatalf("EnsureUser error = %v, want ErrProvisioningFailed", err)
	}
}

func TestEnsureMainWallet_ExistingWallet(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		w: &fakeWalletsRepo{
			firstFn: func(ctx context.Context, userID int64) (*models.Wallet, error) {
				return &models.Wallet{ID: 3, UserID: userID, Kind: models.WalletMain}, nil
			},
			createFn: func(ctx context.Context, w *models.Wallet) (*models.Wallet, error) {
				t.Fatal("Create called for a user who already has a wallet")
				return nil, nil
			},
		},
	}

	s := NewProvisionService(db, rm, testWalletKey, nopLogger{})
	wallet, err := s.EnsureMainWallet(context.Background(), &models.User{ID: 1})
	if err != nil {
		t.Fatalf("EnsureMainWallet error: %v", err)
	}
	if wallet.ID != 3 {
		t.Errorf("wallet id = %d, want 3", wallet.ID)
	}
}

func TestEnsureMainWallet_CreatesEncryptedMain(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	var created *models.Wallet
	rm := &fakeRepoManager{
		w: &fakeWalletsRepo{
			firstFn: func(ctx context.Context, userID int64) (*models.Wallet, error) {
				return nil, common.ErrNotFound
			},
			createFn: func(ctx context.Context, w *models.Wallet) (*models.Wallet, error) {
				created = w
				w.ID = 10
				return w, nil
			},
		},
	}

	s := NewProvisionService(db, rm, testWalletKey, nopLogger{})
	wallet, err := s.EnsureMainWallet(context.Background(), &models.User{ID: 1})
	if err != nil {
		t.Fatalf("EnsureMainWallet error: %v", err)
	}
	if wallet.Kind != models.WalletMain {
		t.Errorf("wallet kind = %q, want main", wallet.Kind)
	}
	if created.SolAddress == "" || created.PrivateKey == "" {
		t.Fatalf("wallet is missing key material: %+v", created)
	}

	// the stored secret must decrypt with the configured wallet key
	secret, err := cryptox.DecryptSecret(created.PrivateKey, testWalletKey)
	if err != nil {
		t.Fatalf("stored key does not decrypt: %v", err)
	}
	if len(secret) == 0 {
		t.Error("decrypted secret is empty")
	}
}

func TestEnsureMainWallet_RepoError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	dbErr := errors.New("boom")
	rm := &fakeRepoManager{
		w: &fakeWalletsRepo{
			firstFn: func(ctx context.Context, userID int64) (*models.Wallet, error) {
				return nil, dbErr
			},
		},
	}

	s := NewProvisionService(db, rm, testWalletKey, nopLogger{})
	if _, err := s.EnsureMainWallet(context.Background(), &models.User{ID: 1}); !errors.Is(err, dbErr) {
		t.Fatalf("EnsureMainWallet error = %v, want wrapped repo error", err)
	}
}
