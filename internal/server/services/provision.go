package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/michosso/memepump-auth/internal/common"
	"github.com/michosso/memepump-auth/internal/cryptox"
	"github.com/michosso/memepump-auth/internal/logging"
	"github.com/michosso/memepump-auth/internal/server/models"
	"github.com/michosso/memepump-auth/internal/server/repositories/repomanager"
)

// ProvisionService idempotently ensures that a Telegram identity has an
// application account and a MAIN custodial wallet.
type ProvisionService struct {
	db        *sql.DB
	repos     repomanager.RepositoryManager
	walletKey []byte
	log       logging.Logger
}

// NewProvisionService constructs a ProvisionService. walletKey is the
// 32-byte at-rest encryption key for wallet secret material.
func NewProvisionService(db *sql.DB, repos repomanager.RepositoryManager, walletKey []byte, log logging.Logger) *ProvisionService {
	return &ProvisionService{db: db, repos: repos, walletKey: walletKey, log: log}
}

// EnsureUser returns the user owning the given Telegram identity, creating
// one on first contact. The boolean reports whether a row was created by
// this call. A concurrent duplicate insert is recovered by re-fetching; the
// racer's row is authoritative. If the re-fetch still finds nothing the
// store is inconsistent and common.ErrProvisioningFailed is returned.
func (s *ProvisionService) EnsureUser(ctx context.Context, telegramID string) (*models.User, bool, error) {
	repo := s.repos.Users(s.db)

	user, err := repo.GetByTelegramID(ctx, telegramID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, false, err
	}

	user, err = repo.Create(ctx, &models.User{TelegramID: telegramID})
	if err == nil {
		s.log.Info(ctx, "created new user", "telegram_id", telegramID, "user_id", user.ID)
		return user, true, nil
	}
	if !errors.Is(err, common.ErrAlreadyExists) {
		return nil, false, err
	}

	// lost a creation race; whoever won holds the row
	user, err = repo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, false, common.ErrProvisioningFailed
		}
		return nil, false, err
	}
	return user, false, nil
}

// EnsureMainWallet returns the user's wallet, generating and persisting a
// MAIN custodial wallet if none exists yet. The secret key is encrypted
// before it touches the store and wiped from memory afterwards.
func (s *ProvisionService) EnsureMainWallet(ctx context.Context, user *models.User) (*models.Wallet, error) {
	repo := s.repos.Wallets(s.db)

	wallet, err := repo.GetFirstByUserID(ctx, user.ID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	kp, err := cryptox.GenerateKeypair()
	if err != nil {
		return nil, fmt.Errorf("wallet keypair error: %w", err)
	}
	defer cryptox.WipeByteArray(kp.Secret)

	encrypted, err := cryptox.EncryptSecret(kp.Secret, s.walletKey)
	if err != nil {
		return nil, fmt.Errorf("wallet key encryption error: %w", err)
	}

	wallet, err = repo.Create(ctx, &models.Wallet{
		UserID:     user.ID,
		SolAddress: kp.Address,
		PrivateKey: encrypted,
		Kind:       models.WalletMain,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "created MAIN wallet", "user_id", user.ID, "sol_address", wallet.SolAddress)
	return wallet, nil
}
