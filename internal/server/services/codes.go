// Package services contains the server-side business logic: the
// verification code store, the user/wallet provisioner, the session
// manager, and wallet listing.
package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/michosso/memepump-auth/internal/common"
	"github.com/michosso/memepump-auth/internal/dbx"
	"github.com/michosso/memepump-auth/internal/server/models"
	"github.com/michosso/memepump-auth/internal/server/repositories/repomanager"
)

const (
	codeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	codeLength   = 32

	// codeIssueAttempts bounds the retry loop on code-value collisions.
	// With 36^32 possible codes a single retry is already unreachable in
	// practice.
	codeIssueAttempts = 3
)

// CodeService issues and redeems single-use verification codes.
type CodeService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	now   func() time.Time
}

// NewCodeService constructs a CodeService over the shared database handle.
func NewCodeService(db *sql.DB, repos repomanager.RepositoryManager) *CodeService {
	return &CodeService{db: db, repos: repos, now: time.Now}
}

// Issue generates a fresh high-entropy code of the given kind for the user,
// persists it unused with expires_at = now + ttl, and returns the code
// value. A collision with an existing code value triggers regeneration
// instead of overwriting.
func (s *CodeService) Issue(ctx context.Context, userID int64, kind models.CodeKind, ttl time.Duration) (string, error) {
	repo := s.repos.VerifyCodes(s.db)

	for range codeIssueAttempts {
		code, err := generateCode(codeLength)
		if err != nil {
			return "", fmt.Errorf("code generation error: %w", err)
		}

		_, err = repo.Create(ctx, &models.VerifyCode{
			UserID:    userID,
			Code:      code,
			Kind:      kind,
			ExpiresAt: s.now().Add(ttl),
		})
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, common.ErrAlreadyExists) {
			return "", err
		}
	}

	return "", fmt.Errorf("code issue: %w", common.ErrAlreadyExists)
}

// Redeem consumes an unused code of the given kind. It returns
// common.ErrInvalidCode when no matching unused row exists and
// common.ErrCodeExpired when the row is past its expiry; an expired row is
// left unused and stays a hard failure. On success the used flag is flipped
// in the same transaction as the validating read, so consumption is
// exactly-once even under concurrent redemption.
func (s *CodeService) Redeem(ctx context.Context, userID int64, code string, kind models.CodeKind) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.VerifyCodes(tx)

		vc, err := repo.FindUnused(ctx, userID, code, kind)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrInvalidCode
			}
			return err
		}

		if s.now().After(vc.ExpiresAt) {
			return common.ErrCodeExpired
		}

		if err := repo.MarkUsed(ctx, vc.ID); err != nil {
			// a concurrent redeemer flipped the row first
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrInvalidCode
			}
			return err
		}
		return nil
	})
}

// generateCode draws n symbols from the code alphabet using rejection
// sampling, so every symbol is uniformly distributed.
func generateCode(n int) (string, error) {
	// largest multiple of len(codeAlphabet) not exceeding 256
	limit := 256 - 256%len(codeAlphabet)

	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(out) == n {
				break
			}
		}
	}

	return string(out), nil
}
