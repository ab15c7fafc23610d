package services

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/michosso/memepump-auth/internal/common"
	"github.com/michosso/memepump-auth/internal/server/auth"
	"github.com/michosso/memepump-auth/internal/server/models"
	"github.com/michosso/memepump-auth/internal/server/repositories/repomanager"
)

// Cookie names used for the session credentials.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// TokenPair bundles the short-lived access token and the long-lived
// refresh token minted at login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserInfo is the public projection of a user record.
type UserInfo struct {
	ID              int64     `json:"id"`
	TelegramID      string    `json:"telegram_id"`
	FullName        string    `json:"full_name,omitempty"`
	Email           string    `json:"email,omitempty"`
	IsVerifiedEmail bool      `json:"is_verified_email"`
	CreatedAt       time.Time `json:"created_at"`
}

// SessionService orchestrates login, refresh, and logout. Tokens live only
// in client-held cookies; there is no server-side session state, so logout
// is a cookie clear and a leaked unexpired token stays valid until its
// natural expiry.
type SessionService struct {
	db            *sql.DB
	repos         repomanager.RepositoryManager
	codec         *auth.Codec
	codes         *CodeService
	secureCookies bool
}

// NewSessionService constructs a SessionService. secureCookies controls the
// Secure flag on issued cookies and should be true in production-equivalent
// environments.
func NewSessionService(db *sql.DB, repos repomanager.RepositoryManager, codec *auth.Codec, codes *CodeService, secureCookies bool) *SessionService {
	return &SessionService{
		db:            db,
		repos:         repos,
		codec:         codec,
		codes:         codes,
		secureCookies: secureCookies,
	}
}

// LoginWithCode authenticates a Telegram identity with a one-time linking
// code and mints a token pair. It returns common.ErrNotFound when no user
// owns the identity and common.ErrInvalidCode when the code cannot be
// redeemed; callers must present both as the same generic rejection.
func (s *SessionService) LoginWithCode(ctx context.Context, telegramID, code string) (*TokenPair, error) {
	telegramID = strings.TrimSpace(telegramID)
	code = strings.TrimSpace(code)

	user, err := s.repos.Users(s.db).GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	if err := s.codes.Redeem(ctx, user.ID, code, models.CodeTelegramLink); err != nil {
		if errors.Is(err, common.ErrInvalidCode) || errors.Is(err, common.ErrCodeExpired) {
			return nil, common.ErrInvalidCode
		}
		return nil, err
	}

	access, err := s.codec.Issue(auth.TokenAccess, user)
	if err != nil {
		return nil, common.ErrInternal
	}
	refresh, err := s.codec.Issue(auth.TokenRefresh, user)
	if err != nil {
		return nil, common.ErrInternal
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh verifies a refresh token and mints a fresh access token. The
// refresh token itself is not rotated. Verification failures of any kind
// surface as common.ErrUnauthorized; a vanished account surfaces as
// common.ErrNotFound.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.codec.Verify(refreshToken, auth.TokenRefresh)
	if err != nil {
		return "", common.ErrUnauthorized
	}

	userID, err := claims.UserID()
	if err != nil {
		return "", common.ErrUnauthorized
	}

	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	access, err := s.codec.Issue(auth.TokenAccess, user)
	if err != nil {
		return "", common.ErrInternal
	}
	return access, nil
}

// CurrentUser returns the public projection for the given user id.
func (s *SessionService) CurrentUser(ctx context.Context, userID int64) (*UserInfo, error) {
	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserInfo{
		ID:              user.ID,
		TelegramID:      user.TelegramID,
		FullName:        user.FullName,
		Email:           user.Email,
		IsVerifiedEmail: user.IsVerifiedEmail,
		CreatedAt:       user.CreatedAt,
	}, nil
}

// LoginCookies returns the cookie set for a fresh token pair.
func (s *SessionService) LoginCookies(pair *TokenPair) []*http.Cookie {
	return []*http.Cookie{
		s.cookie(AccessTokenCookie, pair.AccessToken, s.codec.TTL(auth.TokenAccess)),
		s.cookie(RefreshTokenCookie, pair.RefreshToken, s.codec.TTL(auth.TokenRefresh)),
	}
}

// AccessCookie returns the cookie for a rotated access token.
func (s *SessionService) AccessCookie(accessToken string) *http.Cookie {
	return s.cookie(AccessTokenCookie, accessToken, s.codec.TTL(auth.TokenAccess))
}

// LogoutCookies returns expired cookies that clear both credentials.
// Logout always succeeds and is idempotent; there is nothing to invalidate
// server-side.
func (s *SessionService) LogoutCookies() []*http.Cookie {
	return []*http.Cookie{
		s.cookie(AccessTokenCookie, "", -time.Second),
		s.cookie(RefreshTokenCookie, "", -time.Second),
	}
}

func (s *SessionService) cookie(name, value string, ttl time.Duration) *http.Cookie {
	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteNoneMode,
	}
}
