// Package auth implements the credential codec: signing and verification of
// the access and refresh tokens carried in the session cookies. The two
// token classes are signed with independent secrets so that possession of
// one cannot forge the other.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/michosso/memepump-auth/internal/common"
	"github.com/michosso/memepump-auth/internal/server/models"
)

// TokenKind is the class of a session token.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// Claims is the signed claim set of a session token. Subject carries the
// user id, TokenType the class. Email is present on access tokens only.
type Claims struct {
	jwt.RegisteredClaims
	TelegramID string `json:"telegram_id,omitempty"`
	Email      string `json:"email,omitempty"`
	TokenType  string `json:"type"`
}

// UserID returns the numeric user id from the Subject claim.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, common.ErrInvalidToken
	}
	return id, nil
}

// Codec issues and verifies session tokens. It is a pure function of its
// configuration and performs no I/O.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewCodec constructs a codec with per-class secrets and lifetimes.
func NewCodec(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// TTL returns the configured lifetime of the given token class.
func (c *Codec) TTL(kind TokenKind) time.Duration {
	if kind == TokenRefresh {
		return c.refreshTTL
	}
	return c.accessTTL
}

// Issue produces a signed token of the given class for the user.
func (c *Codec) Issue(kind TokenKind, user *models.User) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(c.TTL(kind))),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		TelegramID: user.TelegramID,
		TokenType:  string(kind),
	}
	if kind == TokenAccess {
		claims.Email = user.Email
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret(kind))
}

// Verify parses and validates a token of the expected class. It returns
// common.ErrTokenExpired for expired tokens, common.ErrWrongTokenType when
// the class does not match, and common.ErrInvalidToken for any signature or
// format failure.
func (c *Codec) Verify(tokenString string, kind TokenKind) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return c.secret(kind), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	if claims.TokenType != string(kind) {
		return nil, common.ErrWrongTokenType
	}

	return claims, nil
}

func (c *Codec) secret(kind TokenKind) []byte {
	if kind == TokenRefresh {
		return c.refreshSecret
	}
	return c.accessSecret
}
