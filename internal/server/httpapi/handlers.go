package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/michosso/memepump-auth/internal/common"
	"github.com/michosso/memepump-auth/internal/server/services"
)

type telegramLoginRequest struct {
	TelegramID string `json:"telegram_id" binding:"required"`
	Code       string `json:"code" binding:"required"`
}

// LoginTelegram exchanges a Telegram id and one-time code for the session
// cookie pair. Unknown ids and bad codes both answer the same 401.
func (h *Handler) LoginTelegram(c *gin.Context) {
	var req telegramLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "telegram_id and code are required"})
		return
	}

	pair, err := h.sessions.LoginWithCode(c.Request.Context(), req.TelegramID, req.Code)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) || errors.Is(err, common.ErrInvalidCode) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid telegram id or code"})
			return
		}
		h.log.Error(c.Request.Context(), "login failed", "request_id", requestID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}

	for _, cookie := range h.sessions.LoginCookies(pair) {
		http.SetCookie(c.Writer, cookie)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful"})
}

// Refresh rotates the access token from the refresh-token cookie.
func (h *Handler) Refresh(c *gin.Context) {
	token, err := c.Cookie(services.RefreshTokenCookie)
	if err != nil || token == "" {
		unauthorized(c)
		return
	}

	access, err := h.sessions.Refresh(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) || errors.Is(err, common.ErrNotFound) {
			unauthorized(c)
			return
		}
		h.log.Error(c.Request.Context(), "refresh failed", "request_id", requestID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}

	http.SetCookie(c.Writer, h.sessions.AccessCookie(access))
	c.JSON(http.StatusOK, gin.H{"message": "Token refreshed successfully"})
}

// Logout clears both cookies. It succeeds regardless of session state.
func (h *Handler) Logout(c *gin.Context) {
	for _, cookie := range h.sessions.LogoutCookies() {
		http.SetCookie(c.Writer, cookie)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *gin.Context) {
	info, err := h.sessions.CurrentUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			unauthorized(c)
			return
		}
		h.log.Error(c.Request.Context(), "me failed", "request_id", requestID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, info)
}

// ListWallets returns one page of the authenticated user's wallets.
func (h *Handler) ListWallets(c *gin.Context) {
	req := services.WalletListRequest{
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Page:      queryInt(c, "page"),
		Limit:     queryInt(c, "limit"),
	}

	list, err := h.wallets.List(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		h.log.Error(c.Request.Context(), "wallet listing failed", "request_id", requestID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func queryInt(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}
