// Package httpapi exposes the session and wallet operations over HTTP.
// The handlers are a thin layer: all policy lives in the services, and the
// only transport concern owned here is moving tokens in and out of cookies.
package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/michosso/memepump-auth/internal/logging"
	"github.com/michosso/memepump-auth/internal/server/auth"
	"github.com/michosso/memepump-auth/internal/server/services"
)

// Handler carries the services the routes are built on.
type Handler struct {
	sessions *services.SessionService
	wallets  *services.WalletService
	codec    *auth.Codec
	log      logging.Logger
}

func NewHandler(sessions *services.SessionService, wallets *services.WalletService, codec *auth.Codec, log logging.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		wallets:  wallets,
		codec:    codec,
		log:      log.With("component", "http"),
	}
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Recovery(h.log))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/login/telegram", h.LoginTelegram)
	authGroup.POST("/refresh", h.Refresh)
	authGroup.POST("/logout", h.Logout)
	authGroup.GET("/me", h.RequireAuth(), h.Me)

	api.GET("/wallets", h.RequireAuth(), h.ListWallets)

	return r
}
