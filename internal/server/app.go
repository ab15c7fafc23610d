// Package server initializes and runs the auth service: it opens the
// database, applies migrations, wires the services, and runs the HTTP API
// and the Telegram bot side by side until shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/michosso/memepump-auth/internal/cryptox"
	"github.com/michosso/memepump-auth/internal/logging"
	"github.com/michosso/memepump-auth/internal/server/auth"
	"github.com/michosso/memepump-auth/internal/server/config"
	"github.com/michosso/memepump-auth/internal/server/httpapi"
	"github.com/michosso/memepump-auth/internal/server/repositories/repomanager"
	"github.com/michosso/memepump-auth/internal/server/services"
	"github.com/michosso/memepump-auth/internal/server/telegram"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	bot    *telegram.Bot
	router http.Handler
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	codec := auth.NewCodec(
		[]byte(cfg.AccessTokenSecret), []byte(cfg.RefreshTokenSecret),
		cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration)

	walletKey := cryptox.DeriveKey([]byte(cfg.WalletKeySecret))

	codes := services.NewCodeService(db, repos)
	provisioner := services.NewProvisionService(db, repos, walletKey, logger)
	sessions := services.NewSessionService(db, repos, codec, codes, cfg.SecureCookies)
	wallets := services.NewWalletService(db, repos)

	client := telegram.NewClient(cfg.TelegramAPIURL, cfg.BotToken)
	bot := telegram.NewBot(client, provisioner, codes, cfg.FrontendURL, cfg.PollTimeout, logger)

	handler := httpapi.NewHandler(sessions, wallets, codec, logger)

	return &App{
		config: cfg,
		logger: logger,
		db:     db,
		bot:    bot,
		router: httpapi.NewRouter(handler),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startBot(ctx context.Context, cancelFunc context.CancelFunc) {

	if app.config.BotToken == "" {
		app.logger.Warn(ctx, "no bot token configured, telegram bot disabled")
		return
	}

	if err := app.bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startBot(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
