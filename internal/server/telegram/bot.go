package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/michosso/memepump-auth/internal/logging"
	"github.com/michosso/memepump-auth/internal/server/models"
)

const (
	// linkCodeTTL is the validity of a login link handed out over chat.
	linkCodeTTL = 10 * time.Minute

	pollInterval = time.Second
	errorBackoff = 5 * time.Second
)

const (
	welcomeMessage = `
⭐️ *Welcome to MemePump* 🤘

Please click the button below to login.
This link will expire in 10 minutes.`

	genericErrorMessage = "❌ An error occurred. Please try again later."
	noSenderMessage     = "❌ Error: Unable to identify Telegram ID."
)

// Provisioner ensures a Telegram identity has an account and a wallet.
type Provisioner interface {
	EnsureUser(ctx context.Context, telegramID string) (*models.User, bool, error)
	EnsureMainWallet(ctx context.Context, user *models.User) (*models.Wallet, error)
}

// CodeIssuer mints single-use verification codes.
type CodeIssuer interface {
	Issue(ctx context.Context, userID int64, kind models.CodeKind, ttl time.Duration) (string, error)
}

// Bot runs the reconciliation loop over the Bot API update stream. It owns
// the update watermark: the watermark advances before an update is handled,
// so a failing update is reported to the user and skipped rather than
// replayed forever.
type Bot struct {
	client      *Client
	provisioner Provisioner
	codes       CodeIssuer
	frontendURL string
	pollTimeout time.Duration
	log         logging.Logger

	lastUpdateID int64
}

// NewBot wires the bot. pollTimeout is the long-poll hold passed to
// getUpdates.
func NewBot(client *Client, provisioner Provisioner, codes CodeIssuer, frontendURL string, pollTimeout time.Duration, log logging.Logger) *Bot {
	return &Bot{
		client:      client,
		provisioner: provisioner,
		codes:       codes,
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
		pollTimeout: pollTimeout,
		log:         log.With("component", "telegram_bot"),
	}
}

// Run initializes the watermark and polls until ctx is cancelled. Backlog
// accumulated while the bot was down is skipped: only updates after the
// newest pending one at startup are handled. Run never returns on a polling
// or handling failure.
func (b *Bot) Run(ctx context.Context) error {
	b.initLastUpdateID(ctx)
	b.log.Info(ctx, "bot started", "last_update_id", b.lastUpdateID)

	for {
		delay := b.poll(ctx)
		if err := sleepCtx(ctx, delay); err != nil {
			return err
		}
	}
}

// poll runs one getUpdates cycle and returns the delay before the next one.
func (b *Bot) poll(ctx context.Context) time.Duration {
	updates, err := b.client.GetUpdates(ctx, b.lastUpdateID+1, 0, int(b.pollTimeout.Seconds()))
	if err != nil {
		if ctx.Err() != nil {
			return 0
		}
		b.log.Error(ctx, "getUpdates failed", "error", err)
		return errorBackoff
	}

	for _, update := range updates {
		b.lastUpdateID = update.UpdateID
		b.handleUpdate(ctx, update)
	}
	return pollInterval
}

// initLastUpdateID peeks at the newest pending update so the loop starts
// after it. Any error falls back to zero, which replays the pending queue.
func (b *Bot) initLastUpdateID(ctx context.Context) {
	update, err := b.client.LastUpdate(ctx)
	if err != nil {
		b.log.Error(ctx, "watermark init failed", "error", err)
		b.lastUpdateID = 0
		return
	}
	if update == nil {
		b.lastUpdateID = 0
		return
	}
	b.lastUpdateID = update.UpdateID
}

func (b *Bot) handleUpdate(ctx context.Context, update Update) {
	if update.Message == nil {
		return
	}
	msg := update.Message
	chatID := msg.Chat.ID

	if msg.From == nil || msg.From.ID == 0 {
		b.reply(ctx, chatID, noSenderMessage)
		return
	}
	telegramID := strconv.FormatInt(msg.From.ID, 10)

	if !strings.HasPrefix(msg.Text, "/start") {
		return
	}

	if err := b.handleStart(ctx, chatID, telegramID); err != nil {
		b.log.Error(ctx, "start command failed", "telegram_id", telegramID, "error", err)
		b.reply(ctx, chatID, genericErrorMessage)
	}
}

// handleStart provisions the account and wallet and answers with a
// short-lived login link.
func (b *Bot) handleStart(ctx context.Context, chatID int64, telegramID string) error {
	user, _, err := b.provisioner.EnsureUser(ctx, telegramID)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	if _, err := b.provisioner.EnsureMainWallet(ctx, user); err != nil {
		return fmt.Errorf("ensure wallet: %w", err)
	}

	code, err := b.codes.Issue(ctx, user.ID, models.CodeTelegramLink, linkCodeTTL)
	if err != nil {
		return fmt.Errorf("issue code: %w", err)
	}

	keyboard := &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{
			{{
				Text: "🌐 Login Website",
				URL:  fmt.Sprintf("%s/tglogin?id=%s&code=%s", b.frontendURL, telegramID, code),
			}},
		},
	}
	return b.client.SendMessage(ctx, chatID, welcomeMessage, "Markdown", keyboard)
}

// SendVerificationCode delivers an out-of-band verification code to the
// user's chat. telegramID must be the numeric chat id in decimal.
func (b *Bot) SendVerificationCode(ctx context.Context, telegramID, code string) error {
	chatID, err := strconv.ParseInt(telegramID, 10, 64)
	if err != nil {
		return fmt.Errorf("bad telegram id %q: %w", telegramID, err)
	}

	message := fmt.Sprintf(`
🔐 *Verification Code*

Your verification code is: *%s*

This code will expire in 5 minutes.
Please enter this code to verify your email address.`, code)

	return b.client.SendMessage(ctx, chatID, message, "Markdown", nil)
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.client.SendMessage(ctx, chatID, text, "", nil); err != nil {
		b.log.Error(ctx, "sendMessage failed", "chat_id", chatID, "error", err)
	}
}

// sleepCtx waits d or until ctx is cancelled, returning the context error
// on cancellation.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
