// Package bot is the Telegram front end of the notification center and cart.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"axees/internal/cart"
	"axees/internal/config"
	"axees/internal/model"
	"axees/internal/notify"
	"axees/internal/storage"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot handles user commands and pushes new notifications to linked chats.
type Bot struct {
	api   telegramAPI
	notes *notify.Store
	cart  *cart.Store
	store storage.Storage
	cfg   *config.Config
	log   *slog.Logger

	mu    sync.Mutex
	links map[int64]string // chat id -> recipient id

	// outbox decouples Telegram sends from the goroutine that appended
	// the notification. Run drains it.
	outbox chan model.Notification
}

const outboxSize = 64

// New creates a Bot with the given Telegram token and stores.
func New(token string, notes *notify.Store, c *cart.Store, store storage.Storage, cfg *config.Config, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return newBot(api, notes, c, store, cfg, log), nil
}

func newBot(api telegramAPI, notes *notify.Store, c *cart.Store, store storage.Storage, cfg *config.Config, log *slog.Logger) *Bot {
	b := &Bot{
		api:    api,
		notes:  notes,
		cart:   c,
		store:  store,
		cfg:    cfg,
		log:    log,
		links:  make(map[int64]string),
		outbox: make(chan model.Notification, outboxSize),
	}
	notes.Subscribe(b.enqueue)
	return b
}

// LoadLinks restores the chat to recipient links.
func (b *Bot) LoadLinks(ctx context.Context) {
	links := make(map[int64]string)
	if _, err := storage.GetJSON(ctx, b.store, storage.KeyTelegramChats, &links); err != nil {
		b.log.Warn("load telegram chats", "error", err)
		return
	}
	b.mu.Lock()
	b.links = links
	b.mu.Unlock()
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.deliverPending()
			return
		case n := <-b.outbox:
			b.push(n)
		case update := <-updates:
			if update.CallbackQuery != nil {
				if !b.cfg.IsUserAllowed(update.CallbackQuery.From.ID) {
					continue
				}
				b.handleCallback(ctx, update.CallbackQuery)
				continue
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			if !b.cfg.IsUserAllowed(update.Message.From.ID) {
				b.reply(update.Message.Chat.ID, "Access denied.")
				continue
			}
			b.handleCommand(ctx, update.Message)
		}
	}
}

// SendMessage sends a text message to the given chat.
func (b *Bot) SendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.SendMessage(chatID, text)
}

// recipient returns the recipient linked to chatID. Unlinked chats act as
// their own recipient.
func (b *Bot) recipient(chatID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if r, ok := b.links[chatID]; ok {
		return r
	}
	return fmt.Sprint(chatID)
}

func (b *Bot) link(ctx context.Context, chatID int64, recipientID string) error {
	b.mu.Lock()
	b.links[chatID] = recipientID
	snapshot := make(map[int64]string, len(b.links))
	for k, v := range b.links {
		snapshot[k] = v
	}
	b.mu.Unlock()

	if err := storage.SetJSON(ctx, b.store, storage.KeyTelegramChats, snapshot); err != nil {
		b.log.Error("persist telegram chats", "error", err)
		return fmt.Errorf("persist telegram chats: %w", err)
	}
	return nil
}

func (b *Bot) chatsFor(recipientID string) []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var chats []int64
	for chatID, r := range b.links {
		if r == recipientID {
			chats = append(chats, chatID)
		}
	}
	return chats
}

// enqueue queues n for delivery without blocking. When the outbox is full
// the notification stays in the store and only the push is dropped.
func (b *Bot) enqueue(n model.Notification) {
	select {
	case b.outbox <- n:
	default:
		b.log.Warn("push outbox full, dropping", "notification_id", n.ID, "recipient_id", n.RecipientID)
	}
}

// deliverPending pushes everything queued so far.
func (b *Bot) deliverPending() {
	for {
		select {
		case n := <-b.outbox:
			b.push(n)
		default:
			return
		}
	}
}

// push delivers a freshly appended notification to every chat linked to
// its recipient.
func (b *Bot) push(n model.Notification) {
	for _, chatID := range b.chatsFor(n.RecipientID) {
		msg := tgbotapi.NewMessage(chatID, FormatNotification(n))
		msg.DisableWebPagePreview = true
		if _, ok := notify.Route(n); ok {
			msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
				tgbotapi.NewInlineKeyboardRow(
					tgbotapi.NewInlineKeyboardButtonData("Open", cbOpen+":"+n.ID),
				),
			)
		}
		if _, err := b.api.Send(msg); err != nil {
			b.log.Error("push notification", "chat_id", chatID, "notification_id", n.ID, "error", err)
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())
	chatID := msg.Chat.ID

	b.log.Debug("command", "cmd", cmd, "args", args, "chat_id", chatID)

	switch cmd {
	case "start":
		b.handleStart(ctx, chatID, args)
	case "help":
		b.handleHelp(chatID)
	case "notifications":
		b.handleNotifications(chatID)
	case "unread":
		b.handleUnread(chatID)
	case "read":
		b.handleRead(ctx, chatID, args)
	case "readall":
		b.handleReadAll(ctx, chatID)
	case "cart":
		b.handleCart(chatID)
	case "qty":
		b.handleQty(ctx, chatID, args)
	case cmdRm:
		b.handleRm(chatID, args)
	case "clearcart":
		b.handleClearCart(ctx, chatID)
	default:
		b.reply(chatID, "Unknown command. Use /help for a list of commands.")
	}
}
