package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"axees/internal/notify"
)

const (
	cbOpen      = "open"
	cbRmConfirm = "rm_confirm"
	cmdRm       = "rm"
)

// chatNavigator shows a notification destination as a chat message.
type chatNavigator struct {
	b      *Bot
	chatID int64
}

func (n chatNavigator) Navigate(_ context.Context, dest notify.Destination) error {
	n.b.reply(n.chatID, FormatDestination(dest))
	return nil
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID

	callback := tgbotapi.NewCallback(cb.ID, "")
	if _, err := b.api.Send(callback); err != nil {
		b.log.Error("send callback ack", "error", err)
	}

	action, id, ok := strings.Cut(cb.Data, ":")
	if !ok || id == "" {
		return
	}

	b.log.Info("callback",
		"action", action,
		"id", id,
		"chat_id", chatID,
		"user_id", cb.From.ID,
		"username", cb.From.UserName,
	)

	switch action {
	case cbOpen:
		b.openNotification(ctx, chatID, id)
	case cbRmConfirm:
		b.confirmRemove(chatID, id)
	case cmdRm:
		b.removeLine(ctx, chatID, id)
	}
}

func (b *Bot) openNotification(ctx context.Context, chatID int64, id string) {
	n, ok := b.notes.Get(id)
	if !ok || n.RecipientID != b.recipient(chatID) {
		b.reply(chatID, "Notification not found.")
		return
	}
	navigated, err := b.notes.Open(ctx, id, chatNavigator{b: b, chatID: chatID})
	switch {
	case errors.Is(err, notify.ErrNotFound):
		b.reply(chatID, "Notification not found.")
	case err != nil:
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
	case !navigated:
		b.reply(chatID, "Marked as read.")
	}
}

func (b *Bot) confirmRemove(chatID int64, lineID string) {
	idx, item, ok := b.findLine(lineID)
	if !ok {
		b.reply(chatID, "Cart line not found.")
		return
	}
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Remove %d. %s from the cart?", idx+1, item.Name))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Yes, remove", cmdRm+":"+lineID),
			tgbotapi.NewInlineKeyboardButtonData("Cancel", "noop:0"),
		),
	)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send remove confirmation", "error", err)
	}
}

func (b *Bot) removeLine(ctx context.Context, chatID int64, lineID string) {
	_, item, ok := b.findLine(lineID)
	if !ok {
		b.reply(chatID, "Cart line not found.")
		return
	}
	if err := b.kept(b.cart.Remove(ctx, lineID)); err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("%s removed from the cart.", item.Name))
}
