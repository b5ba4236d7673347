package bot

import (
	"context"
	"errors"
	"fmt"

	"axees/internal/cart"
	"axees/internal/model"
	"axees/internal/notify"
)

// kept treats a failed save as success: the stores keep the change in memory.
func (b *Bot) kept(err error) error {
	if errors.Is(err, cart.ErrPersist) || errors.Is(err, notify.ErrPersist) {
		b.log.Warn("change not persisted", "error", err)
		return nil
	}
	return err
}

func (b *Bot) handleStart(ctx context.Context, chatID int64, args string) {
	recipientID, ok := FirstArg(args)
	if !ok {
		recipientID = fmt.Sprint(chatID)
	}
	if err := b.link(ctx, chatID, recipientID); err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to link chat: %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf(`Welcome to Axees!

This chat now receives notifications for %s.

Use /notifications to see what's new and /cart to review your cart.
Use /help for the full command reference.`, recipientID))
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Notifications:
/start [recipient] — link this chat to a recipient
/notifications — newest notifications
/unread — unread count
/read <id> — mark one as read
/readall — mark all as read

Cart:
/cart — show cart and totals
/qty <line> <n> — set quantity (0 removes)
/rm <line> — remove a line
/clearcart — empty the cart`)
}

func (b *Bot) handleNotifications(chatID int64) {
	recipientID := b.recipient(chatID)
	items := b.notes.ListFor(recipientID)
	b.reply(chatID, FormatNotificationList(items, b.notes.UnreadCount(recipientID)))
}

func (b *Bot) handleUnread(chatID int64) {
	n := b.notes.UnreadCount(b.recipient(chatID))
	b.reply(chatID, fmt.Sprintf("You have %d unread notification(s).", n))
}

func (b *Bot) handleRead(ctx context.Context, chatID int64, args string) {
	id, ok := FirstArg(args)
	if !ok {
		b.reply(chatID, "Usage: /read <id>")
		return
	}
	n, found := b.notes.Get(id)
	if !found || n.RecipientID != b.recipient(chatID) {
		b.reply(chatID, "Notification not found.")
		return
	}
	if err := b.kept(b.notes.MarkRead(ctx, id)); err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("\"%s\" marked as read.", n.Title))
}

func (b *Bot) handleReadAll(ctx context.Context, chatID int64) {
	if err := b.kept(b.notes.MarkAllReadFor(ctx, b.recipient(chatID))); err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, "All notifications marked as read.")
}

func (b *Bot) handleCart(chatID int64) {
	b.reply(chatID, FormatCart(b.cart.Items(), b.cart.Totals()))
}

func (b *Bot) handleQty(ctx context.Context, chatID int64, args string) {
	line, qty, err := ParseQtyArgs(args)
	if err != nil {
		b.reply(chatID, err.Error())
		return
	}
	item, ok := b.lineAt(line)
	if !ok {
		b.reply(chatID, fmt.Sprintf("Cart line %d not found.", line))
		return
	}

	err = b.kept(b.cart.UpdateQuantity(ctx, item.ID, qty))
	switch {
	case errors.Is(err, cart.ErrQuantityLimit):
		b.reply(chatID, fmt.Sprintf("Quantity %d is above the limit.", qty))
	case err != nil:
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
	case qty == 0:
		b.reply(chatID, fmt.Sprintf("%s removed from the cart.", item.Name))
	default:
		b.reply(chatID, fmt.Sprintf("%s quantity set to %d.", item.Name, qty))
	}
}

func (b *Bot) handleRm(chatID int64, args string) {
	line, err := ParseLineArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /rm <line>")
		return
	}
	item, ok := b.lineAt(line)
	if !ok {
		b.reply(chatID, fmt.Sprintf("Cart line %d not found.", line))
		return
	}
	b.confirmRemove(chatID, item.ID)
}

func (b *Bot) handleClearCart(ctx context.Context, chatID int64) {
	if err := b.kept(b.cart.Clear(ctx)); err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, "Cart cleared.")
}

// lineAt returns the cart line shown at 1-based position n.
func (b *Bot) lineAt(n int) (model.CartItem, bool) {
	items := b.cart.Items()
	if n < 1 || n > len(items) {
		return model.CartItem{}, false
	}
	return items[n-1], true
}

func (b *Bot) findLine(lineID string) (int, model.CartItem, bool) {
	for i, it := range b.cart.Items() {
		if it.ID == lineID {
			return i, it, true
		}
	}
	return 0, model.CartItem{}, false
}
