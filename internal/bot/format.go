package bot

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"axees/internal/model"
	"axees/internal/notify"
)

const maxListed = 10

var typeLabels = map[model.NotificationType]string{
	model.NotificationOffer:   "Offer",
	model.NotificationDeal:    "Deal",
	model.NotificationPayment: "Payment",
	model.NotificationMessage: "Message",
	model.NotificationSystem:  "System",
}

// FormatNotification formats a notification as a Telegram message.
func FormatNotification(n model.Notification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", typeLabels[n.Type], n.Title)
	if n.Message != "" {
		b.WriteString("\n\n")
		b.WriteString(n.Message)
	}
	fmt.Fprintf(&b, "\n\n%s · %s", n.Timestamp.Format("2006-01-02 15:04 UTC"), n.ID)
	return b.String()
}

// FormatNotificationList formats the newest notifications of a recipient.
func FormatNotificationList(items []model.Notification, unread int) string {
	if len(items) == 0 {
		return "No notifications yet."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Notifications (%d unread):\n", unread)
	for i, n := range items {
		if i == maxListed {
			fmt.Fprintf(&b, "\n...and %d more", len(items)-maxListed)
			break
		}
		mark := " "
		if !n.Read {
			mark = "•"
		}
		fmt.Fprintf(&b, "\n%s %s  %s\n   /read %s\n", mark, typeLabels[n.Type], n.Title, n.ID)
	}
	return b.String()
}

// FormatDestination describes where an opened notification leads.
func FormatDestination(d notify.Destination) string {
	keys := make([]string, 0, len(d.Params))
	for k := range d.Params {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "Opening %s", d.Name)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n%s: %s", k, d.Params[k])
	}
	return b.String()
}

// FormatCart formats the cart lines and totals. Money is rounded to cents.
func FormatCart(items []model.CartItem, totals model.CartTotals) string {
	if len(items) == 0 {
		return "Your cart is empty."
	}
	var b strings.Builder
	b.WriteString("Your cart:\n")
	for i, it := range items {
		fmt.Fprintf(&b, "\n%d. %s", i+1, it.Name)
		if variant := variantLabel(it); variant != "" {
			fmt.Fprintf(&b, " (%s)", variant)
		}
		lineTotal := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		fmt.Fprintf(&b, "\n   %d × $%s = $%s\n", it.Quantity, it.Price.StringFixed(2), lineTotal.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nSubtotal: $%s\nTax: $%s\nTotal: $%s",
		totals.Subtotal.StringFixed(2), totals.Tax.StringFixed(2), totals.Total.StringFixed(2))
	return b.String()
}

func variantLabel(it model.CartItem) string {
	var parts []string
	if it.Size != "" {
		parts = append(parts, it.Size)
	}
	if it.Color != "" {
		parts = append(parts, it.Color)
	}
	return strings.Join(parts, ", ")
}
