package notify

import (
	"fmt"

	"axees/internal/model"
)

// OfferReceived builds the notification sent to a creator when a marketer makes an offer.
func OfferReceived(recipientID, offerID, marketerName string) model.Notification {
	return model.Notification{
		RecipientID:  recipientID,
		Type:         model.NotificationOffer,
		Title:        "New offer",
		Message:      fmt.Sprintf("%s sent you an offer.", marketerName),
		ActionType:   model.ActionViewOffer,
		ActionParams: map[string]string{"offerId": offerID},
	}
}

// DealFunded builds the notification sent when escrow for a deal is funded.
func DealFunded(recipientID, dealID, amount string) model.Notification {
	return model.Notification{
		RecipientID:  recipientID,
		Type:         model.NotificationDeal,
		Title:        "Deal funded",
		Message:      fmt.Sprintf("%s was placed in escrow. You can start working on the deal.", amount),
		ActionType:   model.ActionViewDeal,
		ActionParams: map[string]string{"dealId": dealID},
	}
}

// PaymentReleased builds the notification sent when a milestone payment is released.
func PaymentReleased(recipientID, paymentID, amount string) model.Notification {
	return model.Notification{
		RecipientID:  recipientID,
		Type:         model.NotificationPayment,
		Title:        "Payment released",
		Message:      fmt.Sprintf("%s has been released to your account.", amount),
		ActionType:   model.ActionViewPayment,
		ActionParams: map[string]string{"paymentId": paymentID},
	}
}

// MessageReceived builds the notification for a new chat message.
func MessageReceived(recipientID, chatID, senderName, preview string) model.Notification {
	if r := []rune(preview); len(r) > 120 {
		preview = string(r[:120]) + "..."
	}
	return model.Notification{
		RecipientID:  recipientID,
		Type:         model.NotificationMessage,
		Title:        "Message from " + senderName,
		Message:      preview,
		ActionType:   model.ActionViewMessage,
		ActionParams: map[string]string{"chatId": chatID},
	}
}

// SystemNotice builds a notification without a routing target.
func SystemNotice(recipientID, title, message string) model.Notification {
	return model.Notification{
		RecipientID: recipientID,
		Type:        model.NotificationSystem,
		Title:       title,
		Message:     message,
	}
}
