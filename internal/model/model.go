// Package model defines the domain types used across the application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// NotificationType classifies the event that produced a notification.
type NotificationType string

// Supported notification types.
const (
	NotificationOffer   NotificationType = "offer"
	NotificationDeal    NotificationType = "deal"
	NotificationPayment NotificationType = "payment"
	NotificationMessage NotificationType = "message"
	NotificationSystem  NotificationType = "system"
)

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationOffer, NotificationDeal, NotificationPayment, NotificationMessage, NotificationSystem:
		return true
	}
	return false
}

// ActionType decides where tapping a notification leads.
type ActionType string

// Supported action types.
const (
	ActionViewOffer   ActionType = "view_offer"
	ActionViewDeal    ActionType = "view_deal"
	ActionViewPayment ActionType = "view_payment"
	ActionViewMessage ActionType = "view_message"
)

// Notification is a single entry of the notification center.
type Notification struct {
	ID           string            `json:"id"`
	RecipientID  string            `json:"recipientId"`
	Type         NotificationType  `json:"type"`
	Title        string            `json:"title"`
	Message      string            `json:"message"`
	Timestamp    time.Time         `json:"timestamp"`
	Read         bool              `json:"read"`
	ActionType   ActionType        `json:"actionType,omitempty"`
	ActionParams map[string]string `json:"actionParams,omitempty"`
}

// TriggerType defines what kind of signal a sponsorship rule watches.
type TriggerType string

// Supported trigger types.
const (
	TriggerKeyword    TriggerType = "keyword"
	TriggerMention    TriggerType = "mention"
	TriggerDuration   TriggerType = "duration"
	TriggerScroll     TriggerType = "scroll"
	TriggerEngagement TriggerType = "engagement"
)

// Priority controls preemption and display time of a triggered rule.
type Priority string

// Supported priorities.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// SponsorshipRule is a declarative condition that surfaces a product overlay.
type SponsorshipRule struct {
	ID           string      `yaml:"id" json:"id"`
	TriggerType  TriggerType `yaml:"triggerType" json:"triggerType"`
	Keywords     []string    `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	MentionCount int         `yaml:"mentionCount,omitempty" json:"mentionCount,omitempty"`
	// ViewDuration is expressed in seconds.
	ViewDuration float64  `yaml:"viewDuration,omitempty" json:"viewDuration,omitempty"`
	ScrollDepth  float64  `yaml:"scrollDepth,omitempty" json:"scrollDepth,omitempty"`
	ProductIDs   []string `yaml:"productIds" json:"productIds"`
	Priority     Priority `yaml:"priority" json:"priority"`
}

// Product is the display projection of a catalog entry.
type Product struct {
	ID          string          `yaml:"id" json:"id"`
	Name        string          `yaml:"name" json:"name"`
	Price       decimal.Decimal `yaml:"price" json:"price"`
	Image       string          `yaml:"image" json:"image"`
	Brand       string          `yaml:"brand,omitempty" json:"brand,omitempty"`
	Description string          `yaml:"description,omitempty" json:"description,omitempty"`
}

// CartItem is one line of the shopping cart.
type CartItem struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	Quantity    int             `json:"quantity"`
	Brand       string          `json:"brand,omitempty"`
	Size        string          `json:"size,omitempty"`
	Color       string          `json:"color,omitempty"`
	CreatorID   string          `json:"creatorId,omitempty"`
	CreatorName string          `json:"creatorName,omitempty"`
}

// CartTotals holds the derived money values of a cart.
type CartTotals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// GhostProfile is a temporary identity for unregistered visitors.
type GhostProfile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// User is the signed-in account persisted next to the auth token.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	UserType string `json:"userType,omitempty"` // marketer | creator
}
