package models

import "time"

const (
	SubscriptionStatusPremium   = "premium"
	SubscriptionStatusFailed    = "failed"
	SubscriptionStatusCancelled = "cancelled"

	SubscriptionTypePremium = "premium"
)

// Subscription represents a user's premium entitlement as reconciled from
// payment provider webhooks. ProviderSubscriptionID is the natural
// idempotency key: the unique index turns a concurrent duplicate insert into
// a constraint violation the reconciler converts to an update.
type Subscription struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	UserID                 string     `gorm:"type:varchar(64);not null;index" json:"user_id"`
	UserEmail              string     `gorm:"type:varchar(200)" json:"user_email"`
	Status                 string     `gorm:"type:varchar(32);not null;index" json:"status"`
	SubscriptionType       string     `gorm:"type:varchar(50);not null;default:'premium'" json:"subscription_type"`
	ProductID              string     `gorm:"type:varchar(191)" json:"product_id"`
	SessionID              string     `gorm:"type:varchar(191);index" json:"session_id"`
	PaymentID              string     `gorm:"type:varchar(191)" json:"payment_id"`
	ProviderSubscriptionID string     `gorm:"type:varchar(191);default:null;uniqueIndex:ux_subscriptions_provider_subid" json:"provider_subscription_id"`
	Amount                 float64    `gorm:"type:decimal(10,2);not null;default:0" json:"amount"`
	Currency               string     `gorm:"type:varchar(8);not null;default:'USD'" json:"currency"`
	StartsAt               *time.Time `gorm:"type:timestamp;default:null" json:"starts_at,omitempty"`
	IsActive               bool       `gorm:"not null;default:false;index" json:"is_active"`
	CreatedAt              time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt              time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsPremium reports whether this row grants premium access right now.
func (s *Subscription) IsPremium() bool {
	return s.IsActive && s.Status == SubscriptionStatusPremium
}
