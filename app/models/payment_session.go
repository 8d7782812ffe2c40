package models

import "time"

const (
	PaymentSessionCreated   = "created"
	PaymentSessionCompleted = "completed"
	PaymentSessionCancelled = "cancelled"
)

// PaymentSession records a provider checkout session at creation time. It is
// the correlation anchor the webhook reconciler falls back to when an event
// arrives without user metadata, so the row must be durably written before
// the checkout URL is handed to the browser.
type PaymentSession struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SessionID   string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"session_id"`
	UserID      string    `gorm:"type:varchar(64);not null;index" json:"user_id"`
	UserEmail   string    `gorm:"type:varchar(200)" json:"user_email"`
	ProductID   string    `gorm:"type:varchar(191)" json:"product_id"`
	Status      string    `gorm:"type:varchar(32);not null;default:'created'" json:"status"`
	CheckoutURL string    `gorm:"type:varchar(512)" json:"checkout_url"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
