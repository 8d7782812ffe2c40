package models

import "time"

// ReconciliationFailure is the dead-letter record for webhook events that
// could not be fully processed. The delivery is still acknowledged to the
// provider; this row keeps the payload around for manual reconciliation
// instead of losing a paid entitlement to a log line.
type ReconciliationFailure struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	EventType   string     `gorm:"type:varchar(100);not null;index" json:"event_type"`
	PayloadJSON string     `gorm:"type:longtext;not null" json:"payload_json"`
	Reason      string     `gorm:"type:text;not null" json:"reason"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	ResolvedAt  *time.Time `gorm:"type:timestamp;default:null" json:"resolved_at,omitempty"`
}
