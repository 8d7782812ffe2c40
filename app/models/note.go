package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Note is a user-owned text note. Ownership is keyed on the user's stable
// UID so notes survive auth-backend changes that re-issue numeric IDs.
type Note struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	UserID      string           `gorm:"type:varchar(64);not null;index" json:"user_id"`
	UserEmail   string           `gorm:"type:varchar(200)" json:"user_email"`
	Title       string           `gorm:"type:varchar(255);not null" json:"title" validate:"required,max=255"`
	Content     string           `gorm:"type:text;not null" json:"content" validate:"required"`
	Attachments []NoteAttachment `gorm:"foreignKey:NoteID" json:"attachments,omitempty"`
	CreatedAt   time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (n *Note) Validate() error {
	v := validator.New()

	return v.Struct(n)
}
