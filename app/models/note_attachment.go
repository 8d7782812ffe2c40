package models

import "time"

// NoteAttachment links an uploaded object to a note. The binary itself lives
// in object storage under ObjectKey; the row carries the metadata the
// frontend needs to render and delete it.
type NoteAttachment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	NoteID      uint      `gorm:"not null;index" json:"note_id"`
	UserID      string    `gorm:"type:varchar(64);not null;index" json:"user_id"`
	FileName    string    `gorm:"type:varchar(255);not null" json:"file_name"`
	ObjectKey   string    `gorm:"type:varchar(255);default:null;index" json:"-"`
	FileURL     string    `gorm:"type:varchar(512);not null" json:"file_url"`
	SizeBytes   int64     `gorm:"not null;default:0" json:"size_bytes"`
	ContentType string    `gorm:"type:varchar(100)" json:"content_type"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
