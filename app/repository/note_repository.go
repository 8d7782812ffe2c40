package repository

import (
	"github.com/notevault/notevault/app/models"
	"gorm.io/gorm"
)

// noteRepository implements the NoteRepository interface
type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository creates a new note repository instance
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

// Create creates a new note in the database
func (r *noteRepository) Create(note *models.Note) error {
	return r.db.Create(note).Error
}

// GetByID retrieves a note by ID scoped to its owner. A note belonging to a
// different user is indistinguishable from a missing one.
func (r *noteRepository) GetByID(id uint, userID string) (*models.Note, error) {
	var note models.Note
	err := r.db.Preload("Attachments").
		Where("id = ? AND user_id = ?", id, userID).
		First(&note).Error
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// ListByUser returns all notes for a user, newest first
func (r *noteRepository) ListByUser(userID string) ([]models.Note, error) {
	var notes []models.Note
	err := r.db.Preload("Attachments").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notes).Error
	return notes, err
}

// Update updates an existing note in the database
func (r *noteRepository) Update(note *models.Note) error {
	return r.db.Save(note).Error
}

// Delete removes a note and its attachment rows, scoped to the owner
func (r *noteRepository) Delete(id uint, userID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Note{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("note_id = ?", id).Delete(&models.NoteAttachment{}).Error
	})
}

// CreateAttachment links an uploaded object to a note
func (r *noteRepository) CreateAttachment(att *models.NoteAttachment) error {
	return r.db.Create(att).Error
}

// ListAttachments returns all attachment rows for a note
func (r *noteRepository) ListAttachments(noteID uint) ([]models.NoteAttachment, error) {
	var atts []models.NoteAttachment
	err := r.db.Where("note_id = ?", noteID).Find(&atts).Error
	return atts, err
}

// DeleteAttachments removes all attachment rows for a note
func (r *noteRepository) DeleteAttachments(noteID uint) error {
	return r.db.Where("note_id = ?", noteID).Delete(&models.NoteAttachment{}).Error
}
