package repository

import (
	"github.com/notevault/notevault/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByUID(uid string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
}

// NoteRepository defines the interface for note-related database operations
type NoteRepository interface {
	Create(note *models.Note) error
	GetByID(id uint, userID string) (*models.Note, error)
	ListByUser(userID string) ([]models.Note, error)
	Update(note *models.Note) error
	Delete(id uint, userID string) error

	CreateAttachment(att *models.NoteAttachment) error
	ListAttachments(noteID uint) ([]models.NoteAttachment, error)
	DeleteAttachments(noteID uint) error
}

// Repositories holds all repository implementations
type Repositories struct {
	User UserRepository
	Note NoteRepository
}

// NewRepositories creates all repositories with the given database connection
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User: NewUserRepository(db),
		Note: NewNoteRepository(db),
	}
}
