package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/notevault/notevault/app/models"
	"github.com/notevault/notevault/app/repository"
	"github.com/notevault/notevault/internal/pkg/storage"
	"github.com/notevault/notevault/internal/pkg/usercontext"
)

// NoteController serves the note CRUD API. All operations are scoped to the
// authenticated user's UID.
type NoteController struct {
	notes repository.NoteRepository
	store *storage.AttachmentStore
}

func NewNoteController(notes repository.NoteRepository, store *storage.AttachmentStore) *NoteController {
	return &NoteController{notes: notes, store: store}
}

type noteRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	FileURL  string `json:"file_url"`
	FileName string `json:"file_name"`
}

// HandleListNotes returns the user's notes, newest first.
func (nc *NoteController) HandleListNotes(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	notes, err := nc.notes.ListByUser(userCtx.UID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load notes")
	}
	return c.Status(fiber.StatusOK).JSON(notes)
}

// HandleCreateNote creates a note; title and content are both required.
func (nc *NoteController) HandleCreateNote(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req noteRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid JSON body")
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Title and content are required")
	}

	note := &models.Note{
		UserID:    userCtx.UID,
		UserEmail: userCtx.Email,
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
	}
	if err := nc.notes.Create(note); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to create note")
	}

	if req.FileURL != "" {
		att := &models.NoteAttachment{
			NoteID:    note.ID,
			UserID:    userCtx.UID,
			FileName:  req.FileName,
			FileURL:   req.FileURL,
			ObjectKey: objectKeyFromURL(req.FileURL),
		}
		if err := nc.notes.CreateAttachment(att); err != nil {
			log.Warnf("[Notes] could not link attachment to note %d: %v", note.ID, err)
		} else {
			note.Attachments = append(note.Attachments, *att)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(note)
}

// HandleUpdateNote updates a note owned by the user.
func (nc *NoteController) HandleUpdateNote(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid note id")
	}

	var req noteRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid JSON body")
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Title and content are required")
	}

	note, err := nc.notes.GetByID(uint(id), userCtx.UID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Note not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load note")
	}

	note.Title = strings.TrimSpace(req.Title)
	note.Content = req.Content
	if err := nc.notes.Update(note); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to update note")
	}

	return c.Status(fiber.StatusOK).JSON(note)
}

// HandleDeleteNote removes a note, its attachment rows, and best-effort the
// stored objects behind them.
func (nc *NoteController) HandleDeleteNote(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid note id")
	}

	atts, err := nc.notes.ListAttachments(uint(id))
	if err != nil {
		log.Warnf("[Notes] could not list attachments for note %d: %v", id, err)
	}

	if err := nc.notes.Delete(uint(id), userCtx.UID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Note not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to delete note")
	}

	if nc.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, att := range atts {
			if att.ObjectKey == "" {
				continue
			}
			if err := nc.store.Delete(ctx, att.ObjectKey); err != nil {
				log.Warnf("[Notes] could not delete attachment object %s: %v", att.ObjectKey, err)
			}
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

// objectKeyFromURL recovers the storage key from an attachment URL issued by
// the upload endpoint. URLs pointing elsewhere yield no key and are skipped
// during storage cleanup.
func objectKeyFromURL(fileURL string) string {
	idx := strings.Index(fileURL, "/attachments/")
	if idx < 0 {
		return ""
	}
	return fileURL[idx+1:]
}
