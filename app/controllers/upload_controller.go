package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/notevault/notevault/internal/pkg/storage"
	"github.com/notevault/notevault/internal/pkg/usercontext"
)

const maxAttachmentSize = 50 * 1024 * 1024 // 50 MB

var allowedAttachmentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
	"text/plain":      true,
}

// UploadController stores note attachments in object storage.
type UploadController struct {
	store *storage.AttachmentStore
}

func NewUploadController(store *storage.AttachmentStore) *UploadController {
	return &UploadController{store: store}
}

// HandleUpload accepts a multipart file and stores it under the user's
// attachment namespace. The returned file_url is what the note payload
// references.
func (uc *UploadController) HandleUpload(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Missing file")
	}

	if fileHeader.Size > maxAttachmentSize {
		return jsonError(c, fiber.StatusRequestEntityTooLarge, "file_too_large", "Maximum attachment size is 50MB")
	}

	contentType := fileHeader.Header.Get(fiber.HeaderContentType)
	if !allowedAttachmentTypes[contentType] {
		return jsonError(c, fiber.StatusUnsupportedMediaType, "unsupported_type", "File type is not supported")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to read upload")
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
	defer cancel()

	obj, err := uc.store.Upload(ctx, userCtx.UID, fileHeader.Filename, contentType, fileHeader.Size, file)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to store attachment")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":   true,
		"file_url":  obj.URL,
		"file_name": fileHeader.Filename,
	})
}
