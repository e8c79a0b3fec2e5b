package api

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"formspec-backend/internal/storage"
	"formspec-backend/internal/store"
)

// UploadHandler stages file uploads before a form is submitted. A staged
// file is only ever referenced by its descriptor {name, size, type}; the
// bytes stay here.
type UploadHandler struct {
	db      *store.Store
	files   storage.FileStorage
	maxSize int64
}

func NewUploadHandler(db *store.Store, files storage.FileStorage, maxSize int64) *UploadHandler {
	return &UploadHandler{db: db, files: files, maxSize: maxSize}
}

// Upload handles POST /api/uploads (multipart, field name "file").
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return NewAppError("INVALID_PAYLOAD", 400, "Missing file in multipart form")
	}

	if h.maxSize > 0 && fileHeader.Size > h.maxSize {
		return NewAppError("FILE_TOO_LARGE", 413,
			fmt.Sprintf("File exceeds the %d byte limit", h.maxSize))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	fileID := uuid.New().String()
	storagePath, err := h.files.Save(c.Context(), fileID, fileHeader.Filename, src)
	if err != nil {
		return fmt.Errorf("save upload: %w", err)
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	var uploadedBy any
	if userID, ok := c.Locals("userID").(string); ok && userID != "" {
		uploadedBy = userID
	}

	d := h.db.Dialect
	sqlStr := fmt.Sprintf(
		"INSERT INTO _uploads (id, filename, storage_path, mime_type, size, uploaded_by) VALUES (%s)",
		store.Placeholders(d, 6))
	if _, err := store.Exec(c.Context(), h.db.DB, sqlStr,
		fileID, fileHeader.Filename, storagePath, mimeType, fileHeader.Size, uploadedBy); err != nil {
		_ = h.files.Delete(c.Context(), storagePath)
		return fmt.Errorf("insert upload: %w", err)
	}

	return c.Status(201).JSON(fiber.Map{"data": fiber.Map{
		"id":   fileID,
		"name": fileHeader.Filename,
		"size": fileHeader.Size,
		"type": mimeType,
	}})
}

// Download handles GET /api/uploads/:id
func (h *UploadHandler) Download(c *fiber.Ctx) error {
	id := c.Params("id")
	row, err := h.lookup(c, id)
	if err != nil {
		return err
	}

	storagePath, _ := row["storage_path"].(string)
	reader, err := h.files.Open(c.Context(), storagePath)
	if err != nil {
		return fmt.Errorf("open stored file: %w", err)
	}

	filename, _ := row["filename"].(string)
	mimeType, _ := row["mime_type"].(string)
	c.Set("Content-Type", mimeType)
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	// Stream the stored bytes; fasthttp closes the reader after writing
	return c.SendStream(reader)
}

// Delete handles DELETE /api/uploads/:id — releases the staged bytes and
// forgets the record.
func (h *UploadHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	row, err := h.lookup(c, id)
	if err != nil {
		return err
	}

	storagePath, _ := row["storage_path"].(string)
	if err := h.files.Delete(c.Context(), storagePath); err != nil {
		return fmt.Errorf("delete stored file: %w", err)
	}

	d := h.db.Dialect
	sqlStr := fmt.Sprintf("DELETE FROM _uploads WHERE id = %s", d.Placeholder(1))
	if _, err := store.Exec(c.Context(), h.db.DB, sqlStr, id); err != nil {
		return fmt.Errorf("delete upload row: %w", err)
	}

	return c.JSON(fiber.Map{"data": fiber.Map{"id": id}})
}

func (h *UploadHandler) lookup(c *fiber.Ctx, id string) (map[string]any, error) {
	d := h.db.Dialect
	sqlStr := fmt.Sprintf(
		"SELECT id, filename, storage_path, mime_type, size FROM _uploads WHERE id = %s",
		d.Placeholder(1))
	row, err := store.QueryRow(c.Context(), h.db.DB, sqlStr, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFoundError("upload", id)
		}
		return nil, fmt.Errorf("get upload %s: %w", id, err)
	}
	return row, nil
}
