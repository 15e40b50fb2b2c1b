package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Facturo-api/internal/application/dto"
	"github.com/jhoicas/Facturo-api/internal/application/storage"
)

// FileHandler subida y descarga de archivos por bucket.
type FileHandler struct {
	uc *storage.FileUseCase
}

// NewFileHandler construye el handler.
func NewFileHandler(uc *storage.FileUseCase) *FileHandler {
	return &FileHandler{uc: uc}
}

// Upload POST /api/files/:bucket (multipart, campo "file")
func (h *FileHandler) Upload(c *fiber.Ctx) error {
	name, contentType, data, err := uploadedFile(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "se espera un archivo en el campo 'file'"})
	}
	file, err := h.uc.Upload(c.UserContext(), storage.UploadInput{
		TenantID:     GetTenantID(c),
		UserID:       GetUserID(c),
		Bucket:       c.Params("bucket"),
		OriginalName: name,
		ContentType:  contentType,
		Data:         data,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(storage.ToFileResponse(file))
}

// Get metadatos y URL firmada. GET /api/files/:id
func (h *FileHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Download GET /api/files/:id/download
func (h *FileHandler) Download(c *fiber.Ctx) error {
	data, file, err := h.uc.Download(c.UserContext(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return sendAttachment(c, data, file.OriginalName, file.ContentType)
}

// Delete DELETE /api/files/:id
func (h *FileHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetTenantID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
