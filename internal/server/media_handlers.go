package server

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/Treobytes-Dev/treo-cms-api/internal/middleware"
	"github.com/Treobytes-Dev/treo-cms-api/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// maxUploadBytes caps decoded upload size at 10 MiB.
const maxUploadBytes = 10 << 20

// UploadImage handles POST /api/upload-image. The body carries a base64 data
// URL; the decoded bytes go to object storage and the public URL comes back
// as a bare string.
func (s *Server) UploadImage(c *fiber.Ctx) error {
	var req struct {
		Image string `json:"image"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Image == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Image is required"))
	}

	contentType, data, err := decodeDataURL(req.Image)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if len(data) > maxUploadBytes {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Image exceeds the maximum upload size"))
	}

	key := objectKey(contentType)
	if err := s.store.Put(c.UserContext(), key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return respondErr(c, models.NewInternalError(err))
	}
	middleware.MediaUploads.WithLabelValues("raw").Inc()

	return c.JSON(s.store.URLFor(key))
}

// UploadImageFile handles POST /api/upload-image-file. Unlike the raw
// variant, the stored object also gets a Media row so it shows up in the
// library and can be deleted later.
func (s *Server) UploadImageFile(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Image file is required"))
	}
	if fileHeader.Size > maxUploadBytes {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Image exceeds the maximum upload size"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return respondErr(c, models.NewInternalError(err))
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Only image uploads are allowed"))
	}

	key := objectKey(contentType)
	if err := s.store.Put(c.UserContext(), key, file, fileHeader.Size, contentType); err != nil {
		return respondErr(c, models.NewInternalError(err))
	}
	middleware.MediaUploads.WithLabelValues("file").Inc()

	media := &models.Media{
		URL:      s.store.URLFor(key),
		PublicID: key,
		UserID:   actingUserID(c),
	}
	if err := s.mediaRepo.Create(c.Context(), media); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(media)
}

// GetMedia handles GET /api/media
func (s *Server) GetMedia(c *fiber.Ctx) error {
	media, err := s.mediaRepo.List(c.Context())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(media)
}

// DeleteMedia handles DELETE /api/media/:id. The stored object is removed
// best-effort; the row always goes.
func (s *Server) DeleteMedia(c *fiber.Ctx) error {
	mediaID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	media, err := s.mediaRepo.GetByID(c.Context(), mediaID)
	if err != nil {
		return respondErr(c, err)
	}

	if delErr := s.store.Delete(c.UserContext(), media.PublicID); delErr != nil {
		middleware.Logger.WarnContext(c.UserContext(), "stored object delete failed",
			"key", media.PublicID, "error", delErr)
	}

	if err := s.mediaRepo.Delete(c.Context(), mediaID); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// decodeDataURL splits a "data:image/png;base64,...." payload into its
// content type and decoded bytes.
func decodeDataURL(s string) (string, []byte, error) {
	if !strings.HasPrefix(s, "data:") {
		return "", nil, fmt.Errorf("image must be a base64 data URL")
	}
	meta, encoded, found := strings.Cut(s[len("data:"):], ",")
	if !found {
		return "", nil, fmt.Errorf("malformed data URL")
	}
	contentType := strings.TrimSuffix(meta, ";base64")
	if !strings.HasPrefix(contentType, "image/") {
		return "", nil, fmt.Errorf("only image uploads are allowed")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 image data")
	}
	return contentType, data, nil
}

// objectKey builds a unique storage key with an extension inferred from the
// content type.
func objectKey(contentType string) string {
	ext := "bin"
	if _, sub, found := strings.Cut(contentType, "/"); found && sub != "" {
		ext = sub
	}
	return fmt.Sprintf("uploads/%s.%s", uuid.New().String(), ext)
}
