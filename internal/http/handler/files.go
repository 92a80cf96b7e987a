package handler

import (
	"io"
	"mime"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"pdfvault/internal/http/middleware"
	"pdfvault/internal/model"
	"pdfvault/internal/service"
)

// fileListResponse is the body of GET /files.
type fileListResponse struct {
	Data  []model.FileRecord `json:"data"`
	Total int                `json:"total"`
}

type renameRequest struct {
	Name string `json:"name"`
}

// currentUser returns the user ID set by middleware.Authenticate.
func currentUser(c *fiber.Ctx) (string, bool) {
	uid := middleware.UserID(c)
	return uid, uid != ""
}

func validID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	_, err := uuid.Parse(id)
	return id, err == nil
}

// ListFiles returns the caller's files, newest first.
//
// @Summary List files
// @Tags files
// @Produce json
// @Param q query string false "case-insensitive name filter"
// @Success 200 {object} fileListResponse
// @Failure 401 {object} errorPayload
// @Security BearerAuth
// @Router /files [get]
func ListFiles(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, ok := currentUser(c)
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
		}

		items, err := svc.List(c.UserContext(), uid, c.Query("q"))
		if err != nil {
			return writeServiceError(c, err)
		}
		if items == nil {
			items = []model.FileRecord{}
		}
		return c.JSON(fileListResponse{Data: items, Total: len(items)})
	}
}

// UploadFile stores a PDF sent as multipart/form-data in the "file" field.
//
// @Summary Upload a PDF
// @Tags files
// @Accept mpfd
// @Produce json
// @Param file formData file true "PDF document"
// @Success 201 {object} model.FileRecord
// @Failure 400 {object} errorPayload
// @Failure 413 {object} errorPayload
// @Security BearerAuth
// @Router /files [post]
func UploadFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, ok := currentUser(c)
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if mt, _, err := mime.ParseMediaType(ct); err != nil || mt == "application/octet-stream" {
			// Clients that don't label the part get their type from the magic bytes.
			detected, err := mimetype.DetectReader(f)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot read uploaded file")
			}
			if _, err := f.Seek(0, io.SeekStart); err != nil {
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
			ct = detected.String()
		}

		rec, err := svc.Upload(c.UserContext(), uid, f, fh.Filename, ct, fh.Size)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(rec)
	}
}

// DownloadFile streams the raw PDF for display in the browser.
//
// @Summary Download a PDF
// @Tags files
// @Produce application/pdf
// @Param id path string true "file id"
// @Success 200 {file} binary
// @Failure 404 {object} errorPayload
// @Security BearerAuth
// @Router /files/{id} [get]
func DownloadFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, ok := currentUser(c)
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
		}
		id, ok := validID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		rc, rec, err := svc.Retrieve(c.UserContext(), uid, id)
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Set(fiber.HeaderContentType, service.PDFContentType)
		c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("inline", map[string]string{"filename": rec.Name}))
		c.Set("X-Content-Type-Options", "nosniff")
		// The stream is closed once the body has been written.
		return c.SendStream(rc, int(rec.Size))
	}
}

// RenameFile changes a file's display name.
//
// @Summary Rename a file
// @Tags files
// @Accept json
// @Produce json
// @Param id path string true "file id"
// @Param body body renameRequest true "new name"
// @Success 200 {object} model.FileRecord
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Security BearerAuth
// @Router /files/{id} [patch]
func RenameFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, ok := currentUser(c)
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
		}
		id, ok := validID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var req renameRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		rec, err := svc.Rename(c.UserContext(), uid, id, req.Name)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(rec)
	}
}

// DeleteFile removes a file and frees its bytes from the caller's quota.
//
// @Summary Delete a file
// @Tags files
// @Param id path string true "file id"
// @Success 204
// @Failure 404 {object} errorPayload
// @Security BearerAuth
// @Router /files/{id} [delete]
func DeleteFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, ok := currentUser(c)
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
		}
		id, ok := validID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		if err := svc.Delete(c.UserContext(), uid, id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GetUsage reports the caller's storage consumption against the quota.
//
// @Summary Storage usage
// @Tags files
// @Produce json
// @Success 200 {object} model.UsageStats
// @Security BearerAuth
// @Router /files/usage [get]
func GetUsage(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, ok := currentUser(c)
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
		}

		stats, err := svc.Stats(c.UserContext(), uid)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(stats)
	}
}
