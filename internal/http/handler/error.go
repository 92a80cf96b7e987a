package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"pdfvault/internal/http/middleware"
	"pdfvault/internal/model"
	"pdfvault/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeErrorDetails(c, status, code, message, nil)
}

func writeErrorDetails(c *fiber.Ctx, status int, code, message string, details any) error {
	res := errorPayload{
		RequestID: middleware.RequestIDFrom(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError maps FileService errors to HTTP responses.
// A missing blob is reported as not found; it is told apart only in logs and metrics.
func writeServiceError(c *fiber.Ctx, err error) error {
	var qe *model.QuotaExceededError
	switch {
	case errors.As(err, &qe):
		return writeErrorDetails(c, fiber.StatusBadRequest, "QUOTA_EXCEEDED", "storage quota exceeded", qe)
	case errors.Is(err, service.ErrUnsupportedFormat):
		return writeError(c, fiber.StatusBadRequest, "UNSUPPORTED_FORMAT", "only PDF files are supported")
	case errors.Is(err, service.ErrEmptyFile):
		return writeError(c, fiber.StatusBadRequest, "EMPTY_FILE", "file is empty")
	case errors.Is(err, service.ErrInvalidName):
		return writeError(c, fiber.StatusBadRequest, "INVALID_NAME", "name must be 1 to 255 bytes")
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrCorruptState):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
	case errors.Is(err, service.ErrOwnerRequired):
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHENTICATED", "authentication required")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "upload exceeds the maximum size")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
