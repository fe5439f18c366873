package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"cdox/internal/http/middleware"
	"cdox/internal/model"
)

// Machine-readable codes of the error envelope.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeInvalidID        = "INVALID_ID"
	CodeInvalidOrderBy   = "INVALID_ORDERBY"
	CodeNotFound         = "NOT_FOUND"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
	CodeInternal         = "INTERNAL_ERROR"
)

// errorPayload is the body of every non-2xx response.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func requestIDFromCtx(c *fiber.Ctx) string {
	s, _ := c.Locals(middleware.RequestIDLocalKey).(string)
	return s
}

// writeError writes the envelope. message must be safe to show to clients.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

// writeDocumentError maps catalog errors for a single-document route.
// Anything but a missing document is reported as an opaque 500.
func writeDocumentError(c *fiber.Ctx, err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return writeError(c, fiber.StatusNotFound, CodeNotFound, "document not found")
	}
	return writeInternal(c)
}

func writeInternal(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusInternalServerError, CodeInternal, "internal server error")
}

// ErrorHandler renders errors that escape handlers (unknown routes, wrong
// methods, panics turned into errors) with the same envelope.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, CodeBadRequest, "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, CodeNotFound, "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, CodeMethodNotAllowed, "method not allowed")
		case fiber.StatusServiceUnavailable:
			return writeError(c, status, CodeUnavailable, "service unavailable")
		default:
			return writeError(c, fiber.StatusInternalServerError, CodeInternal, "internal server error")
		}
	}
}
