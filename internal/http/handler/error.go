package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"archivedoc/internal/ai"
	"archivedoc/internal/http/middleware"
	"archivedoc/internal/model"
	"archivedoc/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeErrorDetails(c, status, code, message, nil)
}

// writeErrorDetails is writeError plus a per-violation detail list, used for
// validation responses.
func writeErrorDetails(c *fiber.Ctx, status int, code, message string, details []string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	return c.Status(status).JSON(res)
}

// writeDomainError maps the typed domain errors onto transport codes. The
// services never see HTTP; this is the only place the mapping lives.
func writeDomainError(c *fiber.Ctx, err error) error {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return writeErrorDetails(c, fiber.StatusBadRequest, "VALIDATION_FAILED", "payload validation failed", ve.Violations)
	}
	if errors.Is(err, service.ErrIDRequired) {
		return writeError(c, fiber.StatusBadRequest, "ID_REQUIRED", "id is required")
	}
	if errors.Is(err, model.ErrNotFound) {
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
	}
	if errors.Is(err, model.ErrInvalidTransition) {
		return writeError(c, fiber.StatusConflict, "INVALID_TRANSITION", "job state does not allow this operation")
	}
	if errors.Is(err, ai.ErrCircuitOpen) {
		return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "classifier temporarily unavailable")
	}

	var ce *model.ConversionError
	if errors.As(err, &ce) {
		return writeError(c, fiber.StatusInternalServerError, "CONVERSION_FAILED", "file could not be converted to an image")
	}
	var pe *model.ParseError
	if errors.As(err, &pe) {
		return writeError(c, fiber.StatusInternalServerError, "ANALYSIS_PARSE_FAILED", "classifier output could not be parsed")
	}
	var ae *model.AnalysisError
	if errors.As(err, &ae) {
		return writeError(c, fiber.StatusInternalServerError, "ANALYSIS_FAILED", "analysis failed")
	}
	var se *model.PersistenceError
	if errors.As(err, &se) {
		return writeError(c, fiber.StatusInternalServerError, "PERSISTENCE_FAILED", "could not persist the document")
	}

	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
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
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
