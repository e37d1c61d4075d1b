package serverutils

import (
	"errors"

	"ai-notes-assistant/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps an error to the HTTP status returned to clients.
func StatusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindEmbedding, apperror.KindUpstream:
		return fiber.StatusBadGateway
	case apperror.KindStore, apperror.KindRetrieval, apperror.KindPendingIndex:
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// ErrorHandlerMiddleware renders errors returned by handlers in the response envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := StatusFor(err)
		message := err.Error()
		if code == fiber.StatusInternalServerError {
			message = "Internal server error"
		}
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
