package serverutils

import (
	"errors"

	"realtime-chat-be/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps domain errors bubbling out of controllers to
// consistent HTTP responses.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := statusFor(err)
		return ctx.Status(status).JSON(fiber.Map{
			"success": false,
			"code":    status,
			"message": err.Error(),
		})
	}
}

func statusFor(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}

	var partial *apperr.PartialDeliveryError
	if errors.As(err, &partial) {
		return fiber.StatusInternalServerError
	}

	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperr.ErrNotAuthorized):
		return fiber.StatusForbidden
	case errors.Is(err, apperr.ErrAlreadyMember), errors.Is(err, apperr.ErrUserExists):
		return fiber.StatusConflict
	case errors.Is(err, apperr.ErrInvalidCredentials), errors.Is(err, apperr.ErrTokenExpired):
		return fiber.StatusUnauthorized
	case errors.Is(err, apperr.ErrInactiveUser):
		return fiber.StatusForbidden
	case errors.Is(err, apperr.ErrPasswordMismatch):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
