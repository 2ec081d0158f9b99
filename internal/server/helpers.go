package server

import (
	"errors"

	"driftgram/internal/models"

	"github.com/gofiber/fiber/v2"
)

// mapServiceError translates an application error into an HTTP status.
// Anything unrecognized is a generic failure; clients match on the
// message text beyond the oversized-upload case.
func mapServiceError(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}

	switch appErr.Code {
	case "VALIDATION_ERROR":
		return fiber.StatusBadRequest
	case "UPLOAD_TOO_LARGE":
		return fiber.StatusRequestEntityTooLarge
	case "NOT_FOUND":
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
