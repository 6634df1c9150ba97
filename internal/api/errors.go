package api

import (
	"errors"
	"trainer-availability/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// statusFor переводит доменную ошибку в HTTP-код
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, models.ErrBeforeEditableFloor),
		errors.Is(err, models.ErrInvalidDateRange),
		errors.Is(err, models.ErrEmptySelection),
		errors.Is(err, models.ErrUnknownStatus),
		errors.Is(err, models.ErrWindowTooLarge):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, models.ErrRequestNotFound),
		errors.Is(err, models.ErrTrainerNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrRequestNotPending):
		return fiber.StatusConflict
	case errors.Is(err, models.ErrActionInFlight):
		return fiber.StatusLocked
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler - общий обработчик ошибок приложения, отвечает в конверте
func ErrorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var invalid *invalidInput
		if errors.As(err, &invalid) {
			return ValidationError(c, invalid.err)
		}

		code := statusFor(err)
		message := err.Error()
		if code == fiber.StatusInternalServerError {
			logger.WithError(err).WithFields(logrus.Fields{
				"method":     c.Method(),
				"path":       c.Path(),
				"request_id": c.Locals(localRequestID),
			}).Error("Request failed")
			message = "внутренняя ошибка сервера"
		}
		return Error(c, code, message)
	}
}
