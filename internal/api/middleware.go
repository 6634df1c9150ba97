package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	headerRequestID = "X-Request-ID"
	localRequestID  = "reqid"
)

// RequestLogger проставляет X-Request-ID и пишет строку лога на каждый запрос
func RequestLogger(logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(headerRequestID, id)
		c.Locals(localRequestID, id)

		start := time.Now()
		err := c.Next()
		if err != nil {
			// ответ формирует ErrorHandler, код нужен для лога
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				return herr
			}
		}

		logger.WithFields(logrus.Fields{
			"request_id": id,
			"method":     c.Method(),
			"path":       c.OriginalURL(),
			"status":     c.Response().StatusCode(),
			"duration":   time.Since(start).String(),
		}).Info("HTTP request")
		return nil
	}
}
