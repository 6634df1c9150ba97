// Package api - HTTP-интерфейс к календарю доступности и заявкам на отсутствие
package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	Availability *AvailabilityController
	Absences     *AbsenceController
}

// NewApp собирает fiber-приложение со всеми маршрутами
func NewApp(h Handlers, logger *logrus.Logger) *fiber.App {
	if logger == nil {
		logger = logrus.New()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(logger),
	})
	app.Use(recover.New())
	app.Use(RequestLogger(logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	SetupRoutes(app.Group("/api"), h)
	return app
}

func SetupRoutes(r fiber.Router, h Handlers) {
	availability := r.Group("/availability")
	availability.Get("/slots", h.Availability.LookupSlots)               // GET /api/availability/slots
	availability.Get("/absence-dates", h.Availability.LookupAbsenceDates) // GET /api/availability/absence-dates
	availability.Get("/status", h.Availability.ResolveStatus)            // GET /api/availability/status

	trainers := r.Group("/trainers")
	trainers.Put("/:id/availability", h.Availability.SetAvailability)          // PUT    /api/trainers/:id/availability
	trainers.Delete("/:id/availability/:date", h.Availability.ClearAvailability) // DELETE /api/trainers/:id/availability/:date
	trainers.Post("/:id/availability/bulk", h.Availability.ApplyBulk)          // POST   /api/trainers/:id/availability/bulk

	requests := r.Group("/absence-requests")
	requests.Get("/", h.Absences.List)                // GET  /api/absence-requests
	requests.Post("/", h.Absences.Submit)             // POST /api/absence-requests
	requests.Post("/:id/approve", h.Absences.Approve) // POST /api/absence-requests/:id/approve
	requests.Post("/:id/reject", h.Absences.Reject)   // POST /api/absence-requests/:id/reject
}
