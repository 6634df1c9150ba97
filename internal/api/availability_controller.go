package api

import (
	"context"
	"trainer-availability/internal/models"
	"trainer-availability/pkg/calendar"

	"github.com/gofiber/fiber/v2"
)

type AvailabilityBackend interface {
	LookupSlots(ctx context.Context, from, to calendar.Date) ([]models.TrainerSlots, error)
	LookupAbsenceDates(ctx context.Context, from, to calendar.Date) ([]models.TrainerAbsenceDates, error)
	ResolveWindow(ctx context.Context, trainerID models.TrainerID, from, to calendar.Date) ([]models.DayCell, error)
	SetAvailability(ctx context.Context, trainerID models.TrainerID, date calendar.Date, available bool) error
	ClearAvailability(ctx context.Context, trainerID models.TrainerID, date calendar.Date) error
}

type BulkBackend interface {
	Apply(ctx context.Context, trainerID models.TrainerID, month calendar.Date, class calendar.DayClass, op models.BulkOp) (models.BulkResult, error)
}

type AvailabilityController struct {
	Availability AvailabilityBackend
	Bulk         BulkBackend
}

// GET /api/availability/slots?date_from=&date_to=
func (h *AvailabilityController) LookupSlots(c *fiber.Ctx) error {
	var q WindowQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}
	from, to := q.Bounds()

	slots, err := h.Availability.LookupSlots(c.UserContext(), from, to)
	if err != nil {
		return err
	}
	return Success(c, "слоты загружены", slots)
}

// GET /api/availability/absence-dates?date_from=&date_to=
func (h *AvailabilityController) LookupAbsenceDates(c *fiber.Ctx) error {
	var q WindowQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}
	from, to := q.Bounds()

	dates, err := h.Availability.LookupAbsenceDates(c.UserContext(), from, to)
	if err != nil {
		return err
	}
	return Success(c, "даты отсутствия загружены", dates)
}

// GET /api/availability/status?trainer_id=&date_from=&date_to=
func (h *AvailabilityController) ResolveStatus(c *fiber.Ctx) error {
	var q StatusQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}
	from, to := q.Bounds()

	cells, err := h.Availability.ResolveWindow(c.UserContext(), models.TrainerIDOf(q.TrainerID), from, to)
	if err != nil {
		return err
	}
	return Success(c, "статусы рассчитаны", cells)
}

// PUT /api/trainers/:id/availability
func (h *AvailabilityController) SetAvailability(c *fiber.Ctx) error {
	var req SetAvailabilityRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	date := calendar.MustParse(req.Date)

	if err := h.Availability.SetAvailability(c.UserContext(), models.TrainerIDOf(c.Params("id")), date, *req.Available); err != nil {
		return err
	}
	return Success(c, "доступность сохранена", models.SlotView{
		Date:        date,
		StartTime:   models.FullDayStart,
		EndTime:     models.FullDayEnd,
		IsAvailable: *req.Available,
	})
}

// DELETE /api/trainers/:id/availability/:date
func (h *AvailabilityController) ClearAvailability(c *fiber.Ctx) error {
	date, err := calendar.Parse(c.Params("date"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := h.Availability.ClearAvailability(c.UserContext(), models.TrainerIDOf(c.Params("id")), date); err != nil {
		return err
	}
	return Success(c, "отметка снята", nil)
}

// POST /api/trainers/:id/availability/bulk
func (h *AvailabilityController) ApplyBulk(c *fiber.Ctx) error {
	var req BulkRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	op := models.BulkOp(req.Op)
	if op == "" {
		op = models.BulkMarkAvailable
	}
	class, _ := calendar.ParseDayClass(req.Classification)

	result, err := h.Bulk.Apply(c.UserContext(), models.TrainerIDOf(c.Params("id")), calendar.MustParse(req.Month), class, op)
	if err != nil {
		return err
	}
	return Success(c, "массовая операция выполнена", result)
}
