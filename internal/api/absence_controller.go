package api

import (
	"context"
	"strconv"
	"trainer-availability/internal/models"
	"trainer-availability/pkg/calendar"

	"github.com/gofiber/fiber/v2"
)

type AbsenceBackend interface {
	List(ctx context.Context, filter models.RequestFilter) ([]models.AbsenceRequestView, error)
	Submit(ctx context.Context, trainerID models.TrainerID, from, to calendar.Date, reason string) (*models.AbsenceRequest, error)
	Approve(ctx context.Context, id uint) (*models.AbsenceRequest, error)
	Reject(ctx context.Context, id uint, reason string) (*models.AbsenceRequest, error)
}

type AbsenceController struct {
	Absences AbsenceBackend
}

// GET /api/absence-requests?status=&trainer_id=
func (h *AbsenceController) List(c *fiber.Ctx) error {
	var q ListRequestsQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}

	views, err := h.Absences.List(c.UserContext(), models.RequestFilter{
		Status:    models.RequestStatus(q.Status),
		TrainerID: q.TrainerID,
	})
	if err != nil {
		return err
	}
	return Success(c, "заявки загружены", views)
}

// POST /api/absence-requests
func (h *AbsenceController) Submit(c *fiber.Ctx) error {
	var req SubmitAbsenceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	request, err := h.Absences.Submit(c.UserContext(), req.TrainerID,
		calendar.MustParse(req.DateFrom), calendar.MustParse(req.DateTo), req.Reason)
	if err != nil {
		return err
	}
	return SuccessWithCode(c, fiber.StatusCreated, "заявка создана", models.NewAbsenceRequestView(request))
}

// POST /api/absence-requests/:id/approve
func (h *AbsenceController) Approve(c *fiber.Ctx) error {
	id, err := requestID(c)
	if err != nil {
		return err
	}
	request, err := h.Absences.Approve(c.UserContext(), id)
	if err != nil {
		return err
	}
	return Success(c, "заявка одобрена", models.NewAbsenceRequestView(request))
}

// POST /api/absence-requests/:id/reject
func (h *AbsenceController) Reject(c *fiber.Ctx) error {
	id, err := requestID(c)
	if err != nil {
		return err
	}
	var req RejectRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	request, err := h.Absences.Reject(c.UserContext(), id, req.Reason)
	if err != nil {
		return err
	}
	return Success(c, "заявка отклонена", models.NewAbsenceRequestView(request))
}

func requestID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "некорректный id заявки")
	}
	return uint(id), nil
}
