package api

import (
	"trainer-availability/internal/models"
	"trainer-availability/pkg/calendar"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := calendar.Parse(fl.Field().String())
		return err == nil
	})
	return v
}

// WindowQuery - ?date_from=YYYY-MM-DD&date_to=YYYY-MM-DD
type WindowQuery struct {
	DateFrom string `query:"date_from" validate:"required,isodate"`
	DateTo   string `query:"date_to" validate:"required,isodate"`
}

func (q WindowQuery) Bounds() (calendar.Date, calendar.Date) {
	return calendar.MustParse(q.DateFrom), calendar.MustParse(q.DateTo)
}

type StatusQuery struct {
	TrainerID string `query:"trainer_id" validate:"required"`
	DateFrom  string `query:"date_from" validate:"required,isodate"`
	DateTo    string `query:"date_to" validate:"required,isodate"`
}

func (q StatusQuery) Bounds() (calendar.Date, calendar.Date) {
	return WindowQuery{DateFrom: q.DateFrom, DateTo: q.DateTo}.Bounds()
}

type ListRequestsQuery struct {
	Status    string `query:"status" validate:"omitempty,oneof=pending approved rejected"`
	TrainerID uint   `query:"trainer_id"`
}

type SubmitAbsenceRequest struct {
	TrainerID models.TrainerID `json:"trainer_id" validate:"required"`
	DateFrom  string           `json:"date_from" validate:"required,isodate"`
	DateTo    string           `json:"date_to" validate:"required,isodate"`
	Reason    string           `json:"reason" validate:"max=500"`
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type SetAvailabilityRequest struct {
	Date      string `json:"date" validate:"required,isodate"`
	Available *bool  `json:"available" validate:"required"`
}

type BulkRequest struct {
	Month          string `json:"month" validate:"required,isodate"`
	Classification string `json:"classification" validate:"required,oneof=weekday weekend all"`
	Op             string `json:"op" validate:"omitempty,oneof=mark clear"`
}
