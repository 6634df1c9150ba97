package service

import (
	"context"
	"trainer-availability/internal/models"
	"trainer-availability/pkg/calendar"
)

// Platform собирает сервисы в один бэкенд для календарных панелей и бота
type Platform struct {
	Trainers     *TrainerService
	Availability *AvailabilityService
	Absences     *AbsenceService
	Bulk         *BulkService
}

func (p *Platform) LookupSlots(ctx context.Context, from, to calendar.Date) ([]models.TrainerSlots, error) {
	return p.Availability.LookupSlots(ctx, from, to)
}

func (p *Platform) LookupAbsenceDates(ctx context.Context, from, to calendar.Date) ([]models.TrainerAbsenceDates, error) {
	return p.Availability.LookupAbsenceDates(ctx, from, to)
}

func (p *Platform) ListAbsenceRequests(ctx context.Context, filter models.RequestFilter) ([]models.AbsenceRequestView, error) {
	return p.Absences.List(ctx, filter)
}

func (p *Platform) SetAvailability(ctx context.Context, trainerID models.TrainerID, date calendar.Date, available bool) error {
	return p.Availability.SetAvailability(ctx, trainerID, date, available)
}

func (p *Platform) SubmitAbsence(ctx context.Context, trainerID models.TrainerID, from, to calendar.Date, reason string) (*models.AbsenceRequest, error) {
	return p.Absences.Submit(ctx, trainerID, from, to, reason)
}

func (p *Platform) ApproveAbsence(ctx context.Context, id uint) error {
	_, err := p.Absences.Approve(ctx, id)
	return err
}

func (p *Platform) RejectAbsence(ctx context.Context, id uint, reason string) error {
	_, err := p.Absences.Reject(ctx, id, reason)
	return err
}

func (p *Platform) ApplyBulk(ctx context.Context, trainerID models.TrainerID, month calendar.Date, class calendar.DayClass, op models.BulkOp) (models.BulkResult, error) {
	switch {
	case op == models.BulkClear && class == calendar.ClassAll:
		return p.Bulk.ClearMonth(ctx, trainerID, month)
	case op == models.BulkMarkAvailable && class == calendar.ClassWeekday:
		return p.Bulk.MarkWeekdays(ctx, trainerID, month)
	case op == models.BulkMarkAvailable && class == calendar.ClassWeekend:
		return p.Bulk.MarkWeekends(ctx, trainerID, month)
	case op == models.BulkMarkAvailable && class == calendar.ClassAll:
		return p.Bulk.MarkAllDays(ctx, trainerID, month)
	}
	// остальные сочетания, например очистка только будней
	return p.Bulk.Apply(ctx, trainerID, month, class, op)
}
