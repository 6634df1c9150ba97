// Package panel хранит состояние календаря на стороне клиента: сетку,
// выбор дат, загруженное окно и блокировки действий. Используется ботом,
// одна панель на чат.
package panel

import (
	"context"
	"trainer-availability/internal/livesync"
	"trainer-availability/internal/models"
	"trainer-availability/pkg/calendar"
)

// Backend - операции хранилища, которые нужны панелям
type Backend interface {
	LookupSlots(ctx context.Context, from, to calendar.Date) ([]models.TrainerSlots, error)
	LookupAbsenceDates(ctx context.Context, from, to calendar.Date) ([]models.TrainerAbsenceDates, error)
	ListAbsenceRequests(ctx context.Context, filter models.RequestFilter) ([]models.AbsenceRequestView, error)
	SetAvailability(ctx context.Context, trainerID models.TrainerID, date calendar.Date, available bool) error
	SubmitAbsence(ctx context.Context, trainerID models.TrainerID, from, to calendar.Date, reason string) (*models.AbsenceRequest, error)
	ApproveAbsence(ctx context.Context, id uint) error
	RejectAbsence(ctx context.Context, id uint, reason string) error
	ApplyBulk(ctx context.Context, trainerID models.TrainerID, month calendar.Date, class calendar.DayClass, op models.BulkOp) (models.BulkResult, error)
}

// Subscriber - источник сигналов об изменениях (livesync.Coordinator)
type Subscriber interface {
	Subscribe(topic string, cb livesync.Callback) (unsubscribe func())
}
