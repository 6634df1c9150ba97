package service

import (
	"context"
	"fmt"
	"slices"
	"trainer-availability/internal/livesync"
	"trainer-availability/internal/models"
	"trainer-availability/internal/repository"
	"trainer-availability/internal/status"
	"trainer-availability/pkg/calendar"
	"trainer-availability/pkg/inflight"

	"github.com/sirupsen/logrus"
)

type BulkService struct {
	slots    repository.AvailabilitySlotRepository
	absences repository.AbsenceRequestRepository
	sync     livesync.Invalidator
	window   calendar.EditWindow
	locks    *inflight.Locks
	logger   *logrus.Logger
}

func NewBulkService(
	slots repository.AvailabilitySlotRepository,
	absences repository.AbsenceRequestRepository,
	sync livesync.Invalidator,
	window calendar.EditWindow,
	logger *logrus.Logger,
) *BulkService {
	if logger == nil {
		logger = logrus.New()
	}
	return &BulkService{
		slots:    slots,
		absences: absences,
		sync:     sync,
		window:   window,
		locks:    inflight.New(),
		logger:   logger,
	}
}

func (s *BulkService) MarkWeekdays(ctx context.Context, trainerID models.TrainerID, month calendar.Date) (models.BulkResult, error) {
	return s.Apply(ctx, trainerID, month, calendar.ClassWeekday, models.BulkMarkAvailable)
}

func (s *BulkService) MarkWeekends(ctx context.Context, trainerID models.TrainerID, month calendar.Date) (models.BulkResult, error) {
	return s.Apply(ctx, trainerID, month, calendar.ClassWeekend, models.BulkMarkAvailable)
}

func (s *BulkService) MarkAllDays(ctx context.Context, trainerID models.TrainerID, month calendar.Date) (models.BulkResult, error) {
	return s.Apply(ctx, trainerID, month, calendar.ClassAll, models.BulkMarkAvailable)
}

func (s *BulkService) ClearMonth(ctx context.Context, trainerID models.TrainerID, month calendar.Date) (models.BulkResult, error) {
	return s.Apply(ctx, trainerID, month, calendar.ClassAll, models.BulkClear)
}

// Apply применяет операцию к редактируемым дням месяца нужного класса.
// Дни с одобренной или ожидающей заявкой пропускаются, не меняются.
func (s *BulkService) Apply(
	ctx context.Context,
	trainerID models.TrainerID,
	month calendar.Date,
	class calendar.DayClass,
	op models.BulkOp,
) (models.BulkResult, error) {
	id, err := trainerID.Uint()
	if err != nil {
		return models.BulkResult{}, models.ErrTrainerNotFound
	}
	if op != models.BulkMarkAvailable && op != models.BulkClear {
		return models.BulkResult{}, fmt.Errorf("неизвестная массовая операция: %s", op)
	}

	var result models.BulkResult
	err = s.locks.Do("bulk:"+trainerID.String(), models.ErrActionInFlight, func() error {
		candidates := calendar.EditableDaysInMonth(month, class, s.window.Floor())
		if len(candidates) == 0 {
			result = models.BulkResult{Applied: []calendar.Date{}, Skipped: []calendar.Date{}}
			return nil
		}

		first, last := candidates[0], candidates[len(candidates)-1]
		requests, err := s.absences.GetOverlapping(ctx, id, first, last)
		if err != nil {
			// без списка заявок нельзя гарантировать, что отсутствие не будет затерто
			return fmt.Errorf("ошибка проверки заявок на отсутствие: %w", err)
		}

		result = partitionByAbsence(id, candidates, requests)
		return s.slots.ApplyBatch(ctx, id, result.Applied, op)
	})
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"trainer_id": id,
			"month":      month.FirstOfMonth().String(),
			"class":      class,
			"op":         op,
		}).Error("Bulk operation failed")
		return models.BulkResult{}, err
	}

	s.logger.WithFields(logrus.Fields{
		"trainer_id": id,
		"month":      month.FirstOfMonth().String(),
		"class":      class,
		"op":         op,
		"applied":    len(result.Applied),
		"skipped":    len(result.Skipped),
	}).Info("Bulk operation applied")

	s.sync.Invalidate(livesync.TopicTrainerAvailability)
	return result, nil
}

// partitionByAbsence делит дни на изменяемые и пропущенные.
// Пропускаются дни с одобренной или ожидающей заявкой.
func partitionByAbsence(trainerID uint, candidates []calendar.Date, requests []models.AbsenceRequest) models.BulkResult {
	result := models.BulkResult{Applied: []calendar.Date{}, Skipped: []calendar.Date{}}
	if len(candidates) == 0 {
		return result
	}

	first, last := candidates[0], candidates[len(candidates)-1]
	tables := status.NewTables()
	for i := range requests {
		r := &requests[i]
		switch r.Status {
		case models.RequestApproved:
			tables.AddApproved(r.TrainerID, r.Dates(first, last)...)
		case models.RequestPending:
			tables.AddPending(r.TrainerID, r.Dates(first, last)...)
		}
	}

	for _, d := range candidates {
		if tables.HasAbsence(trainerID, d) {
			result.Skipped = append(result.Skipped, d)
		} else {
			result.Applied = append(result.Applied, d)
		}
	}
	return result
}

func sortDates(dates []calendar.Date) {
	slices.SortFunc(dates, func(a, b calendar.Date) int { return a.Compare(b) })
}
