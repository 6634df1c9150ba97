package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
	"trainer-availability/internal/livesync"
	"trainer-availability/internal/models"
	"trainer-availability/internal/repository"
	"trainer-availability/internal/status"
	"trainer-availability/pkg/calendar"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

type AvailabilityService struct {
	slots    repository.AvailabilitySlotRepository
	absences repository.AbsenceRequestRepository
	trainers repository.TrainerRepository
	sync     livesync.Invalidator
	window   calendar.EditWindow
	lookups  singleflight.Group
	changes  atomic.Uint64
	logger   *logrus.Logger
}

const (
	// MaxWindowDays - самое длинное окно справочных запросов
	MaxWindowDays = 366

	lookupTimeout = 10 * time.Second
)

func NewAvailabilityService(
	slots repository.AvailabilitySlotRepository,
	absences repository.AbsenceRequestRepository,
	trainers repository.TrainerRepository,
	sync livesync.Invalidator,
	window calendar.EditWindow,
	logger *logrus.Logger,
) *AvailabilityService {
	if logger == nil {
		logger = logrus.New()
	}
	return &AvailabilityService{
		slots:    slots,
		absences: absences,
		trainers: trainers,
		sync:     sync,
		window:   window,
		logger:   logger,
	}
}

// SetAvailability отмечает день тренера доступным или недоступным
func (s *AvailabilityService) SetAvailability(ctx context.Context, trainerID models.TrainerID, date calendar.Date, available bool) error {
	id, err := s.editableTrainer(ctx, trainerID, date)
	if err != nil {
		return err
	}

	if err := s.slots.SetDay(ctx, id, date, available); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"trainer_id": id,
			"date":       date.String(),
		}).Error("Failed to set availability")
		return fmt.Errorf("ошибка сохранения доступности: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"trainer_id": id,
		"date":       date.String(),
		"available":  available,
	}).Info("Availability saved")

	s.Invalidate(livesync.TopicTrainerAvailability)
	return nil
}

// ClearAvailability снимает отметку с дня
func (s *AvailabilityService) ClearAvailability(ctx context.Context, trainerID models.TrainerID, date calendar.Date) error {
	id, err := s.editableTrainer(ctx, trainerID, date)
	if err != nil {
		return err
	}

	if _, err := s.slots.ClearDay(ctx, id, date); err != nil {
		s.logger.WithError(err).Error("Failed to clear availability")
		return fmt.Errorf("ошибка очистки доступности: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"trainer_id": id,
		"date":       date.String(),
	}).Info("Availability cleared")

	s.Invalidate(livesync.TopicTrainerAvailability)
	return nil
}

// editableTrainer проверяет порог редактирования до любого обращения к хранилищу
func (s *AvailabilityService) editableTrainer(ctx context.Context, trainerID models.TrainerID, date calendar.Date) (uint, error) {
	if !s.window.Editable(date) {
		s.logger.WithFields(logrus.Fields{
			"trainer_id": trainerID.String(),
			"date":       date.String(),
			"floor":      s.window.Floor().String(),
		}).Warn("Edit before editable floor rejected")
		return 0, models.ErrBeforeEditableFloor
	}

	id, err := trainerID.Uint()
	if err != nil {
		return 0, models.ErrTrainerNotFound
	}
	trainer, err := s.trainers.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if trainer == nil {
		return 0, models.ErrTrainerNotFound
	}
	return id, nil
}

// LookupSlots - слоты всех тренеров в окне [from, to]
func (s *AvailabilityService) LookupSlots(ctx context.Context, from, to calendar.Date) ([]models.TrainerSlots, error) {
	if err := checkWindow(from, to); err != nil {
		return nil, err
	}

	v, err := s.shared(ctx, s.lookupKey("slots", from, to), func(ctx context.Context) (any, error) {
		trainers, err := s.trainers.GetTrainers(ctx)
		if err != nil {
			return nil, err
		}
		slots, err := s.slots.GetByWindow(ctx, from, to)
		if err != nil {
			return nil, err
		}

		byTrainer := make(map[uint][]models.SlotView)
		for _, slot := range slots {
			byTrainer[slot.TrainerID] = append(byTrainer[slot.TrainerID], models.SlotView{
				Date:        slot.Date,
				StartTime:   slot.StartTime,
				EndTime:     slot.EndTime,
				IsAvailable: slot.IsAvailable,
			})
		}

		out := make([]models.TrainerSlots, 0, len(trainers))
		for _, t := range trainers {
			views := byTrainer[t.ID]
			if views == nil {
				views = []models.SlotView{}
			}
			out = append(out, models.TrainerSlots{ID: t.Key(), Name: t.DisplayName(), Slots: views})
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.TrainerSlots), nil
}

// LookupAbsenceDates - одобренные и ожидающие даты отсутствия всех тренеров в окне
func (s *AvailabilityService) LookupAbsenceDates(ctx context.Context, from, to calendar.Date) ([]models.TrainerAbsenceDates, error) {
	if err := checkWindow(from, to); err != nil {
		return nil, err
	}

	v, err := s.shared(ctx, s.lookupKey("absences", from, to), func(ctx context.Context) (any, error) {
		trainers, err := s.trainers.GetTrainers(ctx)
		if err != nil {
			return nil, err
		}
		requests, err := s.absences.GetActiveByWindow(ctx, from, to)
		if err != nil {
			return nil, err
		}

		approved := make(map[uint]map[calendar.Date]struct{})
		pending := make(map[uint]map[calendar.Date]struct{})
		for i := range requests {
			target := pending
			if requests[i].Status == models.RequestApproved {
				target = approved
			}
			set, ok := target[requests[i].TrainerID]
			if !ok {
				set = make(map[calendar.Date]struct{})
				target[requests[i].TrainerID] = set
			}
			for _, d := range requests[i].Dates(from, to) {
				set[d] = struct{}{}
			}
		}

		out := make([]models.TrainerAbsenceDates, 0, len(trainers))
		for _, t := range trainers {
			out = append(out, models.TrainerAbsenceDates{
				ID:            t.Key(),
				Name:          t.DisplayName(),
				ApprovedDates: sortedDates(approved[t.ID]),
				PendingDates:  sortedDates(pending[t.ID]),
			})
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.TrainerAbsenceDates), nil
}

// LoadTables собирает таблицы для резолвера. Ошибка справочного запроса
// не блокирует: таблица считается пустой, дни получают статус none.
func (s *AvailabilityService) LoadTables(ctx context.Context, from, to calendar.Date) *status.Tables {
	slots, err := s.LookupSlots(ctx, from, to)
	if err != nil {
		s.logger.WithError(err).Warn("Slot lookup failed, treating as empty")
		slots = nil
	}
	absences, err := s.LookupAbsenceDates(ctx, from, to)
	if err != nil {
		s.logger.WithError(err).Warn("Absence lookup failed, treating as empty")
		absences = nil
	}
	return status.BuildTables(slots, absences)
}

// ResolveWindow возвращает статусы тренера на каждый день окна
func (s *AvailabilityService) ResolveWindow(ctx context.Context, trainerID models.TrainerID, from, to calendar.Date) ([]models.DayCell, error) {
	if err := checkWindow(from, to); err != nil {
		return nil, err
	}
	tables := s.LoadTables(ctx, from, to)
	dates := calendar.Range(from, to)
	return models.Cells(dates, status.ResolveAll(trainerID, dates, tables)), nil
}

// Invalidate отмечает изменение данных и передает сигнал подписчикам.
// Справочный запрос, начатый после изменения, не присоединяется к более раннему.
func (s *AvailabilityService) Invalidate(topic string) {
	s.changes.Add(1)
	if s.sync != nil {
		s.sync.Invalidate(topic)
	}
}

func (s *AvailabilityService) lookupKey(kind string, from, to calendar.Date) string {
	return fmt.Sprintf("%s:%s:%s:%d", kind, from, to, s.changes.Load())
}

// shared выполняет fn один раз на ключ для всех одновременных вызовов.
// Отмена одного вызывающего не отменяет общий запрос.
func (s *AvailabilityService) shared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := s.lookups.DoChan(key, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()
		return fn(lookupCtx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func checkWindow(from, to calendar.Date) error {
	if to.Before(from) {
		return models.ErrInvalidDateRange
	}
	if calendar.DaysBetween(from, to)+1 > MaxWindowDays {
		return models.ErrWindowTooLarge
	}
	return nil
}

func sortedDates(set map[calendar.Date]struct{}) []calendar.Date {
	out := make([]calendar.Date, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sortDates(out)
	return out
}
