package service

import (
	"context"
	"fmt"
	"strconv"
	"time"
	"trainer-availability/internal/livesync"
	"trainer-availability/internal/models"
	"trainer-availability/internal/repository"
	"trainer-availability/pkg/calendar"
	"trainer-availability/pkg/inflight"

	"github.com/sirupsen/logrus"
)

type AbsenceService struct {
	repo     repository.AbsenceRequestRepository
	trainers repository.TrainerRepository
	sync     livesync.Invalidator
	window   calendar.EditWindow
	locks    *inflight.Locks
	logger   *logrus.Logger
}

func NewAbsenceService(
	repo repository.AbsenceRequestRepository,
	trainers repository.TrainerRepository,
	sync livesync.Invalidator,
	window calendar.EditWindow,
	logger *logrus.Logger,
) *AbsenceService {
	if logger == nil {
		logger = logrus.New()
	}
	return &AbsenceService{
		repo:     repo,
		trainers: trainers,
		sync:     sync,
		window:   window,
		locks:    inflight.New(),
		logger:   logger,
	}
}

// Submit создает заявку на отсутствие в статусе pending
func (s *AbsenceService) Submit(ctx context.Context, trainerID models.TrainerID, from, to calendar.Date, reason string) (*models.AbsenceRequest, error) {
	if to.Before(from) {
		return nil, models.ErrInvalidDateRange
	}
	if !s.window.Editable(from) {
		s.logger.WithFields(logrus.Fields{
			"trainer_id": trainerID.String(),
			"date_from":  from.String(),
		}).Warn("Absence before editable floor rejected")
		return nil, models.ErrBeforeEditableFloor
	}

	id, err := trainerID.Uint()
	if err != nil {
		return nil, models.ErrTrainerNotFound
	}
	trainer, err := s.trainers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if trainer == nil {
		return nil, models.ErrTrainerNotFound
	}

	// Пересечения не запрещаем, только отмечаем в логе
	overlapping, err := s.repo.GetOverlapping(ctx, id, from, to)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to check overlapping absence requests")
	} else if len(overlapping) > 0 {
		s.logger.WithFields(logrus.Fields{
			"trainer_id":  id,
			"overlapping": len(overlapping),
		}).Warn("Absence request overlaps existing requests")
	}

	request := &models.AbsenceRequest{
		TrainerID: id,
		DateFrom:  from,
		DateTo:    to,
		Reason:    reason,
		Status:    models.RequestPending,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		s.logger.WithError(err).Error("Failed to create absence request")
		return nil, fmt.Errorf("ошибка создания заявки: %w", err)
	}
	request.Trainer = *trainer

	s.logger.WithFields(logrus.Fields{
		"request_id": request.ID,
		"trainer_id": id,
		"date_from":  from.String(),
		"date_to":    to.String(),
	}).Info("Absence request submitted")

	s.sync.Invalidate(livesync.TopicTrainerAvailability)
	return request, nil
}

// Approve одобряет ожидающую заявку
func (s *AbsenceService) Approve(ctx context.Context, id uint) (*models.AbsenceRequest, error) {
	return s.decide(ctx, id, models.RequestApproved, "")
}

// Reject отклоняет ожидающую заявку, причина необязательна
func (s *AbsenceService) Reject(ctx context.Context, id uint, reason string) (*models.AbsenceRequest, error) {
	return s.decide(ctx, id, models.RequestRejected, reason)
}

func (s *AbsenceService) decide(ctx context.Context, id uint, to models.RequestStatus, reason string) (*models.AbsenceRequest, error) {
	var decided *models.AbsenceRequest

	err := s.locks.Do(lockKey(id), models.ErrActionInFlight, func() error {
		request, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if request == nil {
			return models.ErrRequestNotFound
		}
		if !request.Status.CanTransition(to) {
			s.logger.WithFields(logrus.Fields{
				"request_id": id,
				"status":     request.Status,
				"target":     to,
			}).Warn("Transition of decided absence request rejected")
			return models.ErrRequestNotPending
		}

		applied, err := s.repo.Transition(ctx, id, to, reason, time.Now())
		if err != nil {
			return err
		}
		if !applied {
			// кто-то успел решить заявку между чтением и записью
			return models.ErrRequestNotPending
		}

		decided, err = s.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"request_id": id,
			"target":     to,
		}).Warn("Absence request decision failed")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": id,
		"status":     to,
	}).Info("Absence request decided")

	s.sync.Invalidate(livesync.TopicTrainerAvailability)
	return decided, nil
}

func (s *AbsenceService) Get(ctx context.Context, id uint) (*models.AbsenceRequest, error) {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, models.ErrRequestNotFound
	}
	return request, nil
}

// List возвращает заявки для админского списка
func (s *AbsenceService) List(ctx context.Context, filter models.RequestFilter) ([]models.AbsenceRequestView, error) {
	requests, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list absence requests")
		return nil, err
	}
	views := make([]models.AbsenceRequestView, 0, len(requests))
	for i := range requests {
		views = append(views, models.NewAbsenceRequestView(&requests[i]))
	}
	return views, nil
}

// FindForCell - первая заявка тренера, чей диапазон содержит дату.
// Порядок задает список: при пересечениях побеждает более новая заявка.
func FindForCell(requests []models.AbsenceRequestView, trainerID any, date calendar.Date) (*models.AbsenceRequestView, bool) {
	id := models.TrainerIDOf(trainerID)
	for i := range requests {
		if requests[i].TrainerID == id && requests[i].Contains(date) {
			return &requests[i], true
		}
	}
	return nil, false
}

func lockKey(id uint) string {
	return "absence:" + strconv.FormatUint(uint64(id), 10)
}
