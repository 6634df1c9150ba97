package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"trainer-availability/internal/models"
	"trainer-availability/pkg/calendar"

	"github.com/sirupsen/logrus"
)

var errStore = errors.New("store unavailable")

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func d(s string) calendar.Date { return calendar.MustParse(s) }

// fixedWindow - сегодня 2024-03-08 12:00, порог редактирования 2024-03-09
func fixedWindow() calendar.EditWindow {
	now := time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC)
	return calendar.EditWindow{Now: func() time.Time { return now }, Lead: 24 * time.Hour}
}

type recordingInvalidator struct {
	mu     sync.Mutex
	topics []string
}

func (r *recordingInvalidator) Invalidate(topic string) {
	r.mu.Lock()
	r.topics = append(r.topics, topic)
	r.mu.Unlock()
}

func (r *recordingInvalidator) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.topics)
}

type trainerRepoStub struct {
	trainers []*models.Trainer
	err      error
}

func (s *trainerRepoStub) Create(ctx context.Context, t *models.Trainer) error {
	if s.err != nil {
		return s.err
	}
	t.ID = uint(len(s.trainers) + 1)
	s.trainers = append(s.trainers, t)
	return nil
}

func (s *trainerRepoStub) GetByID(ctx context.Context, id uint) (*models.Trainer, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, t := range s.trainers {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, nil
}

func (s *trainerRepoStub) GetByChatID(ctx context.Context, chatID int64) (*models.Trainer, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, t := range s.trainers {
		if t.ChatID == chatID {
			return t, nil
		}
	}
	return nil, nil
}

func (s *trainerRepoStub) GetTrainers(ctx context.Context) ([]*models.Trainer, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []*models.Trainer
	for _, t := range s.trainers {
		if !t.IsAdmin() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *trainerRepoStub) UpdateRole(ctx context.Context, chatID int64, role models.Role) error {
	for _, t := range s.trainers {
		if t.ChatID == chatID {
			t.Role = role
			return nil
		}
	}
	return models.ErrTrainerNotFound
}

type slotKey struct {
	trainer uint
	date    calendar.Date
}

type slotRepoStub struct {
	mu       sync.Mutex
	slots    map[slotKey]bool
	err      error
	batchErr error
	calls    int
	// afterSnapshot вызывается в GetByWindow, когда данные уже прочитаны
	afterSnapshot func()
}

func newSlotRepoStub() *slotRepoStub {
	return &slotRepoStub{slots: make(map[slotKey]bool)}
}

func (s *slotRepoStub) GetByWindow(ctx context.Context, from, to calendar.Date) ([]models.AvailabilitySlot, error) {
	s.mu.Lock()
	s.calls++
	if s.err != nil {
		s.mu.Unlock()
		return nil, s.err
	}
	var out []models.AvailabilitySlot
	for k, available := range s.slots {
		if k.date.Between(from, to) {
			out = append(out, models.AvailabilitySlot{TrainerID: k.trainer, Date: k.date, IsAvailable: available,
				StartTime: models.FullDayStart, EndTime: models.FullDayEnd})
		}
	}
	s.mu.Unlock()

	if s.afterSnapshot != nil {
		s.afterSnapshot()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *slotRepoStub) SetDay(ctx context.Context, trainerID uint, date calendar.Date, available bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.slots[slotKey{trainerID, date}] = available
	return nil
}

func (s *slotRepoStub) ClearDay(ctx context.Context, trainerID uint, date calendar.Date) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	if _, ok := s.slots[slotKey{trainerID, date}]; !ok {
		return 0, nil
	}
	delete(s.slots, slotKey{trainerID, date})
	return 1, nil
}

func (s *slotRepoStub) ApplyBatch(ctx context.Context, trainerID uint, dates []calendar.Date, op models.BulkOp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.batchErr != nil {
		return s.batchErr
	}
	for _, date := range dates {
		if op == models.BulkClear {
			delete(s.slots, slotKey{trainerID, date})
		} else {
			s.slots[slotKey{trainerID, date}] = true
		}
	}
	return nil
}

func (s *slotRepoStub) has(trainerID uint, date calendar.Date) (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.slots[slotKey{trainerID, date}]
	return v, ok
}

type absenceRepoStub struct {
	mu            sync.Mutex
	requests      []*models.AbsenceRequest
	trainers      *trainerRepoStub
	err           error
	transitionErr error
	// beforeTransition вызывается внутри Transition - для гонок
	beforeTransition func()
}

func (s *absenceRepoStub) Create(ctx context.Context, r *models.AbsenceRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	r.ID = uint(len(s.requests) + 1)
	r.CreatedAt = time.Date(2024, 3, 1, 0, 0, int(r.ID), 0, time.UTC)
	cp := *r
	s.requests = append(s.requests, &cp)
	return nil
}

func (s *absenceRepoStub) withTrainer(r models.AbsenceRequest) models.AbsenceRequest {
	if s.trainers != nil {
		if t, _ := s.trainers.GetByID(context.Background(), r.TrainerID); t != nil {
			r.Trainer = *t
		}
	}
	return r
}

func (s *absenceRepoStub) GetByID(ctx context.Context, id uint) (*models.AbsenceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, r := range s.requests {
		if r.ID == id {
			cp := s.withTrainer(*r)
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *absenceRepoStub) List(ctx context.Context, filter models.RequestFilter) ([]models.AbsenceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []models.AbsenceRequest
	for i := len(s.requests) - 1; i >= 0; i-- {
		r := s.requests[i]
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.TrainerID != 0 && r.TrainerID != filter.TrainerID {
			continue
		}
		out = append(out, s.withTrainer(*r))
	}
	return out, nil
}

func (s *absenceRepoStub) GetOverlapping(ctx context.Context, trainerID uint, from, to calendar.Date) ([]models.AbsenceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []models.AbsenceRequest
	for _, r := range s.requests {
		if r.TrainerID == trainerID && r.Status != models.RequestRejected && !r.DateFrom.After(to) && !r.DateTo.Before(from) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *absenceRepoStub) GetActiveByWindow(ctx context.Context, from, to calendar.Date) ([]models.AbsenceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []models.AbsenceRequest
	for _, r := range s.requests {
		if r.Status != models.RequestRejected && !r.DateFrom.After(to) && !r.DateTo.Before(from) {
			out = append(out, s.withTrainer(*r))
		}
	}
	return out, nil
}

func (s *absenceRepoStub) Transition(ctx context.Context, id uint, to models.RequestStatus, reason string, at time.Time) (bool, error) {
	if s.beforeTransition != nil {
		s.beforeTransition()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transitionErr != nil {
		return false, s.transitionErr
	}
	for _, r := range s.requests {
		if r.ID == id && r.Status == models.RequestPending {
			r.Status = to
			r.RejectionReason = reason
			r.DecidedAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (s *absenceRepoStub) add(trainerID uint, from, to string, status models.RequestStatus) *models.AbsenceRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &models.AbsenceRequest{
		ID:        uint(len(s.requests) + 1),
		TrainerID: trainerID,
		DateFrom:  d(from),
		DateTo:    d(to),
		Status:    status,
	}
	s.requests = append(s.requests, r)
	return r
}

func (s *absenceRepoStub) status(id uint) models.RequestStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if r.ID == id {
			return r.Status
		}
	}
	return ""
}

func twoTrainers() *trainerRepoStub {
	return &trainerRepoStub{trainers: []*models.Trainer{
		{ID: 1, ChatID: 11, FirstName: "Anna", Role: models.RoleTrainer},
		{ID: 2, ChatID: 22, FirstName: "Boris", Role: models.RoleTrainer},
		{ID: 3, ChatID: 33, FirstName: "Olga", Role: models.RoleAdmin},
	}}
}
