package panel

import (
	"context"
	"sync"
	"trainer-availability/internal/models"
	"trainer-availability/internal/status"
	"trainer-availability/pkg/calendar"

	"github.com/sirupsen/logrus"
)

// Snapshot - загруженные данные одного окна
type Snapshot struct {
	From     calendar.Date
	To       calendar.Date
	Trainers []models.TrainerSlots
	Tables   *status.Tables
	Requests []models.AbsenceRequestView
}

// Window загружает справочные таблицы для окна дат. Каждая загрузка получает
// номер поколения, ответ устаревшего поколения отбрасывается.
type Window struct {
	backend      Backend
	withRequests bool
	logger       *logrus.Logger

	mu       sync.Mutex
	gen      uint64
	snapshot Snapshot
}

func NewWindow(backend Backend, withRequests bool, logger *logrus.Logger) *Window {
	if logger == nil {
		logger = logrus.New()
	}
	return &Window{
		backend:      backend,
		withRequests: withRequests,
		logger:       logger,
		snapshot:     Snapshot{Tables: status.NewTables()},
	}
}

// Load перечитывает окно [from, to]. Ошибки справочных запросов не возвращаются:
// таблица считается пустой. false - результат устарел и не применен.
func (w *Window) Load(ctx context.Context, from, to calendar.Date) bool {
	w.mu.Lock()
	w.gen++
	gen := w.gen
	w.mu.Unlock()

	fields := logrus.Fields{"from": from.String(), "to": to.String(), "generation": gen}

	slots, err := w.backend.LookupSlots(ctx, from, to)
	if err != nil {
		w.logger.WithError(err).WithFields(fields).Warn("Slot lookup failed, treating as empty")
		slots = nil
	}
	absences, err := w.backend.LookupAbsenceDates(ctx, from, to)
	if err != nil {
		w.logger.WithError(err).WithFields(fields).Warn("Absence lookup failed, treating as empty")
		absences = nil
	}
	var requests []models.AbsenceRequestView
	if w.withRequests {
		requests, err = w.backend.ListAbsenceRequests(ctx, models.RequestFilter{})
		if err != nil {
			w.logger.WithError(err).WithFields(fields).Warn("Absence request list failed, treating as empty")
			requests = nil
		}
	}

	next := Snapshot{
		From:     from,
		To:       to,
		Trainers: slots,
		Tables:   status.BuildTables(slots, absences),
		Requests: requests,
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.gen {
		w.logger.WithFields(fields).Debug("Stale window response dropped")
		return false
	}
	w.snapshot = next
	return true
}

func (w *Window) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot
}
