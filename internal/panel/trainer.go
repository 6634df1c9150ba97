package panel

import (
	"context"
	"fmt"
	"sync"
	"trainer-availability/internal/models"
	"trainer-availability/internal/status"
	"trainer-availability/pkg/calendar"
	"trainer-availability/pkg/inflight"

	"github.com/sirupsen/logrus"
)

const (
	lockSelection = "selection"
	lockBulk      = "bulk"
)

// TrainerPanel - календарь одного тренера
type TrainerPanel struct {
	*board

	trainerID models.TrainerID
	backend   Backend
	locks     *inflight.Locks

	selMu     sync.Mutex
	selection *Selection
}

func NewTrainerPanel(
	trainerID models.TrainerID,
	backend Backend,
	sub Subscriber,
	window calendar.EditWindow,
	logger *logrus.Logger,
) *TrainerPanel {
	p := &TrainerPanel{
		board:     newBoard(backend, false, window, logger),
		trainerID: trainerID,
		backend:   backend,
		locks:     inflight.New(),
		selection: NewSelection(),
	}
	p.subscribe(sub)
	return p
}

func (p *TrainerPanel) TrainerID() models.TrainerID { return p.trainerID }

// Toggle переключает выбор даты. false - дата раньше порога редактирования.
func (p *TrainerPanel) Toggle(d calendar.Date) bool {
	p.selMu.Lock()
	defer p.selMu.Unlock()
	return p.selection.Toggle(d, p.Floor())
}

func (p *TrainerPanel) ClearSelection() {
	p.selMu.Lock()
	p.selection.Clear()
	p.selMu.Unlock()
}

func (p *TrainerPanel) Selected() []calendar.Date {
	p.selMu.Lock()
	defer p.selMu.Unlock()
	return p.selection.Dates()
}

func (p *TrainerPanel) IsSelected(d calendar.Date) bool {
	p.selMu.Lock()
	defer p.selMu.Unlock()
	return p.selection.Contains(d)
}

// Cells - статусы тренера на все даты текущего окна
func (p *TrainerPanel) Cells() []models.DayCell {
	dates := p.Grid().Dates()
	return models.Cells(dates, status.ResolveAll(p.trainerID, dates, p.view.Snapshot().Tables))
}

// Status - статус одной даты по загруженному окну
func (p *TrainerPanel) Status(d calendar.Date) models.DayStatus {
	return status.Resolve(p.trainerID, d, p.view.Snapshot().Tables)
}

func (p *TrainerPanel) MakeAvailable(ctx context.Context) error {
	return p.setSelected(ctx, true)
}

func (p *TrainerPanel) MarkUnavailable(ctx context.Context) error {
	return p.setSelected(ctx, false)
}

// setSelected сохраняет выбранные даты. Выбор очищается только при полном успехе.
func (p *TrainerPanel) setSelected(ctx context.Context, available bool) error {
	dates := p.Selected()
	if len(dates) == 0 {
		return models.ErrEmptySelection
	}

	return p.locks.Do(lockSelection, models.ErrActionInFlight, func() error {
		for _, d := range dates {
			if err := p.backend.SetAvailability(ctx, p.trainerID, d, available); err != nil {
				p.logger.WithError(err).WithFields(logrus.Fields{
					"trainer_id": p.trainerID.String(),
					"date":       d.String(),
				}).Error("Failed to save selected date")
				return fmt.Errorf("%s: %w", d, err)
			}
		}
		p.ClearSelection()
		return nil
	})
}

// AddAbsence подает заявку на диапазон от первой до последней выбранной даты
func (p *TrainerPanel) AddAbsence(ctx context.Context, reason string) (*models.AbsenceRequest, error) {
	p.selMu.Lock()
	from, to, ok := p.selection.Span()
	p.selMu.Unlock()
	if !ok {
		return nil, models.ErrEmptySelection
	}

	var request *models.AbsenceRequest
	err := p.locks.Do(lockSelection, models.ErrActionInFlight, func() error {
		var err error
		request, err = p.backend.SubmitAbsence(ctx, p.trainerID, from, to, reason)
		if err != nil {
			p.logger.WithError(err).WithFields(logrus.Fields{
				"trainer_id": p.trainerID.String(),
				"date_from":  from.String(),
				"date_to":    to.String(),
			}).Error("Failed to submit absence")
			return err
		}
		p.ClearSelection()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Bulk применяет массовую операцию к месяцу отображаемого окна
func (p *TrainerPanel) Bulk(ctx context.Context, class calendar.DayClass, op models.BulkOp) (models.BulkResult, error) {
	month := p.Grid().Month()

	var result models.BulkResult
	err := p.locks.Do(lockBulk, models.ErrActionInFlight, func() error {
		var err error
		result, err = p.backend.ApplyBulk(ctx, p.trainerID, month, class, op)
		return err
	})
	return result, err
}
