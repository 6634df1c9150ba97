package panel

import (
	"context"
	"errors"
	"strconv"
	"trainer-availability/internal/models"
	"trainer-availability/internal/service"
	"trainer-availability/internal/status"
	"trainer-availability/pkg/calendar"
	"trainer-availability/pkg/inflight"

	"github.com/sirupsen/logrus"
)

// Row - строка админской сетки: тренер и статусы на даты окна
type Row struct {
	TrainerID models.TrainerID
	Name      string
	Cells     []models.DayCell
}

// AdminGrid - все тренеры по датам окна плюс список заявок
type AdminGrid struct {
	*board

	backend Backend
	locks   *inflight.Locks
}

func NewAdminGrid(backend Backend, sub Subscriber, window calendar.EditWindow, logger *logrus.Logger) *AdminGrid {
	g := &AdminGrid{
		board:   newBoard(backend, true, window, logger),
		backend: backend,
		locks:   inflight.New(),
	}
	g.subscribe(sub)
	return g
}

func (g *AdminGrid) Rows() []Row {
	dates := g.Grid().Dates()
	snap := g.view.Snapshot()
	rows := make([]Row, 0, len(snap.Trainers))
	for _, t := range snap.Trainers {
		cells := models.Cells(dates, status.ResolveAll(t.ID, dates, snap.Tables))
		rows = append(rows, Row{TrainerID: t.ID, Name: t.Name, Cells: cells})
	}
	return rows
}

// Requests - загруженный список заявок (новые сверху)
func (g *AdminGrid) Requests() []models.AbsenceRequestView {
	return g.view.Snapshot().Requests
}

// Pending - только ожидающие решения
func (g *AdminGrid) Pending() []models.AbsenceRequestView {
	var out []models.AbsenceRequestView
	for _, r := range g.Requests() {
		if r.IsPending() {
			out = append(out, r)
		}
	}
	return out
}

// OpenCell - заявка, к которой относится ячейка (тренер, дата)
func (g *AdminGrid) OpenCell(trainerID any, date calendar.Date) (*models.AbsenceRequestView, bool) {
	return service.FindForCell(g.Requests(), trainerID, date)
}

func (g *AdminGrid) Approve(ctx context.Context, id uint) error {
	return g.decide(ctx, id, func() error { return g.backend.ApproveAbsence(ctx, id) })
}

func (g *AdminGrid) Reject(ctx context.Context, id uint, reason string) error {
	return g.decide(ctx, id, func() error { return g.backend.RejectAbsence(ctx, id, reason) })
}

func (g *AdminGrid) decide(ctx context.Context, id uint, call func() error) error {
	if r, ok := g.find(id); ok && !r.IsPending() {
		return models.ErrRequestNotPending
	}

	err := g.locks.Do(strconv.FormatUint(uint64(id), 10), models.ErrActionInFlight, call)
	if errors.Is(err, models.ErrRequestNotPending) || errors.Is(err, models.ErrRequestNotFound) {
		// список устарел, перечитываем
		g.logger.WithError(err).WithField("request_id", id).Warn("Absence request changed elsewhere, refreshing")
		g.Refresh(ctx)
	}
	return err
}

func (g *AdminGrid) find(id uint) (models.AbsenceRequestView, bool) {
	for _, r := range g.Requests() {
		if r.ID == id {
			return r, true
		}
	}
	return models.AbsenceRequestView{}, false
}
