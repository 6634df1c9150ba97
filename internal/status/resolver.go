// Package status вычисляет DayStatus тренера на дату из трех справочных таблиц.
// Пакет чистый: без сети, без хранилища, без логирования.
package status

import (
	"trainer-availability/internal/models"
	"trainer-availability/pkg/calendar"
)

type dateSet map[calendar.Date]struct{}

// slotState - свернутые слоты тренера на одну дату
type slotState struct {
	available   bool
	unavailable bool
}

// Tables - три справочные таблицы для окна дат
type Tables struct {
	approved map[models.TrainerID]dateSet
	pending  map[models.TrainerID]dateSet
	slots    map[models.TrainerID]map[calendar.Date]slotState
}

func NewTables() *Tables {
	return &Tables{
		approved: make(map[models.TrainerID]dateSet),
		pending:  make(map[models.TrainerID]dateSet),
		slots:    make(map[models.TrainerID]map[calendar.Date]slotState),
	}
}

// BuildTables собирает таблицы из ответов справочных запросов.
// nil-ответ (запрос упал) дает пустую таблицу.
func BuildTables(slots []models.TrainerSlots, absences []models.TrainerAbsenceDates) *Tables {
	t := NewTables()
	for _, trainer := range slots {
		for _, slot := range trainer.Slots {
			t.AddSlot(trainer.ID, slot.Date, slot.IsAvailable)
		}
	}
	for _, trainer := range absences {
		t.AddApproved(trainer.ID, trainer.ApprovedDates...)
		t.AddPending(trainer.ID, trainer.PendingDates...)
	}
	return t
}

func (t *Tables) AddApproved(trainerID any, dates ...calendar.Date) {
	addDates(t.approved, models.TrainerIDOf(trainerID), dates)
}

func (t *Tables) AddPending(trainerID any, dates ...calendar.Date) {
	addDates(t.pending, models.TrainerIDOf(trainerID), dates)
}

func (t *Tables) AddSlot(trainerID any, date calendar.Date, isAvailable bool) {
	id := models.TrainerIDOf(trainerID)
	byDate, ok := t.slots[id]
	if !ok {
		byDate = make(map[calendar.Date]slotState)
		t.slots[id] = byDate
	}
	st := byDate[date]
	if isAvailable {
		st.available = true
	} else {
		st.unavailable = true
	}
	byDate[date] = st
}

func addDates(m map[models.TrainerID]dateSet, id models.TrainerID, dates []calendar.Date) {
	if len(dates) == 0 {
		return
	}
	set, ok := m[id]
	if !ok {
		set = make(dateSet)
		m[id] = set
	}
	for _, d := range dates {
		set[d] = struct{}{}
	}
}

func (t *Tables) has(m map[models.TrainerID]dateSet, id models.TrainerID, date calendar.Date) bool {
	_, ok := m[id][date]
	return ok
}

// HasAbsence - на дату есть одобренная или ожидающая заявка
func (t *Tables) HasAbsence(trainerID any, date calendar.Date) bool {
	id := models.TrainerIDOf(trainerID)
	return t.has(t.approved, id, date) || t.has(t.pending, id, date)
}

// Resolve возвращает статус дня. Порядок проверки фиксирован:
// одобренное отсутствие, ожидающее отсутствие, доступен, недоступен, ничего.
func Resolve(trainerID any, date calendar.Date, t *Tables) models.DayStatus {
	if t == nil {
		return models.StatusNone
	}
	id := models.TrainerIDOf(trainerID)

	if t.has(t.approved, id, date) {
		return models.StatusApprovedAbsence
	}
	if t.has(t.pending, id, date) {
		return models.StatusPendingAbsence
	}
	st := t.slots[id][date]
	switch {
	case st.available:
		return models.StatusAvailable
	case st.unavailable:
		return models.StatusUnavailable
	}
	return models.StatusNone
}

// ResolveAll вычисляет статусы для списка дат
func ResolveAll(trainerID any, dates []calendar.Date, t *Tables) []models.DayStatus {
	out := make([]models.DayStatus, len(dates))
	for i, d := range dates {
		out[i] = Resolve(trainerID, d, t)
	}
	return out
}
