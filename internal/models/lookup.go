package models

import (
	"time"
	"trainer-availability/pkg/calendar"
)

// Ответы справочных запросов по окну дат [date_from, date_to]

type SlotView struct {
	Date        calendar.Date `json:"date"`
	StartTime   string        `json:"startTime"`
	EndTime     string        `json:"endTime"`
	IsAvailable bool          `json:"isAvailable"`
}

type TrainerSlots struct {
	ID    TrainerID  `json:"id"`
	Name  string     `json:"name"`
	Slots []SlotView `json:"slots"`
}

type TrainerAbsenceDates struct {
	ID            TrainerID       `json:"id"`
	Name          string          `json:"name"`
	ApprovedDates []calendar.Date `json:"approved_dates"`
	PendingDates  []calendar.Date `json:"pending_dates"`
}

// AbsenceRequestView - строка списка заявок для админа
type AbsenceRequestView struct {
	ID              uint          `json:"id"`
	TrainerID       TrainerID     `json:"trainer_id"`
	TrainerName     string        `json:"trainer_name"`
	DateFrom        calendar.Date `json:"date_from"`
	DateTo          calendar.Date `json:"date_to"`
	Reason          string        `json:"reason,omitempty"`
	Status          RequestStatus `json:"status"`
	RejectionReason string        `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

func (v *AbsenceRequestView) Contains(date calendar.Date) bool {
	return date.Between(v.DateFrom, v.DateTo)
}

func (v AbsenceRequestView) IsPending() bool {
	return v.Status == RequestPending
}

// NewAbsenceRequestView собирает строку списка из модели
func NewAbsenceRequestView(r *AbsenceRequest) AbsenceRequestView {
	return AbsenceRequestView{
		ID:              r.ID,
		TrainerID:       TrainerIDOf(r.TrainerID),
		TrainerName:     r.Trainer.DisplayName(),
		DateFrom:        r.DateFrom,
		DateTo:          r.DateTo,
		Reason:          r.Reason,
		Status:          r.Status,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
	}
}

// RequestFilter - фильтр списка заявок
type RequestFilter struct {
	Status    RequestStatus
	TrainerID uint
}

// BulkOp - что делает массовая операция с выбранными днями
type BulkOp string

const (
	BulkMarkAvailable BulkOp = "mark"
	BulkClear         BulkOp = "clear"
)

// BulkResult - итог массовой операции
type BulkResult struct {
	Applied []calendar.Date `json:"applied"`
	Skipped []calendar.Date `json:"skipped_absence"`
}

// DayCell - дата и ее вычисленный статус
type DayCell struct {
	Date   calendar.Date `json:"date"`
	Status DayStatus     `json:"status"`
}

// Cells склеивает даты с их статусами
func Cells(dates []calendar.Date, statuses []DayStatus) []DayCell {
	cells := make([]DayCell, 0, len(dates))
	for i, d := range dates {
		cells = append(cells, DayCell{Date: d, Status: statuses[i]})
	}
	return cells
}
