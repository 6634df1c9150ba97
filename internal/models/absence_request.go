package models

import (
	"time"
	"trainer-availability/pkg/calendar"
)

type AbsenceRequest struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	TrainerID       uint          `gorm:"not null;index" json:"trainer_id"`
	DateFrom        calendar.Date `gorm:"type:varchar(10);not null;index" json:"date_from"`
	DateTo          calendar.Date `gorm:"type:varchar(10);not null;index" json:"date_to"` // включительно
	Reason          string        `gorm:"type:text" json:"reason,omitempty"`
	Status          RequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	RejectionReason string        `gorm:"type:text" json:"rejection_reason,omitempty"`
	DecidedAt       *time.Time    `json:"decided_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`

	Trainer Trainer `gorm:"foreignKey:TrainerID" json:"-"`
}

func (AbsenceRequest) TableName() string {
	return "absence_requests"
}

// Contains - входит ли дата в [DateFrom, DateTo]
func (r *AbsenceRequest) Contains(date calendar.Date) bool {
	return date.Between(r.DateFrom, r.DateTo)
}

// Dates возвращает все дни заявки, обрезанные окном [from, to]
func (r *AbsenceRequest) Dates(from, to calendar.Date) []calendar.Date {
	lo, hi := r.DateFrom, r.DateTo
	if lo.Before(from) {
		lo = from
	}
	if hi.After(to) {
		hi = to
	}
	return calendar.Range(lo, hi)
}

func (r *AbsenceRequest) IsPending() bool {
	return r.Status == RequestPending
}

// RequestStatus - состояние заявки на отсутствие.
// pending -> approved | rejected, из approved и rejected переходов нет.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

func ParseRequestStatus(s string) (RequestStatus, error) {
	switch st := RequestStatus(s); st {
	case RequestPending, RequestApproved, RequestRejected:
		return st, nil
	}
	return "", ErrUnknownStatus
}

func (s RequestStatus) IsTerminal() bool {
	switch s {
	case RequestApproved, RequestRejected:
		return true
	case RequestPending:
		return false
	}
	return false
}

// CanTransition - единственные допустимые переходы: из pending в терминальное состояние
func (s RequestStatus) CanTransition(to RequestStatus) bool {
	return s == RequestPending && to.IsTerminal()
}
