package models

import (
	"time"
	"trainer-availability/pkg/calendar"
)

// Границы слота "на весь день", который пишут правки из календаря
const (
	FullDayStart = "00:00"
	FullDayEnd   = "23:59"
)

type AvailabilitySlot struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	TrainerID   uint          `gorm:"not null;index:idx_slot_trainer_date" json:"trainer_id"`
	Date        calendar.Date `gorm:"type:varchar(10);not null;index:idx_slot_trainer_date" json:"date"`
	StartTime   string        `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime     string        `gorm:"type:varchar(5);not null" json:"end_time"`
	IsAvailable bool          `gorm:"not null;default:false" json:"is_available"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (AvailabilitySlot) TableName() string {
	return "availability_slots"
}

// IsValid проверяет валидность данных
func (s *AvailabilitySlot) IsValid() bool {
	if s.TrainerID == 0 || s.Date.IsZero() {
		return false
	}
	start, err := time.Parse("15:04", s.StartTime)
	if err != nil {
		return false
	}
	end, err := time.Parse("15:04", s.EndTime)
	if err != nil {
		return false
	}
	return end.After(start)
}
