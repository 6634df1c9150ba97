package repository

import (
	"context"
	"errors"
	"trainer-availability/internal/models"
	"trainer-availability/pkg/calendar"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AvailabilitySlotRepository interface {
	GetByWindow(ctx context.Context, from, to calendar.Date) ([]models.AvailabilitySlot, error)
	SetDay(ctx context.Context, trainerID uint, date calendar.Date, available bool) error
	ClearDay(ctx context.Context, trainerID uint, date calendar.Date) (int64, error)
	ApplyBatch(ctx context.Context, trainerID uint, dates []calendar.Date, op models.BulkOp) error
}

type GormAvailabilitySlotRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormAvailabilitySlotRepository(db *gorm.DB, logger *logrus.Logger) (*GormAvailabilitySlotRepository, error) {
	if logger == nil {
		logger = logrus.New()
	}

	// Автомиграция
	if err := db.AutoMigrate(&models.AvailabilitySlot{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate availability_slots table")
		return nil, err
	}

	logger.Info("Availability slot repository initialized")

	return &GormAvailabilitySlotRepository{db: db, logger: logger}, nil
}

func (r *GormAvailabilitySlotRepository) GetByWindow(ctx context.Context, from, to calendar.Date) ([]models.AvailabilitySlot, error) {
	var slots []models.AvailabilitySlot
	result := r.db.WithContext(ctx).
		Where("date BETWEEN ? AND ?", from, to).
		Order("trainer_id ASC, date ASC, start_time ASC").
		Find(&slots)

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get slots by window")
		return nil, result.Error
	}

	r.logger.WithFields(logrus.Fields{
		"date_from": from.String(),
		"date_to":   to.String(),
		"count":     len(slots),
	}).Debug("Retrieved slots by window")

	return slots, nil
}

// SetDay перезаписывает все слоты тренера на дату одним слотом на весь день
func (r *GormAvailabilitySlotRepository) SetDay(ctx context.Context, trainerID uint, date calendar.Date, available bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return setDay(tx, trainerID, date, available)
	})
}

func (r *GormAvailabilitySlotRepository) ClearDay(ctx context.Context, trainerID uint, date calendar.Date) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("trainer_id = ? AND date = ?", trainerID, date).
		Delete(&models.AvailabilitySlot{})
	return result.RowsAffected, result.Error
}

// ApplyBatch применяет операцию ко всем датам в одной транзакции:
// либо все даты изменены, либо ни одна
func (r *GormAvailabilitySlotRepository) ApplyBatch(ctx context.Context, trainerID uint, dates []calendar.Date, op models.BulkOp) error {
	if len(dates) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch op {
		case models.BulkMarkAvailable:
			for _, date := range dates {
				if err := setDay(tx, trainerID, date, true); err != nil {
					return err
				}
			}
			return nil
		case models.BulkClear:
			return tx.Where("trainer_id = ? AND date IN ?", trainerID, dates).
				Delete(&models.AvailabilitySlot{}).Error
		default:
			return errors.New("неизвестная массовая операция")
		}
	})
	if err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"trainer_id": trainerID,
			"op":         op,
			"dates":      len(dates),
		}).Error("Failed to apply batch")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"trainer_id": trainerID,
		"op":         op,
		"dates":      len(dates),
	}).Info("Batch applied")
	return nil
}

func setDay(tx *gorm.DB, trainerID uint, date calendar.Date, available bool) error {
	slot := &models.AvailabilitySlot{
		TrainerID:   trainerID,
		Date:        date,
		StartTime:   models.FullDayStart,
		EndTime:     models.FullDayEnd,
		IsAvailable: available,
	}
	if !slot.IsValid() {
		return models.ErrInvalidSlot
	}

	if err := tx.Where("trainer_id = ? AND date = ?", trainerID, date).
		Delete(&models.AvailabilitySlot{}).Error; err != nil {
		return err
	}
	return tx.Create(slot).Error
}
