package repository

import (
	"context"
	"errors"
	"time"
	"trainer-availability/internal/models"
	"trainer-availability/pkg/calendar"

	"gorm.io/gorm"
)

type AbsenceRequestRepository interface {
	Create(ctx context.Context, request *models.AbsenceRequest) error
	GetByID(ctx context.Context, id uint) (*models.AbsenceRequest, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.AbsenceRequest, error)
	GetOverlapping(ctx context.Context, trainerID uint, from, to calendar.Date) ([]models.AbsenceRequest, error)
	GetActiveByWindow(ctx context.Context, from, to calendar.Date) ([]models.AbsenceRequest, error)
	Transition(ctx context.Context, id uint, to models.RequestStatus, rejectionReason string, decidedAt time.Time) (bool, error)
}

type GormAbsenceRequestRepository struct {
	db *gorm.DB
}

func NewGormAbsenceRequestRepository(db *gorm.DB) (*GormAbsenceRequestRepository, error) {
	if err := db.AutoMigrate(&models.AbsenceRequest{}); err != nil {
		return nil, err
	}
	return &GormAbsenceRequestRepository{db: db}, nil
}

func (r *GormAbsenceRequestRepository) Create(ctx context.Context, request *models.AbsenceRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *GormAbsenceRequestRepository) GetByID(ctx context.Context, id uint) (*models.AbsenceRequest, error) {
	var request models.AbsenceRequest
	err := r.db.WithContext(ctx).Preload("Trainer").First(&request, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// List возвращает заявки, новые первыми; при равном времени - больший id первым
func (r *GormAbsenceRequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.AbsenceRequest, error) {
	var requests []models.AbsenceRequest
	q := r.db.WithContext(ctx).Preload("Trainer")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.TrainerID != 0 {
		q = q.Where("trainer_id = ?", filter.TrainerID)
	}
	err := q.Order("created_at DESC, id DESC").Find(&requests).Error
	return requests, err
}

// GetOverlapping - заявки тренера (кроме отклоненных), пересекающие [from, to]
func (r *GormAbsenceRequestRepository) GetOverlapping(ctx context.Context, trainerID uint, from, to calendar.Date) ([]models.AbsenceRequest, error) {
	var requests []models.AbsenceRequest
	err := r.db.WithContext(ctx).
		Where("trainer_id = ? AND status <> ? AND date_from <= ? AND date_to >= ?",
			trainerID, models.RequestRejected, to, from).
		Order("date_from ASC").
		Find(&requests).Error
	return requests, err
}

// GetActiveByWindow - одобренные и ожидающие заявки всех тренеров, пересекающие окно
func (r *GormAbsenceRequestRepository) GetActiveByWindow(ctx context.Context, from, to calendar.Date) ([]models.AbsenceRequest, error) {
	var requests []models.AbsenceRequest
	err := r.db.WithContext(ctx).
		Preload("Trainer").
		Where("status IN ? AND date_from <= ? AND date_to >= ?",
			[]models.RequestStatus{models.RequestPending, models.RequestApproved}, to, from).
		Order("trainer_id ASC, date_from ASC").
		Find(&requests).Error
	return requests, err
}

// Transition переводит заявку из pending в to. Условие на статус в самом UPDATE,
// поэтому параллельное второе решение не перезапишет первое: вернется false.
func (r *GormAbsenceRequestRepository) Transition(
	ctx context.Context,
	id uint,
	to models.RequestStatus,
	rejectionReason string,
	decidedAt time.Time,
) (bool, error) {
	if !models.RequestPending.CanTransition(to) {
		return false, models.ErrUnknownStatus
	}

	result := r.db.WithContext(ctx).Model(&models.AbsenceRequest{}).
		Where("id = ? AND status = ?", id, models.RequestPending).
		Updates(map[string]any{
			"status":           to,
			"rejection_reason": rejectionReason,
			"decided_at":       decidedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
