package repository

import (
	"context"
	"errors"
	"trainer-availability/internal/models"

	"gorm.io/gorm"
)

type TrainerRepository interface {
	Create(ctx context.Context, trainer *models.Trainer) error
	GetByID(ctx context.Context, id uint) (*models.Trainer, error)
	GetByChatID(ctx context.Context, chatID int64) (*models.Trainer, error)
	GetTrainers(ctx context.Context) ([]*models.Trainer, error)
	UpdateRole(ctx context.Context, chatID int64, role models.Role) error
}

type GormTrainerRepository struct {
	db *gorm.DB
}

func NewGormTrainerRepository(db *gorm.DB) (*GormTrainerRepository, error) {
	// Автомиграция - создает таблицу если ее нет
	if err := db.AutoMigrate(&models.Trainer{}); err != nil {
		return nil, err
	}

	return &GormTrainerRepository{db: db}, nil
}

func (r *GormTrainerRepository) Create(ctx context.Context, trainer *models.Trainer) error {
	// Проверяем, существует ли уже тренер с этим чатом
	var existing models.Trainer
	result := r.db.WithContext(ctx).Where("chat_id = ?", trainer.ChatID).First(&existing)
	if result.Error == nil {
		return errors.New("тренер уже существует")
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	return r.db.WithContext(ctx).Create(trainer).Error
}

func (r *GormTrainerRepository) GetByID(ctx context.Context, id uint) (*models.Trainer, error) {
	var trainer models.Trainer
	result := r.db.WithContext(ctx).First(&trainer, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &trainer, nil
}

func (r *GormTrainerRepository) GetByChatID(ctx context.Context, chatID int64) (*models.Trainer, error) {
	var trainer models.Trainer
	result := r.db.WithContext(ctx).Where("chat_id = ?", chatID).First(&trainer)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &trainer, nil
}

// GetTrainers возвращает только тренеров (без администраторов) - строки календарной сетки
func (r *GormTrainerRepository) GetTrainers(ctx context.Context) ([]*models.Trainer, error) {
	var trainers []*models.Trainer
	result := r.db.WithContext(ctx).
		Where("role = ?", models.RoleTrainer).
		Order("id ASC").
		Find(&trainers)
	if result.Error != nil {
		return nil, result.Error
	}
	return trainers, nil
}

func (r *GormTrainerRepository) UpdateRole(ctx context.Context, chatID int64, role models.Role) error {
	result := r.db.WithContext(ctx).Model(&models.Trainer{}).
		Where("chat_id = ?", chatID).
		Update("role", role)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrTrainerNotFound
	}

	return nil
}
