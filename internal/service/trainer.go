package service

import (
	"context"
	"fmt"
	"trainer-availability/internal/models"
	"trainer-availability/internal/repository"

	"github.com/sirupsen/logrus"
)

type TrainerService struct {
	repo   repository.TrainerRepository
	logger *logrus.Logger
}

func NewTrainerService(repo repository.TrainerRepository, logger *logrus.Logger) *TrainerService {
	if logger == nil {
		logger = logrus.New()
	}
	return &TrainerService{repo: repo, logger: logger}
}

// Register создает тренера с ролью trainer
func (s *TrainerService) Register(ctx context.Context, chatID int64, username, firstName, lastName string) (*models.Trainer, error) {
	if firstName == "" && username == "" {
		return nil, fmt.Errorf("имя не может быть пустым")
	}

	trainer := &models.Trainer{
		ChatID:    chatID,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		Role:      models.RoleTrainer,
	}

	if err := s.repo.Create(ctx, trainer); err != nil {
		return nil, fmt.Errorf("ошибка регистрации тренера: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"trainer_id": trainer.ID,
		"chat_id":    chatID,
	}).Info("Trainer registered")
	return trainer, nil
}

// GetByChatID возвращает тренера по chatID или ErrTrainerNotFound
func (s *TrainerService) GetByChatID(ctx context.Context, chatID int64) (*models.Trainer, error) {
	trainer, err := s.repo.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения тренера: %w", err)
	}
	if trainer == nil {
		return nil, models.ErrTrainerNotFound
	}
	return trainer, nil
}

func (s *TrainerService) IsAdmin(ctx context.Context, chatID int64) (bool, error) {
	trainer, err := s.repo.GetByChatID(ctx, chatID)
	if err != nil {
		return false, err
	}
	return trainer != nil && trainer.IsAdmin(), nil
}

// InitializeAdmin назначает администратором пользователя из конфига.
// Если пользователя еще нет - создает его.
func (s *TrainerService) InitializeAdmin(ctx context.Context, chatID int64) error {
	if chatID == 0 {
		return nil
	}

	existing, err := s.repo.GetByChatID(ctx, chatID)
	if err != nil {
		return err
	}
	if existing == nil {
		admin := &models.Trainer{
			ChatID:    chatID,
			FirstName: "Admin",
			Role:      models.RoleAdmin,
		}
		return s.repo.Create(ctx, admin)
	}
	if existing.IsAdmin() {
		return nil
	}
	return s.repo.UpdateRole(ctx, chatID, models.RoleAdmin)
}

// Promote делает пользователя администратором (только для админов)
func (s *TrainerService) Promote(ctx context.Context, adminChatID, targetChatID int64) error {
	isAdmin, err := s.IsAdmin(ctx, adminChatID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return models.ErrForbidden
	}
	return s.repo.UpdateRole(ctx, targetChatID, models.RoleAdmin)
}

func (s *TrainerService) ListTrainers(ctx context.Context) ([]*models.Trainer, error) {
	return s.repo.GetTrainers(ctx)
}
