package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	"trainer-availability/internal/api"
	"trainer-availability/internal/config"
	"trainer-availability/internal/handler"
	"trainer-availability/internal/livesync"
	"trainer-availability/internal/repository"
	"trainer-availability/internal/service"
	"trainer-availability/pkg/calendar"
	"trainer-availability/pkg/telegram"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	logger := logrus.New()

	logger.Info("Initializing config...")
	cfg := config.GetConfig()
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	logger.Info("Config initialized...")

	// Инициализируем SQLite базу данных
	db, err := gorm.Open(sqlite.Open(cfg.DatabaseURL), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true, // SQLite ограничения
	})
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get database instance:", err)
	}

	// Включаем поддержку внешних ключей (требуется для SQLite)
	if _, err = sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		logger.Warnf("Failed to enable foreign keys: %v", err)
	}

	trainerRepo, err := repository.NewGormTrainerRepository(db)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create trainer repository")
	}
	slotRepo, err := repository.NewGormAvailabilitySlotRepository(db, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create availability slot repository")
	}
	absenceRepo, err := repository.NewGormAbsenceRequestRepository(db)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create absence request repository")
	}

	// Сигналы об изменениях для открытых календарей
	coordinator := livesync.NewCoordinator(cfg.SyncDebounce, logger)
	window := calendar.EditWindow{Lead: cfg.EditLead}

	// Все сигналы об изменениях идут через сервис доступности, он сбрасывает общие запросы
	availabilityService := service.NewAvailabilityService(slotRepo, absenceRepo, trainerRepo, coordinator, window, logger)
	trainerService := service.NewTrainerService(trainerRepo, logger)
	platform := &service.Platform{
		Trainers:     trainerService,
		Availability: availabilityService,
		Absences:     service.NewAbsenceService(absenceRepo, trainerRepo, availabilityService, window, logger),
		Bulk:         service.NewBulkService(slotRepo, absenceRepo, availabilityService, window, logger),
	}

	poller, err := livesync.NewPoller(cfg.PollSchedule, availabilityService, logger, livesync.TopicTrainerAvailability)
	if err != nil {
		logger.WithError(err).Fatal("Invalid POLL_SCHEDULE")
	}

	// Инициализируем администратора из конфига
	if err := trainerService.InitializeAdmin(context.Background(), cfg.BaseAdminChatID); err != nil {
		logger.Warnf("Failed to initialize admin: %v", err)
	} else if cfg.BaseAdminChatID != 0 {
		logger.Infof("Admin initialized with chat ID: %d", cfg.BaseAdminChatID)
	}

	app := api.NewApp(api.Handlers{
		Availability: &api.AvailabilityController{Availability: platform.Availability, Bulk: platform.Bulk},
		Absences:     &api.AbsenceController{Absences: platform.Absences},
	}, logger)

	go func() {
		logger.Infof("HTTP API listening on %s", cfg.HTTPAddr)
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			logger.WithError(err).Fatal("HTTP server error")
		}
	}()

	var (
		client     *telegram.Client
		botHandler *handler.Handler
	)
	if cfg.BotEnabled() {
		client, err = telegram.NewClient(cfg.TelegramToken, cfg.Debug)
		if err != nil {
			logger.Fatal("Failed to create Telegram client:", err)
		}
		logger.Infof("Authorized on account %s", client.Bot.Self.UserName)

		botHandler = handler.NewHandler(client.Bot, trainerService, platform, coordinator, window, logger)
		go botHandler.HandleUpdates(client.Updates())
	} else {
		logger.Info("TELEGRAM_BOT_TOKEN is empty, bot disabled")
	}

	poller.Start()

	// Обработка сигналов для graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("Service started. Press Ctrl+C to stop.")
	<-stop

	poller.Stop()
	if client != nil {
		client.Stop()
		botHandler.Close()
	}
	coordinator.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Warnf("HTTP shutdown: %v", err)
	}

	// Закрываем соединение с БД
	if err := sqlDB.Close(); err != nil {
		logger.Warnf("Error closing database: %v", err)
	}

	logger.Info("Service stopped gracefully")
}
