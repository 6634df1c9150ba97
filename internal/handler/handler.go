package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
	"trainer-availability/internal/livesync"
	"trainer-availability/internal/models"
	"trainer-availability/internal/panel"
	"trainer-availability/pkg/calendar"
	"trainer-availability/pkg/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const (
	topicTrainerPanel = "trainer_panel"
	topicAdminGrid    = "admin_grid"

	requestTimeout = 15 * time.Second
)

// Directory - справочник пользователей бота
type Directory interface {
	GetByChatID(ctx context.Context, chatID int64) (*models.Trainer, error)
	Register(ctx context.Context, chatID int64, username, firstName, lastName string) (*models.Trainer, error)
	ListTrainers(ctx context.Context) ([]*models.Trainer, error)
}

type Handler struct {
	client    telegram.Sender
	directory Directory
	backend   panel.Backend
	sync      panel.Subscriber
	window    calendar.EditWindow
	logger    *logrus.Logger

	// состояние панелей по чатам вместо глобальных map
	trainerPanels *livesync.StateStore[*panel.TrainerPanel]
	adminGrids    *livesync.StateStore[*panel.AdminGrid]
}

func NewHandler(
	client telegram.Sender,
	directory Directory,
	backend panel.Backend,
	sync panel.Subscriber,
	window calendar.EditWindow,
	logger *logrus.Logger,
) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		client:    client,
		directory: directory,
		backend:   backend,
		sync:      sync,
		window:    window,
		logger:    logger,
		trainerPanels: livesync.NewStateStore(func(_ livesync.Key, p *panel.TrainerPanel) {
			p.Close()
		}),
		adminGrids: livesync.NewStateStore(func(_ livesync.Key, g *panel.AdminGrid) {
			g.Close()
		}),
	}
}

// HandleUpdates читает канал до закрытия
func (h *Handler) HandleUpdates(updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		h.HandleUpdate(update)
	}
}

func (h *Handler) HandleUpdate(update tgbotapi.Update) {
	// Обработка callback query (для inline кнопок)
	if update.CallbackQuery != nil {
		h.handleCallbackQuery(update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}

	h.handleMessage(update.Message)
}

// Close закрывает все панели и их подписки
func (h *Handler) Close() {
	h.trainerPanels.TeardownAll()
	h.adminGrids.TeardownAll()
}

// handleCallbackQuery обрабатывает inline кнопки approve_<id> / reject_<id>
func (h *Handler) handleCallbackQuery(callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil || callback.Message.Chat == nil {
		return
	}
	chatID := callback.Message.Chat.ID
	data := callback.Data

	answer := ""
	switch {
	case strings.HasPrefix(data, "approve_"), strings.HasPrefix(data, "reject_"):
		action, rawID, _ := strings.Cut(data, "_")
		id, err := strconv.ParseUint(rawID, 10, 64)
		if err != nil {
			answer = "некорректная кнопка"
			break
		}

		// Удаляем клавиатуру, чтобы кнопку не нажали второй раз
		edit := tgbotapi.NewEditMessageReplyMarkup(chatID, callback.Message.MessageID, tgbotapi.NewInlineKeyboardMarkup())
		h.request(edit)

		if action == "approve" {
			h.approve(chatID, uint(id))
		} else {
			h.reject(chatID, uint(id), "")
		}
	default:
		answer = "неизвестное действие"
	}

	// Отвечаем на callback (убираем "часики" у кнопки)
	h.request(tgbotapi.NewCallback(callback.ID, answer))
}

func (h *Handler) handleMessage(message *tgbotapi.Message) {
	if message.Chat == nil {
		return
	}

	username := ""
	if message.From != nil {
		username = message.From.UserName
	}
	h.logger.WithFields(logrus.Fields{
		"chat_id":  message.Chat.ID,
		"username": username,
	}).Debug(message.Text)

	if message.IsCommand() {
		h.handleCommand(message)
		return
	}

	h.sendText(message.Chat.ID, "Я понимаю только команды. Используйте /help для списка команд.")
}

func (h *Handler) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// currentUser - пользователь чата или nil с сообщением о регистрации
func (h *Handler) currentUser(chatID int64) *models.Trainer {
	ctx, cancel := h.ctx()
	defer cancel()

	user, err := h.directory.GetByChatID(ctx, chatID)
	if err != nil || user == nil {
		if err != nil && !errors.Is(err, models.ErrTrainerNotFound) {
			h.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to load user")
		}
		h.sendText(chatID, "❌ Профиль не найден.\nИспользуйте /start чтобы зарегистрироваться.")
		return nil
	}
	return user
}

// currentAdmin - как currentUser, но только для администраторов
func (h *Handler) currentAdmin(chatID int64) *models.Trainer {
	user := h.currentUser(chatID)
	if user == nil {
		return nil
	}
	if !user.IsAdmin() {
		h.sendText(chatID, "❌ "+models.ErrForbidden.Error())
		return nil
	}
	return user
}

func chatKey(chatID int64, topic string) livesync.Key {
	return livesync.Key{UserID: strconv.FormatInt(chatID, 10), Topic: topic}
}

func (h *Handler) trainerPanel(chatID int64, trainer *models.Trainer) *panel.TrainerPanel {
	return h.trainerPanels.Init(chatKey(chatID, topicTrainerPanel), func() *panel.TrainerPanel {
		p := panel.NewTrainerPanel(trainer.Key(), h.backend, h.sync, h.window, h.logger)
		ctx, cancel := h.ctx()
		defer cancel()
		p.Refresh(ctx)
		return p
	})
}

func (h *Handler) adminGrid(chatID int64) *panel.AdminGrid {
	return h.adminGrids.Init(chatKey(chatID, topicAdminGrid), func() *panel.AdminGrid {
		g := panel.NewAdminGrid(h.backend, h.sync, h.window, h.logger)
		ctx, cancel := h.ctx()
		defer cancel()
		g.Refresh(ctx)
		return g
	})
}

func (h *Handler) sendText(chatID int64, text string) {
	h.send(tgbotapi.NewMessage(chatID, text))
}

func (h *Handler) sendHTML(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	h.send(msg)
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.client.Send(c); err != nil {
		h.logger.WithError(err).Error("Failed to send telegram message")
	}
}

func (h *Handler) request(c tgbotapi.Chattable) {
	if _, err := h.client.Request(c); err != nil {
		h.logger.WithError(err).Warn("Telegram request failed")
	}
}

// errorText - текст ошибки для пользователя. Доменные ошибки уже на русском.
func errorText(err error) string {
	for _, known := range []error{
		models.ErrBeforeEditableFloor,
		models.ErrInvalidDateRange,
		models.ErrWindowTooLarge,
		models.ErrEmptySelection,
		models.ErrRequestNotFound,
		models.ErrRequestNotPending,
		models.ErrActionInFlight,
		models.ErrTrainerNotFound,
		models.ErrForbidden,
	} {
		if errors.Is(err, known) {
			return "❌ " + known.Error()
		}
	}
	return "❌ Не удалось выполнить действие, попробуйте позже."
}

// parseDate принимает YYYY-MM-DD и ДД.ММ.ГГГГ
func parseDate(s string) (calendar.Date, error) {
	s = strings.TrimSpace(s)
	if d, err := calendar.Parse(s); err == nil {
		return d, nil
	}
	t, err := time.Parse("02.01.2006", s)
	if err != nil {
		return calendar.Date{}, errors.New("неверный формат даты, используйте ГГГГ-ММ-ДД или ДД.ММ.ГГГГ")
	}
	return calendar.FromTime(t), nil
}
