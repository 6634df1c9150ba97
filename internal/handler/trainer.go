package handler

import (
	"fmt"
	"strings"
	"trainer-availability/internal/models"
	"trainer-availability/internal/panel"
	"trainer-availability/pkg/calendar"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// withPanel находит пользователя и его панель, иначе отвечает сам
func (h *Handler) withPanel(message *tgbotapi.Message, fn func(chatID int64, p *panel.TrainerPanel)) {
	chatID := message.Chat.ID
	user := h.currentUser(chatID)
	if user == nil {
		return
	}
	fn(chatID, h.trainerPanel(chatID, user))
}

func (h *Handler) renderPanel(chatID int64, p *panel.TrainerPanel) {
	h.sendHTML(chatID, renderCalendar(p.Grid(), p.Cells(), p.IsSelected, p.Floor()))
}

func (h *Handler) showCalendar(message *tgbotapi.Message) {
	h.withPanel(message, func(chatID int64, p *panel.TrainerPanel) {
		ctx, cancel := h.ctx()
		defer cancel()
		p.Refresh(ctx)
		h.renderPanel(chatID, p)
	})
}

func (h *Handler) setPeriod(message *tgbotapi.Message, period string) {
	h.withPanel(message, func(chatID int64, p *panel.TrainerPanel) {
		ctx, cancel := h.ctx()
		defer cancel()
		p.SetPeriod(ctx, calendar.Period(period))
		h.renderPanel(chatID, p)
	})
}

// navigate: -1 назад, 1 вперед, 0 - к текущему периоду
func (h *Handler) navigate(message *tgbotapi.Message, step int) {
	h.withPanel(message, func(chatID int64, p *panel.TrainerPanel) {
		ctx, cancel := h.ctx()
		defer cancel()
		switch {
		case step < 0:
			p.Prev(ctx)
		case step > 0:
			p.Next(ctx)
		default:
			p.GoToCurrent(ctx)
		}
		h.renderPanel(chatID, p)
	})
}

func (h *Handler) selectDates(message *tgbotapi.Message, args string) {
	h.withPanel(message, func(chatID int64, p *panel.TrainerPanel) {
		fields := strings.Fields(args)
		if len(fields) == 0 {
			h.sendText(chatID, "Формат: /select ДАТА [ДАТА...]\nПример: /select 2024-03-10 2024-03-12")
			return
		}

		var refused []string
		for _, raw := range fields {
			d, err := parseDate(raw)
			if err != nil {
				h.sendText(chatID, "❌ "+raw+": "+err.Error())
				return
			}
			if !p.Toggle(d) {
				refused = append(refused, d.String())
			}
		}
		if len(refused) > 0 {
			h.sendText(chatID, fmt.Sprintf("⚠️ Не выбраны (раньше %s): %s", p.Floor(), strings.Join(refused, ", ")))
		}
		h.renderPanel(chatID, p)
	})
}

// clearSelection не открывает панель: без панели нет и выбора
func (h *Handler) clearSelection(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if h.currentUser(chatID) == nil {
		return
	}
	if p, ok := h.trainerPanels.Get(chatKey(chatID, topicTrainerPanel)); ok {
		p.ClearSelection()
	}
	h.sendText(chatID, "🧹 Выбор сброшен.")
}

func (h *Handler) saveSelection(message *tgbotapi.Message, available bool) {
	h.withPanel(message, func(chatID int64, p *panel.TrainerPanel) {
		count := len(p.Selected())

		ctx, cancel := h.ctx()
		defer cancel()

		var err error
		if available {
			err = p.MakeAvailable(ctx)
		} else {
			err = p.MarkUnavailable(ctx)
		}
		if err != nil {
			h.sendText(chatID, errorText(err))
			return
		}

		word := "доступными"
		if !available {
			word = "недоступными"
		}
		p.Refresh(ctx)
		h.sendText(chatID, fmt.Sprintf("✅ Отмечено %s: %d дн.", word, count))
		h.renderPanel(chatID, p)
	})
}

func (h *Handler) addAbsence(message *tgbotapi.Message, args string) {
	h.withPanel(message, func(chatID int64, p *panel.TrainerPanel) {
		ctx, cancel := h.ctx()
		defer cancel()

		request, err := p.AddAbsence(ctx, strings.TrimSpace(args))
		if err != nil {
			h.sendText(chatID, errorText(err))
			return
		}

		h.logger.WithFields(logrus.Fields{
			"chat_id":    chatID,
			"request_id": request.ID,
		}).Info("Absence requested via bot")
		p.Refresh(ctx)
		h.sendText(chatID, fmt.Sprintf("📨 Заявка #%d на отсутствие %s - %s отправлена администратору.",
			request.ID, request.DateFrom, request.DateTo))
	})
}

func (h *Handler) bulk(message *tgbotapi.Message, args string) {
	h.withPanel(message, func(chatID int64, p *panel.TrainerPanel) {
		fields := strings.Fields(args)
		if len(fields) == 0 {
			h.sendText(chatID, "Формат: /bulk weekday|weekend|all [clear]\nОперация применяется к месяцу текущего календаря.")
			return
		}
		class, err := calendar.ParseDayClass(fields[0])
		if err != nil {
			h.sendText(chatID, "❌ Классы дней: weekday, weekend, all")
			return
		}
		op := models.BulkMarkAvailable
		if len(fields) > 1 && fields[1] == "clear" {
			op = models.BulkClear
		}

		ctx, cancel := h.ctx()
		defer cancel()

		result, err := p.Bulk(ctx, class, op)
		if err != nil {
			h.sendText(chatID, errorText(err))
			return
		}
		p.Refresh(ctx)
		h.sendText(chatID, renderBulkResult(result, op))
		h.renderPanel(chatID, p)
	})
}
