package handler

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

func (h *Handler) handleCommand(message *tgbotapi.Message) {
	command := message.Command()
	args := message.CommandArguments()

	switch command {
	case "start":
		h.start(message)
	case "help":
		h.sendHelpMessage(message)

	// Календарь тренера
	case "calendar":
		h.showCalendar(message)
	case "day", "week", "month":
		h.setPeriod(message, command)
	case "prev":
		h.navigate(message, -1)
	case "next":
		h.navigate(message, 1)
	case "today":
		h.navigate(message, 0)
	case "select":
		h.selectDates(message, args)
	case "clearselection":
		h.clearSelection(message)
	case "available":
		h.saveSelection(message, true)
	case "unavailable":
		h.saveSelection(message, false)
	case "absence":
		h.addAbsence(message, args)
	case "bulk":
		h.bulk(message, args)

	// Команды администратора
	case "requests":
		h.showRequests(message, args)
	case "approve":
		h.approveCommand(message, args)
	case "reject":
		h.rejectCommand(message, args)
	case "cell":
		h.openCell(message, args)
	case "grid":
		h.showGrid(message, args)
	case "trainers":
		h.showTrainers(message)

	default:
		h.sendUnknownCommand(message)
	}
}

func (h *Handler) start(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	ctx, cancel := h.ctx()
	defer cancel()

	user, err := h.directory.GetByChatID(ctx, chatID)
	if err == nil && user != nil {
		h.sendText(chatID, "👋 С возвращением, "+user.DisplayName()+"!\nИспользуйте /calendar чтобы открыть календарь.")
		return
	}

	var username, firstName, lastName string
	if message.From != nil {
		username = message.From.UserName
		firstName = message.From.FirstName
		lastName = message.From.LastName
	}
	user, err = h.directory.Register(ctx, chatID, username, firstName, lastName)
	if err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to register trainer")
		h.sendText(chatID, "❌ Ошибка регистрации: "+err.Error())
		return
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id":    chatID,
		"trainer_id": user.ID,
	}).Info("Trainer registered via bot")
	h.sendText(chatID, "✅ Вы зарегистрированы как тренер.\nИспользуйте /calendar чтобы отметить доступность.")
}

func (h *Handler) sendHelpMessage(message *tgbotapi.Message) {
	text := `📅 Календарь доступности

/calendar - показать календарь
/day, /week, /month - период отображения
/prev, /next, /today - навигация
/select ДАТА [ДАТА...] - выбрать или снять выбор с дат
/clearselection - сбросить выбор
/available - отметить выбранные даты доступными
/unavailable - отметить выбранные даты недоступными
/absence [причина] - заявка на отсутствие с первой по последнюю выбранную дату
/bulk weekday|weekend|all [clear] - массово отметить месяц

👑 Администратор:
/requests [pending|approved|rejected] - заявки на отсутствие
/approve ID, /reject ID [причина] - решение по заявке
/grid [day|week|month|prev|next|today] - сетка всех тренеров
/cell ID_ТРЕНЕРА ДАТА - заявка по ячейке сетки
/trainers - список тренеров с ID

Даты: ГГГГ-ММ-ДД или ДД.ММ.ГГГГ. Изменять можно даты не раньше чем через 24 часа.`

	h.sendText(message.Chat.ID, text)
}

func (h *Handler) sendUnknownCommand(message *tgbotapi.Message) {
	h.sendText(message.Chat.ID, "❌ Неизвестная команда. Используйте /help для списка команд.")
}
