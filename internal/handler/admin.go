package handler

import (
	"fmt"
	"strconv"
	"strings"
	"trainer-availability/internal/models"
	"trainer-availability/internal/panel"
	"trainer-availability/pkg/calendar"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) withGrid(message *tgbotapi.Message, fn func(chatID int64, g *panel.AdminGrid)) {
	chatID := message.Chat.ID
	if h.currentAdmin(chatID) == nil {
		return
	}
	fn(chatID, h.adminGrid(chatID))
}

func (h *Handler) showRequests(message *tgbotapi.Message, args string) {
	h.withGrid(message, func(chatID int64, g *panel.AdminGrid) {
		filter := strings.TrimSpace(args)
		if filter == "" {
			filter = string(models.RequestPending)
		}
		status, err := models.ParseRequestStatus(filter)
		if err != nil {
			h.sendText(chatID, "❌ Статусы: pending, approved, rejected")
			return
		}

		ctx, cancel := h.ctx()
		defer cancel()
		g.Refresh(ctx)

		requests := g.Requests()
		if status == models.RequestPending {
			requests = g.Pending()
		}

		var shown int
		for _, r := range requests {
			if r.Status != status {
				continue
			}
			shown++
			msg := tgbotapi.NewMessage(chatID, renderRequest(r))
			if r.IsPending() {
				msg.ReplyMarkup = decisionKeyboard(r.ID)
			}
			h.send(msg)
		}
		if shown == 0 {
			h.sendText(chatID, "📭 Заявок нет.")
		}
	})
}

func decisionKeyboard(id uint) tgbotapi.InlineKeyboardMarkup {
	suffix := strconv.FormatUint(uint64(id), 10)
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Одобрить", "approve_"+suffix),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", "reject_"+suffix),
		),
	)
}

func (h *Handler) approveCommand(message *tgbotapi.Message, args string) {
	id, err := strconv.ParseUint(strings.TrimSpace(args), 10, 64)
	if err != nil {
		h.sendText(message.Chat.ID, "Формат: /approve ID")
		return
	}
	h.approve(message.Chat.ID, uint(id))
}

func (h *Handler) rejectCommand(message *tgbotapi.Message, args string) {
	rawID, reason, _ := strings.Cut(strings.TrimSpace(args), " ")
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		h.sendText(message.Chat.ID, "Формат: /reject ID [причина]")
		return
	}
	h.reject(message.Chat.ID, uint(id), strings.TrimSpace(reason))
}

func (h *Handler) approve(chatID int64, id uint) {
	if h.currentAdmin(chatID) == nil {
		return
	}
	g := h.adminGrid(chatID)

	ctx, cancel := h.ctx()
	defer cancel()
	if err := g.Approve(ctx, id); err != nil {
		h.sendText(chatID, fmt.Sprintf("Заявка #%d: %s", id, errorText(err)))
		return
	}
	g.Refresh(ctx)
	h.sendText(chatID, fmt.Sprintf("✅ Заявка #%d одобрена.", id))
}

func (h *Handler) reject(chatID int64, id uint, reason string) {
	if h.currentAdmin(chatID) == nil {
		return
	}
	g := h.adminGrid(chatID)

	ctx, cancel := h.ctx()
	defer cancel()
	if err := g.Reject(ctx, id, reason); err != nil {
		h.sendText(chatID, fmt.Sprintf("Заявка #%d: %s", id, errorText(err)))
		return
	}
	g.Refresh(ctx)
	h.sendText(chatID, fmt.Sprintf("🚫 Заявка #%d отклонена.", id))
}

func (h *Handler) openCell(message *tgbotapi.Message, args string) {
	h.withGrid(message, func(chatID int64, g *panel.AdminGrid) {
		fields := strings.Fields(args)
		if len(fields) != 2 {
			h.sendText(chatID, "Формат: /cell ID_ТРЕНЕРА ДАТА")
			return
		}
		date, err := parseDate(fields[1])
		if err != nil {
			h.sendText(chatID, "❌ "+err.Error())
			return
		}

		request, ok := g.OpenCell(fields[0], date)
		if !ok {
			h.sendText(chatID, fmt.Sprintf("На %s у тренера %s заявок нет.", date, fields[0]))
			return
		}
		msg := tgbotapi.NewMessage(chatID, renderRequest(*request))
		if request.IsPending() {
			msg.ReplyMarkup = decisionKeyboard(request.ID)
		}
		h.send(msg)
	})
}

func (h *Handler) showGrid(message *tgbotapi.Message, args string) {
	h.withGrid(message, func(chatID int64, g *panel.AdminGrid) {
		ctx, cancel := h.ctx()
		defer cancel()

		switch arg := strings.TrimSpace(args); arg {
		case "":
			g.Refresh(ctx)
		case "prev":
			g.Prev(ctx)
		case "next":
			g.Next(ctx)
		case "today":
			g.GoToCurrent(ctx)
		default:
			p, err := calendar.ParsePeriod(arg)
			if err != nil {
				h.sendText(chatID, "Формат: /grid [day|week|month|prev|next|today]")
				return
			}
			g.SetPeriod(ctx, p)
		}
		h.sendHTML(chatID, renderAdminGrid(g.Grid(), g.Rows()))
	})
}

func (h *Handler) showTrainers(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if h.currentAdmin(chatID) == nil {
		return
	}

	ctx, cancel := h.ctx()
	defer cancel()
	trainers, err := h.directory.ListTrainers(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list trainers")
		h.sendText(chatID, errorText(err))
		return
	}
	if len(trainers) == 0 {
		h.sendText(chatID, "Тренеров пока нет.")
		return
	}

	var b strings.Builder
	b.WriteString("👥 Тренеры:\n")
	for _, t := range trainers {
		b.WriteString(fmt.Sprintf("%s - %s", t.Key(), t.DisplayName()))
		if t.Username != "" {
			b.WriteString(" @" + t.Username)
		}
		b.WriteString("\n")
	}
	h.sendText(chatID, strings.TrimRight(b.String(), "\n"))
}
