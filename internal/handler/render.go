package handler

import (
	"fmt"
	"html"
	"strings"
	"trainer-availability/internal/models"
	"trainer-availability/internal/panel"
	"trainer-availability/pkg/calendar"
	"unicode/utf8"
)

var monthNames = [...]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

var weekdayNames = [...]string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}

const (
	cellWidth = 4
	nameWidth = 12
	legend    = "+ доступен  - недоступен  ? заявка  A отсутствие  . нет отметки"
)

// statusMark - один символ статуса для моноширинной сетки
func statusMark(s models.DayStatus) string {
	switch s {
	case models.StatusAvailable:
		return "+"
	case models.StatusUnavailable:
		return "-"
	case models.StatusPendingAbsence:
		return "?"
	case models.StatusApprovedAbsence:
		return "A"
	default:
		return "."
	}
}

func statusName(s models.DayStatus) string {
	switch s {
	case models.StatusAvailable:
		return "доступен"
	case models.StatusUnavailable:
		return "недоступен"
	case models.StatusPendingAbsence:
		return "заявка на отсутствие"
	case models.StatusApprovedAbsence:
		return "отсутствие"
	default:
		return "нет отметки"
	}
}

func requestStatusName(s models.RequestStatus) string {
	switch s {
	case models.RequestPending:
		return "ожидает решения"
	case models.RequestApproved:
		return "одобрена"
	case models.RequestRejected:
		return "отклонена"
	default:
		return string(s)
	}
}

func shortDate(d calendar.Date) string {
	return d.Time().Format("02.01.2006")
}

func periodTitle(g panel.Grid) string {
	anchor := g.Anchor()
	switch g.Period() {
	case calendar.PeriodMonth:
		return fmt.Sprintf("%s %d", monthNames[anchor.Month()-1], anchor.Year())
	case calendar.PeriodWeek:
		from, to := g.Bounds()
		return fmt.Sprintf("Неделя %s - %s", from.Time().Format("02.01"), shortDate(to))
	default:
		return fmt.Sprintf("%s, %s", weekdayNames[anchor.Weekday()], shortDate(anchor))
	}
}

// renderCalendar рисует календарь тренера в <pre>. Выбранные даты помечены *.
func renderCalendar(g panel.Grid, cells []models.DayCell, selected func(calendar.Date) bool, floor calendar.Date) string {
	var b strings.Builder
	b.WriteString("<b>📅 " + periodTitle(g) + "</b>\n<pre>")

	if g.Period() == calendar.PeriodDay {
		for _, c := range cells {
			line := fmt.Sprintf("%s: %s", shortDate(c.Date), statusName(c.Status))
			if selected(c.Date) {
				line += " *"
			}
			b.WriteString(line + "\n")
		}
	} else {
		header := make([]string, 0, 7)
		for i := 1; i <= 7; i++ {
			header = append(header, pad(weekdayNames[i%7], cellWidth))
		}
		b.WriteString(strings.TrimRight(strings.Join(header, ""), " ") + "\n")

		for start := 0; start < len(cells); start += 7 {
			end := min(start+7, len(cells))
			var row strings.Builder
			for _, c := range cells[start:end] {
				if g.Period() == calendar.PeriodMonth && !g.InMonth(c.Date) {
					row.WriteString(strings.Repeat(" ", cellWidth))
					continue
				}
				mark := " "
				if selected(c.Date) {
					mark = "*"
				}
				row.WriteString(fmt.Sprintf("%2d%s%s", c.Date.Day(), statusMark(c.Status), mark))
			}
			b.WriteString(strings.TrimRight(row.String(), " ") + "\n")
		}
	}

	b.WriteString("</pre>\n")
	b.WriteString(legend + "  * выбрано\n")
	b.WriteString("Изменять можно с " + shortDate(floor))
	return b.String()
}

// renderAdminGrid - строка на тренера, символ на дату, недели через пробел
func renderAdminGrid(g panel.Grid, rows []panel.Row) string {
	from, to := g.Bounds()

	var b strings.Builder
	b.WriteString("<b>👥 " + periodTitle(g) + "</b>\n")
	b.WriteString(fmt.Sprintf("%s - %s\n<pre>", shortDate(from), shortDate(to)))

	if len(rows) == 0 {
		b.WriteString("Тренеров пока нет\n")
	}
	for _, row := range rows {
		var line strings.Builder
		line.WriteString(pad(truncate(row.Name, nameWidth-1), nameWidth))
		for i, c := range row.Cells {
			if i > 0 && i%7 == 0 {
				line.WriteString(" ")
			}
			line.WriteString(statusMark(c.Status))
		}
		b.WriteString(html.EscapeString(line.String()) + "\n")
	}

	b.WriteString("</pre>\n" + legend)
	return b.String()
}

func renderRequest(r models.AbsenceRequestView) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📝 Заявка #%d\n", r.ID))
	b.WriteString(fmt.Sprintf("👤 %s (id %s)\n", r.TrainerName, r.TrainerID))
	b.WriteString(fmt.Sprintf("📅 %s - %s\n", shortDate(r.DateFrom), shortDate(r.DateTo)))
	b.WriteString("Статус: " + requestStatusName(r.Status))
	if r.Reason != "" {
		b.WriteString("\nПричина: " + r.Reason)
	}
	if r.RejectionReason != "" {
		b.WriteString("\nПричина отказа: " + r.RejectionReason)
	}
	return b.String()
}

func renderBulkResult(result models.BulkResult, op models.BulkOp) string {
	text := fmt.Sprintf("✅ Отмечено доступными: %d дн.", len(result.Applied))
	if op == models.BulkClear {
		text = fmt.Sprintf("🧹 Отметки сняты: %d дн.", len(result.Applied))
	}
	if len(result.Skipped) > 0 {
		skipped := make([]string, 0, len(result.Skipped))
		for _, d := range result.Skipped {
			skipped = append(skipped, d.Time().Format("02.01"))
		}
		text += "\n⏭ Пропущены дни с отсутствием: " + strings.Join(skipped, ", ")
	}
	return text
}

// pad дополняет пробелами до width символов (не байт)
func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	return string([]rune(s)[:width])
}

