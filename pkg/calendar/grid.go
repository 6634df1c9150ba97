package calendar

import "fmt"

type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// Normalize приводит якорь к началу периода: день как есть, неделя - понедельник, месяц - 1-е число
func Normalize(p Period, anchor Date) Date {
	switch p {
	case PeriodWeek:
		return anchor.Monday()
	case PeriodMonth:
		return anchor.FirstOfMonth()
	default:
		return anchor
	}
}

// Window возвращает даты для отрисовки. Для месяца - полная сетка
// с понедельника недели 1-го числа по воскресенье недели последнего дня.
func Window(p Period, anchor Date) []Date {
	from, to := Bounds(p, anchor)
	return Range(from, to)
}

// Bounds - первая и последняя дата окна (включительно)
func Bounds(p Period, anchor Date) (Date, Date) {
	switch p {
	case PeriodWeek:
		start := anchor.Monday()
		return start, start.AddDays(6)
	case PeriodMonth:
		return anchor.FirstOfMonth().Monday(), anchor.LastOfMonth().Sunday()
	default:
		return anchor, anchor
	}
}

// Shift сдвигает якорь на steps периодов (отрицательные - назад)
func Shift(p Period, anchor Date, steps int) Date {
	anchor = Normalize(p, anchor)
	switch p {
	case PeriodWeek:
		return anchor.AddDays(7 * steps)
	case PeriodMonth:
		return anchor.AddMonths(steps)
	default:
		return anchor.AddDays(steps)
	}
}

// Current - якорь "сегодня" для периода
func Current(p Period, today Date) Date {
	return Normalize(p, today)
}
