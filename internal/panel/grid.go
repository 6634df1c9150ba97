package panel

import "trainer-availability/pkg/calendar"

// Grid - период и якорь отображаемого окна. Якорь всегда нормализован под период.
type Grid struct {
	period calendar.Period
	anchor calendar.Date
}

func NewGrid(p calendar.Period, today calendar.Date) Grid {
	return Grid{period: p, anchor: calendar.Current(p, today)}
}

func (g Grid) Period() calendar.Period { return g.period }
func (g Grid) Anchor() calendar.Date   { return g.anchor }

// SetPeriod меняет период, текущий якорь нормализуется под новый период
func (g Grid) SetPeriod(p calendar.Period) Grid {
	return Grid{period: p, anchor: calendar.Normalize(p, g.anchor)}
}

func (g Grid) Prev() Grid {
	return Grid{period: g.period, anchor: calendar.Shift(g.period, g.anchor, -1)}
}

func (g Grid) Next() Grid {
	return Grid{period: g.period, anchor: calendar.Shift(g.period, g.anchor, 1)}
}

func (g Grid) GoToCurrent(today calendar.Date) Grid {
	return NewGrid(g.period, today)
}

func (g Grid) Bounds() (calendar.Date, calendar.Date) {
	return calendar.Bounds(g.period, g.anchor)
}

func (g Grid) Dates() []calendar.Date {
	return calendar.Window(g.period, g.anchor)
}

// InMonth - относится ли дата к месяцу якоря (для приглушения соседних дней в сетке месяца)
func (g Grid) InMonth(d calendar.Date) bool {
	return d.SameMonth(g.anchor)
}

// Month - месяц для массовых операций. Для недели и дня берется месяц
// последней даты окна: неделя 29.04-05.05 относится к маю.
func (g Grid) Month() calendar.Date {
	_, last := g.Bounds()
	if g.period == calendar.PeriodMonth {
		return g.anchor.FirstOfMonth()
	}
	return last.FirstOfMonth()
}
