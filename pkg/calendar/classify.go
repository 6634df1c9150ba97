package calendar

import "fmt"

// DayClass - классификация дней месяца для массовых операций
type DayClass string

const (
	ClassWeekday DayClass = "weekday" // пн-пт
	ClassWeekend DayClass = "weekend" // сб, вс
	ClassAll     DayClass = "all"
)

func ParseDayClass(s string) (DayClass, error) {
	switch c := DayClass(s); c {
	case ClassWeekday, ClassWeekend, ClassAll:
		return c, nil
	}
	return "", fmt.Errorf("unknown day class %q", s)
}

func (c DayClass) Matches(d Date) bool {
	switch c {
	case ClassWeekday:
		return !d.IsWeekend()
	case ClassWeekend:
		return d.IsWeekend()
	case ClassAll:
		return true
	}
	return false
}

// EditableDaysInMonth возвращает дни месяца month, которые >= floor и подходят под класс
func EditableDaysInMonth(month Date, class DayClass, floor Date) []Date {
	days := []Date{}
	for _, d := range Range(month.FirstOfMonth(), month.LastOfMonth()) {
		if d.Before(floor) || !class.Matches(d) {
			continue
		}
		days = append(days, d)
	}
	return days
}
