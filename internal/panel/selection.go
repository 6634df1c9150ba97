package panel

import (
	"slices"
	"trainer-availability/pkg/calendar"
)

// Selection - множество выбранных дат. Переживает навигацию по сетке.
type Selection struct {
	dates map[calendar.Date]struct{}
}

func NewSelection() *Selection {
	return &Selection{dates: make(map[calendar.Date]struct{})}
}

// Toggle добавляет или убирает дату. Даты раньше floor не выбираются:
// возвращает false и ничего не меняет.
func (s *Selection) Toggle(d, floor calendar.Date) bool {
	if d.Before(floor) {
		return false
	}
	if _, ok := s.dates[d]; ok {
		delete(s.dates, d)
	} else {
		s.dates[d] = struct{}{}
	}
	return true
}

func (s *Selection) Contains(d calendar.Date) bool {
	_, ok := s.dates[d]
	return ok
}


func (s *Selection) Clear() {
	clear(s.dates)
}

// Dates - выбранные даты по возрастанию
func (s *Selection) Dates() []calendar.Date {
	out := make([]calendar.Date, 0, len(s.dates))
	for d := range s.dates {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b calendar.Date) int { return a.Compare(b) })
	return out
}

// Span - от самой ранней до самой поздней выбранной даты.
// Промежутки внутри выбора входят в диапазон.
func (s *Selection) Span() (calendar.Date, calendar.Date, bool) {
	return calendar.MinMax(s.Dates())
}
