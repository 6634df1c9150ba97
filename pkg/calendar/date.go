// Package calendar работает с "наивными" календарными датами: год, месяц, день.
// Никакого часового пояса и времени суток, все вычисления идут в UTC, поэтому
// переход на летнее время не сдвигает даты.
package calendar

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Layout - формат DateString (ISO YYYY-MM-DD)
const Layout = "2006-01-02"

// Date - календарная дата без времени и часового пояса
type Date struct {
	year  int
	month time.Month
	day   int
}

// New создает дату, переполнение дней/месяцев нормализуется (32 января -> 1 февраля)
func New(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime берет год, месяц и день из t как есть, без конвертации зоны
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

// Today возвращает текущую дату по часам now
func Today(now time.Time) Date {
	return FromTime(now)
}

// Parse разбирает строку YYYY-MM-DD
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return FromTime(t), nil
}

// MustParse как Parse, но паникует. Только для констант и тестов.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) Year() int { return d.year }
func (d Date) Month() time.Month { return d.month }
func (d Date) Day() int { return d.day }
func (d Date) IsZero() bool { return d.year == 0 && d.month == 0 && d.day == 0 }
func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }

// Time возвращает полночь даты в UTC
func (d Date) Time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(Layout)
}

func (d Date) AddDays(n int) Date {
	return New(d.year, d.month, d.day+n)
}

// AddMonths сдвигает на n месяцев, день прижимается к концу месяца (31.01 + 1 -> 29.02)
func (d Date) AddMonths(n int) Date {
	first := New(d.year, d.month+time.Month(n), 1)
	last := first.LastOfMonth()
	if d.day > last.day {
		return last
	}
	return New(first.year, first.month, d.day)
}

// Monday возвращает понедельник недели (ISO), в которой лежит дата
func (d Date) Monday() Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// Sunday возвращает воскресенье той же ISO-недели
func (d Date) Sunday() Date {
	return d.Monday().AddDays(6)
}

func (d Date) FirstOfMonth() Date {
	return Date{year: d.year, month: d.month, day: 1}
}

func (d Date) LastOfMonth() Date {
	return New(d.year, d.month+1, 0)
}

func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Date) SameMonth(o Date) bool {
	return d.year == o.year && d.month == o.month
}

// Compare возвращает -1, 0 или +1
func (d Date) Compare(o Date) int {
	switch {
	case d.year != o.year:
		return cmpInt(d.year, o.year)
	case d.month != o.month:
		return cmpInt(int(d.month), int(o.month))
	default:
		return cmpInt(d.day, o.day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool { return d.Compare(o) > 0 }

// Between - включительно с обеих сторон
func (d Date) Between(from, to Date) bool {
	return !d.Before(from) && !d.After(to)
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// Range возвращает все даты от from до to включительно. Пустой срез, если to < from.
func Range(from, to Date) []Date {
	if to.Before(from) {
		return nil
	}
	days := []Date{}
	for d := from; !d.After(to); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// DaysBetween - число дней от from до to (отрицательное, если to раньше)
func DaysBetween(from, to Date) int {
	return int((to.Time().Unix() - from.Time().Unix()) / 86400)
}

// MinMax возвращает самую раннюю и самую позднюю дату
func MinMax(dates []Date) (Date, Date, bool) {
	if len(dates) == 0 {
		return Date{}, Date{}, false
	}
	lo, hi := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(lo) {
			lo = d
		}
		if d.After(hi) {
			hi = d
		}
	}
	return lo, hi, true
}

// EditableFloor - первая дата, которую можно редактировать: now + lead с точностью до дня
func EditableFloor(now time.Time, lead time.Duration) Date {
	return FromTime(now.Add(lead))
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value хранит дату в БД строкой YYYY-MM-DD, чтобы сравнения в SQL были лексикографическими
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case string:
		return d.UnmarshalText([]byte(v))
	case []byte:
		return d.UnmarshalText(v)
	case time.Time:
		*d = FromTime(v)
		return nil
	default:
		return fmt.Errorf("calendar: cannot scan %T into Date", src)
	}
}

// EditWindow - правило редактирования: менять можно даты не раньше now + Lead
type EditWindow struct {
	Now  func() time.Time
	Lead time.Duration
}

// DefaultEditLead - стандартный запас до редактируемой даты
const DefaultEditLead = 24 * time.Hour

func (w EditWindow) Floor() Date {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	return EditableFloor(now(), w.Lead)
}

func (w EditWindow) Today() Date {
	if w.Now != nil {
		return Today(w.Now())
	}
	return Today(time.Now())
}

func (w EditWindow) Editable(d Date) bool {
	return !d.Before(w.Floor())
}
