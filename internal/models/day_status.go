package models

import "fmt"

// DayStatus - итоговый статус тренера на дату. Нигде не хранится,
// всегда вычисляется из слотов и заявок на отсутствие.
type DayStatus uint8

const (
	StatusNone DayStatus = iota
	StatusUnavailable
	StatusAvailable
	StatusPendingAbsence
	StatusApprovedAbsence
)

var dayStatusNames = [...]string{
	StatusNone:            "none",
	StatusUnavailable:     "unavailable",
	StatusAvailable:       "available",
	StatusPendingAbsence:  "pending_absence",
	StatusApprovedAbsence: "approved_absence",
}

func (s DayStatus) String() string {
	if int(s) < len(dayStatusNames) {
		return dayStatusNames[s]
	}
	return fmt.Sprintf("DayStatus(%d)", uint8(s))
}

func (s DayStatus) MarshalText() ([]byte, error) {
	if int(s) >= len(dayStatusNames) {
		return nil, fmt.Errorf("invalid day status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *DayStatus) UnmarshalText(b []byte) error {
	for i, name := range dayStatusNames {
		if name == string(b) {
			*s = DayStatus(i)
			return nil
		}
	}
	return fmt.Errorf("unknown day status %q", string(b))
}

// IsAbsence - день закрыт заявкой (одобренной или ожидающей)
func (s DayStatus) IsAbsence() bool {
	return s == StatusApprovedAbsence || s == StatusPendingAbsence
}
