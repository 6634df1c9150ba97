package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type Role string

const (
	RoleTrainer Role = "trainer"
	RoleAdmin   Role = "admin"
)

type Trainer struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
	ChatID    int64  `gorm:"uniqueIndex;not null" json:"chat_id"`
	Username  string `json:"username"`
	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `gorm:"type:varchar(20);default:'trainer'" json:"role"`
}

func (Trainer) TableName() string {
	return "trainers"
}

// IsAdmin проверяет, является ли пользователь администратором
func (t *Trainer) IsAdmin() bool {
	return t.Role == RoleAdmin
}

// Key возвращает нормализованный идентификатор тренера
func (t *Trainer) Key() TrainerID {
	return TrainerIDOf(t.ID)
}

// DisplayName - имя для календаря и списков заявок
func (t *Trainer) DisplayName() string {
	name := strings.TrimSpace(t.FirstName + " " + t.LastName)
	if name == "" {
		return "@" + t.Username
	}
	return name
}

// TrainerID - непрозрачный идентификатор тренера. Числовая и строковая
// форма одного id должны совпадать, поэтому сравниваем только строки.
type TrainerID string

// TrainerIDOf приводит числовой или строковый id к TrainerID
func TrainerIDOf(v any) TrainerID {
	switch id := v.(type) {
	case TrainerID:
		return TrainerID(strings.TrimSpace(string(id)))
	case string:
		return TrainerID(strings.TrimSpace(id))
	case uint:
		return TrainerID(strconv.FormatUint(uint64(id), 10))
	case uint64:
		return TrainerID(strconv.FormatUint(id, 10))
	case int:
		return TrainerID(strconv.Itoa(id))
	case int64:
		return TrainerID(strconv.FormatInt(id, 10))
	default:
		return TrainerID(strings.TrimSpace(fmt.Sprint(v)))
	}
}

// Uint возвращает числовой id для хранилища
func (id TrainerID) Uint() (uint, error) {
	n, err := strconv.ParseUint(string(id), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid trainer id %q", string(id))
	}
	return uint(n), nil
}

func (id TrainerID) String() string {
	return string(id)
}

// UnmarshalJSON принимает id и строкой, и числом
func (id *TrainerID) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*id = TrainerIDOf(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("trainer id must be a string or a number: %w", err)
	}
	*id = TrainerIDOf(s)
	return nil
}
