package models

import "errors"

var (
	ErrBeforeEditableFloor = errors.New("дату можно изменить не раньше чем за 24 часа")
	ErrInvalidDateRange    = errors.New("дата окончания не может быть раньше даты начала")
	ErrEmptySelection      = errors.New("не выбрано ни одной даты")
	ErrRequestNotFound     = errors.New("заявка не найдена")
	ErrRequestNotPending   = errors.New("заявка уже рассмотрена")
	ErrActionInFlight      = errors.New("действие уже выполняется")
	ErrTrainerNotFound     = errors.New("тренер не найден")
	ErrForbidden           = errors.New("доступ запрещен: только для администраторов")
	ErrUnknownStatus       = errors.New("неизвестный статус заявки")
	ErrWindowTooLarge      = errors.New("слишком длинный период, не больше 366 дней")
	ErrInvalidSlot         = errors.New("некорректный слот доступности")
)
