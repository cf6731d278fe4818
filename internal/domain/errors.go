package domain

import "errors"

// Ошибки бизнес-правил. Проверяются через errors.Is на уровне delivery.
var (
	ErrShiftAlreadyOpen = errors.New("смена уже открыта")
	ErrNotClockedIn     = errors.New("нет открытой смены")
	ErrAlreadyOnBreak   = errors.New("перерыв уже начат")
	ErrNotOnBreak       = errors.New("перерыв не начат")
	ErrNotFound         = errors.New("запись не найдена")
	ErrValidation       = errors.New("некорректные данные смены")
)
