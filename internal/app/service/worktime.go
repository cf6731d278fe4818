package service

import (
	"time"

	"attendance-bot/internal/domain"
)

// WorkMinutes — результат расчёта отработанного времени за смену.
type WorkMinutes struct {
	Regular int
	Night   int
	Total   int
}

// Ночное окно 22:00–05:00 по времени магазина.
func isNightHour(h int) bool {
	return h >= 22 || h < 5
}

// ComputeWorkMinutes обходит интервал [checkIn, checkOut) поминутно.
// Минута внутри закрытого перерыва не считается вообще; остальные минуты
// делятся на ночные и обычные по часу в зоне loc. Учитываются только целые
// минуты. Открытая смена (checkOut == nil) даёт нули — это не ошибка,
// сотрудник ещё работает.
func ComputeWorkMinutes(checkIn time.Time, checkOut *time.Time, breaks []domain.BreakInterval, loc *time.Location) WorkMinutes {
	var res WorkMinutes
	if checkOut == nil || checkIn.IsZero() || checkOut.IsZero() || !checkOut.After(checkIn) {
		return res
	}
	n := int(checkOut.Sub(checkIn) / time.Minute)
	for i := 0; i < n; i++ {
		m := checkIn.Add(time.Duration(i) * time.Minute)
		if inBreak(m, breaks) {
			continue
		}
		if isNightHour(m.In(loc).Hour()) {
			res.Night++
		} else {
			res.Regular++
		}
	}
	res.Total = res.Regular + res.Night
	return res
}

func inBreak(m time.Time, breaks []domain.BreakInterval) bool {
	for _, b := range breaks {
		if b.End == nil {
			continue
		}
		if !m.Before(b.Start) && m.Before(*b.End) {
			return true
		}
	}
	return false
}
