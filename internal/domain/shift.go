package domain

import "time"

// BreakInterval — один перерыв внутри смены. End == nil значит перерыв ещё открыт.
type BreakInterval struct {
	Start time.Time
	End   *time.Time
}

func (b BreakInterval) Closed() bool {
	return b.End != nil
}

// Minutes возвращает длительность закрытого перерыва в целых минутах.
func (b BreakInterval) Minutes() int {
	if b.End == nil || !b.End.After(b.Start) {
		return 0
	}
	return int(b.End.Sub(b.Start) / time.Minute)
}

// Shift — одна рабочая смена от отметки прихода до отметки ухода.
// CheckOut == nil значит смена открыта. Breaks хранятся в порядке создания.
type Shift struct {
	ID              int64
	BranchID        int64
	EmployeeID      int64
	EmployeeName    string
	ShiftDate       string // дата начала смены, YYYY-MM-DD
	CheckIn         time.Time
	CheckOut        *time.Time
	Breaks          []BreakInterval
	ModifiedByAdmin bool
	RegularMinutes  int
	NightMinutes    int
	TotalMinutes    int
}

func (s *Shift) IsOpen() bool {
	return s.CheckOut == nil
}

// OpenBreak возвращает указатель на открытый перерыв или nil.
// Инвариант: открытый перерыв в смене не больше одного.
func (s *Shift) OpenBreak() *BreakInterval {
	for i := range s.Breaks {
		if s.Breaks[i].End == nil {
			return &s.Breaks[i]
		}
	}
	return nil
}

// BreakMinutes — сумма закрытых перерывов в минутах.
func (s *Shift) BreakMinutes() int {
	var total int
	for _, b := range s.Breaks {
		total += b.Minutes()
	}
	return total
}
