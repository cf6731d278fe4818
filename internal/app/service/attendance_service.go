package service

import (
	"fmt"
	"sync"
	"time"

	"attendance-bot/internal/domain"
)

// Минимальный перерыв по ТК: смена от 8 часов работы должна содержать
// не меньше 60 минут перерыва.
const (
	minBreakWorkThreshold = 480
	requiredBreakMinutes  = 60
)

type AttendanceServiceImpl struct {
	Repo domain.ShiftRepo
	Loc  *time.Location
	Now  func() time.Time // подменяется в тестах

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewAttendanceService(repo domain.ShiftRepo, loc *time.Location) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		Repo:  repo,
		Loc:   loc,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *AttendanceServiceImpl) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// lockFor сериализует операции по паре (филиал, сотрудник): две
// параллельные отметки одного сотрудника не должны создать две смены.
func (s *AttendanceServiceImpl) lockFor(branchID, employeeID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%d:%d", branchID, employeeID)
	m, ok := s.locks[key]
	if !ok {
		m = &sync.Mutex{}
		s.locks[key] = m
	}
	return m
}

func (s *AttendanceServiceImpl) ClockIn(branchID, employeeID int64, employeeName string) (domain.Shift, error) {
	l := s.lockFor(branchID, employeeID)
	l.Lock()
	defer l.Unlock()

	_, open, err := s.Repo.FindOpenShift(branchID, employeeID)
	if err != nil {
		return domain.Shift{}, err
	}
	if open {
		return domain.Shift{}, domain.ErrShiftAlreadyOpen
	}
	now := s.now()
	sh := domain.Shift{
		BranchID:     branchID,
		EmployeeID:   employeeID,
		EmployeeName: employeeName,
		ShiftDate:    now.In(s.Loc).Format("2006-01-02"),
		CheckIn:      now,
	}
	id, err := s.Repo.CreateShift(sh)
	if err != nil {
		return domain.Shift{}, err
	}
	sh.ID = id
	return sh, nil
}

func (s *AttendanceServiceImpl) StartBreak(branchID, employeeID int64) (domain.Shift, error) {
	l := s.lockFor(branchID, employeeID)
	l.Lock()
	defer l.Unlock()

	sh, open, err := s.Repo.FindOpenShift(branchID, employeeID)
	if err != nil {
		return domain.Shift{}, err
	}
	if !open {
		return domain.Shift{}, domain.ErrNotClockedIn
	}
	if sh.OpenBreak() != nil {
		return domain.Shift{}, domain.ErrAlreadyOnBreak
	}
	sh.Breaks = append(sh.Breaks, domain.BreakInterval{Start: s.now()})
	if err := s.Repo.UpdateShift(sh); err != nil {
		return domain.Shift{}, err
	}
	return sh, nil
}

func (s *AttendanceServiceImpl) EndBreak(branchID, employeeID int64) (domain.Shift, error) {
	l := s.lockFor(branchID, employeeID)
	l.Lock()
	defer l.Unlock()

	sh, open, err := s.Repo.FindOpenShift(branchID, employeeID)
	if err != nil {
		return domain.Shift{}, err
	}
	if !open {
		return domain.Shift{}, domain.ErrNotClockedIn
	}
	b := sh.OpenBreak()
	if b == nil {
		return domain.Shift{}, domain.ErrNotOnBreak
	}
	end := s.now()
	b.End = &end
	if err := s.Repo.UpdateShift(sh); err != nil {
		return domain.Shift{}, err
	}
	return sh, nil
}

func (s *AttendanceServiceImpl) ClockOut(branchID, employeeID int64) (domain.Shift, error) {
	l := s.lockFor(branchID, employeeID)
	l.Lock()
	defer l.Unlock()

	sh, open, err := s.Repo.FindOpenShift(branchID, employeeID)
	if err != nil {
		return domain.Shift{}, err
	}
	if !open {
		return domain.Shift{}, domain.ErrNotClockedIn
	}
	checkOut := s.now()
	if b := sh.OpenBreak(); b != nil {
		end := checkOut
		b.End = &end
	}
	checkOut = applyMinimumBreak(&sh, checkOut)
	sh.CheckOut = &checkOut
	s.recompute(&sh)
	if err := s.Repo.UpdateShift(sh); err != nil {
		return domain.Shift{}, err
	}
	return sh, nil
}

// AdminUpdateShift — правка смены администратором в обход автомата
// состояний. Правило минимального перерыва применяется заново, расчётные
// поля пересчитываются, ставится флаг ModifiedByAdmin.
func (s *AttendanceServiceImpl) AdminUpdateShift(shiftID int64, upd domain.ShiftUpdate) (domain.Shift, error) {
	sh, err := s.Repo.GetShiftByID(shiftID)
	if err != nil {
		return domain.Shift{}, err
	}

	l := s.lockFor(sh.BranchID, sh.EmployeeID)
	l.Lock()
	defer l.Unlock()

	// Первая выборка нужна только для ключа блокировки. Перечитываем под
	// блокировкой, иначе правка поверх устаревшего снимка затрёт
	// параллельно закрытую смену.
	sh, err = s.Repo.GetShiftByID(shiftID)
	if err != nil {
		return domain.Shift{}, err
	}

	if upd.CheckIn != nil {
		sh.CheckIn = *upd.CheckIn
	}
	if upd.Breaks != nil {
		sh.Breaks = *upd.Breaks
	}
	if upd.CheckOut != nil {
		co := *upd.CheckOut
		sh.CheckOut = &co
	}
	if sh.CheckIn.IsZero() {
		return domain.Shift{}, domain.ErrValidation
	}
	if sh.CheckOut != nil {
		if sh.CheckOut.IsZero() || !sh.CheckOut.After(sh.CheckIn) {
			return domain.Shift{}, domain.ErrValidation
		}
		co := *sh.CheckOut
		if b := sh.OpenBreak(); b != nil {
			end := co
			b.End = &end
		}
		co = applyMinimumBreak(&sh, co)
		sh.CheckOut = &co
	}
	s.recompute(&sh)
	sh.ModifiedByAdmin = true
	if err := s.Repo.UpdateShift(sh); err != nil {
		return domain.Shift{}, err
	}
	return sh, nil
}

// applyMinimumBreak сдвигает время ухода вперёд и добавляет синтетический
// перерыв на сдвинутый отрезок, если смена от 8 часов работы набрала меньше
// 60 минут перерыва. Повторный вызов ничего не меняет: после добавки
// перерывов уже >= 60 минут.
func applyMinimumBreak(sh *domain.Shift, checkOut time.Time) time.Time {
	breakMin := sh.BreakMinutes()
	elapsed := int(checkOut.Sub(sh.CheckIn) / time.Minute)
	workMin := elapsed - breakMin
	if workMin >= minBreakWorkThreshold && breakMin < requiredBreakMinutes {
		pushed := checkOut.Add(time.Duration(requiredBreakMinutes-breakMin) * time.Minute)
		end := pushed
		sh.Breaks = append(sh.Breaks, domain.BreakInterval{Start: checkOut, End: &end})
		return pushed
	}
	return checkOut
}

func (s *AttendanceServiceImpl) recompute(sh *domain.Shift) {
	wm := ComputeWorkMinutes(sh.CheckIn, sh.CheckOut, sh.Breaks, s.Loc)
	sh.RegularMinutes = wm.Regular
	sh.NightMinutes = wm.Night
	sh.TotalMinutes = wm.Total
}
