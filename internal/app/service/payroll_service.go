package service

import (
	"errors"
	"math"

	"attendance-bot/internal/domain"
)

// Ночные минуты оплачиваются в полтора раза дороже базовой ставки.
const nightRateFactor = 1.5

// PayrollEntry — сводка отработанного времени и расчётная зарплата
// одного сотрудника за период.
type PayrollEntry struct {
	EmployeeID     int64
	Name           string
	RegularMinutes int
	NightMinutes   int
	TotalMinutes   int
	HourlyRate     float64
	EstimatedPay   int64
}

// AggregatePayroll — чистая свёртка по уже рассчитанным минутным полям
// закрытых смен. Фильтрация по периоду и филиалу — забота вызывающего.
func AggregatePayroll(shifts []domain.Shift, rateByEmployee map[int64]float64) map[int64]PayrollEntry {
	out := make(map[int64]PayrollEntry)
	for _, sh := range shifts {
		e := out[sh.EmployeeID]
		e.EmployeeID = sh.EmployeeID
		if e.Name == "" {
			e.Name = sh.EmployeeName
		}
		e.RegularMinutes += sh.RegularMinutes
		e.NightMinutes += sh.NightMinutes
		e.TotalMinutes += sh.TotalMinutes
		out[sh.EmployeeID] = e
	}
	for id, e := range out {
		rate := rateByEmployee[id]
		e.HourlyRate = rate
		e.EstimatedPay = int64(math.Round(
			float64(e.RegularMinutes)/60*rate + float64(e.NightMinutes)/60*rate*nightRateFactor))
		out[id] = e
	}
	return out
}

type PayrollServiceImpl struct {
	Shifts    domain.ShiftRepo
	Employees domain.EmployeeRepo
}

func NewPayrollService(shifts domain.ShiftRepo, employees domain.EmployeeRepo) *PayrollServiceImpl {
	return &PayrollServiceImpl{Shifts: shifts, Employees: employees}
}

// Report выбирает смены по фильтру, подтягивает ставки сотрудников и
// сворачивает их в зарплатную сводку. Незаведённый сотрудник считается
// по нулевой ставке — минуты в отчёте всё равно видны; ошибки самого
// хранилища пробрасываются наверх.
func (s *PayrollServiceImpl) Report(f domain.ShiftFilter) (map[int64]PayrollEntry, error) {
	shifts, err := s.Shifts.QueryShifts(f)
	if err != nil {
		return nil, err
	}
	rates := make(map[int64]float64)
	for _, sh := range shifts {
		if _, ok := rates[sh.EmployeeID]; ok {
			continue
		}
		emp, err := s.Employees.GetEmployeeByID(sh.EmployeeID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		rates[sh.EmployeeID] = emp.HourlyRate
	}
	return AggregatePayroll(shifts, rates), nil
}
