package domain

import "time"

// ShiftFilter описывает выборку смен по дате начала (ShiftDate).
// Нулевые EmployeeID/BranchID — без фильтра по сотруднику/филиалу.
type ShiftFilter struct {
	BranchID   int64
	EmployeeID int64
	From       time.Time
	To         time.Time
}

type ShiftRepo interface {
	CreateShift(s Shift) (int64, error)
	GetShiftByID(id int64) (Shift, error)
	UpdateShift(s Shift) error
	FindOpenShift(branchID, employeeID int64) (Shift, bool, error)
	QueryShifts(f ShiftFilter) ([]Shift, error)
}
