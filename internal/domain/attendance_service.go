package domain

import "time"

// ShiftUpdate — частичное изменение смены администратором.
// nil-поле означает "не менять".
type ShiftUpdate struct {
	CheckIn  *time.Time
	CheckOut *time.Time
	Breaks   *[]BreakInterval
}

type AttendanceService interface {
	ClockIn(branchID, employeeID int64, employeeName string) (Shift, error)
	StartBreak(branchID, employeeID int64) (Shift, error)
	EndBreak(branchID, employeeID int64) (Shift, error)
	ClockOut(branchID, employeeID int64) (Shift, error)
	AdminUpdateShift(shiftID int64, upd ShiftUpdate) (Shift, error)
}
