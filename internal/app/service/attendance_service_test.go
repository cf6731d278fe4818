package service

import (
	"testing"
	"time"

	"attendance-bot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeShiftRepo имитирует хранилище: отдаёт и принимает копии, как
// настоящая база, чтобы сервис не делил память с "хранимым" состоянием.
type fakeShiftRepo struct {
	nextID int64
	shifts map[int64]domain.Shift
}

func newFakeShiftRepo() *fakeShiftRepo {
	return &fakeShiftRepo{shifts: make(map[int64]domain.Shift)}
}

func copyShift(s domain.Shift) domain.Shift {
	cp := s
	if s.CheckOut != nil {
		co := *s.CheckOut
		cp.CheckOut = &co
	}
	cp.Breaks = make([]domain.BreakInterval, len(s.Breaks))
	for i, b := range s.Breaks {
		cp.Breaks[i] = b
		if b.End != nil {
			e := *b.End
			cp.Breaks[i].End = &e
		}
	}
	return cp
}

func (r *fakeShiftRepo) CreateShift(s domain.Shift) (int64, error) {
	r.nextID++
	s.ID = r.nextID
	r.shifts[s.ID] = copyShift(s)
	return s.ID, nil
}

func (r *fakeShiftRepo) GetShiftByID(id int64) (domain.Shift, error) {
	s, ok := r.shifts[id]
	if !ok {
		return domain.Shift{}, domain.ErrNotFound
	}
	return copyShift(s), nil
}

func (r *fakeShiftRepo) UpdateShift(s domain.Shift) error {
	if _, ok := r.shifts[s.ID]; !ok {
		return domain.ErrNotFound
	}
	r.shifts[s.ID] = copyShift(s)
	return nil
}

func (r *fakeShiftRepo) FindOpenShift(branchID, employeeID int64) (domain.Shift, bool, error) {
	for _, s := range r.shifts {
		if s.BranchID == branchID && s.EmployeeID == employeeID && s.CheckOut == nil {
			return copyShift(s), true, nil
		}
	}
	return domain.Shift{}, false, nil
}

func (r *fakeShiftRepo) QueryShifts(f domain.ShiftFilter) ([]domain.Shift, error) {
	var out []domain.Shift
	from := f.From.Format("2006-01-02")
	to := f.To.Format("2006-01-02")
	for id := int64(1); id <= r.nextID; id++ {
		s, ok := r.shifts[id]
		if !ok {
			continue
		}
		if f.BranchID != 0 && s.BranchID != f.BranchID {
			continue
		}
		if f.EmployeeID != 0 && s.EmployeeID != f.EmployeeID {
			continue
		}
		if s.ShiftDate < from || s.ShiftDate > to {
			continue
		}
		out = append(out, copyShift(s))
	}
	return out, nil
}

const (
	testBranch   = int64(1)
	testEmployee = int64(42)
)

func newTestService(repo domain.ShiftRepo) (*AttendanceServiceImpl, *time.Time) {
	svc := NewAttendanceService(repo, kst)
	now := at(2, 9, 0)
	nowPtr := &now
	svc.Now = func() time.Time { return *nowPtr }
	return svc, nowPtr
}

func TestClockIn_CreatesOpenShift(t *testing.T) {
	repo := newFakeShiftRepo()
	svc, _ := newTestService(repo)

	sh, err := svc.ClockIn(testBranch, testEmployee, "Ким Минджи")
	require.NoError(t, err)

	assert.True(t, sh.IsOpen())
	assert.Equal(t, "2026-03-02", sh.ShiftDate)
	assert.Empty(t, sh.Breaks)
	assert.Zero(t, sh.TotalMinutes)

	stored, err := repo.GetShiftByID(sh.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsOpen())
}

func TestClockIn_TwiceFails(t *testing.T) {
	svc, _ := newTestService(newFakeShiftRepo())

	_, err := svc.ClockIn(testBranch, testEmployee, "Ким")
	require.NoError(t, err)

	_, err = svc.ClockIn(testBranch, testEmployee, "Ким")
	assert.ErrorIs(t, err, domain.ErrShiftAlreadyOpen)
}

func TestClockIn_DifferentEmployeesIndependent(t *testing.T) {
	svc, _ := newTestService(newFakeShiftRepo())

	_, err := svc.ClockIn(testBranch, testEmployee, "Ким")
	require.NoError(t, err)
	_, err = svc.ClockIn(testBranch, testEmployee+1, "Пак")
	assert.NoError(t, err)
}

func TestStartBreak_RequiresOpenShift(t *testing.T) {
	svc, _ := newTestService(newFakeShiftRepo())

	_, err := svc.StartBreak(testBranch, testEmployee)
	assert.ErrorIs(t, err, domain.ErrNotClockedIn)
}

func TestStartBreak_TwiceFails(t *testing.T) {
	svc, now := newTestService(newFakeShiftRepo())

	_, err := svc.ClockIn(testBranch, testEmployee, "Ким")
	require.NoError(t, err)

	*now = at(2, 12, 0)
	_, err = svc.StartBreak(testBranch, testEmployee)
	require.NoError(t, err)

	*now = at(2, 12, 5)
	_, err = svc.StartBreak(testBranch, testEmployee)
	assert.ErrorIs(t, err, domain.ErrAlreadyOnBreak)
}

func TestEndBreak_WithoutBreakFails(t *testing.T) {
	svc, _ := newTestService(newFakeShiftRepo())

	_, err := svc.EndBreak(testBranch, testEmployee)
	assert.ErrorIs(t, err, domain.ErrNotClockedIn)

	_, err = svc.ClockIn(testBranch, testEmployee, "Ким")
	require.NoError(t, err)

	_, err = svc.EndBreak(testBranch, testEmployee)
	assert.ErrorIs(t, err, domain.ErrNotOnBreak)
}

func TestEndBreak_ClosesOpenBreak(t *testing.T) {
	svc, now := newTestService(newFakeShiftRepo())

	_, err := svc.ClockIn(testBranch, testEmployee, "Ким")
	require.NoError(t, err)

	*now = at(2, 12, 0)
	_, err = svc.StartBreak(testBranch, testEmployee)
	require.NoError(t, err)

	*now = at(2, 12, 30)
	sh, err := svc.EndBreak(testBranch, testEmployee)
	require.NoError(t, err)

	assert.Nil(t, sh.OpenBreak())
	assert.Equal(t, 30, sh.BreakMinutes())
}

func TestClockOut_WithoutShiftFails(t *testing.T) {
	svc, _ := newTestService(newFakeShiftRepo())

	_, err := svc.ClockOut(testBranch, testEmployee)
	assert.ErrorIs(t, err, domain.ErrNotClockedIn)
}

func TestClockOut_RetryFails(t *testing.T) {
	svc, now := newTestService(newFakeShiftRepo())

	_, err := svc.ClockIn(testBranch, testEmployee, "Ким")
	require.NoError(t, err)

	*now = at(2, 16, 0)
	_, err = svc.ClockOut(testBranch, testEmployee)
	require.NoError(t, err)

	// Повтор успешного clock-out — команда "не более одного раза".
	_, err = svc.ClockOut(testBranch, testEmployee)
	assert.ErrorIs(t, err, domain.ErrNotClockedIn)
}

func TestClockOut_ShortShiftNoTopUp(t *testing.T) {
	svc, now := newTestService(newFakeShiftRepo())

	_, err := svc.ClockIn(testBranch, testEmployee, "Ким")
	require.NoError(t, err)

	*now = at(2, 16, 0)
	sh, err := svc.ClockOut(testBranch, testEmployee)
	require.NoError(t, err)

	assert.Equal(t, 420, sh.TotalMinutes)
	assert.Empty(t, sh.Breaks)
	assert.True(t, sh.CheckOut.Equal(at(2, 16, 0)))
}

func TestClockOut_MinimumBreakTopUp(t *testing.T) {
	svc, now := newTestService(newFakeShiftRepo())

	_, err := svc.ClockIn(testBranch, testEmployee, "Ким")
	require.NoError(t, err)

	// 09:00 → 17:30 без перерывов: 510 минут работы, перерыв добирается
	// до 60 минут сдвигом ухода на час.
	*now = at(2, 17, 30)
	sh, err := svc.ClockOut(testBranch, testEmployee)
	require.NoError(t, err)

	require.NotNil(t, sh.CheckOut)
	assert.True(t, sh.CheckOut.Equal(at(2, 18, 30)), "уход сдвинут ровно на 60 минут")
	require.Len(t, sh.Breaks, 1)
	assert.True(t, sh.Breaks[0].Start.Equal(at(2, 17, 30)))
	require.NotNil(t, sh.Breaks[0].End)
	assert.True(t, sh.Breaks[0].End.Equal(at(2, 18, 30)))
	assert.Equal(t, 60, sh.BreakMinutes())
	assert.Equal(t, 510, sh.TotalMinutes, "сдвинутый отрезок не считается рабочим")
	assert.Equal(t, sh.RegularMinutes+sh.NightMinutes, sh.TotalMinutes)
}

func TestClockOut_PartialTopUp(t *testing.T) {
	svc, now := newTestService(newFakeShiftRepo())

	_, err := svc.ClockIn(testBranch, testEmployee, "Ким")
	require.NoError(t, err)

	*now = at(2, 12, 0)
	_, err = svc.StartBreak(testBranch, testEmployee)
	require.NoError(t, err)
	*now = at(2, 12, 40)
	_, err = svc.EndBreak(testBranch, testEmployee)
	require.NoError(t, err)

	// 09:00 → 18:10, перерыв 40 минут: работы 510, добор 20 минут.
	*now = at(2, 18, 10)
	sh, err := svc.ClockOut(testBranch, testEmployee)
	require.NoError(t, err)

	assert.True(t, sh.CheckOut.Equal(at(2, 18, 30)))
	assert.Equal(t, 60, sh.BreakMinutes())
	assert.Equal(t, 510, sh.TotalMinutes)
}

func TestClockOut_NoTopUpWhenBreakSufficient(t *testing.T) {
	svc, now := newTestService(newFakeShiftRepo())

	_, err := svc.ClockIn(testBranch, testEmployee, "Ким")
	require.NoError(t, err)

	*now = at(2, 12, 0)
	_, err = svc.StartBreak(testBranch, testEmployee)
	require.NoError(t, err)
	*now = at(2, 13, 0)
	_, err = svc.EndBreak(testBranch, testEmployee)
	require.NoError(t, err)

	*now = at(2, 18, 0)
	sh, err := svc.ClockOut(testBranch, testEmployee)
	require.NoError(t, err)

	assert.True(t, sh.CheckOut.Equal(at(2, 18, 0)))
	require.Len(t, sh.Breaks, 1)
	assert.Equal(t, 480, sh.TotalMinutes)
}

func TestClockOut_ClosesOpenBreakAtCheckout(t *testing.T) {
	svc, now := newTestService(newFakeShiftRepo())

	_, err := svc.ClockIn(testBranch, testEmployee, "Ким")
	require.NoError(t, err)

	*now = at(2, 16, 0)
	_, err = svc.StartBreak(testBranch, testEmployee)
	require.NoError(t, err)

	*now = at(2, 17, 0)
	sh, err := svc.ClockOut(testBranch, testEmployee)
	require.NoError(t, err)

	require.Len(t, sh.Breaks, 1)
	require.NotNil(t, sh.Breaks[0].End)
	assert.True(t, sh.Breaks[0].End.Equal(at(2, 17, 0)))
	assert.Equal(t, 420, sh.TotalMinutes)
}

func TestAdminUpdateShift_NotFound(t *testing.T) {
	svc, _ := newTestService(newFakeShiftRepo())

	_, err := svc.AdminUpdateShift(99, domain.ShiftUpdate{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdminUpdateShift_RejectsCheckOutBeforeCheckIn(t *testing.T) {
	svc, now := newTestService(newFakeShiftRepo())

	created, err := svc.ClockIn(testBranch, testEmployee, "Ким")
	require.NoError(t, err)

	*now = at(2, 16, 0)
	_, err = svc.ClockOut(testBranch, testEmployee)
	require.NoError(t, err)

	bad := at(2, 8, 0)
	_, err = svc.AdminUpdateShift(created.ID, domain.ShiftUpdate{CheckOut: &bad})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAdminUpdateShift_RecomputesAndFlags(t *testing.T) {
	repo := newFakeShiftRepo()
	svc, now := newTestService(repo)

	created, err := svc.ClockIn(testBranch, testEmployee, "Ким")
	require.NoError(t, err)
	*now = at(2, 16, 0)
	_, err = svc.ClockOut(testBranch, testEmployee)
	require.NoError(t, err)

	// Администратор продлевает уход до 17:30: работы становится 510 минут,
	// и правило минимального перерыва срабатывает и на правке.
	newOut := at(2, 17, 30)
	sh, err := svc.AdminUpdateShift(created.ID, domain.ShiftUpdate{CheckOut: &newOut})
	require.NoError(t, err)

	assert.True(t, sh.ModifiedByAdmin)
	assert.True(t, sh.CheckOut.Equal(at(2, 18, 30)))
	assert.Equal(t, 60, sh.BreakMinutes())
	assert.Equal(t, 510, sh.TotalMinutes)

	stored, err := repo.GetShiftByID(created.ID)
	require.NoError(t, err)
	assert.True(t, stored.ModifiedByAdmin)
	assert.Equal(t, 510, stored.TotalMinutes)
}

func TestAdminUpdateShift_ReplacesBreaks(t *testing.T) {
	svc, now := newTestService(newFakeShiftRepo())

	created, err := svc.ClockIn(testBranch, testEmployee, "Ким")
	require.NoError(t, err)
	*now = at(2, 16, 0)
	_, err = svc.ClockOut(testBranch, testEmployee)
	require.NoError(t, err)

	bEnd := at(2, 13, 0)
	breaks := []domain.BreakInterval{{Start: at(2, 12, 0), End: &bEnd}}
	sh, err := svc.AdminUpdateShift(created.ID, domain.ShiftUpdate{Breaks: &breaks})
	require.NoError(t, err)

	require.Len(t, sh.Breaks, 1)
	assert.Equal(t, 60, sh.BreakMinutes())
	assert.Equal(t, 360, sh.TotalMinutes, "7 часов минус час перерыва")
	assert.True(t, sh.ModifiedByAdmin)
}

// hookedShiftRepo выполняет onFirstGet перед первым чтением по id —
// так между выборкой записи и её правкой можно вклинить другую операцию.
type hookedShiftRepo struct {
	*fakeShiftRepo
	onFirstGet func()
	fired      bool
}

func (r *hookedShiftRepo) GetShiftByID(id int64) (domain.Shift, error) {
	if !r.fired && r.onFirstGet != nil {
		r.fired = true
		r.onFirstGet()
	}
	return r.fakeShiftRepo.GetShiftByID(id)
}

func TestAdminUpdateShift_DoesNotReopenConcurrentlyClosedShift(t *testing.T) {
	base := newFakeShiftRepo()
	hooked := &hookedShiftRepo{fakeShiftRepo: base}
	svc := NewAttendanceService(hooked, kst)
	now := at(2, 9, 0)
	nowPtr := &now
	svc.Now = func() time.Time { return *nowPtr }

	created, err := svc.ClockIn(testBranch, testEmployee, "Ким")
	require.NoError(t, err)

	// Между выборкой смены администратором и её правкой успевает пройти
	// полный clock-out того же сотрудника.
	*nowPtr = at(2, 16, 0)
	hooked.onFirstGet = func() {
		_, err := svc.ClockOut(testBranch, testEmployee)
		require.NoError(t, err)
	}

	sh, err := svc.AdminUpdateShift(created.ID, domain.ShiftUpdate{})
	require.NoError(t, err)

	require.NotNil(t, sh.CheckOut, "закрытая смена не должна снова открыться")
	assert.Equal(t, 420, sh.TotalMinutes)

	stored, err := base.GetShiftByID(created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CheckOut)
	assert.True(t, stored.CheckOut.Equal(at(2, 16, 0)))
	assert.Equal(t, 420, stored.TotalMinutes)
}

func TestAdminUpdateShift_TopUpIdempotentOnReEdit(t *testing.T) {
	svc, now := newTestService(newFakeShiftRepo())

	created, err := svc.ClockIn(testBranch, testEmployee, "Ким")
	require.NoError(t, err)
	*now = at(2, 17, 30)
	_, err = svc.ClockOut(testBranch, testEmployee)
	require.NoError(t, err)

	// Повторная правка без изменения времени не добавляет второй
	// синтетический перерыв: 60 минут уже набрано.
	sh, err := svc.AdminUpdateShift(created.ID, domain.ShiftUpdate{})
	require.NoError(t, err)

	require.Len(t, sh.Breaks, 1)
	assert.Equal(t, 60, sh.BreakMinutes())
	assert.Equal(t, 510, sh.TotalMinutes)
	assert.True(t, sh.CheckOut.Equal(at(2, 18, 30)))
}
