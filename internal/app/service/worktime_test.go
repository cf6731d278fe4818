package service

import (
	"testing"
	"time"

	"attendance-bot/internal/domain"

	"github.com/stretchr/testify/assert"
)

var kst = time.FixedZone("KST", 9*60*60)

func at(d, hh, mm int) time.Time {
	return time.Date(2026, time.March, d, hh, mm, 0, 0, kst)
}

func TestComputeWorkMinutes_OpenShiftIsZero(t *testing.T) {
	wm := ComputeWorkMinutes(at(2, 9, 0), nil, nil, kst)
	assert.Equal(t, WorkMinutes{}, wm)
}

func TestComputeWorkMinutes_CheckOutBeforeCheckInIsZero(t *testing.T) {
	out := at(2, 8, 0)
	wm := ComputeWorkMinutes(at(2, 9, 0), &out, nil, kst)
	assert.Equal(t, WorkMinutes{}, wm)
}

func TestComputeWorkMinutes_DaytimeNoBreaks(t *testing.T) {
	in := at(2, 9, 0)
	out := at(2, 17, 30)
	wm := ComputeWorkMinutes(in, &out, nil, kst)

	assert.Equal(t, 510, wm.Regular)
	assert.Equal(t, 0, wm.Night)
	assert.Equal(t, int(out.Sub(in)/time.Minute), wm.Total)
}

func TestComputeWorkMinutes_OvernightShift(t *testing.T) {
	// 22:00 → 10:00 следующего дня: ночное окно 22:00–05:00 даёт 7 часов.
	in := time.Date(2026, 1, 1, 22, 0, 0, 0, kst)
	out := time.Date(2026, 1, 2, 10, 0, 0, 0, kst)
	wm := ComputeWorkMinutes(in, &out, nil, kst)

	assert.Equal(t, 720, wm.Total)
	assert.Equal(t, 420, wm.Night)
	assert.Equal(t, 300, wm.Regular)
}

func TestComputeWorkMinutes_EveningBoundarySplit(t *testing.T) {
	in := at(2, 21, 0)
	out := at(2, 23, 0)
	wm := ComputeWorkMinutes(in, &out, nil, kst)

	assert.Equal(t, 60, wm.Regular)
	assert.Equal(t, 60, wm.Night)
}

func TestComputeWorkMinutes_MorningBoundarySplit(t *testing.T) {
	in := at(2, 4, 0)
	out := at(2, 6, 0)
	wm := ComputeWorkMinutes(in, &out, nil, kst)

	assert.Equal(t, 60, wm.Night, "04:00–05:00 ночные")
	assert.Equal(t, 60, wm.Regular, "05:00–06:00 обычные")
}

func TestComputeWorkMinutes_BreaksExcluded(t *testing.T) {
	in := at(2, 9, 0)
	out := at(2, 18, 0)
	bEnd := at(2, 13, 0)
	breaks := []domain.BreakInterval{{Start: at(2, 12, 0), End: &bEnd}}
	wm := ComputeWorkMinutes(in, &out, breaks, kst)

	assert.Equal(t, 480, wm.Total)
	assert.Equal(t, int(out.Sub(in)/time.Minute)-60, wm.Total)
}

func TestComputeWorkMinutes_OpenBreakCoversNothing(t *testing.T) {
	in := at(2, 9, 0)
	out := at(2, 17, 0)
	breaks := []domain.BreakInterval{{Start: at(2, 12, 0)}}
	wm := ComputeWorkMinutes(in, &out, breaks, kst)

	assert.Equal(t, 480, wm.Total)
}

func TestComputeWorkMinutes_PartialMinuteTruncated(t *testing.T) {
	in := at(2, 9, 0)
	out := in.Add(90 * time.Second)
	wm := ComputeWorkMinutes(in, &out, nil, kst)

	assert.Equal(t, 1, wm.Total)
}

func TestComputeWorkMinutes_Deterministic(t *testing.T) {
	in := at(2, 20, 0)
	out := time.Date(2026, 3, 3, 6, 0, 0, 0, kst)
	bEnd := at(2, 23, 30)
	breaks := []domain.BreakInterval{{Start: at(2, 23, 0), End: &bEnd}}

	first := ComputeWorkMinutes(in, &out, breaks, kst)
	second := ComputeWorkMinutes(in, &out, breaks, kst)

	assert.Equal(t, first, second)
	assert.Equal(t, first.Regular+first.Night, first.Total)
}
