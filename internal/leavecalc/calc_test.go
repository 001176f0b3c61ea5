package leavecalc_test

import (
	"testing"
	"time"

	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/leavecalc"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestChargeableDays_SingleWeekday(t *testing.T) {
	mon := date(2024, time.June, 3) // Monday
	got := leavecalc.ChargeableDays(mon, mon, false, 0, nil)
	assert.Equal(t, 1.0, got)
}

func TestChargeableDays_FullWeek(t *testing.T) {
	mon := date(2024, time.June, 3)
	fri := date(2024, time.June, 7)

	got := leavecalc.ChargeableDays(mon, fri, false, 0, nil)
	assert.Equal(t, 5.0, got)
}

func TestChargeableDays_FullWeekWithHoliday(t *testing.T) {
	mon := date(2024, time.June, 3)
	fri := date(2024, time.June, 7)
	wed := date(2024, time.June, 5)

	holidays := leavecalc.NewHolidaySet([]time.Time{wed})

	got := leavecalc.ChargeableDays(mon, fri, false, 0, holidays)
	assert.Equal(t, 4.0, got)
}

func TestChargeableDays_WeekendOnly(t *testing.T) {
	sat := date(2024, time.June, 8)
	sun := date(2024, time.June, 9)

	got := leavecalc.ChargeableDays(sat, sun, false, 0, nil)
	assert.Equal(t, 0.0, got)
}

func TestChargeableDays_SpanningWeekend(t *testing.T) {
	fri := date(2024, time.June, 7)
	mon := date(2024, time.June, 10)

	got := leavecalc.ChargeableDays(fri, mon, false, 0, nil)
	assert.Equal(t, 2.0, got)
}

func TestChargeableDays_HalfDayShortCircuits(t *testing.T) {
	mon := date(2024, time.June, 3)
	fri := date(2024, time.June, 7)
	holidays := leavecalc.NewHolidaySet([]time.Time{date(2024, time.June, 5)})

	// Half day ignores the range and the holiday set entirely
	assert.Equal(t, 0.5, leavecalc.ChargeableDays(mon, fri, true, 0, holidays))
	assert.Equal(t, 0.5, leavecalc.ChargeableDays(mon, mon, true, 0, nil))
}

func TestChargeableDays_HourStepFunction(t *testing.T) {
	mon := date(2024, time.June, 3)

	tests := []struct {
		hours float64
		want  float64
	}{
		{1, 0.5},
		{2, 0.5},
		{3, 0.5}, // boundary: 3 hours still counts as half a day
		{3.5, 1},
		{4, 1},
		{7, 1},
		{8, 1},
	}

	for _, tt := range tests {
		got := leavecalc.ChargeableDays(mon, mon, false, tt.hours, nil)
		assert.Equal(t, tt.want, got, "hours=%v", tt.hours)
	}
}

func TestChargeableDays_HoursTakePrecedenceOverHalfDay(t *testing.T) {
	mon := date(2024, time.June, 3)
	got := leavecalc.ChargeableDays(mon, mon, true, 5, nil)
	assert.Equal(t, 1.0, got)
}

func TestChargeableDays_ReversedRangeIsZero(t *testing.T) {
	mon := date(2024, time.June, 3)
	fri := date(2024, time.June, 7)

	got := leavecalc.ChargeableDays(fri, mon, false, 0, nil)
	assert.Equal(t, 0.0, got)
}

func TestChargeableDays_Pure(t *testing.T) {
	mon := date(2024, time.June, 3)
	fri := date(2024, time.June, 7)
	holidays := leavecalc.NewHolidaySet([]time.Time{date(2024, time.June, 4)})

	first := leavecalc.ChargeableDays(mon, fri, false, 0, holidays)
	second := leavecalc.ChargeableDays(mon, fri, false, 0, holidays)
	assert.Equal(t, first, second)
}

func TestChargeableDays_HolidayMatchIgnoresTimeOfDay(t *testing.T) {
	mon := date(2024, time.June, 3)
	holidayAtNoon := time.Date(2024, time.June, 3, 12, 30, 0, 0, time.UTC)
	holidays := leavecalc.NewHolidaySet([]time.Time{holidayAtNoon})

	got := leavecalc.ChargeableDays(mon, mon, false, 0, holidays)
	assert.Equal(t, 0.0, got)
}

func TestChargeableDays_EmptyHolidaySet(t *testing.T) {
	mon := date(2024, time.June, 3)

	// nil and empty sets behave the same (fail-soft path passes nil)
	assert.Equal(t, 1.0, leavecalc.ChargeableDays(mon, mon, false, 0, nil))
	assert.Equal(t, 1.0, leavecalc.ChargeableDays(mon, mon, false, 0, leavecalc.NewHolidaySet(nil)))
}
