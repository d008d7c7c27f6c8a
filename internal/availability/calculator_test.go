package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MiniBodegas/Plataforma-sub000/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(t time.Time) *time.Time { return &t }

func definite(start, end time.Time) model.Reservation {
	return model.Reservation{StartDate: start, EndDate: datePtr(end), Estado: model.EstadoAceptada}
}

func indefinite(start time.Time) model.Reservation {
	return model.Reservation{StartDate: start, Estado: model.EstadoAceptada}
}

func TestBookableSingleUnitIndefinite(t *testing.T) {
	// One unit, one open-ended reservation starting June 15th: the 10th
	// stays bookable, the 15th and everything after does not.
	today := day(2025, time.June, 1)
	cal := Build([]model.Reservation{indefinite(day(2025, time.June, 15))}, 1, today)

	assert.True(t, cal.Bookable(day(2025, time.June, 10)), "before the open-ended start")
	assert.False(t, cal.Bookable(day(2025, time.June, 15)), "the open-ended start itself")
	assert.False(t, cal.Bookable(day(2025, time.December, 25)), "far after the open-ended start")
}

func TestBookablePoolBelowCapacity(t *testing.T) {
	// Two units, one definite reservation across July: a second booking
	// still fits on every day of that span.
	today := day(2025, time.July, 1)
	cal := Build([]model.Reservation{
		definite(day(2025, time.July, 5), day(2025, time.July, 20)),
	}, 2, today)

	assert.True(t, cal.Bookable(day(2025, time.July, 10)), "one of two units occupied")
	assert.Equal(t, uint32(1), cal.OccupiedOn(day(2025, time.July, 10)))
}

func TestBookablePoolSaturated(t *testing.T) {
	today := day(2025, time.July, 1)
	cal := Build([]model.Reservation{
		definite(day(2025, time.July, 5), day(2025, time.July, 20)),
		definite(day(2025, time.July, 8), day(2025, time.July, 12)),
	}, 2, today)

	assert.False(t, cal.Bookable(day(2025, time.July, 10)), "both units occupied")
	assert.True(t, cal.Bookable(day(2025, time.July, 13)), "back to one occupant")
}

func TestBookablePastDays(t *testing.T) {
	today := day(2025, time.June, 15)
	cal := Build(nil, 3, today)

	assert.False(t, cal.Bookable(day(2025, time.June, 14)), "yesterday is never bookable")
	assert.True(t, cal.Bookable(today), "today on an empty calendar")
}

func TestIndefiniteSaturationBlocksEverything(t *testing.T) {
	// Capacity 2 with two open-ended reservations: the pool can never
	// free up, so even days before both starts are refused for safety
	// of open-ended candidates and per-day view alike.
	today := day(2025, time.June, 1)
	cal := Build([]model.Reservation{
		indefinite(day(2025, time.July, 1)),
		indefinite(day(2025, time.August, 1)),
	}, 2, today)

	assert.False(t, cal.Bookable(day(2025, time.June, 10)), "pool exhausted by open-ended reservations")
}

func TestRangeFree(t *testing.T) {
	today := day(2025, time.June, 1)
	cal := Build([]model.Reservation{
		definite(day(2025, time.June, 10), day(2025, time.June, 20)),
	}, 1, today)

	assert.False(t, cal.RangeFree(day(2025, time.June, 12), datePtr(day(2025, time.June, 15))), "overlap inside an occupied span")
	assert.True(t, cal.RangeFree(day(2025, time.June, 21), datePtr(day(2025, time.June, 30))), "starts the day after the occupied end")
	assert.False(t, cal.RangeFree(day(2025, time.May, 1), datePtr(day(2025, time.May, 5))), "a span in the past")
	assert.False(t, cal.RangeFree(day(2025, time.June, 15), nil), "open-ended candidate through a saturated day")
	assert.True(t, cal.RangeFree(day(2025, time.June, 21), nil), "open-ended candidate after the last occupied day")
}

func TestRangeFreeAgainstIndefinite(t *testing.T) {
	today := day(2025, time.June, 1)
	cal := Build([]model.Reservation{indefinite(day(2025, time.July, 1))}, 1, today)

	assert.True(t, cal.RangeFree(day(2025, time.June, 5), datePtr(day(2025, time.June, 30))), "ends before the open-ended start")
	assert.False(t, cal.RangeFree(day(2025, time.June, 5), datePtr(day(2025, time.July, 1))), "touches the open-ended start")
	assert.False(t, cal.RangeFree(day(2025, time.June, 5), nil), "two open-ended reservations on one unit")
}

func TestMonthViewNavigation(t *testing.T) {
	// A definite reservation spilling into August must block August days
	// even when the calendar was built while looking at July.
	today := day(2025, time.July, 1)
	cal := Build([]model.Reservation{
		definite(day(2025, time.July, 25), day(2025, time.August, 5)),
	}, 1, today)

	july := cal.MonthView(2025, time.July)
	require.Len(t, july, 31)
	assert.False(t, july[24].Bookable, "July 25 is occupied")

	august := cal.MonthView(2025, time.August)
	require.Len(t, august, 31)
	assert.False(t, august[4].Bookable, "August 5 is still inside the span")
	assert.True(t, august[5].Bookable, "August 6 is past the span")
}

func TestMonthsSpanned(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"same day", day(2025, time.June, 10), day(2025, time.June, 10), 1},
		{"under a month", day(2025, time.June, 10), day(2025, time.July, 9), 1},
		{"exactly a month", day(2025, time.June, 10), day(2025, time.July, 10), 2},
		{"three months", day(2025, time.January, 15), day(2025, time.March, 20), 3},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MonthsSpanned(tc.start, tc.end), tc.name)
	}
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2025, time.June, 10, 18, 30, 12, 99, time.UTC)
	assert.Equal(t, day(2025, time.June, 10), DateOnly(in))
}
