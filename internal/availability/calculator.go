// Package availability computes per-day bookability for a warehouse
// pool from its active reservations.  It is a pure function of its
// inputs plus an explicit "today"; nothing here touches the database.
package availability

import (
	"time"

	"github.com/MiniBodegas/Plataforma-sub000/internal/model"
)

// DateOnly truncates t to midnight UTC.  All occupancy accounting is
// done at day granularity on values normalized through this function.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Day is one calendar day of a month view.
type Day struct {
	Date     time.Time `json:"date"`
	Occupied int       `json:"occupied"`
	Bookable bool      `json:"bookable"`
}

// Calendar holds the occupancy derived from one pool's active
// reservations.  The per-day map covers every day any definite
// reservation touches, not just a single rendered month, so that
// navigating months yields consistent blocking.
type Calendar struct {
	capacity   int
	today      time.Time
	counts     map[time.Time]int // definite occupancy per day
	indefinite int               // number of open-ended reservations
	indefFrom  time.Time         // earliest start among open-ended reservations
}

// Build partitions the given reservations into definite and indefinite
// spans and accumulates the full per-day occupancy map.  Reservations
// in a terminal-rejected or cancelled state must be filtered out by
// the caller; everything passed in counts against capacity.
func Build(reservations []model.Reservation, capacity uint32, today time.Time) *Calendar {
	c := &Calendar{
		capacity: int(capacity),
		today:    DateOnly(today),
		counts:   make(map[time.Time]int),
	}
	for i := range reservations {
		r := &reservations[i]
		start := DateOnly(r.StartDate)
		if r.EndDate == nil {
			c.indefinite++
			if c.indefFrom.IsZero() || start.Before(c.indefFrom) {
				c.indefFrom = start
			}
			continue
		}
		end := DateOnly(*r.EndDate)
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			c.counts[d]++
		}
	}
	return c
}

// OccupiedOn returns how many units are consumed on the given day,
// counting definite spans plus the indefinite block when it applies.
func (c *Calendar) OccupiedOn(day time.Time) int {
	day = DateOnly(day)
	n := c.counts[day]
	if c.indefinite > 0 && !day.Before(c.indefFrom) {
		n += c.indefinite
	}
	return n
}

// Bookable reports whether one more unit can be booked on the given
// day.  A day is bookable iff it is not in the past, the pool is not
// permanently exhausted by open-ended reservations, it is not on or
// after the start of any open-ended reservation, and the occupancy
// count is strictly below capacity.
func (c *Calendar) Bookable(day time.Time) bool {
	day = DateOnly(day)
	if day.Before(c.today) {
		return false
	}
	// Open-ended consumption cannot be disambiguated per day: capacity
	// reached blocks the whole remaining calendar, and any single
	// open-ended reservation blocks everything from its start onward.
	if c.indefinite >= c.capacity {
		return false
	}
	if c.indefinite > 0 && !day.Before(c.indefFrom) {
		return false
	}
	return c.counts[day] < c.capacity
}

// RangeFree reports whether a candidate reservation spanning
// [start, end] (end nil = open-ended) could be added without exceeding
// capacity on any day.  This is the fast-path conflict check used when
// creating a request; the persistence layer re-checks under a row lock.
func (c *Calendar) RangeFree(start time.Time, end *time.Time) bool {
	start = DateOnly(start)
	if start.Before(c.today) {
		return false
	}
	if c.indefinite >= c.capacity {
		return false
	}
	if c.indefinite > 0 {
		// The candidate overlaps the open-ended block unless it ends
		// strictly before the earliest open-ended start.
		if end == nil || !DateOnly(*end).Before(c.indefFrom) {
			return false
		}
	}
	if end == nil {
		// An open-ended candidate occupies every day from start
		// onward, so any saturated day at or after start conflicts.
		for d, n := range c.counts {
			if !d.Before(start) && n >= c.capacity {
				return false
			}
		}
		return true
	}
	last := DateOnly(*end)
	if last.Before(start) {
		return false
	}
	for d, n := range c.counts {
		if !d.Before(start) && !d.After(last) && n >= c.capacity {
			return false
		}
	}
	return true
}

// MonthView renders the bookability of every day in the given calendar
// month.  Selected days already chosen in a multi-step form are the
// caller's concern; this view only reflects occupancy and the past.
func (c *Calendar) MonthView(year int, month time.Month) []Day {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)
	days := make([]Day, 0, 31)
	for d := first; d.Before(next); d = d.AddDate(0, 0, 1) {
		days = append(days, Day{
			Date:     d,
			Occupied: c.OccupiedOn(d),
			Bookable: c.Bookable(d),
		})
	}
	return days
}

// MonthsSpanned returns the number of whole calendar months needed to
// cover [start, end] inclusive, with a minimum of one.  Used for
// pricing: a reservation of up to one month costs one monthly rate.
func MonthsSpanned(start, end time.Time) int {
	start = DateOnly(start)
	end = DateOnly(end)
	months := 1
	for cur := start.AddDate(0, 1, 0); !cur.After(end); cur = cur.AddDate(0, 1, 0) {
		months++
	}
	return months
}
