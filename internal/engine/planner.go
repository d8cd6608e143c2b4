// Package engine computes anniversary schedules and converts partner records
// to and from calendar (iCalendar) and contact (vCard) formats.
package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/tartampluch/go-partners/internal/config"
	"github.com/tartampluch/go-partners/internal/partner"
)

// Upcoming is the nearest future occurrence of one of a partner's anniversaries.
type Upcoming struct {
	Name string
	Date time.Time
	// Index is the position of the anniversary in the partner's list.
	Index int
}

// None is the zero Upcoming, reported when a partner has no anniversaries.
var None = Upcoming{Index: -1}

// IsNone reports whether u is the "none" sentinel.
func (u Upcoming) IsNone() bool {
	return u.Index < 0
}

// String renders "Name: YYYY-MM-DD", or "none".
func (u Upcoming) String() string {
	if u.IsNone() {
		return config.NoneLabel
	}
	return fmt.Sprintf(config.FallbackNext, u.Name, u.Date.Format(config.DateFormatDisplay))
}

// NextOccurrence returns the next date, on or after the day of now, that falls
// on the month and day of date. The result is midnight in now's location.
// An anniversary on today's date is due today, not next year.
//
// Go's time.Date normalizes Feb 29 to Mar 1 in non-leap years.
func NextOccurrence(now, date time.Time) time.Time {
	loc := now.Location()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	candidate := time.Date(now.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	if candidate.Before(todayStart) {
		candidate = time.Date(now.Year()+1, date.Month(), date.Day(), 0, 0, 0, 0, loc)
	}
	return candidate
}

// NextAnniversary selects the anniversary whose next occurrence is the
// earliest. Ties go to the first one listed. The boolean is false, and the
// result is None, when the list is empty.
func NextAnniversary(now time.Time, anniversaries []partner.Anniversary) (Upcoming, bool) {
	best := None
	for i, a := range anniversaries {
		next := NextOccurrence(now, a.Date)
		if best.IsNone() || next.Before(best.Date) {
			best = Upcoming{Name: a.Name, Date: next, Index: i}
		}
	}
	return best, !best.IsNone()
}

// AgendaEntry pairs a partner with its nearest anniversary.
type AgendaEntry struct {
	Partner partner.Partner
	Next    Upcoming
}

// Planner answers "what comes next" questions against a Clock.
// It holds no state and is safe to call on every render.
type Planner struct {
	Clock Clock
}

// Next returns the nearest upcoming anniversary of p.
func (pl *Planner) Next(p partner.Partner) (Upcoming, bool) {
	return NextAnniversary(pl.Clock.Now(), p.Anniversaries)
}

// Agenda lists every partner with its nearest anniversary, soonest first.
// Partners without anniversaries come last; equal dates keep list order.
func (pl *Planner) Agenda(partners []partner.Partner) []AgendaEntry {
	now := pl.Clock.Now()

	entries := make([]AgendaEntry, 0, len(partners))
	for _, p := range partners {
		next, _ := NextAnniversary(now, p.Anniversaries)
		entries = append(entries, AgendaEntry{Partner: p, Next: next})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Next, entries[j].Next
		switch {
		case a.IsNone():
			return false
		case b.IsNone():
			return true
		}
		return a.Date.Before(b.Date)
	})
	return entries
}
