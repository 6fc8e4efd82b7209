// Package timezone anchors every instant to one civil timezone so that "day"
// and "month" boundaries do not depend on the host locale.
package timezone

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // zone database for minimal images

	"moneta/internal/core"
)

// DefaultZone is the civil timezone used when none is configured.
const DefaultZone = "Asia/Ho_Chi_Minh"

// Layouts without an offset. Values in these layouts are read as UTC wall clock.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Normalizer converts instants and civil-date strings into the configured zone
// and derives day and month boundaries there.
type Normalizer struct {
	loc   *time.Location
	clock Clock
}

func New(zone string, clock Clock) (*Normalizer, error) {
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", zone, err)
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &Normalizer{loc: loc, clock: clock}, nil
}

func (n *Normalizer) Location() *time.Location { return n.loc }

func (n *Normalizer) Clock() Clock { return n.clock }

// Now is the current instant in the civil zone.
func (n *Normalizer) Now() time.Time {
	return n.clock.Now().In(n.loc)
}

// ToZoned re-projects t into the civil zone. The instant does not change.
func (n *Normalizer) ToZoned(t time.Time) time.Time {
	return t.In(n.loc)
}

// Parse reads an ISO date or date-time. An explicit offset is honoured; a value
// without one is taken as UTC wall clock. The result is expressed in the civil zone.
func (n *Normalizer) Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(n.loc), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(n.loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ParseOrNow is Parse with an empty input meaning "now".
func (n *Normalizer) ParseOrNow(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return n.Now(), nil
	}
	return n.Parse(s)
}

// StartOfDay is local midnight of the civil day containing t.
func (n *Normalizer) StartOfDay(t time.Time) time.Time {
	z := t.In(n.loc)
	return time.Date(z.Year(), z.Month(), z.Day(), 0, 0, 0, 0, n.loc)
}

// EndOfDay is 23:59:59.999 of the civil day containing t.
func (n *Normalizer) EndOfDay(t time.Time) time.Time {
	z := t.In(n.loc)
	return time.Date(z.Year(), z.Month(), z.Day(), 23, 59, 59, int(999*time.Millisecond), n.loc)
}

func (n *Normalizer) StartOfMonth(t time.Time) time.Time {
	z := t.In(n.loc)
	return time.Date(z.Year(), z.Month(), 1, 0, 0, 0, 0, n.loc)
}

// EndOfMonth is 23:59:59.999 of the last civil day of t's month.
func (n *Normalizer) EndOfMonth(t time.Time) time.Time {
	z := t.In(n.loc)
	// day 0 of the next month is the last day of this one
	return time.Date(z.Year(), z.Month()+1, 0, 23, 59, 59, int(999*time.Millisecond), n.loc)
}

func (n *Normalizer) DayWindow(t time.Time) core.Interval {
	return core.Interval{From: n.StartOfDay(t), To: n.EndOfDay(t)}
}

func (n *Normalizer) MonthWindow(t time.Time) core.Interval {
	return core.Interval{From: n.StartOfMonth(t), To: n.EndOfMonth(t)}
}

// PreviousMonthWindow is the calendar month before t's month, found by stepping
// the month index back (January rolls over to December of the previous year).
func (n *Normalizer) PreviousMonthWindow(t time.Time) core.Interval {
	z := t.In(n.loc)
	year, month := z.Year(), z.Month()-1
	if month < time.January {
		month = time.December
		year--
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, n.loc)
	return core.Interval{From: first, To: n.EndOfMonth(first)}
}
