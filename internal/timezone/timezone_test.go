package timezone

import (
	"testing"
	"time"
)

func mustNormalizer(t *testing.T, clock Clock) *Normalizer {
	t.Helper()
	n, err := New(DefaultZone, clock)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return n
}

func TestNewRejectsUnknownZone(t *testing.T) {
	if _, err := New("Mars/Olympus_Mons", nil); err == nil {
		t.Fatal("expected error for unknown zone")
	}
}

func TestParse(t *testing.T) {
	n := mustNormalizer(t, nil)
	loc := n.Location()

	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{
			name: "date only is UTC midnight",
			in:   "2024-03-15",
			want: time.Date(2024, 3, 15, 7, 0, 0, 0, loc),
		},
		{
			name: "date-time without offset is UTC wall clock",
			in:   "2024-03-15T20:30:00",
			want: time.Date(2024, 3, 16, 3, 30, 0, 0, loc),
		},
		{
			name: "explicit offset is honoured",
			in:   "2024-03-15T20:30:00+07:00",
			want: time.Date(2024, 3, 15, 20, 30, 0, 0, loc),
		},
		{
			name: "zulu with fraction",
			in:   "2024-03-15T00:00:00.250Z",
			want: time.Date(2024, 3, 15, 7, 0, 0, int(250*time.Millisecond), loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.in, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if got.Location() != loc {
				t.Errorf("Parse(%q) location = %v, want %v", tt.in, got.Location(), loc)
			}
		})
	}

	if _, err := n.Parse("15/03/2024"); err == nil {
		t.Error("expected error for unsupported layout")
	}
}

func TestParseOrNowUsesClock(t *testing.T) {
	frozen := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	n := mustNormalizer(t, NewFixedClock(frozen))

	got, err := n.ParseOrNow("  ")
	if err != nil {
		t.Fatalf("ParseOrNow: %v", err)
	}
	if !got.Equal(frozen) || got.Location() != n.Location() {
		t.Errorf("ParseOrNow = %v, want %v in civil zone", got, frozen)
	}
}

func TestDayBoundaries(t *testing.T) {
	n := mustNormalizer(t, nil)
	loc := n.Location()

	// 2024-01-10T20:00Z is already 2024-01-11 03:00 in the civil zone.
	instant := time.Date(2024, 1, 10, 20, 0, 0, 0, time.UTC)

	if got, want := n.StartOfDay(instant), time.Date(2024, 1, 11, 0, 0, 0, 0, loc); !got.Equal(want) {
		t.Errorf("StartOfDay = %v, want %v", got, want)
	}
	if got, want := n.EndOfDay(instant), time.Date(2024, 1, 11, 23, 59, 59, int(999*time.Millisecond), loc); !got.Equal(want) {
		t.Errorf("EndOfDay = %v, want %v", got, want)
	}
	day := n.DayWindow(instant)
	if !day.Contains(instant) {
		t.Error("day window should contain its instant")
	}
}

func TestMonthWindows(t *testing.T) {
	n := mustNormalizer(t, nil)
	loc := n.Location()
	ms999 := int(999 * time.Millisecond)

	tests := []struct {
		name     string
		date     string
		curFrom  time.Time
		curTo    time.Time
		prevFrom time.Time
		prevTo   time.Time
	}{
		{
			name:     "leap year february as previous month",
			date:     "2024-03-15",
			curFrom:  time.Date(2024, 3, 1, 0, 0, 0, 0, loc),
			curTo:    time.Date(2024, 3, 31, 23, 59, 59, ms999, loc),
			prevFrom: time.Date(2024, 2, 1, 0, 0, 0, 0, loc),
			prevTo:   time.Date(2024, 2, 29, 23, 59, 59, ms999, loc),
		},
		{
			name:     "non leap year",
			date:     "2023-03-31",
			curFrom:  time.Date(2023, 3, 1, 0, 0, 0, 0, loc),
			curTo:    time.Date(2023, 3, 31, 23, 59, 59, ms999, loc),
			prevFrom: time.Date(2023, 2, 1, 0, 0, 0, 0, loc),
			prevTo:   time.Date(2023, 2, 28, 23, 59, 59, ms999, loc),
		},
		{
			name:     "january rolls back into previous year",
			date:     "2024-01-20",
			curFrom:  time.Date(2024, 1, 1, 0, 0, 0, 0, loc),
			curTo:    time.Date(2024, 1, 31, 23, 59, 59, ms999, loc),
			prevFrom: time.Date(2023, 12, 1, 0, 0, 0, 0, loc),
			prevTo:   time.Date(2023, 12, 31, 23, 59, 59, ms999, loc),
		},
		{
			name:     "31st does not drift like a 30 day subtraction",
			date:     "2024-05-31",
			curFrom:  time.Date(2024, 5, 1, 0, 0, 0, 0, loc),
			curTo:    time.Date(2024, 5, 31, 23, 59, 59, ms999, loc),
			prevFrom: time.Date(2024, 4, 1, 0, 0, 0, 0, loc),
			prevTo:   time.Date(2024, 4, 30, 23, 59, 59, ms999, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, err := n.Parse(tt.date)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			cur := n.MonthWindow(date)
			if !cur.From.Equal(tt.curFrom) || !cur.To.Equal(tt.curTo) {
				t.Errorf("MonthWindow = [%v, %v], want [%v, %v]", cur.From, cur.To, tt.curFrom, tt.curTo)
			}
			prev := n.PreviousMonthWindow(date)
			if !prev.From.Equal(tt.prevFrom) || !prev.To.Equal(tt.prevTo) {
				t.Errorf("PreviousMonthWindow = [%v, %v], want [%v, %v]", prev.From, prev.To, tt.prevFrom, tt.prevTo)
			}
		})
	}
}

func TestFixedClockAdvance(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFixedClock(start)
	c.Advance(36 * time.Hour)
	if got := c.Now(); !got.Equal(start.Add(36 * time.Hour)) {
		t.Errorf("Now = %v", got)
	}
	c.Set(start)
	if !c.Now().Equal(start) {
		t.Error("Set did not reset the clock")
	}
}
