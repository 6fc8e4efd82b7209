package services

import (
	"time"

	"moneta/internal/core"
	"moneta/internal/timezone"
)

// IsExpired reports whether the civil day containing end has fully elapsed at now.
func IsExpired(tz *timezone.Normalizer, end, now time.Time) bool {
	return tz.ToZoned(now).After(tz.EndOfDay(end))
}

// NextPeriod returns the window that follows [start, end] with the same exact
// duration. It starts at midnight of the civil day after end.
func NextPeriod(tz *timezone.Normalizer, start, end time.Time) (time.Time, time.Time) {
	duration := end.Sub(start)
	newStart := tz.StartOfDay(tz.ToZoned(end).AddDate(0, 0, 1))
	return newStart, newStart.Add(duration)
}

// Successor builds the budget that supersedes prev: same owner, category and
// amount over the next period, active, recurring and with nothing spent yet.
func Successor(tz *timezone.Normalizer, prev core.Budget, now time.Time) core.Budget {
	start, end := NextPeriod(tz, prev.StartDate, prev.EndDate)
	return core.Budget{
		Amount:          prev.Amount,
		StartDate:       start,
		EndDate:         end,
		IsRecurring:     true,
		IsActive:        true,
		CurrentSpending: core.FromMinorUnits(0),
		CategoryID:      prev.CategoryID,
		UserID:          prev.UserID,
		PredecessorID:   prev.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
