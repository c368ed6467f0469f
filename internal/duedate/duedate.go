// Package duedate turns relative due dates into absolute timestamps.
//
// Month arithmetic is calendar arithmetic clamped to the end of the target
// month: 2024-01-31 plus one month is 2024-02-29, 2023-01-31 plus one month is
// 2023-02-28. Years are twelve months with the same clamping.
package duedate

import (
	"errors"
	"fmt"
	"time"

	"github.com/atlas-ops/atlas/internal/domain"
)

var (
	// ErrUnknownUnit is returned for a unit outside Days, Weeks and Months.
	ErrUnknownUnit = errors.New("unknown due date unit")

	// ErrUnknownDirection is returned for a direction outside Before and After.
	ErrUnknownDirection = errors.New("unknown due date direction")

	// ErrUnknownInterval is returned for an interval unit outside day, week, month and year.
	ErrUnknownInterval = errors.New("unknown interval unit")
)

const daysPerWeek = 7

// Resolve computes the absolute date of a relative due date anchored at anchor.
func Resolve(anchor time.Time, due domain.RelativeDueDate) (time.Time, error) {
	n := due.Value

	switch due.Direction {
	case domain.After:
	case domain.Before:
		n = -n
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownDirection, due.Direction)
	}

	switch due.Unit {
	case domain.Days:
		return anchor.AddDate(0, 0, n), nil
	case domain.Weeks:
		return anchor.AddDate(0, 0, n*daysPerWeek), nil
	case domain.Months:
		return AddMonths(anchor, n), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownUnit, due.Unit)
	}
}

// AnchorFor returns the anchor a reference point resolves against.
//
// Only the launch time is known when a project is launched, so "Project End"
// and "Previous Step Completion" resolve against it like "Project Start".
// This is a known limitation of the resolver.
func AnchorFor(_ domain.DueDateRef, launchedAt time.Time) time.Time {
	return launchedAt
}

// AddMonths adds n calendar months to t, clamping the day to the last day
// of the target month. Negative n subtracts.
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()

	first := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); day > last {
		day = last
	}

	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// AddInterval adds n units to t. Used for certification expiry.
func AddInterval(t time.Time, n int, unit domain.IntervalUnit) (time.Time, error) {
	switch unit {
	case domain.UnitDay:
		return t.AddDate(0, 0, n), nil
	case domain.UnitWeek:
		return t.AddDate(0, 0, n*daysPerWeek), nil
	case domain.UnitMonth:
		return AddMonths(t, n), nil
	case domain.UnitYear:
		return AddMonths(t, n*12), nil //nolint:mnd
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownInterval, unit)
	}
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
