// Package period computes calendar windows over date-stamped task records.
//
// All comparisons work on the canonical YYYY-MM-DD representation, where
// lexicographic order matches chronological order. Windows are derived from
// a reference date, never from wall-clock time, so filtering is
// deterministic.
package period

import (
	"fmt"
	"time"

	"github.com/tmorel/cleansync/internal/model"
)

// Period selects which calendar window a filter applies.
type Period string

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
	All     Period = "all"
)

// Periods lists all valid period keywords, narrowest first.
var Periods = []Period{Daily, Weekly, Monthly, Yearly, All}

// Parse converts a period keyword to a Period, rejecting unknown values.
func Parse(s string) (Period, error) {
	switch Period(s) {
	case Daily, Weekly, Monthly, Yearly, All:
		return Period(s), nil
	}
	return "", fmt.Errorf("unknown period %q (want daily, weekly, monthly, yearly, or all)", s)
}

// WeekBounds returns the Sunday-start week containing ref, as inclusive
// YYYY-MM-DD bounds. Both bounds are computed independently from ref,
// never from an already shifted intermediate.
func WeekBounds(ref time.Time) (start, end string) {
	offset := int(ref.Weekday()) // Sunday == 0
	startDay := ref.AddDate(0, 0, -offset)
	endDay := ref.AddDate(0, 0, 6-offset)
	return startDay.Format(model.DateLayout), endDay.Format(model.DateLayout)
}

// Filter returns the subset of tasks whose Date falls in the window implied
// by p around the reference date ref (YYYY-MM-DD). Order of the result is
// not a contract; the input order is preserved.
//
// Tasks with malformed dates never match a bounded period. An invalid ref
// is an error: the caller chose it, so it should hear about it.
func Filter(tasks []model.Task, p Period, ref string) ([]model.Task, error) {
	if p == All {
		out := make([]model.Task, len(tasks))
		copy(out, tasks)
		return out, nil
	}

	refDay, err := time.Parse(model.DateLayout, ref)
	if err != nil {
		return nil, fmt.Errorf("invalid reference date %q: %w", ref, err)
	}

	var match func(t model.Task) bool
	switch p {
	case Daily:
		day := refDay.Format(model.DateLayout)
		match = func(t model.Task) bool {
			return t.Date == day
		}
	case Weekly:
		start, end := WeekBounds(refDay)
		match = func(t model.Task) bool {
			if !validDate(t.Date) {
				return false
			}
			return t.Date >= start && t.Date <= end
		}
	case Monthly:
		prefix := refDay.Format("2006-01")
		match = func(t model.Task) bool {
			return validDate(t.Date) && len(t.Date) >= 7 && t.Date[:7] == prefix
		}
	case Yearly:
		prefix := refDay.Format("2006")
		match = func(t model.Task) bool {
			return validDate(t.Date) && len(t.Date) >= 4 && t.Date[:4] == prefix
		}
	default:
		return nil, fmt.Errorf("unknown period %q", p)
	}

	var out []model.Task
	for _, t := range tasks {
		if match(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// validDate reports whether s is a well-formed YYYY-MM-DD date.
func validDate(s string) bool {
	_, err := time.Parse(model.DateLayout, s)
	return err == nil
}
