package engine

import (
	"time"

	"github.com/leadloom/leadloom/internal/billing/domain"
)

// AdvanceByInterval returns start advanced by n intervals of the given
// cadence, computed in UTC. Month-based cadences clamp to the last day
// of the target month (Jan 31 + 1 month = Feb 28, or Feb 29 in a leap
// year) instead of letting the date roll over.
func AdvanceByInterval(start time.Time, n int, kind domain.Interval, customDays int) (time.Time, error) {
	if n < 0 {
		return time.Time{}, domain.ErrInvalidInterval
	}
	start = start.UTC()

	switch kind {
	case domain.IntervalWeekly:
		return start.AddDate(0, 0, 7*n), nil
	case domain.IntervalMonthly:
		return addMonthsClamped(start, n), nil
	case domain.IntervalQuarterly:
		return addMonthsClamped(start, 3*n), nil
	case domain.IntervalSemiannual:
		return addMonthsClamped(start, 6*n), nil
	case domain.IntervalAnnual:
		return addMonthsClamped(start, 12*n), nil
	case domain.IntervalCustomDays:
		if customDays <= 0 {
			return time.Time{}, domain.ErrInvalidInterval
		}
		return start.AddDate(0, 0, n*customDays), nil
	default:
		return time.Time{}, domain.ErrInvalidInterval
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	total := int(month) - 1 + months
	targetYear := year + total/12
	targetMonth := time.Month(total%12 + 1)

	if last := lastDayOfMonth(targetYear, targetMonth); day > last {
		day = last
	}
	return time.Date(targetYear, targetMonth, day, hour, min, sec, t.Nanosecond(), time.UTC)
}

func lastDayOfMonth(year int, month time.Month) int {
	// Day 0 of the following month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
