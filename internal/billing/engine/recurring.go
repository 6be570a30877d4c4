package engine

import (
	"fmt"
	"time"

	"github.com/leadloom/leadloom/internal/billing/domain"
)

// BuildRecurringSchedule materializes the next min(requested, maxCycles)
// billing cycles of a recurring product. The first cycle bills at the
// start date; cycle k bills k-1 intervals later. The amount is constant
// across cycles; a price change requires generating a new schedule.
// maxCycles bounds how far into the future a series materializes.
func BuildRecurringSchedule(kind domain.Interval, customDays int, perCycleMinor int64, start time.Time, requested, maxCycles int) ([]domain.RecurringEntry, error) {
	if requested < 1 || maxCycles < 1 {
		return nil, domain.ErrInvalidCycleCount
	}
	if perCycleMinor < 0 {
		return nil, domain.ErrInvalidAmount
	}
	if !domain.ValidInterval(kind) {
		return nil, domain.ErrInvalidInterval
	}
	start = start.UTC()

	cycles := requested
	if cycles > maxCycles {
		cycles = maxCycles
	}

	entries := make([]domain.RecurringEntry, 0, cycles)
	for k := 1; k <= cycles; k++ {
		billingAt, err := AdvanceByInterval(start, k-1, kind, customDays)
		if err != nil {
			return nil, err
		}
		entries = append(entries, domain.RecurringEntry{
			CycleNum:    k,
			BillingAt:   billingAt,
			AmountMinor: perCycleMinor,
			Description: fmt.Sprintf("Billing cycle %d", k),
		})
	}

	return entries, nil
}
