package engine

import (
	"fmt"
	"time"

	"github.com/leadloom/leadloom/internal/billing/domain"
)

// BuildPaymentSchedule expands a payment plan over a total amount into
// dated installment entries. The down payment, when present, occupies
// installment 0 and is due at the start date; installment i is due i
// intervals after start. The remainder after integer division is
// front-loaded one unit at a time so the entries always sum exactly to
// totalMinor.
func BuildPaymentSchedule(plan domain.PaymentPlan, totalMinor int64, start time.Time) ([]domain.ScheduleEntry, error) {
	if plan.NumInstallments < 1 {
		return nil, domain.ErrInvalidInstallmentCount
	}
	if totalMinor < 0 || plan.DownPaymentMinor < 0 {
		return nil, domain.ErrInvalidAmount
	}
	if plan.DownPaymentMinor > totalMinor {
		return nil, domain.ErrDownPaymentExceedsTotal
	}
	if !domain.ValidInterval(plan.IntervalType) {
		return nil, domain.ErrInvalidInterval
	}
	start = start.UTC()

	entries := make([]domain.ScheduleEntry, 0, plan.NumInstallments+1)
	if plan.DownPaymentMinor > 0 {
		entries = append(entries, domain.ScheduleEntry{
			InstallmentNum: 0,
			DueAt:          start,
			AmountMinor:    plan.DownPaymentMinor,
			Description:    "Down payment",
		})
	}

	remaining := totalMinor - plan.DownPaymentMinor
	count := int64(plan.NumInstallments)
	base := remaining / count
	remainder := remaining % count

	for i := 1; i <= plan.NumInstallments; i++ {
		dueAt, err := AdvanceByInterval(start, i, plan.IntervalType, plan.IntervalDays)
		if err != nil {
			return nil, err
		}

		amount := base
		if int64(i) <= remainder {
			amount++
		}

		entries = append(entries, domain.ScheduleEntry{
			InstallmentNum: i,
			DueAt:          dueAt,
			AmountMinor:    amount,
			Description:    fmt.Sprintf("Installment %d of %d", i, plan.NumInstallments),
		})
	}

	return entries, nil
}
