package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadloom/leadloom/internal/billing/domain"
)

func TestBuildPaymentSchedule_WithDownPayment(t *testing.T) {
	start := date(2025, time.January, 15)
	plan := domain.PaymentPlan{
		NumInstallments:  3,
		IntervalType:     domain.IntervalMonthly,
		DownPaymentMinor: 20_000,
	}

	entries, err := BuildPaymentSchedule(plan, 100_000, start)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, 0, entries[0].InstallmentNum)
	assert.Equal(t, start, entries[0].DueAt)
	assert.Equal(t, int64(20_000), entries[0].AmountMinor)
	assert.Equal(t, "Down payment", entries[0].Description)

	assert.Equal(t, 1, entries[1].InstallmentNum)
	assert.Equal(t, date(2025, time.February, 15), entries[1].DueAt)
	assert.Contains(t, entries[1].Description, "1 of 3")

	var sum int64
	for _, entry := range entries {
		sum += entry.AmountMinor
	}
	assert.Equal(t, int64(100_000), sum)
}

func TestBuildPaymentSchedule_NoDownPayment(t *testing.T) {
	start := date(2025, time.June, 1)
	plan := domain.PaymentPlan{NumInstallments: 4, IntervalType: domain.IntervalMonthly}

	entries, err := BuildPaymentSchedule(plan, 40_000, start)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	// No installment 0 when the down payment is zero.
	assert.Equal(t, 1, entries[0].InstallmentNum)
	assert.Equal(t, date(2025, time.July, 1), entries[0].DueAt)

	for i, entry := range entries {
		assert.Equal(t, i+1, entry.InstallmentNum)
		assert.Equal(t, int64(10_000), entry.AmountMinor)
	}
}

func TestBuildPaymentSchedule_FrontLoadsRemainder(t *testing.T) {
	plan := domain.PaymentPlan{NumInstallments: 3, IntervalType: domain.IntervalMonthly}

	entries, err := BuildPaymentSchedule(plan, 100, date(2025, time.January, 1))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, int64(34), entries[0].AmountMinor)
	assert.Equal(t, int64(33), entries[1].AmountMinor)
	assert.Equal(t, int64(33), entries[2].AmountMinor)
}

func TestBuildPaymentSchedule_ConservesTotal(t *testing.T) {
	start := date(2025, time.March, 31)
	totals := []int64{0, 1, 99, 100, 101, 999_999, 1_000_003}

	for _, total := range totals {
		plan := domain.PaymentPlan{NumInstallments: 7, IntervalType: domain.IntervalMonthly}
		entries, err := BuildPaymentSchedule(plan, total, start)
		require.NoError(t, err)

		var sum int64
		for _, entry := range entries {
			sum += entry.AmountMinor
		}
		assert.Equal(t, total, sum, "total %d leaked units", total)
	}
}

func TestBuildPaymentSchedule_SingleInstallment(t *testing.T) {
	plan := domain.PaymentPlan{NumInstallments: 1, IntervalType: domain.IntervalMonthly}

	entries, err := BuildPaymentSchedule(plan, 55_000, date(2025, time.January, 15))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, 1, entries[0].InstallmentNum)
	assert.Equal(t, int64(55_000), entries[0].AmountMinor)
	assert.Equal(t, date(2025, time.February, 15), entries[0].DueAt)
}

func TestBuildPaymentSchedule_CustomDays(t *testing.T) {
	plan := domain.PaymentPlan{
		NumInstallments: 2,
		IntervalType:    domain.IntervalCustomDays,
		IntervalDays:    15,
	}

	entries, err := BuildPaymentSchedule(plan, 10_000, date(2025, time.January, 1))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, date(2025, time.January, 16), entries[0].DueAt)
	assert.Equal(t, date(2025, time.January, 31), entries[1].DueAt)
}

func TestBuildPaymentSchedule_Validation(t *testing.T) {
	start := date(2025, time.January, 1)

	_, err := BuildPaymentSchedule(domain.PaymentPlan{NumInstallments: 0, IntervalType: domain.IntervalMonthly}, 100, start)
	assert.ErrorIs(t, err, domain.ErrInvalidInstallmentCount)

	_, err = BuildPaymentSchedule(domain.PaymentPlan{NumInstallments: 2, IntervalType: domain.IntervalMonthly, DownPaymentMinor: 200}, 100, start)
	assert.ErrorIs(t, err, domain.ErrDownPaymentExceedsTotal)

	_, err = BuildPaymentSchedule(domain.PaymentPlan{NumInstallments: 2, IntervalType: domain.Interval("HOURLY")}, 100, start)
	assert.ErrorIs(t, err, domain.ErrInvalidInterval)

	_, err = BuildPaymentSchedule(domain.PaymentPlan{NumInstallments: 2, IntervalType: domain.IntervalMonthly}, -1, start)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestBuildPaymentSchedule_Deterministic(t *testing.T) {
	plan := domain.PaymentPlan{
		NumInstallments:  5,
		IntervalType:     domain.IntervalQuarterly,
		DownPaymentMinor: 1_234,
	}
	start := date(2025, time.November, 30)

	first, err := BuildPaymentSchedule(plan, 98_765, start)
	require.NoError(t, err)
	second, err := BuildPaymentSchedule(plan, 98_765, start)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
