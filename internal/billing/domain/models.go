// Package domain defines the value types consumed and produced by the
// billing engine. Every amount is an integer in minor currency units
// (cents, paise); the engine never computes on floats.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Interval identifies a calendar cadence for schedule stepping.
type Interval string

const (
	IntervalWeekly     Interval = "WEEKLY"
	IntervalMonthly    Interval = "MONTHLY"
	IntervalQuarterly  Interval = "QUARTERLY"
	IntervalSemiannual Interval = "SEMIANNUAL"
	IntervalAnnual     Interval = "ANNUAL"
	IntervalCustomDays Interval = "CUSTOM_DAYS"
)

// ValidInterval reports whether the cadence is one the engine can step.
func ValidInterval(kind Interval) bool {
	switch kind {
	case IntervalWeekly, IntervalMonthly, IntervalQuarterly, IntervalSemiannual, IntervalAnnual, IntervalCustomDays:
		return true
	default:
		return false
	}
}

// AdjustmentType distinguishes percentage adjustments (basis points)
// from absolute minor-unit adjustments.
type AdjustmentType string

const (
	AdjustmentPercent AdjustmentType = "PERCENT"
	AdjustmentAmount  AdjustmentType = "AMOUNT"
)

// Product is the immutable catalog snapshot the engine calculates from.
// Percent-typed discount and COGS values are basis points in [0,10000];
// amount-typed values are non-negative minor units.
type Product struct {
	ID                    snowflake.ID
	Currency              string
	PriceMinor            int64
	TaxRateBp             int64
	DiscountType          *AdjustmentType
	DiscountValue         int64
	CogsType              *AdjustmentType
	CogsValue             int64
	RecurringInterval     *Interval
	RecurringIntervalDays int
}

// LineItemInput requests one invoice line. Quantity defaults to 1 when
// zero. UnitPriceMinor, when set, overrides the catalog price.
type LineItemInput struct {
	ProductID      snowflake.ID
	Quantity       int64
	UnitPriceMinor *int64
}

// CalculatedLine is the priced result for a single line item.
type CalculatedLine struct {
	ProductID        snowflake.ID
	Quantity         int64
	UnitPriceMinor   int64
	DiscountMinor    int64
	TaxableBaseMinor int64
	TaxMinor         int64
	CogsMinor        int64
	TotalMinor       int64
}

// InvoiceCalculation is the rolled-up result for an ordered set of lines.
// Every aggregate equals the sum of the corresponding per-line field.
type InvoiceCalculation struct {
	Currency           string
	Lines              []CalculatedLine
	TotalDiscountMinor int64
	TotalTaxMinor      int64
	TotalMinor         int64
	TotalCogsMinor     int64
}

// PaymentPlan describes a fixed-count installment plan.
type PaymentPlan struct {
	NumInstallments  int
	IntervalType     Interval
	IntervalDays     int
	DownPaymentMinor int64
}

// ScheduleEntry is one dated obligation in an installment schedule.
// InstallmentNum 0 is reserved for the down payment.
type ScheduleEntry struct {
	InstallmentNum int
	DueAt          time.Time
	AmountMinor    int64
	Description    string
}

// RecurringEntry is one billing cycle in a recurring schedule.
type RecurringEntry struct {
	CycleNum    int
	BillingAt   time.Time
	AmountMinor int64
	Description string
}
