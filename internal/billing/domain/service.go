package domain

import (
	"context"
	"time"
)

// Service exposes the billing engine over a catalog snapshot loaded for
// the calling organization. Preview operations never persist anything.
type Service interface {
	PreviewInvoice(ctx context.Context, req PreviewInvoiceRequest) (*InvoiceCalculation, error)
	PreviewPaymentSchedule(ctx context.Context, req PreviewPaymentScheduleRequest) ([]ScheduleEntry, error)
	PreviewRecurringSchedule(ctx context.Context, req PreviewRecurringScheduleRequest) ([]RecurringEntry, error)
}

type PreviewInvoiceRequest struct {
	Items []LineItemInput
}

type PreviewPaymentScheduleRequest struct {
	ProductID  string
	TotalMinor int64
	StartAt    time.Time
}

type PreviewRecurringScheduleRequest struct {
	ProductID       string
	PerCycleMinor   int64
	StartAt         time.Time
	RequestedCycles int
}
