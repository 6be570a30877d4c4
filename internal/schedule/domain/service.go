package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	ListPaymentSchedule(ctx context.Context, invoiceID string) ([]PaymentEntryResponse, error)
	ListRecurringSchedule(ctx context.Context, invoiceID string) ([]RecurringEntryResponse, error)
}

type PaymentEntryResponse struct {
	InstallmentNum int       `json:"installment_num"`
	DueAt          time.Time `json:"due_at"`
	AmountMinor    int64     `json:"amount_minor"`
	Description    string    `json:"description"`
}

type RecurringEntryResponse struct {
	CycleNum    int       `json:"cycle_num"`
	BillingAt   time.Time `json:"billing_at"`
	AmountMinor int64     `json:"amount_minor"`
	Description string    `json:"description"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
