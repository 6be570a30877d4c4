package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	BatchCreatePayment(ctx context.Context, db *gorm.DB, entries []PaymentScheduleEntry) error
	BatchCreateRecurring(ctx context.Context, db *gorm.DB, entries []RecurringScheduleEntry) error
	FindPaymentByInvoice(ctx context.Context, db *gorm.DB, orgID, invoiceID int64) ([]PaymentScheduleEntry, error)
	FindRecurringByInvoice(ctx context.Context, db *gorm.DB, orgID, invoiceID int64) ([]RecurringScheduleEntry, error)
}
