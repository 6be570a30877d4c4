package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/leadloom/leadloom/internal/schedule/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) BatchCreatePayment(ctx context.Context, db *gorm.DB, entries []domain.PaymentScheduleEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&entries).Error
}

func (r *repo) BatchCreateRecurring(ctx context.Context, db *gorm.DB, entries []domain.RecurringScheduleEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&entries).Error
}

func (r *repo) FindPaymentByInvoice(ctx context.Context, db *gorm.DB, orgID, invoiceID int64) ([]domain.PaymentScheduleEntry, error) {
	var entries []domain.PaymentScheduleEntry
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM payment_schedule_entries
		 WHERE org_id = ? AND invoice_id = ?
		 ORDER BY installment_num ASC`,
		orgID,
		invoiceID,
	).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) FindRecurringByInvoice(ctx context.Context, db *gorm.DB, orgID, invoiceID int64) ([]domain.RecurringScheduleEntry, error) {
	var entries []domain.RecurringScheduleEntry
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM recurring_schedule_entries
		 WHERE org_id = ? AND invoice_id = ?
		 ORDER BY cycle_num ASC`,
		orgID,
		invoiceID,
	).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
