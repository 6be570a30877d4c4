package domain

import "time"

type PaymentScheduleEntry struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	OrgID          int64     `json:"organization_id" gorm:"column:org_id;not null;index:ix_payment_schedule_org_invoice,priority:1"`
	InvoiceID      int64     `json:"invoice_id" gorm:"not null;index:ix_payment_schedule_org_invoice,priority:2"`
	InstallmentNum int       `json:"installment_num" gorm:"not null"`
	DueAt          time.Time `json:"due_at" gorm:"not null"`
	AmountMinor    int64     `json:"amount_minor" gorm:"not null"`
	Description    string    `json:"description" gorm:"type:text;not null"`
	CreatedAt      time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PaymentScheduleEntry) TableName() string { return "payment_schedule_entries" }

type RecurringScheduleEntry struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	OrgID       int64     `json:"organization_id" gorm:"column:org_id;not null;index:ix_recurring_schedule_org_invoice,priority:1"`
	InvoiceID   int64     `json:"invoice_id" gorm:"not null;index:ix_recurring_schedule_org_invoice,priority:2"`
	CycleNum    int       `json:"cycle_num" gorm:"not null"`
	BillingAt   time.Time `json:"billing_at" gorm:"not null"`
	AmountMinor int64     `json:"amount_minor" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (RecurringScheduleEntry) TableName() string { return "recurring_schedule_entries" }
