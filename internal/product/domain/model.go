package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Product struct {
	ID          int64   `json:"id" gorm:"primaryKey"`
	OrgID       int64   `json:"organization_id" gorm:"column:org_id;not null;index:ux_products_org_code,priority:1"`
	Code        string  `json:"code" gorm:"type:text;not null;index:ux_products_org_code,priority:2"`
	Name        string  `json:"name" gorm:"type:text;not null"`
	Description *string `json:"description,omitempty" gorm:"type:text"`
	Currency    string  `json:"currency" gorm:"type:text;not null"`
	PriceMinor  int64   `json:"price_minor" gorm:"not null;default:0"`
	TaxRateBp   int64   `json:"tax_rate_bp" gorm:"not null;default:0"`

	DiscountType  *string `json:"discount_type,omitempty" gorm:"type:text"`
	DiscountValue int64   `json:"discount_value" gorm:"not null;default:0"`
	CogsType      *string `json:"cogs_type,omitempty" gorm:"type:text"`
	CogsValue     int64   `json:"cogs_value" gorm:"not null;default:0"`

	RecurringInterval     *string `json:"recurring_interval,omitempty" gorm:"type:text"`
	RecurringIntervalDays int     `json:"recurring_interval_days" gorm:"not null;default:0"`

	Active    bool              `json:"active" gorm:"not null;default:true"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }

type PaymentPlan struct {
	ID               int64     `json:"id" gorm:"primaryKey"`
	OrgID            int64     `json:"organization_id" gorm:"column:org_id;not null;index:ux_payment_plans_org_product,priority:1"`
	ProductID        int64     `json:"product_id" gorm:"not null;index:ux_payment_plans_org_product,priority:2"`
	NumInstallments  int       `json:"num_installments" gorm:"not null"`
	IntervalType     string    `json:"interval_type" gorm:"type:text;not null"`
	IntervalDays     int       `json:"interval_days" gorm:"not null;default:0"`
	DownPaymentMinor int64     `json:"down_payment_minor" gorm:"not null;default:0"`
	CreatedAt        time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PaymentPlan) TableName() string { return "product_payment_plans" }
