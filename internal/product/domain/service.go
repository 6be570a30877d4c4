package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Archive(ctx context.Context, id string) (*Response, error)

	SetPaymentPlan(ctx context.Context, req SetPaymentPlanRequest) (*PaymentPlanResponse, error)
	GetPaymentPlan(ctx context.Context, productID string) (*PaymentPlanResponse, error)
}

type ListRequest struct {
	Name    string
	Active  *bool
	SortBy  string
	OrderBy string
}

type CreateRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Currency    string  `json:"currency"`
	PriceMinor  int64   `json:"price_minor"`
	TaxRateBp   int64   `json:"tax_rate_bp"`

	DiscountType  *string `json:"discount_type"`
	DiscountValue int64   `json:"discount_value"`
	CogsType      *string `json:"cogs_type"`
	CogsValue     int64   `json:"cogs_value"`

	RecurringInterval     *string `json:"recurring_interval"`
	RecurringIntervalDays int     `json:"recurring_interval_days"`

	Active   *bool          `json:"active"`
	Metadata map[string]any `json:"metadata"`
}

type UpdateRequest struct {
	ID string `json:"-"`

	Name        *string `json:"name"`
	Description *string `json:"description"`
	PriceMinor  *int64  `json:"price_minor"`
	TaxRateBp   *int64  `json:"tax_rate_bp"`

	DiscountType  *string `json:"discount_type"`
	DiscountValue *int64  `json:"discount_value"`
	CogsType      *string `json:"cogs_type"`
	CogsValue     *int64  `json:"cogs_value"`

	RecurringInterval     *string `json:"recurring_interval"`
	RecurringIntervalDays *int    `json:"recurring_interval_days"`

	Active   *bool          `json:"active"`
	Metadata map[string]any `json:"metadata"`
}

type SetPaymentPlanRequest struct {
	ProductID string `json:"-"`

	NumInstallments  int    `json:"num_installments"`
	IntervalType     string `json:"interval_type"`
	IntervalDays     int    `json:"interval_days"`
	DownPaymentMinor int64  `json:"down_payment_minor"`
}

type Response struct {
	ID             string  `json:"id"`
	OrganizationID string  `json:"organization_id"`
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	Description    *string `json:"description,omitempty"`
	Currency       string  `json:"currency"`
	PriceMinor     int64   `json:"price_minor"`
	TaxRateBp      int64   `json:"tax_rate_bp"`

	DiscountType  *string `json:"discount_type,omitempty"`
	DiscountValue int64   `json:"discount_value"`
	CogsType      *string `json:"cogs_type,omitempty"`
	CogsValue     int64   `json:"cogs_value"`

	RecurringInterval     *string `json:"recurring_interval,omitempty"`
	RecurringIntervalDays int     `json:"recurring_interval_days"`

	Active    bool           `json:"active"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type PaymentPlanResponse struct {
	ID               string    `json:"id"`
	ProductID        string    `json:"product_id"`
	NumInstallments  int       `json:"num_installments"`
	IntervalType     string    `json:"interval_type"`
	IntervalDays     int       `json:"interval_days"`
	DownPaymentMinor int64     `json:"down_payment_minor"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidCode         = errors.New("invalid_code")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidCurrency     = errors.New("invalid_currency")
	ErrInvalidPrice        = errors.New("invalid_price")
	ErrInvalidTaxRate      = errors.New("invalid_tax_rate")
	ErrInvalidAdjustment   = errors.New("invalid_adjustment")
	ErrInvalidInterval     = errors.New("invalid_interval")
	ErrInvalidPaymentPlan  = errors.New("invalid_payment_plan")
	ErrNotFound            = errors.New("not_found")
	ErrInvalidID           = errors.New("invalid_id")
)
