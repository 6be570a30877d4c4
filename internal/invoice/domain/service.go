package domain

import (
	"context"
	"errors"
	"time"

	scheduledomain "github.com/leadloom/leadloom/internal/schedule/domain"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
}

type LineItemRequest struct {
	ProductID      string `json:"product_id"`
	Quantity       int64  `json:"quantity"`
	UnitPriceMinor *int64 `json:"unit_price_minor"`
}

type CreateRequest struct {
	IdempotencyKey string `json:"-"`

	Items    []LineItemRequest `json:"items"`
	IssuedAt time.Time         `json:"issued_at"`
	Metadata map[string]any    `json:"metadata"`
}

type ListRequest struct {
	Status  string
	SortBy  string
	OrderBy string
}

type LineResponse struct {
	ID               string `json:"id"`
	ProductID        string `json:"product_id"`
	Description      string `json:"description"`
	Quantity         int64  `json:"quantity"`
	UnitPriceMinor   int64  `json:"unit_price_minor"`
	DiscountMinor    int64  `json:"discount_minor"`
	TaxableBaseMinor int64  `json:"taxable_base_minor"`
	TaxMinor         int64  `json:"tax_minor"`
	CogsMinor        int64  `json:"cogs_minor"`
	TotalMinor       int64  `json:"total_minor"`
}

type Response struct {
	ID                 string         `json:"id"`
	OrganizationID     string         `json:"organization_id"`
	Status             string         `json:"status"`
	Currency           string         `json:"currency"`
	Lines              []LineResponse `json:"lines"`
	TotalDiscountMinor int64          `json:"total_discount_minor"`
	TotalTaxMinor      int64          `json:"total_tax_minor"`
	TotalMinor         int64          `json:"total_minor"`
	TotalCogsMinor     int64          `json:"total_cogs_minor"`
	IssuedAt           time.Time      `json:"issued_at"`
	CreatedAt          time.Time      `json:"created_at"`

	PaymentSchedule   []scheduledomain.PaymentEntryResponse   `json:"payment_schedule,omitempty"`
	RecurringSchedule []scheduledomain.RecurringEntryResponse `json:"recurring_schedule,omitempty"`

	Replayed bool `json:"-"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
	ErrEmptyInvoice        = errors.New("empty_invoice")
)
