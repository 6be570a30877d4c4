package domain

import "errors"

var (
	ErrProductNotFound         = errors.New("product_not_found")
	ErrInvalidPercentageValue  = errors.New("invalid_percentage_value")
	ErrCurrencyMismatch        = errors.New("currency_mismatch")
	ErrDownPaymentExceedsTotal = errors.New("down_payment_exceeds_total")
	ErrInvalidInstallmentCount = errors.New("invalid_installment_count")
	ErrInvalidInterval         = errors.New("invalid_interval")
	ErrInvalidQuantity         = errors.New("invalid_quantity")
	ErrInvalidAmount           = errors.New("invalid_amount")
	ErrInvalidCycleCount       = errors.New("invalid_cycle_count")
	ErrInvalidOrganization     = errors.New("invalid_organization")
	ErrInvalidID               = errors.New("invalid_id")
	ErrNoPaymentPlan           = errors.New("no_payment_plan")
	ErrNotRecurring            = errors.New("not_recurring")
)
