// Package engine implements the billing and revenue scheduling engine:
// invoice line calculation, invoice aggregation, installment schedule
// generation and recurring schedule generation. Every function is pure;
// identical inputs always produce identical outputs.
package engine

import (
	"github.com/leadloom/leadloom/internal/billing/domain"
)

// BasisPointScale is the number of basis points in 100%.
const BasisPointScale = 10000

// ApplyBasisPoints computes amount * bp / 10000 in integer arithmetic,
// rounding half-up on the smallest unit. Basis points outside [0,10000]
// are rejected rather than clamped so a mistyped rate can never
// silently over- or under-charge.
func ApplyBasisPoints(amountMinor, bp int64) (int64, error) {
	if bp < 0 || bp > BasisPointScale {
		return 0, domain.ErrInvalidPercentageValue
	}
	if amountMinor < 0 {
		return 0, domain.ErrInvalidAmount
	}
	return (amountMinor*bp + BasisPointScale/2) / BasisPointScale, nil
}
