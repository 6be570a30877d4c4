package engine

import (
	"github.com/bwmarrin/snowflake"

	"github.com/leadloom/leadloom/internal/billing/domain"
)

// CalculateLine prices one line item against its product definition.
// Discount is clamped so it never exceeds the gross amount; amount-typed
// COGS is a per-unit cost.
func CalculateLine(product domain.Product, item domain.LineItemInput) (domain.CalculatedLine, error) {
	quantity := item.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return domain.CalculatedLine{}, domain.ErrInvalidQuantity
	}
	if product.PriceMinor < 0 {
		return domain.CalculatedLine{}, domain.ErrInvalidAmount
	}

	unitPrice := product.PriceMinor
	if item.UnitPriceMinor != nil {
		if *item.UnitPriceMinor < 0 {
			return domain.CalculatedLine{}, domain.ErrInvalidAmount
		}
		unitPrice = *item.UnitPriceMinor
	}
	gross := unitPrice * quantity

	discount, err := lineDiscount(product, gross)
	if err != nil {
		return domain.CalculatedLine{}, err
	}

	taxableBase := gross - discount
	tax, err := ApplyBasisPoints(taxableBase, product.TaxRateBp)
	if err != nil {
		return domain.CalculatedLine{}, err
	}

	cogs, err := lineCogs(product, taxableBase, quantity)
	if err != nil {
		return domain.CalculatedLine{}, err
	}

	return domain.CalculatedLine{
		ProductID:        product.ID,
		Quantity:         quantity,
		UnitPriceMinor:   unitPrice,
		DiscountMinor:    discount,
		TaxableBaseMinor: taxableBase,
		TaxMinor:         tax,
		CogsMinor:        cogs,
		TotalMinor:       taxableBase + tax,
	}, nil
}

func lineDiscount(product domain.Product, gross int64) (int64, error) {
	if product.DiscountType == nil {
		return 0, nil
	}
	switch *product.DiscountType {
	case domain.AdjustmentPercent:
		return ApplyBasisPoints(gross, product.DiscountValue)
	case domain.AdjustmentAmount:
		if product.DiscountValue < 0 {
			return 0, domain.ErrInvalidAmount
		}
		if product.DiscountValue > gross {
			return gross, nil
		}
		return product.DiscountValue, nil
	default:
		return 0, domain.ErrInvalidAmount
	}
}

func lineCogs(product domain.Product, taxableBase, quantity int64) (int64, error) {
	if product.CogsType == nil {
		return 0, nil
	}
	switch *product.CogsType {
	case domain.AdjustmentPercent:
		return ApplyBasisPoints(taxableBase, product.CogsValue)
	case domain.AdjustmentAmount:
		if product.CogsValue < 0 {
			return 0, domain.ErrInvalidAmount
		}
		return product.CogsValue * quantity, nil
	default:
		return 0, domain.ErrInvalidAmount
	}
}

// CalculateInvoice prices every requested line against the catalog
// snapshot and folds the results into invoice-level totals. A line that
// references a product missing from the snapshot fails the whole
// calculation; mixing currencies across lines does too.
func CalculateInvoice(catalog []domain.Product, items []domain.LineItemInput) (*domain.InvoiceCalculation, error) {
	byID := make(map[snowflake.ID]domain.Product, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}

	calc := &domain.InvoiceCalculation{
		Lines: make([]domain.CalculatedLine, 0, len(items)),
	}

	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, domain.ErrProductNotFound
		}
		if calc.Currency == "" {
			calc.Currency = product.Currency
		} else if product.Currency != calc.Currency {
			return nil, domain.ErrCurrencyMismatch
		}

		line, err := CalculateLine(product, item)
		if err != nil {
			return nil, err
		}

		calc.Lines = append(calc.Lines, line)
		calc.TotalDiscountMinor += line.DiscountMinor
		calc.TotalTaxMinor += line.TaxMinor
		calc.TotalMinor += line.TotalMinor
		calc.TotalCogsMinor += line.CogsMinor
	}

	return calc, nil
}
