package engine

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadloom/leadloom/internal/billing/domain"
)

func adjustment(kind domain.AdjustmentType) *domain.AdjustmentType { return &kind }

func int64Ptr(v int64) *int64 { return &v }

func testNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}

func TestCalculateLine_PercentDiscountAndTax(t *testing.T) {
	node := testNode(t)
	product := domain.Product{
		ID:            node.Generate(),
		Currency:      "INR",
		PriceMinor:    50_000,
		TaxRateBp:     1_800,
		DiscountType:  adjustment(domain.AdjustmentPercent),
		DiscountValue: 1_000,
	}

	line, err := CalculateLine(product, domain.LineItemInput{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(50_000), line.UnitPriceMinor)
	assert.Equal(t, int64(10_000), line.DiscountMinor)
	assert.Equal(t, int64(90_000), line.TaxableBaseMinor)
	assert.Equal(t, int64(16_200), line.TaxMinor)
	assert.Equal(t, int64(106_200), line.TotalMinor)
}

func TestCalculateLine_Additivity(t *testing.T) {
	node := testNode(t)
	product := domain.Product{
		ID:            node.Generate(),
		Currency:      "USD",
		PriceMinor:    1_999,
		TaxRateBp:     825,
		DiscountType:  adjustment(domain.AdjustmentPercent),
		DiscountValue: 333,
	}

	line, err := CalculateLine(product, domain.LineItemInput{ProductID: product.ID, Quantity: 7})
	require.NoError(t, err)

	assert.Equal(t, line.UnitPriceMinor*line.Quantity-line.DiscountMinor, line.TaxableBaseMinor)
	assert.Equal(t, line.TaxableBaseMinor+line.TaxMinor, line.TotalMinor)
}

func TestCalculateLine_AmountDiscountClampedToGross(t *testing.T) {
	node := testNode(t)
	product := domain.Product{
		ID:            node.Generate(),
		Currency:      "USD",
		PriceMinor:    500,
		DiscountType:  adjustment(domain.AdjustmentAmount),
		DiscountValue: 2_000,
	}

	line, err := CalculateLine(product, domain.LineItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	assert.Equal(t, int64(500), line.DiscountMinor)
	assert.Equal(t, int64(0), line.TaxableBaseMinor)
	assert.Equal(t, int64(0), line.TotalMinor)
}

func TestCalculateLine_DefaultQuantityIsOne(t *testing.T) {
	node := testNode(t)
	product := domain.Product{ID: node.Generate(), Currency: "USD", PriceMinor: 1_000}

	line, err := CalculateLine(product, domain.LineItemInput{ProductID: product.ID})
	require.NoError(t, err)

	assert.Equal(t, int64(1), line.Quantity)
	assert.Equal(t, int64(1_000), line.TotalMinor)
}

func TestCalculateLine_UnitPriceOverride(t *testing.T) {
	node := testNode(t)
	product := domain.Product{ID: node.Generate(), Currency: "USD", PriceMinor: 1_000, TaxRateBp: 1_000}

	line, err := CalculateLine(product, domain.LineItemInput{
		ProductID:      product.ID,
		Quantity:       3,
		UnitPriceMinor: int64Ptr(800),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(800), line.UnitPriceMinor)
	assert.Equal(t, int64(2_400), line.TaxableBaseMinor)
	assert.Equal(t, int64(240), line.TaxMinor)
}

func TestCalculateLine_Cogs(t *testing.T) {
	node := testNode(t)

	percent := domain.Product{
		ID:         node.Generate(),
		Currency:   "USD",
		PriceMinor: 10_000,
		CogsType:   adjustment(domain.AdjustmentPercent),
		CogsValue:  4_000,
	}
	line, err := CalculateLine(percent, domain.LineItemInput{ProductID: percent.ID, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(4_000), line.CogsMinor)

	// Amount-typed COGS is a per-unit cost.
	perUnit := domain.Product{
		ID:         node.Generate(),
		Currency:   "USD",
		PriceMinor: 10_000,
		CogsType:   adjustment(domain.AdjustmentAmount),
		CogsValue:  2_500,
	}
	line, err = CalculateLine(perUnit, domain.LineItemInput{ProductID: perUnit.ID, Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), line.CogsMinor)
}

func TestCalculateLine_RejectsNegativeQuantity(t *testing.T) {
	node := testNode(t)
	product := domain.Product{ID: node.Generate(), Currency: "USD", PriceMinor: 1_000}

	_, err := CalculateLine(product, domain.LineItemInput{ProductID: product.ID, Quantity: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestCalculateInvoice_AggregatesMatchLineSums(t *testing.T) {
	node := testNode(t)
	first := domain.Product{
		ID:            node.Generate(),
		Currency:      "USD",
		PriceMinor:    5_000,
		TaxRateBp:     1_800,
		DiscountType:  adjustment(domain.AdjustmentPercent),
		DiscountValue: 500,
		CogsType:      adjustment(domain.AdjustmentAmount),
		CogsValue:     1_200,
	}
	second := domain.Product{
		ID:         node.Generate(),
		Currency:   "USD",
		PriceMinor: 333,
		TaxRateBp:  825,
	}

	calc, err := CalculateInvoice(
		[]domain.Product{first, second},
		[]domain.LineItemInput{
			{ProductID: first.ID, Quantity: 3},
			{ProductID: second.ID, Quantity: 7},
		},
	)
	require.NoError(t, err)
	require.Len(t, calc.Lines, 2)

	var discount, tax, total, cogs int64
	for _, line := range calc.Lines {
		discount += line.DiscountMinor
		tax += line.TaxMinor
		total += line.TotalMinor
		cogs += line.CogsMinor
	}
	assert.Equal(t, discount, calc.TotalDiscountMinor)
	assert.Equal(t, tax, calc.TotalTaxMinor)
	assert.Equal(t, total, calc.TotalMinor)
	assert.Equal(t, cogs, calc.TotalCogsMinor)
	assert.Equal(t, "USD", calc.Currency)
}

func TestCalculateInvoice_ProductNotFound(t *testing.T) {
	node := testNode(t)
	product := domain.Product{ID: node.Generate(), Currency: "USD", PriceMinor: 1_000}

	_, err := CalculateInvoice(
		[]domain.Product{product},
		[]domain.LineItemInput{{ProductID: node.Generate(), Quantity: 1}},
	)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCalculateInvoice_CurrencyMismatch(t *testing.T) {
	node := testNode(t)
	usd := domain.Product{ID: node.Generate(), Currency: "USD", PriceMinor: 1_000}
	inr := domain.Product{ID: node.Generate(), Currency: "INR", PriceMinor: 1_000}

	_, err := CalculateInvoice(
		[]domain.Product{usd, inr},
		[]domain.LineItemInput{
			{ProductID: usd.ID, Quantity: 1},
			{ProductID: inr.ID, Quantity: 1},
		},
	)
	assert.ErrorIs(t, err, domain.ErrCurrencyMismatch)
}

func TestCalculateInvoice_Deterministic(t *testing.T) {
	node := testNode(t)
	product := domain.Product{
		ID:            node.Generate(),
		Currency:      "USD",
		PriceMinor:    7_777,
		TaxRateBp:     1_800,
		DiscountType:  adjustment(domain.AdjustmentPercent),
		DiscountValue: 1_500,
	}
	items := []domain.LineItemInput{{ProductID: product.ID, Quantity: 9}}

	first, err := CalculateInvoice([]domain.Product{product}, items)
	require.NoError(t, err)
	second, err := CalculateInvoice([]domain.Product{product}, items)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
