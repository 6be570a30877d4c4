package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/leadloom/leadloom/internal/billing/domain"
	"github.com/leadloom/leadloom/internal/config"
	"github.com/leadloom/leadloom/internal/orgcontext"
	productdomain "github.com/leadloom/leadloom/internal/product/domain"
	productrepo "github.com/leadloom/leadloom/internal/product/repository"
	"github.com/leadloom/leadloom/pkg/db"
)

const testOrgID = int64(42)

type fixture struct {
	svc  domain.Service
	db   *gorm.DB
	node *snowflake.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&productdomain.Product{}, &productdomain.PaymentPlan{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	holder := config.NewStaticBillingConfigHolder(config.BillingConfig{
		MaxRecurringCycles:     4,
		MaxInstallments:        12,
		DefaultRecurringCycles: 3,
		DefaultInterval:        "MONTHLY",
	})

	svc := New(Params{
		DB:       dbConn,
		Log:      zap.NewNop(),
		Products: productrepo.Provide(),
		Limits:   holder,
	})

	return &fixture{svc: svc, db: dbConn, node: node}
}

func (f *fixture) createProduct(t *testing.T, mutate func(*productdomain.Product)) *productdomain.Product {
	t.Helper()

	now := time.Now().UTC()
	p := &productdomain.Product{
		ID:         f.node.Generate().Int64(),
		OrgID:      testOrgID,
		Code:       "p-" + f.node.Generate().String(),
		Name:       "Test Product",
		Currency:   "USD",
		PriceMinor: 50000,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if mutate != nil {
		mutate(p)
	}
	require.NoError(t, productrepo.Provide().Create(context.Background(), f.db, p))
	return p
}

func orgCtx() context.Context {
	return orgcontext.WithOrgID(context.Background(), testOrgID)
}

func strPtr(v string) *string { return &v }

func TestPreviewInvoice(t *testing.T) {
	f := newFixture(t)

	p := f.createProduct(t, func(p *productdomain.Product) {
		p.TaxRateBp = 1800
		p.DiscountType = strPtr("PERCENT")
		p.DiscountValue = 1000
	})

	calc, err := f.svc.PreviewInvoice(orgCtx(), domain.PreviewInvoiceRequest{
		Items: []domain.LineItemInput{{ProductID: snowflake.ID(p.ID), Quantity: 2}},
	})
	require.NoError(t, err)
	require.Len(t, calc.Lines, 1)
	assert.Equal(t, "USD", calc.Currency)
	assert.Equal(t, int64(10000), calc.TotalDiscountMinor)
	assert.Equal(t, int64(16200), calc.TotalTaxMinor)
	assert.Equal(t, int64(106200), calc.TotalMinor)
}

func TestPreviewInvoiceUnknownProduct(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PreviewInvoice(orgCtx(), domain.PreviewInvoiceRequest{
		Items: []domain.LineItemInput{{ProductID: snowflake.ID(999), Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestPreviewInvoiceRequiresOrg(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PreviewInvoice(context.Background(), domain.PreviewInvoiceRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}

func TestPreviewInvoiceScopedToOrg(t *testing.T) {
	f := newFixture(t)

	p := f.createProduct(t, nil)

	otherOrg := orgcontext.WithOrgID(context.Background(), 7)
	_, err := f.svc.PreviewInvoice(otherOrg, domain.PreviewInvoiceRequest{
		Items: []domain.LineItemInput{{ProductID: snowflake.ID(p.ID), Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestPreviewPaymentSchedule(t *testing.T) {
	f := newFixture(t)

	p := f.createProduct(t, func(p *productdomain.Product) {
		p.PriceMinor = 100000
	})
	now := time.Now().UTC()
	require.NoError(t, productrepo.Provide().UpsertPaymentPlan(context.Background(), f.db, &productdomain.PaymentPlan{
		ID:               f.node.Generate().Int64(),
		OrgID:            testOrgID,
		ProductID:        p.ID,
		NumInstallments:  3,
		IntervalType:     "MONTHLY",
		DownPaymentMinor: 20000,
		CreatedAt:        now,
		UpdatedAt:        now,
	}))

	start := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	entries, err := f.svc.PreviewPaymentSchedule(orgCtx(), domain.PreviewPaymentScheduleRequest{
		ProductID:  snowflake.ID(p.ID).String(),
		TotalMinor: 100000,
		StartAt:    start,
	})
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, 0, entries[0].InstallmentNum)
	assert.Equal(t, int64(20000), entries[0].AmountMinor)

	var sum int64
	for _, entry := range entries {
		sum += entry.AmountMinor
	}
	assert.Equal(t, int64(100000), sum)
}

func TestPreviewPaymentScheduleWithoutPlan(t *testing.T) {
	f := newFixture(t)

	p := f.createProduct(t, nil)
	_, err := f.svc.PreviewPaymentSchedule(orgCtx(), domain.PreviewPaymentScheduleRequest{
		ProductID: snowflake.ID(p.ID).String(),
	})
	assert.ErrorIs(t, err, domain.ErrNoPaymentPlan)
}

func TestPreviewPaymentScheduleRejectsOversizedPlan(t *testing.T) {
	f := newFixture(t)

	p := f.createProduct(t, nil)
	now := time.Now().UTC()
	require.NoError(t, productrepo.Provide().UpsertPaymentPlan(context.Background(), f.db, &productdomain.PaymentPlan{
		ID:              f.node.Generate().Int64(),
		OrgID:           testOrgID,
		ProductID:       p.ID,
		NumInstallments: 24,
		IntervalType:    "MONTHLY",
		CreatedAt:       now,
		UpdatedAt:       now,
	}))

	_, err := f.svc.PreviewPaymentSchedule(orgCtx(), domain.PreviewPaymentScheduleRequest{
		ProductID: snowflake.ID(p.ID).String(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInstallmentCount)
}

func TestPreviewRecurringSchedule(t *testing.T) {
	f := newFixture(t)

	p := f.createProduct(t, func(p *productdomain.Product) {
		p.PriceMinor = 5000
		p.RecurringInterval = strPtr("MONTHLY")
	})

	start := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	entries, err := f.svc.PreviewRecurringSchedule(orgCtx(), domain.PreviewRecurringScheduleRequest{
		ProductID:       snowflake.ID(p.ID).String(),
		StartAt:         start,
		RequestedCycles: 6,
	})
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, int64(5000), entries[0].AmountMinor)
	assert.Equal(t, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC), entries[3].BillingAt)
}

func TestPreviewRecurringScheduleDefaultsCycles(t *testing.T) {
	f := newFixture(t)

	p := f.createProduct(t, func(p *productdomain.Product) {
		p.RecurringInterval = strPtr("WEEKLY")
	})

	entries, err := f.svc.PreviewRecurringSchedule(orgCtx(), domain.PreviewRecurringScheduleRequest{
		ProductID: snowflake.ID(p.ID).String(),
		StartAt:   time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestPreviewRecurringScheduleNotRecurring(t *testing.T) {
	f := newFixture(t)

	p := f.createProduct(t, nil)
	_, err := f.svc.PreviewRecurringSchedule(orgCtx(), domain.PreviewRecurringScheduleRequest{
		ProductID: snowflake.ID(p.ID).String(),
	})
	assert.ErrorIs(t, err, domain.ErrNotRecurring)
}
