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

	billingdomain "github.com/leadloom/leadloom/internal/billing/domain"
	"github.com/leadloom/leadloom/internal/config"
	"github.com/leadloom/leadloom/internal/idempotency"
	invoicedomain "github.com/leadloom/leadloom/internal/invoice/domain"
	"github.com/leadloom/leadloom/internal/orgcontext"
	productdomain "github.com/leadloom/leadloom/internal/product/domain"
	productrepo "github.com/leadloom/leadloom/internal/product/repository"
	scheduledomain "github.com/leadloom/leadloom/internal/schedule/domain"
	schedulerepo "github.com/leadloom/leadloom/internal/schedule/repository"
	"github.com/leadloom/leadloom/pkg/db"
)

const testOrgID = int64(42)

type fixture struct {
	svc  invoicedomain.Service
	db   *gorm.DB
	node *snowflake.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(
		&productdomain.Product{},
		&productdomain.PaymentPlan{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceLine{},
		&scheduledomain.PaymentScheduleEntry{},
		&scheduledomain.RecurringScheduleEntry{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	holder := config.NewStaticBillingConfigHolder(config.BillingConfig{
		MaxRecurringCycles:     4,
		MaxInstallments:        12,
		DefaultRecurringCycles: 3,
		DefaultInterval:        "MONTHLY",
	})

	svc := NewService(ServiceParam{
		DB:        dbConn,
		Log:       zap.NewNop(),
		GenID:     node,
		Products:  productrepo.Provide(),
		Schedules: schedulerepo.Provide(),
		Idem:      idempotency.NewMemoryStore(),
		Limits:    holder,
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

func (f *fixture) attachPlan(t *testing.T, productID int64, installments int, downPayment int64) {
	t.Helper()

	now := time.Now().UTC()
	require.NoError(t, productrepo.Provide().UpsertPaymentPlan(context.Background(), f.db, &productdomain.PaymentPlan{
		ID:               f.node.Generate().Int64(),
		OrgID:            testOrgID,
		ProductID:        productID,
		NumInstallments:  installments,
		IntervalType:     "MONTHLY",
		DownPaymentMinor: downPayment,
		CreatedAt:        now,
		UpdatedAt:        now,
	}))
}

func orgCtx() context.Context {
	return orgcontext.WithOrgID(context.Background(), testOrgID)
}

func strPtr(v string) *string { return &v }

func TestCreateInvoicePersistsCalculation(t *testing.T) {
	f := newFixture(t)

	p := f.createProduct(t, func(p *productdomain.Product) {
		p.TaxRateBp = 1800
		p.DiscountType = strPtr("PERCENT")
		p.DiscountValue = 1000
	})

	resp, err := f.svc.Create(orgCtx(), invoicedomain.CreateRequest{
		Items: []invoicedomain.LineItemRequest{
			{ProductID: snowflake.ID(p.ID).String(), Quantity: 2},
		},
		IssuedAt: time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, "USD", resp.Currency)
	assert.Equal(t, int64(10000), resp.TotalDiscountMinor)
	assert.Equal(t, int64(16200), resp.TotalTaxMinor)
	assert.Equal(t, int64(106200), resp.TotalMinor)
	assert.Equal(t, "OPEN", resp.Status)

	got, err := f.svc.Get(orgCtx(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.TotalMinor, got.TotalMinor)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, int64(106200), got.Lines[0].TotalMinor)
}

func TestCreateInvoiceGeneratesPaymentSchedule(t *testing.T) {
	f := newFixture(t)

	p := f.createProduct(t, func(p *productdomain.Product) {
		p.PriceMinor = 100000
	})
	f.attachPlan(t, p.ID, 3, 20000)

	issued := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	resp, err := f.svc.Create(orgCtx(), invoicedomain.CreateRequest{
		Items: []invoicedomain.LineItemRequest{
			{ProductID: snowflake.ID(p.ID).String(), Quantity: 1},
		},
		IssuedAt: issued,
	})
	require.NoError(t, err)
	require.Len(t, resp.PaymentSchedule, 4)
	assert.Equal(t, 0, resp.PaymentSchedule[0].InstallmentNum)
	assert.Equal(t, issued, resp.PaymentSchedule[0].DueAt)
	assert.Equal(t, int64(20000), resp.PaymentSchedule[0].AmountMinor)

	var sum int64
	for _, entry := range resp.PaymentSchedule {
		sum += entry.AmountMinor
	}
	assert.Equal(t, resp.TotalMinor, sum)

	got, err := f.svc.Get(orgCtx(), resp.ID)
	require.NoError(t, err)
	require.Len(t, got.PaymentSchedule, 4)
	assert.Equal(t, "Installment 3 of 3", got.PaymentSchedule[3].Description)
}

func TestCreateInvoiceGeneratesRecurringSchedule(t *testing.T) {
	f := newFixture(t)

	p := f.createProduct(t, func(p *productdomain.Product) {
		p.PriceMinor = 5000
		p.RecurringInterval = strPtr("MONTHLY")
	})

	issued := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	resp, err := f.svc.Create(orgCtx(), invoicedomain.CreateRequest{
		Items: []invoicedomain.LineItemRequest{
			{ProductID: snowflake.ID(p.ID).String(), Quantity: 1},
		},
		IssuedAt: issued,
	})
	require.NoError(t, err)
	require.Len(t, resp.RecurringSchedule, 3)
	assert.Equal(t, 1, resp.RecurringSchedule[0].CycleNum)
	assert.Equal(t, issued, resp.RecurringSchedule[0].BillingAt)
	assert.Equal(t, int64(5000), resp.RecurringSchedule[0].AmountMinor)
}

func TestCreateInvoiceIdempotentReplay(t *testing.T) {
	f := newFixture(t)

	p := f.createProduct(t, nil)
	req := invoicedomain.CreateRequest{
		IdempotencyKey: "key-1",
		Items: []invoicedomain.LineItemRequest{
			{ProductID: snowflake.ID(p.ID).String(), Quantity: 1},
		},
		IssuedAt: time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
	}

	first, err := f.svc.Create(orgCtx(), req)
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	second, err := f.svc.Create(orgCtx(), req)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.ID, second.ID)

	invoices, err := f.svc.List(orgCtx(), invoicedomain.ListRequest{})
	require.NoError(t, err)
	assert.Len(t, invoices, 1)

	// The row carries the key as the caller supplied it, without the
	// store's org namespacing.
	id, err := snowflake.ParseString(first.ID)
	require.NoError(t, err)
	var row invoicedomain.Invoice
	require.NoError(t, f.db.First(&row, "id = ?", id.Int64()).Error)
	require.NotNil(t, row.IdempotencyKey)
	assert.Equal(t, "key-1", *row.IdempotencyKey)
}

func TestCreateInvoiceRejectsUnknownProduct(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(orgCtx(), invoicedomain.CreateRequest{
		Items: []invoicedomain.LineItemRequest{
			{ProductID: "999", Quantity: 1},
		},
	})
	assert.ErrorIs(t, err, billingdomain.ErrProductNotFound)

	invoices, listErr := f.svc.List(orgCtx(), invoicedomain.ListRequest{})
	require.NoError(t, listErr)
	assert.Empty(t, invoices)
}

func TestCreateInvoiceRejectsCurrencyMismatch(t *testing.T) {
	f := newFixture(t)

	usd := f.createProduct(t, nil)
	eur := f.createProduct(t, func(p *productdomain.Product) {
		p.Currency = "EUR"
	})

	_, err := f.svc.Create(orgCtx(), invoicedomain.CreateRequest{
		Items: []invoicedomain.LineItemRequest{
			{ProductID: snowflake.ID(usd.ID).String(), Quantity: 1},
			{ProductID: snowflake.ID(eur.ID).String(), Quantity: 1},
		},
	})
	assert.ErrorIs(t, err, billingdomain.ErrCurrencyMismatch)
}

func TestCreateInvoiceRejectsEmptyItems(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(orgCtx(), invoicedomain.CreateRequest{})
	assert.ErrorIs(t, err, invoicedomain.ErrEmptyInvoice)
}

func TestGetInvoiceScopedToOrg(t *testing.T) {
	f := newFixture(t)

	p := f.createProduct(t, nil)
	resp, err := f.svc.Create(orgCtx(), invoicedomain.CreateRequest{
		Items: []invoicedomain.LineItemRequest{
			{ProductID: snowflake.ID(p.ID).String(), Quantity: 1},
		},
	})
	require.NoError(t, err)

	otherOrg := orgcontext.WithOrgID(context.Background(), 7)
	_, err = f.svc.Get(otherOrg, resp.ID)
	assert.ErrorIs(t, err, invoicedomain.ErrNotFound)
}
