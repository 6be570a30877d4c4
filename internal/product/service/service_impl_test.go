package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/leadloom/leadloom/internal/orgcontext"
	"github.com/leadloom/leadloom/internal/product/domain"
	"github.com/leadloom/leadloom/internal/product/repository"
	"github.com/leadloom/leadloom/pkg/db"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&domain.Product{}, &domain.PaymentPlan{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    dbConn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func orgCtx() context.Context {
	return orgcontext.WithOrgID(context.Background(), 42)
}

func stringPtr(v string) *string { return &v }

func TestCreateAndGetProduct(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(orgCtx(), domain.CreateRequest{
		Code:          "seat-license",
		Name:          "Seat License",
		Currency:      "usd",
		PriceMinor:    50000,
		TaxRateBp:     1800,
		DiscountType:  stringPtr("PERCENT"),
		DiscountValue: 1000,
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "USD", created.Currency)
	assert.Equal(t, int64(50000), created.PriceMinor)
	assert.True(t, created.Active)

	got, err := svc.Get(orgCtx(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, int64(1800), got.TaxRateBp)
	require.NotNil(t, got.DiscountType)
	assert.Equal(t, "PERCENT", *got.DiscountType)
}

func TestCreateProductRejectsBadInput(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(orgCtx(), domain.CreateRequest{Code: "", Name: "X", Currency: "USD"})
	assert.ErrorIs(t, err, domain.ErrInvalidCode)

	_, err = svc.Create(orgCtx(), domain.CreateRequest{Code: "x", Name: "X", Currency: "DOLLARS"})
	assert.ErrorIs(t, err, domain.ErrInvalidCurrency)

	_, err = svc.Create(orgCtx(), domain.CreateRequest{Code: "x", Name: "X", Currency: "USD", PriceMinor: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = svc.Create(orgCtx(), domain.CreateRequest{Code: "x", Name: "X", Currency: "USD", TaxRateBp: 10001})
	assert.ErrorIs(t, err, domain.ErrInvalidTaxRate)

	_, err = svc.Create(orgCtx(), domain.CreateRequest{
		Code: "x", Name: "X", Currency: "USD",
		DiscountType: stringPtr("PERCENT"), DiscountValue: 12000,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAdjustment)

	_, err = svc.Create(orgCtx(), domain.CreateRequest{
		Code: "x", Name: "X", Currency: "USD",
		RecurringInterval: stringPtr("FORTNIGHTLY"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInterval)
}

func TestCreateProductRequiresOrg(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateRequest{
		Code: "x", Name: "X", Currency: "USD",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}

func TestUpdateProductPriceAndArchive(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(orgCtx(), domain.CreateRequest{
		Code: "consulting", Name: "Consulting Hour", Currency: "EUR", PriceMinor: 15000,
	})
	require.NoError(t, err)

	newPrice := int64(18000)
	updated, err := svc.Update(orgCtx(), domain.UpdateRequest{ID: created.ID, PriceMinor: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, int64(18000), updated.PriceMinor)

	archived, err := svc.Archive(orgCtx(), created.ID)
	require.NoError(t, err)
	assert.False(t, archived.Active)
}

func TestListFiltersByActive(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.Create(orgCtx(), domain.CreateRequest{Code: "a", Name: "A", Currency: "USD"})
	require.NoError(t, err)
	_, err = svc.Create(orgCtx(), domain.CreateRequest{Code: "b", Name: "B", Currency: "USD"})
	require.NoError(t, err)

	_, err = svc.Archive(orgCtx(), first.ID)
	require.NoError(t, err)

	active := true
	items, err := svc.List(orgCtx(), domain.ListRequest{Active: &active})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].Code)
}

func TestSetAndGetPaymentPlan(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(orgCtx(), domain.CreateRequest{
		Code: "training", Name: "Training Package", Currency: "USD", PriceMinor: 100000,
	})
	require.NoError(t, err)

	plan, err := svc.SetPaymentPlan(orgCtx(), domain.SetPaymentPlanRequest{
		ProductID:        created.ID,
		NumInstallments:  3,
		IntervalType:     "monthly",
		DownPaymentMinor: 20000,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, plan.NumInstallments)
	assert.Equal(t, "MONTHLY", plan.IntervalType)

	got, err := svc.GetPaymentPlan(orgCtx(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), got.DownPaymentMinor)

	updated, err := svc.SetPaymentPlan(orgCtx(), domain.SetPaymentPlanRequest{
		ProductID:       created.ID,
		NumInstallments: 6,
		IntervalType:    "WEEKLY",
	})
	require.NoError(t, err)
	assert.Equal(t, 6, updated.NumInstallments)

	got, err = svc.GetPaymentPlan(orgCtx(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.NumInstallments)
	assert.Equal(t, int64(0), got.DownPaymentMinor)
}

func TestSetPaymentPlanValidation(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(orgCtx(), domain.CreateRequest{
		Code: "x", Name: "X", Currency: "USD",
	})
	require.NoError(t, err)

	_, err = svc.SetPaymentPlan(orgCtx(), domain.SetPaymentPlanRequest{
		ProductID:       created.ID,
		NumInstallments: 0,
		IntervalType:    "MONTHLY",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentPlan)

	_, err = svc.SetPaymentPlan(orgCtx(), domain.SetPaymentPlanRequest{
		ProductID:       created.ID,
		NumInstallments: 3,
		IntervalType:    "CUSTOM_DAYS",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInterval)

	_, err = svc.GetPaymentPlan(orgCtx(), created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
