package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/leadloom/leadloom/internal/billing/domain"
	"github.com/leadloom/leadloom/internal/billing/engine"
	"github.com/leadloom/leadloom/internal/config"
	"github.com/leadloom/leadloom/internal/observability/metrics"
	"github.com/leadloom/leadloom/internal/orgcontext"
	productdomain "github.com/leadloom/leadloom/internal/product/domain"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Products productdomain.Repository
	Limits   *config.BillingConfigHolder
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	products productdomain.Repository
	limits   *config.BillingConfigHolder
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("billing.service"),
		products: p.Products,
		limits:   p.Limits,
		metrics:  p.Metrics,
	}
}

func (s *Service) PreviewInvoice(ctx context.Context, req domain.PreviewInvoiceRequest) (*domain.InvoiceCalculation, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	catalog, err := s.loadCatalog(ctx, orgID.Int64(), req.Items)
	if err != nil {
		return nil, err
	}

	calc, err := engine.CalculateInvoice(catalog, req.Items)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordInvoiceCalculated(ctx, orgID.String(), calc.Currency)
	return calc, nil
}

func (s *Service) PreviewPaymentSchedule(ctx context.Context, req domain.PreviewPaymentScheduleRequest) ([]domain.ScheduleEntry, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	product, err := s.products.FindByID(ctx, s.db, orgID.Int64(), productID.Int64())
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	plan, err := s.products.FindPaymentPlan(ctx, s.db, orgID.Int64(), productID.Int64())
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrNoPaymentPlan
	}

	limits := s.limits.Get()
	if plan.NumInstallments > limits.MaxInstallments {
		return nil, domain.ErrInvalidInstallmentCount
	}

	total := req.TotalMinor
	if total == 0 {
		total = product.PriceMinor
	}

	entries, err := engine.BuildPaymentSchedule(domain.PaymentPlan{
		NumInstallments:  plan.NumInstallments,
		IntervalType:     domain.Interval(plan.IntervalType),
		IntervalDays:     plan.IntervalDays,
		DownPaymentMinor: plan.DownPaymentMinor,
	}, total, normalizeStart(req.StartAt))
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPaymentSchedule(ctx, orgID.String(), plan.IntervalType)
	return entries, nil
}

func (s *Service) PreviewRecurringSchedule(ctx context.Context, req domain.PreviewRecurringScheduleRequest) ([]domain.RecurringEntry, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	product, err := s.products.FindByID(ctx, s.db, orgID.Int64(), productID.Int64())
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	if product.RecurringInterval == nil {
		return nil, domain.ErrNotRecurring
	}

	limits := s.limits.Get()

	perCycle := req.PerCycleMinor
	if perCycle == 0 {
		perCycle = product.PriceMinor
	}
	requested := req.RequestedCycles
	if requested == 0 {
		requested = limits.DefaultRecurringCycles
	}

	entries, err := engine.BuildRecurringSchedule(
		domain.Interval(*product.RecurringInterval),
		product.RecurringIntervalDays,
		perCycle,
		normalizeStart(req.StartAt),
		requested,
		limits.MaxRecurringCycles,
	)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordRecurringSchedule(ctx, orgID.String(), *product.RecurringInterval)
	return entries, nil
}

func (s *Service) loadCatalog(ctx context.Context, orgID int64, items []domain.LineItemInput) ([]domain.Product, error) {
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		id := item.ProductID.Int64()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	rows, err := s.products.FindByIDs(ctx, s.db, orgID, ids)
	if err != nil {
		return nil, err
	}

	catalog := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		catalog = append(catalog, EngineProduct(row))
	}
	return catalog, nil
}

// EngineProduct projects a catalog row onto the engine's value type.
func EngineProduct(row productdomain.Product) domain.Product {
	p := domain.Product{
		ID:                    snowflake.ID(row.ID),
		Currency:              row.Currency,
		PriceMinor:            row.PriceMinor,
		TaxRateBp:             row.TaxRateBp,
		DiscountValue:         row.DiscountValue,
		CogsValue:             row.CogsValue,
		RecurringIntervalDays: row.RecurringIntervalDays,
	}
	if row.DiscountType != nil {
		kind := domain.AdjustmentType(*row.DiscountType)
		p.DiscountType = &kind
	}
	if row.CogsType != nil {
		kind := domain.AdjustmentType(*row.CogsType)
		p.CogsType = &kind
	}
	if row.RecurringInterval != nil {
		kind := domain.Interval(*row.RecurringInterval)
		p.RecurringInterval = &kind
	}
	return p
}

func normalizeStart(start time.Time) time.Time {
	if start.IsZero() {
		return time.Now().UTC()
	}
	return start.UTC()
}
