package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	billingdomain "github.com/leadloom/leadloom/internal/billing/domain"
	"github.com/leadloom/leadloom/internal/billing/engine"
	billingservice "github.com/leadloom/leadloom/internal/billing/service"
	"github.com/leadloom/leadloom/internal/config"
	"github.com/leadloom/leadloom/internal/idempotency"
	invoicedomain "github.com/leadloom/leadloom/internal/invoice/domain"
	"github.com/leadloom/leadloom/internal/observability/metrics"
	"github.com/leadloom/leadloom/internal/orgcontext"
	productdomain "github.com/leadloom/leadloom/internal/product/domain"
	scheduledomain "github.com/leadloom/leadloom/internal/schedule/domain"
	"github.com/leadloom/leadloom/pkg/db/option"
	"github.com/leadloom/leadloom/pkg/repository"
)

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Products  productdomain.Repository
	Schedules scheduledomain.Repository
	Idem      idempotency.Store
	Limits    *config.BillingConfigHolder
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID     *snowflake.Node
	products  productdomain.Repository
	schedules scheduledomain.Repository
	idem      idempotency.Store
	limits    *config.BillingConfigHolder
	metrics   *metrics.Metrics

	invoices repository.Repository[invoicedomain.Invoice]
	lines    repository.Repository[invoicedomain.InvoiceLine]
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("invoice.service"),
		genID:     p.GenID,
		products:  p.Products,
		schedules: p.Schedules,
		idem:      p.Idem,
		limits:    p.Limits,
		metrics:   p.Metrics,
		invoices:  repository.ProvideStore[invoicedomain.Invoice](p.DB),
		lines:     repository.ProvideStore[invoicedomain.InvoiceLine](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req invoicedomain.CreateRequest) (*invoicedomain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, invoicedomain.ErrInvalidOrganization
	}

	// The store key is namespaced per organization; the row keeps the
	// key exactly as the caller supplied it.
	idemKey := strings.TrimSpace(req.IdempotencyKey)
	storeKey := ""
	if idemKey != "" {
		storeKey = fmt.Sprintf("invoice:%d:%s", orgID.Int64(), idemKey)
		stored, found, err := s.idem.Get(ctx, storeKey)
		if err != nil {
			return nil, err
		}
		if found {
			var resp invoicedomain.Response
			if err := json.Unmarshal(stored, &resp); err != nil {
				return nil, err
			}
			resp.Replayed = true
			s.metrics.RecordIdempotentReplay(ctx, orgID.String(), "invoice.create")
			return &resp, nil
		}
	}

	if len(req.Items) == 0 {
		return nil, invoicedomain.ErrEmptyInvoice
	}

	items := make([]billingdomain.LineItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := snowflake.ParseString(strings.TrimSpace(item.ProductID))
		if err != nil {
			return nil, invoicedomain.ErrInvalidID
		}
		items = append(items, billingdomain.LineItemInput{
			ProductID:      productID,
			Quantity:       item.Quantity,
			UnitPriceMinor: item.UnitPriceMinor,
		})
	}

	rows, err := s.loadProducts(ctx, orgID.Int64(), items)
	if err != nil {
		return nil, err
	}

	catalog := make([]billingdomain.Product, 0, len(rows))
	for _, row := range rows {
		catalog = append(catalog, billingservice.EngineProduct(*row))
	}

	calc, err := engine.CalculateInvoice(catalog, items)
	if err != nil {
		return nil, err
	}

	issuedAt := req.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}
	issuedAt = issuedAt.UTC()

	now := time.Now().UTC()
	invoice := &invoicedomain.Invoice{
		ID:                 s.genID.Generate(),
		OrgID:              orgID,
		Status:             invoicedomain.InvoiceStatusOpen,
		Currency:           calc.Currency,
		TotalDiscountMinor: calc.TotalDiscountMinor,
		TotalTaxMinor:      calc.TotalTaxMinor,
		TotalMinor:         calc.TotalMinor,
		TotalCogsMinor:     calc.TotalCogsMinor,
		IssuedAt:           issuedAt,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if idemKey != "" {
		invoice.IdempotencyKey = &idemKey
	}
	if req.Metadata != nil {
		invoice.Metadata = datatypes.JSONMap(req.Metadata)
	}

	lines := make([]*invoicedomain.InvoiceLine, 0, len(calc.Lines))
	for _, line := range calc.Lines {
		row := rows[line.ProductID.Int64()]
		lines = append(lines, &invoicedomain.InvoiceLine{
			ID:               s.genID.Generate(),
			OrgID:            orgID,
			InvoiceID:        invoice.ID,
			ProductID:        line.ProductID,
			Description:      row.Name,
			Quantity:         line.Quantity,
			UnitPriceMinor:   line.UnitPriceMinor,
			DiscountMinor:    line.DiscountMinor,
			TaxableBaseMinor: line.TaxableBaseMinor,
			TaxMinor:         line.TaxMinor,
			CogsMinor:        line.CogsMinor,
			TotalMinor:       line.TotalMinor,
			CreatedAt:        now,
		})
	}

	paymentEntries, recurringEntries, err := s.buildSchedules(ctx, orgID, invoice.ID, calc.Lines, rows, issuedAt, now)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.invoices.WithTrx(tx).Create(ctx, invoice); err != nil {
			return err
		}
		if err := s.lines.WithTrx(tx).BatchCreate(ctx, lines); err != nil {
			return err
		}
		if err := s.schedules.BatchCreatePayment(ctx, tx, paymentEntries); err != nil {
			return err
		}
		return s.schedules.BatchCreateRecurring(ctx, tx, recurringEntries)
	})
	if err != nil {
		return nil, err
	}

	resp := s.toResponse(invoice, lines, paymentEntries, recurringEntries)

	if idemKey != "" {
		encoded, err := json.Marshal(resp)
		if err != nil {
			return nil, err
		}
		if err := s.idem.Set(ctx, storeKey, encoded, idempotency.DefaultTTL); err != nil {
			return nil, err
		}
	}

	s.metrics.RecordInvoiceCalculated(ctx, orgID.String(), calc.Currency)
	s.log.Info("invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("currency", calc.Currency),
		zap.Int64("total_minor", calc.TotalMinor),
		zap.Int("payment_entries", len(paymentEntries)),
		zap.Int("recurring_entries", len(recurringEntries)),
	)
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*invoicedomain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, invoicedomain.ErrInvalidOrganization
	}

	invoiceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, invoicedomain.ErrInvalidID
	}

	invoice, err := s.invoices.FindOne(ctx, &invoicedomain.Invoice{ID: invoiceID, OrgID: orgID})
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, invoicedomain.ErrNotFound
	}

	lines, err := s.lines.Find(ctx, &invoicedomain.InvoiceLine{InvoiceID: invoiceID, OrgID: orgID})
	if err != nil {
		return nil, err
	}

	paymentEntries, err := s.schedules.FindPaymentByInvoice(ctx, s.db, orgID.Int64(), invoiceID.Int64())
	if err != nil {
		return nil, err
	}
	recurringEntries, err := s.schedules.FindRecurringByInvoice(ctx, s.db, orgID.Int64(), invoiceID.Int64())
	if err != nil {
		return nil, err
	}

	return s.toResponse(invoice, lines, paymentEntries, recurringEntries), nil
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListRequest) ([]invoicedomain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, invoicedomain.ErrInvalidOrganization
	}

	filter := &invoicedomain.Invoice{OrgID: orgID}
	if status := strings.ToUpper(strings.TrimSpace(req.Status)); status != "" {
		filter.Status = invoicedomain.InvoiceStatus(status)
	}

	invoices, err := s.invoices.Find(ctx, filter,
		option.WithSortBy(option.WithQuerySortBy(req.SortBy, req.OrderBy, map[string]bool{
			"created_at":  true,
			"issued_at":   true,
			"total_minor": true,
		})),
	)
	if err != nil {
		return nil, err
	}

	resp := make([]invoicedomain.Response, 0, len(invoices))
	for _, invoice := range invoices {
		if invoice == nil {
			continue
		}
		resp = append(resp, *s.toResponse(invoice, nil, nil, nil))
	}
	return resp, nil
}

func (s *Service) loadProducts(ctx context.Context, orgID int64, items []billingdomain.LineItemInput) (map[int64]*productdomain.Product, error) {
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

	byID := make(map[int64]*productdomain.Product, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, billingdomain.ErrProductNotFound
		}
	}
	return byID, nil
}

// buildSchedules derives installment and recurring entries per line from
// the product's payment plan and recurring interval.
func (s *Service) buildSchedules(
	ctx context.Context,
	orgID, invoiceID snowflake.ID,
	calcLines []billingdomain.CalculatedLine,
	rows map[int64]*productdomain.Product,
	issuedAt, now time.Time,
) ([]scheduledomain.PaymentScheduleEntry, []scheduledomain.RecurringScheduleEntry, error) {
	limits := s.limits.Get()

	var paymentEntries []scheduledomain.PaymentScheduleEntry
	var recurringEntries []scheduledomain.RecurringScheduleEntry

	for _, line := range calcLines {
		row := rows[line.ProductID.Int64()]

		plan, err := s.products.FindPaymentPlan(ctx, s.db, orgID.Int64(), row.ID)
		if err != nil {
			return nil, nil, err
		}
		if plan != nil {
			if plan.NumInstallments > limits.MaxInstallments {
				return nil, nil, billingdomain.ErrInvalidInstallmentCount
			}
			entries, err := engine.BuildPaymentSchedule(billingdomain.PaymentPlan{
				NumInstallments:  plan.NumInstallments,
				IntervalType:     billingdomain.Interval(plan.IntervalType),
				IntervalDays:     plan.IntervalDays,
				DownPaymentMinor: plan.DownPaymentMinor,
			}, line.TotalMinor, issuedAt)
			if err != nil {
				return nil, nil, err
			}
			for _, entry := range entries {
				paymentEntries = append(paymentEntries, scheduledomain.PaymentScheduleEntry{
					ID:             s.genID.Generate().Int64(),
					OrgID:          orgID.Int64(),
					InvoiceID:      invoiceID.Int64(),
					InstallmentNum: entry.InstallmentNum,
					DueAt:          entry.DueAt,
					AmountMinor:    entry.AmountMinor,
					Description:    entry.Description,
					CreatedAt:      now,
				})
			}
		}

		if row.RecurringInterval != nil {
			entries, err := engine.BuildRecurringSchedule(
				billingdomain.Interval(*row.RecurringInterval),
				row.RecurringIntervalDays,
				line.TotalMinor,
				issuedAt,
				limits.DefaultRecurringCycles,
				limits.MaxRecurringCycles,
			)
			if err != nil {
				return nil, nil, err
			}
			for _, entry := range entries {
				recurringEntries = append(recurringEntries, scheduledomain.RecurringScheduleEntry{
					ID:          s.genID.Generate().Int64(),
					OrgID:       orgID.Int64(),
					InvoiceID:   invoiceID.Int64(),
					CycleNum:    entry.CycleNum,
					BillingAt:   entry.BillingAt,
					AmountMinor: entry.AmountMinor,
					Description: entry.Description,
					CreatedAt:   now,
				})
			}
		}
	}

	return paymentEntries, recurringEntries, nil
}

func (s *Service) toResponse(
	invoice *invoicedomain.Invoice,
	lines []*invoicedomain.InvoiceLine,
	paymentEntries []scheduledomain.PaymentScheduleEntry,
	recurringEntries []scheduledomain.RecurringScheduleEntry,
) *invoicedomain.Response {
	resp := &invoicedomain.Response{
		ID:                 invoice.ID.String(),
		OrganizationID:     invoice.OrgID.String(),
		Status:             string(invoice.Status),
		Currency:           invoice.Currency,
		TotalDiscountMinor: invoice.TotalDiscountMinor,
		TotalTaxMinor:      invoice.TotalTaxMinor,
		TotalMinor:         invoice.TotalMinor,
		TotalCogsMinor:     invoice.TotalCogsMinor,
		IssuedAt:           invoice.IssuedAt,
		CreatedAt:          invoice.CreatedAt,
	}

	for _, line := range lines {
		if line == nil {
			continue
		}
		resp.Lines = append(resp.Lines, invoicedomain.LineResponse{
			ID:               line.ID.String(),
			ProductID:        line.ProductID.String(),
			Description:      line.Description,
			Quantity:         line.Quantity,
			UnitPriceMinor:   line.UnitPriceMinor,
			DiscountMinor:    line.DiscountMinor,
			TaxableBaseMinor: line.TaxableBaseMinor,
			TaxMinor:         line.TaxMinor,
			CogsMinor:        line.CogsMinor,
			TotalMinor:       line.TotalMinor,
		})
	}

	for _, entry := range paymentEntries {
		resp.PaymentSchedule = append(resp.PaymentSchedule, scheduledomain.PaymentEntryResponse{
			InstallmentNum: entry.InstallmentNum,
			DueAt:          entry.DueAt,
			AmountMinor:    entry.AmountMinor,
			Description:    entry.Description,
		})
	}
	for _, entry := range recurringEntries {
		resp.RecurringSchedule = append(resp.RecurringSchedule, scheduledomain.RecurringEntryResponse{
			CycleNum:    entry.CycleNum,
			BillingAt:   entry.BillingAt,
			AmountMinor: entry.AmountMinor,
			Description: entry.Description,
		})
	}

	return resp
}
