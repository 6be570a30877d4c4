package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	billingdomain "github.com/leadloom/leadloom/internal/billing/domain"
	"github.com/leadloom/leadloom/internal/billing/engine"
	"github.com/leadloom/leadloom/internal/orgcontext"
	"github.com/leadloom/leadloom/internal/product/domain"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("product.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	filter := domain.ListRequest{
		Name:    strings.TrimSpace(req.Name),
		Active:  req.Active,
		SortBy:  strings.TrimSpace(req.SortBy),
		OrderBy: strings.TrimSpace(req.OrderBy),
	}

	items, err := s.repo.List(ctx, s.db, orgID.Int64(), filter)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, s.toResponse(&item))
	}

	return resp, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, domain.ErrInvalidCode
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if len(currency) != 3 {
		return nil, domain.ErrInvalidCurrency
	}

	if req.PriceMinor < 0 {
		return nil, domain.ErrInvalidPrice
	}
	if req.TaxRateBp < 0 || req.TaxRateBp > engine.BasisPointScale {
		return nil, domain.ErrInvalidTaxRate
	}

	discountType, err := normalizeAdjustment(req.DiscountType, req.DiscountValue)
	if err != nil {
		return nil, err
	}
	cogsType, err := normalizeAdjustment(req.CogsType, req.CogsValue)
	if err != nil {
		return nil, err
	}

	recurringInterval, recurringDays, err := normalizeRecurring(req.RecurringInterval, req.RecurringIntervalDays)
	if err != nil {
		return nil, err
	}

	description := strings.TrimSpace(ptrToString(req.Description))
	var descriptionPtr *string
	if description != "" {
		descriptionPtr = &description
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now().UTC()
	p := &domain.Product{
		ID:                    s.genID.Generate().Int64(),
		OrgID:                 orgID.Int64(),
		Code:                  code,
		Name:                  name,
		Description:           descriptionPtr,
		Currency:              currency,
		PriceMinor:            req.PriceMinor,
		TaxRateBp:             req.TaxRateBp,
		DiscountType:          discountType,
		DiscountValue:         req.DiscountValue,
		CogsType:              cogsType,
		CogsValue:             req.CogsValue,
		RecurringInterval:     recurringInterval,
		RecurringIntervalDays: recurringDays,
		Active:                active,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if req.Metadata != nil {
		p.Metadata = datatypes.JSONMap(req.Metadata)
	}
	if err := s.repo.Create(ctx, s.db, p); err != nil {
		return nil, err
	}
	resp := s.toResponse(p)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID.Int64(), productID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	productID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID.Int64(), productID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			item.Description = nil
		} else {
			item.Description = &description
		}
	}
	if req.PriceMinor != nil {
		if *req.PriceMinor < 0 {
			return nil, domain.ErrInvalidPrice
		}
		item.PriceMinor = *req.PriceMinor
	}
	if req.TaxRateBp != nil {
		if *req.TaxRateBp < 0 || *req.TaxRateBp > engine.BasisPointScale {
			return nil, domain.ErrInvalidTaxRate
		}
		item.TaxRateBp = *req.TaxRateBp
	}
	if req.DiscountType != nil || req.DiscountValue != nil {
		value := item.DiscountValue
		if req.DiscountValue != nil {
			value = *req.DiscountValue
		}
		typed := req.DiscountType
		if typed == nil {
			typed = item.DiscountType
		}
		normalized, err := normalizeAdjustment(typed, value)
		if err != nil {
			return nil, err
		}
		item.DiscountType = normalized
		item.DiscountValue = value
	}
	if req.CogsType != nil || req.CogsValue != nil {
		value := item.CogsValue
		if req.CogsValue != nil {
			value = *req.CogsValue
		}
		typed := req.CogsType
		if typed == nil {
			typed = item.CogsType
		}
		normalized, err := normalizeAdjustment(typed, value)
		if err != nil {
			return nil, err
		}
		item.CogsType = normalized
		item.CogsValue = value
	}
	if req.RecurringInterval != nil || req.RecurringIntervalDays != nil {
		kind := req.RecurringInterval
		if kind == nil {
			kind = item.RecurringInterval
		}
		days := item.RecurringIntervalDays
		if req.RecurringIntervalDays != nil {
			days = *req.RecurringIntervalDays
		}
		normalized, normalizedDays, err := normalizeRecurring(kind, days)
		if err != nil {
			return nil, err
		}
		item.RecurringInterval = normalized
		item.RecurringIntervalDays = normalizedDays
	}
	if req.Active != nil {
		item.Active = *req.Active
	}
	if req.Metadata != nil {
		item.Metadata = datatypes.JSONMap(req.Metadata)
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) Archive(ctx context.Context, id string) (*domain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID.Int64(), productID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	item.Active = false
	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) SetPaymentPlan(ctx context.Context, req domain.SetPaymentPlanRequest) (*domain.PaymentPlanResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, orgID.Int64(), productID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.NumInstallments < 1 {
		return nil, domain.ErrInvalidPaymentPlan
	}
	if req.DownPaymentMinor < 0 {
		return nil, domain.ErrInvalidPaymentPlan
	}

	kind := billingdomain.Interval(strings.ToUpper(strings.TrimSpace(req.IntervalType)))
	if !billingdomain.ValidInterval(kind) {
		return nil, domain.ErrInvalidInterval
	}
	days := req.IntervalDays
	if kind == billingdomain.IntervalCustomDays {
		if days < 1 {
			return nil, domain.ErrInvalidInterval
		}
	} else {
		days = 0
	}

	now := time.Now().UTC()
	plan := &domain.PaymentPlan{
		ID:               s.genID.Generate().Int64(),
		OrgID:            orgID.Int64(),
		ProductID:        productID.Int64(),
		NumInstallments:  req.NumInstallments,
		IntervalType:     string(kind),
		IntervalDays:     days,
		DownPaymentMinor: req.DownPaymentMinor,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.UpsertPaymentPlan(ctx, s.db, plan); err != nil {
		return nil, err
	}

	resp := s.toPlanResponse(plan)
	return &resp, nil
}

func (s *Service) GetPaymentPlan(ctx context.Context, productID string) (*domain.PaymentPlanResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	parsed, err := snowflake.ParseString(strings.TrimSpace(productID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	plan, err := s.repo.FindPaymentPlan(ctx, s.db, orgID.Int64(), parsed.Int64())
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrNotFound
	}

	resp := s.toPlanResponse(plan)
	return &resp, nil
}

func (s *Service) toResponse(p *domain.Product) domain.Response {
	resp := domain.Response{
		ID:                    snowflake.ID(p.ID).String(),
		OrganizationID:        snowflake.ID(p.OrgID).String(),
		Code:                  p.Code,
		Name:                  p.Name,
		Description:           p.Description,
		Currency:              p.Currency,
		PriceMinor:            p.PriceMinor,
		TaxRateBp:             p.TaxRateBp,
		DiscountType:          p.DiscountType,
		DiscountValue:         p.DiscountValue,
		CogsType:              p.CogsType,
		CogsValue:             p.CogsValue,
		RecurringInterval:     p.RecurringInterval,
		RecurringIntervalDays: p.RecurringIntervalDays,
		Active:                p.Active,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}

	if len(p.Metadata) > 0 {
		resp.Metadata = map[string]any(p.Metadata)
	}

	return resp
}

func (s *Service) toPlanResponse(plan *domain.PaymentPlan) domain.PaymentPlanResponse {
	return domain.PaymentPlanResponse{
		ID:               snowflake.ID(plan.ID).String(),
		ProductID:        snowflake.ID(plan.ProductID).String(),
		NumInstallments:  plan.NumInstallments,
		IntervalType:     plan.IntervalType,
		IntervalDays:     plan.IntervalDays,
		DownPaymentMinor: plan.DownPaymentMinor,
		CreatedAt:        plan.CreatedAt,
		UpdatedAt:        plan.UpdatedAt,
	}
}

func normalizeAdjustment(kind *string, value int64) (*string, error) {
	if kind == nil {
		if value != 0 {
			return nil, domain.ErrInvalidAdjustment
		}
		return nil, nil
	}

	normalized := strings.ToUpper(strings.TrimSpace(*kind))
	switch billingdomain.AdjustmentType(normalized) {
	case billingdomain.AdjustmentPercent:
		if value < 0 || value > engine.BasisPointScale {
			return nil, domain.ErrInvalidAdjustment
		}
	case billingdomain.AdjustmentAmount:
		if value < 0 {
			return nil, domain.ErrInvalidAdjustment
		}
	default:
		return nil, domain.ErrInvalidAdjustment
	}
	return &normalized, nil
}

func normalizeRecurring(kind *string, days int) (*string, int, error) {
	if kind == nil {
		return nil, 0, nil
	}

	normalized := billingdomain.Interval(strings.ToUpper(strings.TrimSpace(string(*kind))))
	if !billingdomain.ValidInterval(normalized) {
		return nil, 0, domain.ErrInvalidInterval
	}
	if normalized == billingdomain.IntervalCustomDays {
		if days < 1 {
			return nil, 0, domain.ErrInvalidInterval
		}
	} else {
		days = 0
	}
	value := string(normalized)
	return &value, days, nil
}

func ptrToString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
