package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/leadloom/leadloom/internal/orgcontext"
	"github.com/leadloom/leadloom/internal/schedule/domain"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("schedule.service"),
		repo: p.Repo,
	}
}

func (s *Service) ListPaymentSchedule(ctx context.Context, invoiceID string) ([]domain.PaymentEntryResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	parsed, err := snowflake.ParseString(strings.TrimSpace(invoiceID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	entries, err := s.repo.FindPaymentByInvoice(ctx, s.db, orgID.Int64(), parsed.Int64())
	if err != nil {
		return nil, err
	}

	resp := make([]domain.PaymentEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, domain.PaymentEntryResponse{
			InstallmentNum: entry.InstallmentNum,
			DueAt:          entry.DueAt,
			AmountMinor:    entry.AmountMinor,
			Description:    entry.Description,
		})
	}
	return resp, nil
}

func (s *Service) ListRecurringSchedule(ctx context.Context, invoiceID string) ([]domain.RecurringEntryResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	parsed, err := snowflake.ParseString(strings.TrimSpace(invoiceID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	entries, err := s.repo.FindRecurringByInvoice(ctx, s.db, orgID.Int64(), parsed.Int64())
	if err != nil {
		return nil, err
	}

	resp := make([]domain.RecurringEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, domain.RecurringEntryResponse{
			CycleNum:    entry.CycleNum,
			BillingAt:   entry.BillingAt,
			AmountMinor: entry.AmountMinor,
			Description: entry.Description,
		})
	}
	return resp, nil
}
