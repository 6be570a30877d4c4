package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	billingdomain "github.com/leadloom/leadloom/internal/billing/domain"
)

type previewLineItem struct {
	ProductID      string `json:"product_id"`
	Quantity       int64  `json:"quantity"`
	UnitPriceMinor *int64 `json:"unit_price_minor"`
}

type previewInvoiceRequest struct {
	Items []previewLineItem `json:"items"`
}

func (s *Server) PreviewInvoice(c *gin.Context) {
	var req previewInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items := make([]billingdomain.LineItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		id, err := snowflake.ParseString(strings.TrimSpace(item.ProductID))
		if err != nil {
			AbortWithError(c, billingdomain.ErrInvalidID)
			return
		}
		items = append(items, billingdomain.LineItemInput{
			ProductID:      id,
			Quantity:       item.Quantity,
			UnitPriceMinor: item.UnitPriceMinor,
		})
	}

	calc, err := s.billingSvc.PreviewInvoice(c.Request.Context(), billingdomain.PreviewInvoiceRequest{Items: items})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toCalculationResponse(calc)})
}

type calculatedLineResponse struct {
	ProductID        string `json:"product_id"`
	Quantity         int64  `json:"quantity"`
	UnitPriceMinor   int64  `json:"unit_price_minor"`
	DiscountMinor    int64  `json:"discount_minor"`
	TaxableBaseMinor int64  `json:"taxable_base_minor"`
	TaxMinor         int64  `json:"tax_minor"`
	CogsMinor        int64  `json:"cogs_minor"`
	TotalMinor       int64  `json:"total_minor"`
}

type calculationResponse struct {
	Currency           string                   `json:"currency"`
	Lines              []calculatedLineResponse `json:"lines"`
	TotalDiscountMinor int64                    `json:"total_discount_minor"`
	TotalTaxMinor      int64                    `json:"total_tax_minor"`
	TotalMinor         int64                    `json:"total_minor"`
	TotalCogsMinor     int64                    `json:"total_cogs_minor"`
}

func toCalculationResponse(calc *billingdomain.InvoiceCalculation) calculationResponse {
	lines := make([]calculatedLineResponse, 0, len(calc.Lines))
	for _, line := range calc.Lines {
		lines = append(lines, calculatedLineResponse{
			ProductID:        line.ProductID.String(),
			Quantity:         line.Quantity,
			UnitPriceMinor:   line.UnitPriceMinor,
			DiscountMinor:    line.DiscountMinor,
			TaxableBaseMinor: line.TaxableBaseMinor,
			TaxMinor:         line.TaxMinor,
			CogsMinor:        line.CogsMinor,
			TotalMinor:       line.TotalMinor,
		})
	}
	return calculationResponse{
		Currency:           calc.Currency,
		Lines:              lines,
		TotalDiscountMinor: calc.TotalDiscountMinor,
		TotalTaxMinor:      calc.TotalTaxMinor,
		TotalMinor:         calc.TotalMinor,
		TotalCogsMinor:     calc.TotalCogsMinor,
	}
}

type previewPaymentScheduleRequest struct {
	ProductID  string `json:"product_id"`
	TotalMinor int64  `json:"total_minor"`
	StartAt    string `json:"start_at"`
}

func (s *Server) PreviewPaymentSchedule(c *gin.Context) {
	var req previewPaymentScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	startAt, err := parseOptionalTime(req.StartAt)
	if err != nil {
		AbortWithError(c, newValidationError("start_at", "invalid_start_at", "invalid start_at"))
		return
	}

	entries, err := s.billingSvc.PreviewPaymentSchedule(c.Request.Context(), billingdomain.PreviewPaymentScheduleRequest{
		ProductID:  strings.TrimSpace(req.ProductID),
		TotalMinor: req.TotalMinor,
		StartAt:    startAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.httpMetrics.ObserveScheduleEntries("payment_preview", len(entries))

	out := make([]scheduleEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, scheduleEntryResponse{
			InstallmentNum: e.InstallmentNum,
			DueAt:          e.DueAt,
			AmountMinor:    e.AmountMinor,
			Description:    e.Description,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": out})
}

type scheduleEntryResponse struct {
	InstallmentNum int       `json:"installment_num"`
	DueAt          time.Time `json:"due_at"`
	AmountMinor    int64     `json:"amount_minor"`
	Description    string    `json:"description"`
}

type recurringEntryResponse struct {
	CycleNum    int       `json:"cycle_num"`
	BillingAt   time.Time `json:"billing_at"`
	AmountMinor int64     `json:"amount_minor"`
	Description string    `json:"description"`
}

type previewRecurringScheduleRequest struct {
	ProductID       string `json:"product_id"`
	PerCycleMinor   int64  `json:"per_cycle_minor"`
	StartAt         string `json:"start_at"`
	RequestedCycles int    `json:"requested_cycles"`
}

func (s *Server) PreviewRecurringSchedule(c *gin.Context) {
	var req previewRecurringScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	startAt, err := parseOptionalTime(req.StartAt)
	if err != nil {
		AbortWithError(c, newValidationError("start_at", "invalid_start_at", "invalid start_at"))
		return
	}

	entries, err := s.billingSvc.PreviewRecurringSchedule(c.Request.Context(), billingdomain.PreviewRecurringScheduleRequest{
		ProductID:       strings.TrimSpace(req.ProductID),
		PerCycleMinor:   req.PerCycleMinor,
		StartAt:         startAt,
		RequestedCycles: req.RequestedCycles,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.httpMetrics.ObserveScheduleEntries("recurring_preview", len(entries))

	out := make([]recurringEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, recurringEntryResponse{
			CycleNum:    e.CycleNum,
			BillingAt:   e.BillingAt,
			AmountMinor: e.AmountMinor,
			Description: e.Description,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": out})
}
