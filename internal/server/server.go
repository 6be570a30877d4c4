package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/leadloom/leadloom/internal/billing"
	billingdomain "github.com/leadloom/leadloom/internal/billing/domain"
	"github.com/leadloom/leadloom/internal/config"
	"github.com/leadloom/leadloom/internal/idempotency"
	"github.com/leadloom/leadloom/internal/invoice"
	invoicedomain "github.com/leadloom/leadloom/internal/invoice/domain"
	"github.com/leadloom/leadloom/internal/observability"
	obsmiddleware "github.com/leadloom/leadloom/internal/observability/logger"
	obsmetrics "github.com/leadloom/leadloom/internal/observability/metrics"
	obstracing "github.com/leadloom/leadloom/internal/observability/tracing"
	"github.com/leadloom/leadloom/internal/product"
	productdomain "github.com/leadloom/leadloom/internal/product/domain"
	"github.com/leadloom/leadloom/internal/schedule"
	scheduledomain "github.com/leadloom/leadloom/internal/schedule/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	idempotency.Module,
	product.Module,
	billing.Module,
	invoice.Module,
	schedule.Module,
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	genID  *snowflake.Node

	productSvc  productdomain.Service
	billingSvc  billingdomain.Service
	invoiceSvc  invoicedomain.Service
	scheduleSvc scheduledomain.Service

	httpMetrics *obsmetrics.HTTPMetrics
}

type ServerParams struct {
	fx.In

	Gin   *gin.Engine
	Cfg   config.Config
	DB    *gorm.DB
	GenID *snowflake.Node

	ProductSvc  productdomain.Service
	BillingSvc  billingdomain.Service
	InvoiceSvc  invoicedomain.Service
	ScheduleSvc scheduledomain.Service

	HTTPMetrics *obsmetrics.HTTPMetrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		genID:       p.GenID,
		productSvc:  p.ProductSvc,
		billingSvc:  p.BillingSvc,
		invoiceSvc:  p.InvoiceSvc,
		scheduleSvc: p.ScheduleSvc,
		httpMetrics: p.HTTPMetrics,
	}
}

func registerRoutes(s *Server) {
	s.RegisterAPIRoutes()
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterAPIRoutes() {
	v1 := s.engine.Group("/v1", s.OrgRequired())

	products := v1.Group("/products")
	products.POST("", s.CreateProduct)
	products.GET("", s.ListProducts)
	products.GET("/:id", s.GetProductByID)
	products.PATCH("/:id", s.UpdateProduct)
	products.POST("/:id/archive", s.ArchiveProduct)
	products.PUT("/:id/payment-plan", s.SetPaymentPlan)
	products.GET("/:id/payment-plan", s.GetPaymentPlan)

	invoices := v1.Group("/invoices")
	invoices.POST("", s.CreateInvoice)
	invoices.GET("", s.ListInvoices)
	invoices.GET("/:id", s.GetInvoiceByID)
	invoices.GET("/:id/payment-schedule", s.ListPaymentSchedule)
	invoices.GET("/:id/recurring-schedule", s.ListRecurringSchedule)

	billingGroup := v1.Group("/billing")
	billingGroup.POST("/preview", s.PreviewInvoice)
	billingGroup.POST("/payment-schedule:preview", s.PreviewPaymentSchedule)
	billingGroup.POST("/recurring-schedule:preview", s.PreviewRecurringSchedule)
}
