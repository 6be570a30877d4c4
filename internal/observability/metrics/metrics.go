package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	invoicesCalculated metric.Int64Counter
	paymentSchedules   metric.Int64Counter
	recurringSchedules metric.Int64Counter
	idempotentReplays  metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "leadloom"
	}
	meter := provider.Meter(name)

	invoicesCalculated, err := meter.Int64Counter("leadloom_invoices_calculated_total")
	if err != nil {
		return nil, err
	}
	paymentSchedules, err := meter.Int64Counter("leadloom_payment_schedules_total")
	if err != nil {
		return nil, err
	}
	recurringSchedules, err := meter.Int64Counter("leadloom_recurring_schedules_total")
	if err != nil {
		return nil, err
	}
	idempotentReplays, err := meter.Int64Counter("leadloom_idempotent_replays_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		invoicesCalculated: invoicesCalculated,
		paymentSchedules:   paymentSchedules,
		recurringSchedules: recurringSchedules,
		idempotentReplays:  idempotentReplays,
	}, nil
}

// RecordInvoiceCalculated increments invoice calculation counts.
func (m *Metrics) RecordInvoiceCalculated(ctx context.Context, orgID, currency string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("org_id", strings.TrimSpace(orgID)),
		attribute.String("currency", strings.TrimSpace(currency)),
	)
	m.invoicesCalculated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPaymentSchedule increments payment schedule generation counts.
func (m *Metrics) RecordPaymentSchedule(ctx context.Context, orgID, intervalType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("org_id", strings.TrimSpace(orgID)),
		attribute.String("interval_type", strings.TrimSpace(intervalType)),
	)
	m.paymentSchedules.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRecurringSchedule increments recurring schedule generation counts.
func (m *Metrics) RecordRecurringSchedule(ctx context.Context, orgID, intervalType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("org_id", strings.TrimSpace(orgID)),
		attribute.String("interval_type", strings.TrimSpace(intervalType)),
	)
	m.recurringSchedules.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordIdempotentReplay increments replayed request counts.
func (m *Metrics) RecordIdempotentReplay(ctx context.Context, orgID, endpoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("org_id", strings.TrimSpace(orgID)),
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
	)
	m.idempotentReplays.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"org_id":        {},
	"endpoint":      {},
	"status_code":   {},
	"currency":      {},
	"interval_type": {},
	"reason":        {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
