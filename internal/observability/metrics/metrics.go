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

// Metrics exposes the commission engine instruments.
type Metrics struct {
	calculations     metric.Int64Counter
	zeroResolutions  metric.Int64Counter
	formulaFailures  metric.Int64Counter
	simulateRequests metric.Int64Counter
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

	if log != nil && cfg.Enabled {
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
		name = "acentera"
	}
	meter := provider.Meter(name)

	calculations, err := meter.Int64Counter("acentera_commission_calculations_total")
	if err != nil {
		return nil, err
	}
	zeroResolutions, err := meter.Int64Counter("acentera_commission_zero_resolutions_total")
	if err != nil {
		return nil, err
	}
	formulaFailures, err := meter.Int64Counter("acentera_commission_formula_failures_total")
	if err != nil {
		return nil, err
	}
	simulateRequests, err := meter.Int64Counter("acentera_commission_simulate_requests_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		calculations:     calculations,
		zeroResolutions:  zeroResolutions,
		formulaFailures:  formulaFailures,
		simulateRequests: simulateRequests,
	}, nil
}

// RecordCalculation increments calculation counts by resolution source.
func (m *Metrics) RecordCalculation(ctx context.Context, source string) {
	if m == nil {
		return
	}
	m.calculations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", strings.TrimSpace(source)),
	))
}

// RecordZeroResolution increments zero-amount resolution counts.
func (m *Metrics) RecordZeroResolution(ctx context.Context, source string) {
	if m == nil {
		return
	}
	m.zeroResolutions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", strings.TrimSpace(source)),
	))
}

// RecordFormulaFailure increments counts of formulas that failed to parse.
func (m *Metrics) RecordFormulaFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.formulaFailures.Add(ctx, 1)
}

// RecordSimulateRequest increments simulation request counts.
func (m *Metrics) RecordSimulateRequest(ctx context.Context, source string) {
	if m == nil {
		return
	}
	m.simulateRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", strings.TrimSpace(source)),
	))
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
