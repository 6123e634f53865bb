// Package metrics provides the OpenTelemetry meter provider and the
// application-level instruments, plus Prometheus HTTP middleware for the
// /metrics endpoint.
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

// Metrics exposes the application-level instruments.
type Metrics struct {
	predictions      metric.Int64Counter
	assemblyFailures metric.Int64Counter
	modelLoads       metric.Int64Counter
	trainingRows     metric.Int64Counter
}

// NewProvider configures and registers the meter provider. When disabled it
// installs a noop provider so instrument calls stay cheap.
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

// New configures the domain metric instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "quantclass"
	}
	meter := provider.Meter(name)

	predictions, err := meter.Int64Counter("quantclass_predictions_total")
	if err != nil {
		return nil, err
	}
	assemblyFailures, err := meter.Int64Counter("quantclass_feature_assembly_failures_total")
	if err != nil {
		return nil, err
	}
	modelLoads, err := meter.Int64Counter("quantclass_model_loads_total")
	if err != nil {
		return nil, err
	}
	trainingRows, err := meter.Int64Counter("quantclass_training_rows_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		predictions:      predictions,
		assemblyFailures: assemblyFailures,
		modelLoads:       modelLoads,
		trainingRows:     trainingRows,
	}, nil
}

// RecordPrediction counts one prediction attempt by outcome and, when the
// prediction succeeded, its class label.
func (m *Metrics) RecordPrediction(ctx context.Context, outcome, label string) {
	if m == nil {
		return
	}
	m.predictions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("label", label),
	))
}

// RecordAssemblyFailure counts a feature-assembly rejection by reason.
func (m *Metrics) RecordAssemblyFailure(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.assemblyFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordModelLoad counts a model load attempt.
func (m *Metrics) RecordModelLoad(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	m.modelLoads.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}

// RecordTrainingRows counts rows surviving each training pipeline stage.
func (m *Metrics) RecordTrainingRows(ctx context.Context, stage string, rows int) {
	if m == nil {
		return
	}
	m.trainingRows.Add(ctx, int64(rows), metric.WithAttributes(attribute.String("stage", stage)))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
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
