package observability

import (
	"context"
	"time"

	"osvillage/internal/config"
	contextutils "osvillage/internal/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// InitMetrics initializes an OTLP-exporting meter provider
func InitMetrics(cfg *config.OpenTelemetryConfig) (result0 *metric.MeterProvider, err error) {
	ctx := context.Background()

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var exporter metric.Exporter
	switch cfg.Protocol {
	case "grpc", "":
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
			otlpmetricgrpc.WithHeaders(cfg.Headers),
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exp, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create otlp grpc metric exporter: %w", err)
		}
		exporter = exp
	case "http":
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(cfg.Endpoint),
			otlpmetrichttp.WithHeaders(cfg.Headers),
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exp, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to create otlp http metric exporter: %w", err)
		}
		exporter = exp
	default:
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "unsupported otel protocol: %s", cfg.Protocol)
	}

	mp := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter)),
		metric.WithResource(res),
	)
	return mp, nil
}

// AIMetrics counts chat-completion calls and how they resolved
type AIMetrics struct {
	requests otelmetric.Int64Counter
	duration otelmetric.Float64Histogram
}

// NewAIMetrics registers the AI instruments on the global meter provider.
// Instrument creation errors leave the corresponding field nil, which Record tolerates.
func NewAIMetrics() *AIMetrics {
	meter := otel.Meter("osvillage/ai")
	m := &AIMetrics{}
	if c, err := meter.Int64Counter("osvillage.ai.requests",
		otelmetric.WithDescription("Chat completion calls by operation and result source")); err == nil {
		m.requests = c
	}
	if h, err := meter.Float64Histogram("osvillage.ai.request.duration",
		otelmetric.WithDescription("Chat completion latency"),
		otelmetric.WithUnit("s")); err == nil {
		m.duration = h
	}
	return m
}

// Record adds one observation for operation resolved with the given source
func (m *AIMetrics) Record(ctx context.Context, operation, source string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("ai.operation", operation),
		attribute.String("ai.source", source),
	)
	if m.requests != nil {
		m.requests.Add(ctx, 1, attrs)
	}
	if m.duration != nil {
		m.duration.Record(ctx, elapsed.Seconds(), attrs)
	}
}
