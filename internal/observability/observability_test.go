package observability

import (
	"context"
	"testing"
	"time"

	"osvillage/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

func TestSetupObservability_NoneEnabled(t *testing.T) {
	cfg := &config.OpenTelemetryConfig{
		ServiceName: "test-service",
		Protocol:    "grpc",
		Endpoint:    "localhost:4317",
		Insecure:    true,
	}
	tp, mp, logger, err := SetupObservability(cfg, "village-test", zap.InfoLevel)
	require.NoError(t, err)
	assert.Nil(t, tp)
	assert.Nil(t, mp)
	require.NotNil(t, logger)
	assert.Equal(t, "village-test", cfg.ServiceName)

	assert.NoError(t, Shutdown(context.Background(), tp, mp))
}

func TestSetupObservability_TracingAndMetrics(t *testing.T) {
	cfg := &config.OpenTelemetryConfig{
		EnableTracing:  true,
		EnableMetrics:  true,
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Protocol:       "grpc",
		Endpoint:       "localhost:4317",
		Insecure:       true,
		SamplingRate:   1.0,
	}
	tp, mp, logger, err := SetupObservability(cfg, "", zap.InfoLevel)
	require.NoError(t, err)
	require.NotNil(t, tp)
	require.NotNil(t, mp)
	require.NotNil(t, logger)

	t.Cleanup(func() {
		otel.SetTracerProvider(noop.NewTracerProvider())
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = Shutdown(ctx, tp, mp)
	})
}

func TestInitStandardTracing_HTTP(t *testing.T) {
	tp, err := InitStandardTracing(&config.OpenTelemetryConfig{
		ServiceName:  "test-service",
		Protocol:     "http",
		Endpoint:     "localhost:4318",
		Insecure:     true,
		SamplingRate: 1.0,
	})
	require.NoError(t, err)
	require.NotNil(t, tp)
	_ = tp.Shutdown(context.Background())
}

func TestInitStandardTracing_InvalidProtocol(t *testing.T) {
	tp, err := InitStandardTracing(&config.OpenTelemetryConfig{
		ServiceName: "test-service",
		Protocol:    "carrier-pigeon",
		Endpoint:    "localhost:4317",
	})
	assert.Error(t, err)
	assert.Nil(t, tp)
}

func TestInitMetrics_InvalidProtocol(t *testing.T) {
	mp, err := InitMetrics(&config.OpenTelemetryConfig{
		ServiceName: "test-service",
		Protocol:    "carrier-pigeon",
	})
	assert.Error(t, err)
	assert.Nil(t, mp)
}

func TestAIMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m := NewAIMetrics()
	m.Record(context.Background(), "hint", "generated", 120*time.Millisecond)
	m.Record(context.Background(), "hint", "unavailable", 10*time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			if metric.Name != "osvillage.ai.requests" {
				continue
			}
			sum, ok := metric.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	assert.Equal(t, int64(2), total)
}

func TestAIMetrics_NilIsSafe(t *testing.T) {
	var m *AIMetrics
	assert.NotPanics(t, func() {
		m.Record(context.Background(), "quiz", "fallback", time.Second)
	})
}
