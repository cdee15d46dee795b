package telemetry

import (
	"context"
	"testing"

	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestInstrumentDB_RecordsQuerySpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, InstrumentDB(db, "gms", zap.NewNop()))

	ctx, span := provider.Tracer("test").Start(context.Background(), "request")
	var n int
	require.NoError(t, db.WithContext(ctx).Raw("SELECT 1").Scan(&n).Error)
	span.End()

	spans := recorder.Ended()
	require.GreaterOrEqual(t, len(spans), 2)
	var query sdktrace.ReadOnlySpan
	for _, s := range spans {
		if s.Name() != "request" {
			query = s
		}
	}
	require.NotNil(t, query)
	assert.Equal(t, span.SpanContext().TraceID(), query.SpanContext().TraceID())
}

func TestProvidersDisabled(t *testing.T) {
	ctx := context.Background()
	tp, err := NewTracerProvider(ctx, cfgDisabled(), zap.NewNop())
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("x"))
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, cfgDisabled(), zap.NewNop())
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("x"))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
}

func cfgDisabled() config.TelemetryConfig {
	return config.TelemetryConfig{ServiceName: "gms-test"}
}
