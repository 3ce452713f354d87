package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agencyos/backend/internal/domain/activity"
	"github.com/agencyos/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestSetup_Disabled(t *testing.T) {
	ctx := context.Background()
	p, err := Setup(ctx, config.TelemetryConfig{ServiceName: "agencyos"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, p.Tracer.IsEnabled())
	assert.False(t, p.Logs.IsEnabled())
	assert.False(t, p.Profiler.IsEnabled())
	assert.NotNil(t, p.Meter.Meter("test"))
	assert.NotNil(t, p.Tracer.Tracer("test"))

	logger := zap.NewNop()
	assert.Same(t, logger, p.Logs.Bridge(logger, "agencyos", zapcore.InfoLevel))
	assert.NoError(t, p.Shutdown(ctx))
	assert.NoError(t, p.Profiler.Stop())
}

func TestNewProfiler_RequiresAddress(t *testing.T) {
	_, err := NewProfiler(ProfilerConfig{Enabled: true, ApplicationName: "agencyos"}, zap.NewNop())
	assert.Error(t, err)
	_, err = NewProfiler(ProfilerConfig{Enabled: true, ServerAddress: "http://pyroscope:4040"}, zap.NewNop())
	assert.Error(t, err)

	err = ProfilerConfig{Enabled: true}.validate()
	assert.ErrorContains(t, err, "server address")
	assert.ErrorContains(t, err, "application name")

	var idle Profiler
	assert.False(t, idle.IsEnabled())
	assert.NoError(t, idle.Stop())
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), sampler(0).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestRecordMetrics_CountsChanges(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	m, err := NewRecordMetrics(meter)
	require.NoError(t, err)
	assert.Nil(t, m.EventTypes())

	ctx := context.Background()
	ev := activity.NewRecordChanged(activity.EventTypeRecordTransitioned, "invoices", "inv-001")
	ev.ToStatus = "paid"
	require.NoError(t, m.Handle(ctx, ev))
	require.NoError(t, m.Handle(ctx, ev))
	require.NoError(t, m.Handle(ctx, activity.NewRecordChanged(activity.EventTypeRecordsReset, "invoices", "")))

	sum, ok := collect(t, reader)["agency.record.changes"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	counts := map[string]int64{}
	for _, dp := range sum.DataPoints {
		kind, _ := dp.Attributes.Value(AttrChangeKind)
		counts[kind.AsString()] += dp.Value
	}
	assert.Equal(t, map[string]int64{"transitioned": 2, "reset": 1}, counts)
}

func TestHTTPMetrics_Observe(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	m, err := NewHTTPMetrics(meter)
	require.NoError(t, err)

	m.Observe(context.Background(), "GET", "/api/v1/:module", 200, 30*time.Millisecond)

	metrics := collect(t, reader)
	sum := metrics["http.server.requests"].Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)
	route, _ := sum.DataPoints[0].Attributes.Value(AttrHTTPRoute)
	assert.Equal(t, "/api/v1/:module", route.AsString())

	hist := metrics["http.server.duration"].Data.(metricdata.Histogram[float64])
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}

func TestStartSpanAndRecordError(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx, span := StartSpan(context.Background(), "report.summary", attribute.String("module", "invoices"))
	assert.NotEmpty(t, TraceID(ctx))
	RecordError(span, nil)
	RecordError(span, errors.New("boom"))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "report.summary", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Empty(t, TraceID(context.Background()))
}

func TestInstrumentGorm_EmitsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, InstrumentGorm(db, "sqlite", false))

	var n int
	require.NoError(t, db.Raw("SELECT 1").Scan(&n).Error)
	assert.Equal(t, 1, n)
	assert.NotEmpty(t, exporter.GetSpans())
}

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}
	logger := zap.New(core).With(zap.String("module", "tax"))

	logger.Info("skipped")
	logger.Warn("kept")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
	assert.Equal(t, "tax", logs.All()[0].ContextMap()["module"])
}
