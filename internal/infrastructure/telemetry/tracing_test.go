package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/barcode/internal/domain/barcode"
	"github.com/erp/barcode/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func endedSpan(t *testing.T, sr *tracetest.SpanRecorder) sdktrace.ReadOnlySpan {
	t.Helper()
	spans := sr.Ended()
	require.Len(t, spans, 1)
	return spans[0]
}

func TestStartOperation(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, span := StartOperation(context.Background(), "scan")
	assert.NotEmpty(t, GetTraceID(ctx))
	span.End()

	s := endedSpan(t, sr)
	assert.Equal(t, "barcode.scan", s.Name())
	assert.Contains(t, s.Attributes(), AttrOperation.String("scan"))
}

func TestRecordScan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := StartOperation(context.Background(), "scan")
	RecordScan(span, &barcode.ResolvedScan{
		Status:      barcode.StatusSuccess,
		Plugin:      "InvenTreeBarcode",
		BarcodeData: "secret payload",
		BarcodeHash: barcode.Hash("abc123"),
	})
	RecordTarget(span, barcode.EntityStockItem, 7)
	span.End()

	attrs := endedSpan(t, sr).Attributes()
	assert.Contains(t, attrs, AttrPlugin.String("InvenTreeBarcode"))
	assert.Contains(t, attrs, AttrHash.String("abc123"))
	assert.Contains(t, attrs, AttrStatus.String("success"))
	assert.Contains(t, attrs, AttrLabel.String("stockitem"))
	assert.Contains(t, attrs, AttrPK.Int64(7))
	for _, kv := range attrs {
		assert.NotEqual(t, "secret payload", kv.Value.AsString())
	}
}

func TestRecordError(t *testing.T) {
	t.Run("collaborator fault fails the span", func(t *testing.T) {
		sr := setupTestTracer(t)

		_, span := StartOperation(context.Background(), "assign")
		RecordError(span, errors.New("deadlock detected"))
		RecordError(span, nil)
		span.End()

		s := endedSpan(t, sr)
		assert.Equal(t, codes.Error, s.Status().Code)
		assert.Equal(t, "deadlock detected", s.Status().Description)
		assert.Len(t, s.Events(), 1)
	})

	t.Run("request failure only tags the span", func(t *testing.T) {
		sr := setupTestTracer(t)

		scan := &barcode.ResolvedScan{Status: barcode.StatusError, BarcodeHash: barcode.Hash("ff00")}
		_, span := StartOperation(context.Background(), "scan")
		RecordError(span, barcode.NewNoMatchError("No match found for barcode data", scan))
		span.End()

		s := endedSpan(t, sr)
		assert.Equal(t, codes.Unset, s.Status().Code)
		assert.Empty(t, s.Events())
		assert.Contains(t, s.Attributes(), AttrErrorKind.String("NO_MATCH"))
		assert.Contains(t, s.Attributes(), AttrHash.String("ff00"))
	})
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), config.TelemetryConfig{Enabled: false}, ServiceInfo{Version: "1.0.0"}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	assert.NoError(t, RegisterDBTracing(nil, config.TelemetryConfig{Enabled: true}, zap.NewNop()))
}

func TestNewSampler(t *testing.T) {
	assert.Contains(t, newSampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, newSampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, newSampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestNewResource(t *testing.T) {
	res, err := newResource("barcode-service", ServiceInfo{Version: "1.2.3"})
	require.NoError(t, err)

	values := map[string]string{}
	for _, kv := range res.Attributes() {
		values[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "barcode-service", values["service.name"])
	assert.Equal(t, "1.2.3", values["service.version"])
	assert.NotContains(t, values, "deployment.environment.name")
}
