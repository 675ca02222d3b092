// Package telemetry provides OpenTelemetry tracing for barcode resolution.
package telemetry

import (
	"context"
	"errors"

	"github.com/erp/barcode/internal/domain/barcode"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of resolver spans
const TracerName = "github.com/erp/barcode"

// Span attributes of resolver spans
const (
	AttrOperation = attribute.Key("barcode.operation")
	AttrPlugin    = attribute.Key("barcode.plugin")
	AttrHash      = attribute.Key("barcode.hash")
	AttrStatus    = attribute.Key("barcode.status")
	AttrLabel     = attribute.Key("barcode.label")
	AttrPK        = attribute.Key("barcode.pk")
	AttrErrorKind = attribute.Key("barcode.error_kind")
)

// StartOperation starts an internal span named "barcode.<operation>".
// The caller must end the span.
//
//	ctx, span := telemetry.StartOperation(ctx, "scan")
//	defer span.End()
func StartOperation(ctx context.Context, operation string) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "barcode."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(AttrOperation.String(operation)),
	)
}

// RecordScan tags the span with the handler, payload hash and status of a
// resolution pass. The raw payload is never recorded.
func RecordScan(span trace.Span, scan *barcode.ResolvedScan) {
	if span == nil || scan == nil {
		return
	}
	attrs := []attribute.KeyValue{
		AttrHash.String(scan.BarcodeHash.String()),
		AttrStatus.String(string(scan.Status)),
	}
	if scan.Plugin != "" {
		attrs = append(attrs, AttrPlugin.String(scan.Plugin))
	}
	span.SetAttributes(attrs...)
}

// RecordTarget tags the span with the entity a barcode was bound to or removed from
func RecordTarget(span trace.Span, kind barcode.EntityKind, pk uint64) {
	if span == nil {
		return
	}
	span.SetAttributes(
		AttrLabel.String(kind.Label()),
		AttrPK.Int64(int64(pk)),
	)
}

// RecordError records err on the span. Request failures only tag the span
// with their kind and leave its status alone; anything else marks the span
// as failed.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}

	var barcodeErr *barcode.Error
	if errors.As(err, &barcodeErr) {
		span.SetAttributes(AttrErrorKind.String(string(barcodeErr.Kind)))
		RecordScan(span, barcodeErr.Scan)
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// GetTraceID returns the trace ID of the span in the context, or ""
func GetTraceID(ctx context.Context) string {
	traceID := trace.SpanContextFromContext(ctx).TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}
