package middleware

import (
	"net/http"

	"github.com/erp/barcode/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TraceIDHeader carries the trace ID of the request back to the client
const TraceIDHeader = "X-Trace-ID"

// TracingConfig holds configuration for the tracing middleware
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// SkipPaths are not traced, e.g. load balancer health probes
	SkipPaths []string
}

// TracingWithConfig returns the otelgin server span middleware, or a
// passthrough when tracing is disabled
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}
	return otelgin.Middleware(cfg.ServiceName, otelgin.WithFilter(func(r *http.Request) bool {
		_, skipped := skip[r.URL.Path]
		return !skipped
	}))
}

// TraceRequest tags the server span with the request ID and the scanning user
// and echoes the trace ID in the X-Trace-ID response header.
// It must run inside the otelgin span and after the JWT middleware.
func TraceRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		if traceID := telemetry.GetTraceID(c.Request.Context()); traceID != "" {
			c.Header(TraceIDHeader, traceID)
		}
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			attrs := []attribute.KeyValue{attribute.String("request_id", GetRequestID(c))}
			if claims := GetJWTClaims(c); claims != nil {
				attrs = append(attrs,
					attribute.String("enduser.id", claims.UserID),
					attribute.Bool("enduser.superuser", claims.Superuser),
				)
			}
			span.SetAttributes(attrs...)
		}
		c.Next()
	}
}
