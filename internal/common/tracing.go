package common

import (
	"context"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracingMu      sync.RWMutex
	tracer         trace.Tracer
	tracerProvider *sdktrace.TracerProvider
)

// InitTracing installs a stdout span exporter when tracing is enabled.
// Spans go to stderr; stdout may carry the MCP stdio stream.
func InitTracing(config TracingConfig) error {
	if !config.Enabled {
		return nil
	}

	opts := []stdouttrace.Option{stdouttrace.WithWriter(os.Stderr)}
	if config.PrettyPrint {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		return err
	}

	serviceName := config.ServiceName
	if serviceName == "" {
		serviceName = "stock-mcp"
	}
	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", Version),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	tracingMu.Lock()
	tracerProvider = tp
	tracer = tp.Tracer(serviceName)
	tracingMu.Unlock()
	return nil
}

// ShutdownTracing flushes pending spans.
func ShutdownTracing(ctx context.Context) error {
	tracingMu.RLock()
	tp := tracerProvider
	tracingMu.RUnlock()
	if tp != nil {
		return tp.Shutdown(ctx)
	}
	return nil
}

// StartSpan starts a span when tracing is enabled. Otherwise it returns ctx
// unchanged with a no-op span, so callers may End it without touching the
// span already on ctx.
func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	tracingMu.RLock()
	t := tracer
	tracingMu.RUnlock()
	if t == nil {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return t.Start(ctx, spanName, opts...)
}

// TraceID returns the trace id on ctx, or "" when no span is recording.
func TraceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}
