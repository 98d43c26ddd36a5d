// Package telemetry installs the OpenTelemetry tracer provider and HTTP
// instrumentation. Spans from tenant resolution are children of the
// request span created by Middleware.
package telemetry

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/dmitrymomot/multitier/pkg/logger"
)

type Config struct {
	// Stdout exports spans as JSON to stdout. Without it the global no-op
	// provider stays in place.
	Stdout      bool   `env:"OTEL_TRACES_STDOUT" envDefault:"false"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"multitier"`
}

// InitTracer sets the global tracer provider and returns its shutdown
// function. Spans are written to w, or stdout when w is nil.
func InitTracer(cfg Config, w io.Writer, log *slog.Logger) (func(context.Context) error, error) {
	if !cfg.Stdout {
		return func(context.Context) error { return nil }, nil
	}
	if w == nil {
		w = os.Stdout
	}
	if log == nil {
		log = slog.Default()
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes("", semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	log.Info("tracing enabled", logger.Component("telemetry"), slog.String("service", cfg.ServiceName))
	return tp.Shutdown, nil
}

// Middleware starts a server span per request.
func Middleware(operation string) func(http.Handler) http.Handler {
	return otelhttp.NewMiddleware(operation)
}
