// Package telemetry initializes OpenTelemetry providers for metric and log
// export and records shelluse gateway events.
//
// Metrics → any OTLP/HTTP metrics endpoint (e.g. VictoriaMetrics)
// Logs    → any OTLP/HTTP logs endpoint (e.g. VictoriaLogs)
//
// Enabled by setting at least one of:
//
//	SHELL_USE_OTEL_METRICS_URL
//	SHELL_USE_OTEL_LOGS_URL
//
// or the equivalent [telemetry] keys in the config file. Telemetry is
// best-effort: initialization errors are returned but callers should log
// and continue. When disabled every Record* call goes to the no-op global
// providers.
package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	// EnvMetricsURL is the env var for the OTLP metrics endpoint.
	EnvMetricsURL = "SHELL_USE_OTEL_METRICS_URL"

	// EnvLogsURL is the env var for the OTLP logs endpoint.
	EnvLogsURL = "SHELL_USE_OTEL_LOGS_URL"

	// DefaultMetricsURL is VictoriaMetrics' OTLP push endpoint.
	DefaultMetricsURL = "http://localhost:8428/opentelemetry/api/v1/push"

	// DefaultLogsURL is VictoriaLogs' OTLP insert endpoint.
	DefaultLogsURL = "http://localhost:9428/insert/opentelemetry/v1/logs"

	// ExportInterval is how often metrics are pushed.
	ExportInterval = 30 * time.Second
)

// Options selects the export endpoints. Both empty disables telemetry.
type Options struct {
	ServiceName    string
	ServiceVersion string
	MetricsURL     string
	LogsURL        string
}

// Enabled reports whether o would activate any exporter.
func (o Options) Enabled() bool {
	return o.MetricsURL != "" || o.LogsURL != ""
}

// package-level state for idempotent Init.
var (
	initMu         sync.Mutex
	initDone       bool
	globalProvider *Provider
)

// Provider wraps OTel SDK providers and their shutdown functions.
type Provider struct {
	shutdowns    []func(context.Context) error
	shutdownMu   sync.Mutex
	shutdownDone bool
}

// Shutdown flushes all pending data and stops the OTel providers.
// Safe to call more than once, and on a nil Provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	p.shutdownMu.Lock()
	defer p.shutdownMu.Unlock()
	if p.shutdownDone {
		return nil
	}
	p.shutdownDone = true

	var errs []error
	for _, fn := range p.shutdowns {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("telemetry shutdown errors: %v", errs)
	}
	return nil
}

// Init initializes OTel metric and log providers.
//
// The first call wins; later calls return the same provider. Returns
// (nil, nil) when opts enables nothing. When only one endpoint is set the
// other falls back to its default.
func Init(ctx context.Context, opts Options) (*Provider, error) {
	initMu.Lock()
	defer initMu.Unlock()
	if initDone {
		return globalProvider, nil
	}

	if !opts.Enabled() {
		initDone = true
		globalProvider = nil
		return nil, nil
	}
	metricsURL := opts.MetricsURL
	if metricsURL == "" {
		metricsURL = DefaultMetricsURL
	}
	logsURL := opts.LogsURL
	if logsURL == "" {
		logsURL = DefaultLogsURL
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(opts.ServiceName),
			semconv.ServiceVersion(opts.ServiceVersion),
		),
		resource.WithHost(),
		resource.WithOS(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OTel resource: %w", err)
	}

	p := &Provider{}

	metricExp, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpointURL(metricsURL),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP metric exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(metricExp,
				sdkmetric.WithInterval(ExportInterval),
			),
		),
	)
	otel.SetMeterProvider(mp)
	p.shutdowns = append(p.shutdowns, mp.Shutdown)

	logExp, err := otlploghttp.New(ctx,
		otlploghttp.WithEndpointURL(logsURL),
	)
	if err != nil {
		_ = mp.Shutdown(ctx)
		return nil, fmt.Errorf("creating OTLP log exporter: %w", err)
	}
	lp := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExp)),
	)
	global.SetLoggerProvider(lp)
	p.shutdowns = append(p.shutdowns, lp.Shutdown)

	initInstruments()

	initDone = true
	globalProvider = p
	return p, nil
}
