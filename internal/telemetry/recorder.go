// Recording helpers for gateway events. Each function emits an OTel log
// event and updates a metric instrument.
package telemetry

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterRecorderName = "github.com/steveyegge/shelluse"
	loggerName        = "shelluse"
)

// recorderInstruments holds all lazy-initialized OTel metric instruments.
type recorderInstruments struct {
	invocationTotal metric.Int64Counter
	operationTotal  metric.Int64Counter
	paneReadTotal   metric.Int64Counter
	inputTotal      metric.Int64Counter
	inputBytes      metric.Int64Counter

	invocationDurationHist metric.Float64Histogram
}

var (
	instOnce sync.Once
	inst     recorderInstruments
)

// initInstruments registers the recorder instruments against the global
// MeterProvider. Called from Init and lazily on first use.
func initInstruments() {
	instOnce.Do(func() {
		m := otel.GetMeterProvider().Meter(meterRecorderName)

		inst.invocationTotal, _ = m.Int64Counter("shelluse.tmux.invocations.total",
			metric.WithDescription("Total tmux subprocess invocations"),
		)
		inst.operationTotal, _ = m.Int64Counter("shelluse.gateway.operations.total",
			metric.WithDescription("Total gateway operations by name and outcome"),
		)
		inst.paneReadTotal, _ = m.Int64Counter("shelluse.pane.reads.total",
			metric.WithDescription("Total screen captures"),
		)
		inst.inputTotal, _ = m.Int64Counter("shelluse.input.sends.total",
			metric.WithDescription("Total key and text deliveries"),
		)
		inst.inputBytes, _ = m.Int64Counter("shelluse.input.bytes.total",
			metric.WithDescription("Bytes delivered to sessions as keys or text"),
			metric.WithUnit("By"),
		)

		inst.invocationDurationHist, _ = m.Float64Histogram("shelluse.tmux.duration_ms",
			metric.WithDescription("tmux invocation round-trip latency in milliseconds"),
			metric.WithUnit("ms"),
		)
	})
}

// statusStr returns "ok" or "error" depending on whether err is nil.
func statusStr(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// emit sends an OTel log event with the given body and key-value attributes.
func emit(ctx context.Context, body string, sev otellog.Severity, attrs ...otellog.KeyValue) {
	logger := global.GetLoggerProvider().Logger(loggerName)
	var r otellog.Record
	r.SetBody(otellog.StringValue(body))
	r.SetSeverity(sev)
	r.AddAttributes(attrs...)
	logger.Emit(ctx, r)
}

// errKV returns a log KeyValue with the error message, or empty string if nil.
func errKV(err error) otellog.KeyValue {
	if err != nil {
		return otellog.String("error", truncateOutput(err.Error(), maxErrorLog))
	}
	return otellog.String("error", "")
}

// severity returns SeverityInfo on success, SeverityError on failure.
func severity(err error) otellog.Severity {
	if err != nil {
		return otellog.SeverityError
	}
	return otellog.SeverityInfo
}

// maxErrorLog caps error text in log events; tmux diagnostics can echo
// large chunks of stdout.
const maxErrorLog = 1024

// truncateOutput trims s to max bytes and appends "…" when truncated,
// without splitting a multi-byte rune.
func truncateOutput(s string, max int) string {
	if len(s) <= max {
		return s
	}
	truncated := s[:max]
	for len(truncated) > 0 && !utf8.ValidString(truncated) {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated + "…"
}

// RecordInvocation records one tmux subprocess call with its latency.
func RecordInvocation(ctx context.Context, subcommand string, d time.Duration, err error) {
	initInstruments()
	status := statusStr(err)
	durationMs := float64(d.Microseconds()) / 1000
	attrs := metric.WithAttributes(
		attribute.String("status", status),
		attribute.String("subcommand", subcommand),
	)
	inst.invocationTotal.Add(ctx, 1, attrs)
	inst.invocationDurationHist.Record(ctx, durationMs, attrs)
	emit(ctx, "tmux.invoke", severity(err),
		otellog.String("subcommand", subcommand),
		otellog.Float64("duration_ms", durationMs),
		otellog.String("status", status),
		errKV(err),
	)
}

// RecordOperation records the outcome of a gateway operation.
// kind is the error classification ("" on success).
func RecordOperation(ctx context.Context, op, session, kind string, err error) {
	initInstruments()
	status := statusStr(err)
	inst.operationTotal.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("status", status),
			attribute.String("operation", op),
			attribute.String("error_kind", kind),
		),
	)
	emit(ctx, "gateway."+op, severity(err),
		otellog.String("session", session),
		otellog.String("status", status),
		otellog.String("error_kind", kind),
		errKV(err),
	)
}

// RecordPaneRead records a screen capture. Screen content is never logged.
func RecordPaneRead(ctx context.Context, session string, scrollBack, outBytes int, err error) {
	initInstruments()
	status := statusStr(err)
	inst.paneReadTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
	emit(ctx, "pane.read", severity(err),
		otellog.String("session", session),
		otellog.Int64("scroll_back", int64(scrollBack)),
		otellog.Int64("bytes", int64(outBytes)),
		otellog.String("status", status),
		errKV(err),
	)
}

// RecordInput records keys or text delivered to a session. Only the size
// of the input is recorded, never its content.
func RecordInput(ctx context.Context, session, kind string, n int, err error) {
	initInstruments()
	status := statusStr(err)
	attrs := metric.WithAttributes(
		attribute.String("status", status),
		attribute.String("kind", kind),
	)
	inst.inputTotal.Add(ctx, 1, attrs)
	if err == nil {
		inst.inputBytes.Add(ctx, int64(n), attrs)
	}
	emit(ctx, "input.send", severity(err),
		otellog.String("session", session),
		otellog.String("kind", kind),
		otellog.Int64("bytes", int64(n)),
		otellog.String("status", status),
		errKV(err),
	)
}
