// Package logging builds the process logger and, when telemetry is on,
// the OpenTelemetry log and meter providers behind it.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const instrumentationName = "github.com/antopolskiy/taskboard"

// DefaultExportInterval is how often metrics are flushed to the exporter.
const DefaultExportInterval = 30 * time.Second

// Options selects the logger shape.
type Options struct {
	Level     string // debug, info, warn, error
	Format    string // text or json
	Writer    io.Writer
	Telemetry bool
	// TelemetryWriter receives exported log records and metrics.
	TelemetryWriter io.Writer
	ExportInterval  time.Duration
}

// Telemetry is the configured logger and meter plus their shutdown hook.
type Telemetry struct {
	Logger *slog.Logger
	Meter  metric.Meter

	shutdown []func(context.Context) error
}

// ParseLevel converts a config level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// NewLogger returns a plain slog logger writing to opts.Writer.
func NewLogger(opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	ho := &slog.HandlerOptions{Level: level}
	switch opts.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, ho)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, ho)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", opts.Format)
}

// Setup builds the logger and meter. Without telemetry the meter is a
// no-op and the logger is a plain slog handler. With telemetry, records go
// through the otelslog bridge and both signals are exported to
// TelemetryWriter. The logger is installed as slog's default.
func Setup(ctx context.Context, opts Options) (*Telemetry, error) {
	if !opts.Telemetry {
		logger, err := NewLogger(opts)
		if err != nil {
			return nil, err
		}
		slog.SetDefault(logger)
		return &Telemetry{Logger: logger, Meter: noop.NewMeterProvider().Meter(instrumentationName)}, nil
	}

	w := opts.TelemetryWriter
	if w == nil {
		w = os.Stderr
	}
	interval := opts.ExportInterval
	if interval <= 0 {
		interval = DefaultExportInterval
	}
	res := resource.NewSchemaless(attribute.String("service.name", "taskboard"))
	tel := &Telemetry{}

	logExp, err := stdoutlog.New(stdoutlog.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("creating log exporter: %w", err)
	}
	lp := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExp)),
		sdklog.WithResource(res),
	)
	global.SetLoggerProvider(lp)
	tel.shutdown = append(tel.shutdown, lp.Shutdown)

	metricExp, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp, sdkmetric.WithInterval(interval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	tel.shutdown = append(tel.shutdown, mp.Shutdown)

	tel.Logger = otelslog.NewLogger(instrumentationName, otelslog.WithLoggerProvider(lp))
	tel.Meter = mp.Meter(instrumentationName)
	slog.SetDefault(tel.Logger)
	return tel, nil
}

// Shutdown flushes and stops the providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(t.shutdown) - 1; i >= 0; i-- {
		errs = append(errs, t.shutdown[i](ctx))
	}
	t.shutdown = nil
	return errors.Join(errs...)
}

// Metrics holds the board counters.
type Metrics struct {
	Moves           metric.Int64Counter
	Rejections      metric.Int64Counter
	MinutesCredited metric.Int64Counter
}

// NewMetrics registers the board counters on m.
func NewMetrics(m metric.Meter) (Metrics, error) {
	var (
		out Metrics
		err error
	)
	if out.Moves, err = m.Int64Counter("taskboard.moves",
		metric.WithDescription("Task moves applied to the store"),
		metric.WithUnit("{move}")); err != nil {
		return Metrics{}, err
	}
	if out.Rejections, err = m.Int64Counter("taskboard.rejections",
		metric.WithDescription("Gestures rejected before reaching the store"),
		metric.WithUnit("{rejection}")); err != nil {
		return Metrics{}, err
	}
	if out.MinutesCredited, err = m.Int64Counter("taskboard.minutes_credited",
		metric.WithDescription("Whole minutes credited by task timers"),
		metric.WithUnit("min")); err != nil {
		return Metrics{}, err
	}
	return out, nil
}

// NoopMetrics returns counters that record nothing.
func NoopMetrics() Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter(instrumentationName))
	return m
}
