package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/logger"
)

type Config struct {
	ServiceName    string            // e.g., "mica-doi"
	ServiceVersion string            // reported on every signal
	Exporter       string            // "stdout" or "otlp"
	Endpoint       string            // OTLP endpoint, e.g., "localhost:4317" (required for "otlp")
	Protocol       string            // "grpc" or "http" (default "grpc" for "otlp")
	Insecure       bool              // Disable TLS for OTLP (development only)
	Headers        map[string]string // Custom headers for OTLP, e.g., for auth
	LogFile        string            // Path for JSON logs; empty logs to stderr
	LogLevel       string            // "debug", "info", "warn", "error" (default "info")
	// Output receives the stdout exporters. Defaults to os.Stderr since
	// standard output carries command results.
	Output io.Writer
}

type exporters struct {
	trace  sdktrace.SpanExporter
	metric sdkmetric.Exporter
	log    log.Exporter
}

// InitOTEL sets up providers, tracer, meter, and returns them + bridged logger.
func InitOTEL(
	cfg Config,
) (trace.Tracer, metric.Meter, *zap.SugaredLogger, func(context.Context) error, error) {
	ctx := context.Background()

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	var exp exporters
	switch cfg.Exporter {
	case "stdout":
		exp, err = stdoutExporters(cfg.Output)
	case "otlp":
		exp, err = otlpExporters(ctx, cfg)
	default:
		err = fmt.Errorf("unsupported exporter: %s", cfg.Exporter)
	}
	if err != nil {
		return nil, nil, nil, nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp.trace),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp.metric)),
	)
	otel.SetMeterProvider(mp)

	lp := log.NewLoggerProvider(
		log.WithProcessor(log.NewBatchProcessor(exp.log)),
		log.WithResource(res),
	)
	global.SetLoggerProvider(lp)

	tracer := otel.Tracer(cfg.ServiceName)
	meter := otel.Meter(cfg.ServiceName)

	level := logger.ParseLevel(cfg.LogLevel)
	var cores []zapcore.Core
	if cfg.LogFile != "" {
		cores = append(cores, logger.FileCore(cfg.LogFile, level))
	} else {
		cores = append(cores, logger.ConsoleCore(os.Stderr, level))
	}
	cores = append(cores, otelzap.NewCore(
		cfg.ServiceName,
		otelzap.WithLoggerProvider(global.GetLoggerProvider()),
		otelzap.WithVersion(cfg.ServiceVersion),
	))

	zapLogger := zap.New(zapcore.NewTee(cores...))

	shutdown := func(ctx context.Context) error {
		var shutdownErr error
		if err := tp.Shutdown(ctx); err != nil {
			shutdownErr = err
		}
		if err := lp.Shutdown(ctx); err != nil {
			shutdownErr = err
		}
		if err := mp.Shutdown(ctx); err != nil {
			shutdownErr = err
		}
		_ = zapLogger.Sync()
		return shutdownErr
	}

	return tracer, meter, zapLogger.Sugar(), shutdown, nil
}

func stdoutExporters(w io.Writer) (exporters, error) {
	if w == nil {
		w = os.Stderr
	}
	var (
		exp exporters
		err error
	)
	exp.trace, err = stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return exporters{}, err
	}
	exp.log, err = stdoutlog.New(stdoutlog.WithWriter(w))
	if err != nil {
		return exporters{}, err
	}
	exp.metric, err = stdoutmetric.New(stdoutmetric.WithWriter(w), stdoutmetric.WithPrettyPrint())
	if err != nil {
		return exporters{}, err
	}
	return exp, nil
}

func otlpExporters(ctx context.Context, cfg Config) (exporters, error) {
	if cfg.Endpoint == "" {
		return exporters{}, fmt.Errorf("OTLP endpoint required")
	}
	var (
		exp exporters
		err error
	)
	switch cfg.Protocol {
	case "", "grpc":
		traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
		logOpts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.Endpoint)}
		metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
			logOpts = append(logOpts, otlploggrpc.WithInsecure())
			metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
		}
		if len(cfg.Headers) > 0 {
			traceOpts = append(traceOpts, otlptracegrpc.WithHeaders(cfg.Headers))
			logOpts = append(logOpts, otlploggrpc.WithHeaders(cfg.Headers))
			metricOpts = append(metricOpts, otlpmetricgrpc.WithHeaders(cfg.Headers))
		}
		if exp.trace, err = otlptrace.New(ctx, otlptracegrpc.NewClient(traceOpts...)); err != nil {
			return exporters{}, err
		}
		if exp.log, err = otlploggrpc.New(ctx, logOpts...); err != nil {
			return exporters{}, err
		}
		if exp.metric, err = otlpmetricgrpc.New(ctx, metricOpts...); err != nil {
			return exporters{}, err
		}
	case "http":
		traceOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
		logOpts := []otlploghttp.Option{otlploghttp.WithEndpoint(cfg.Endpoint)}
		metricOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			traceOpts = append(traceOpts, otlptracehttp.WithInsecure())
			logOpts = append(logOpts, otlploghttp.WithInsecure())
			metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
		}
		if len(cfg.Headers) > 0 {
			traceOpts = append(traceOpts, otlptracehttp.WithHeaders(cfg.Headers))
			logOpts = append(logOpts, otlploghttp.WithHeaders(cfg.Headers))
			metricOpts = append(metricOpts, otlpmetrichttp.WithHeaders(cfg.Headers))
		}
		if exp.trace, err = otlptrace.New(ctx, otlptracehttp.NewClient(traceOpts...)); err != nil {
			return exporters{}, err
		}
		if exp.log, err = otlploghttp.New(ctx, logOpts...); err != nil {
			return exporters{}, err
		}
		if exp.metric, err = otlpmetrichttp.New(ctx, metricOpts...); err != nil {
			return exporters{}, err
		}
	default:
		return exporters{}, fmt.Errorf("invalid protocol: %s", cfg.Protocol)
	}
	return exp, nil
}
