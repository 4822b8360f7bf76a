package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/Qubut/IP-Claim/packages/mica_doi/internal"
	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/config"
	log "github.com/Qubut/IP-Claim/packages/mica_doi/internal/logger"
	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/telemetry"
)

const instrumentationName = "github.com/Qubut/IP-Claim/packages/mica_doi"

var (
	cfgFile  string
	cfg      config.Config
	logger   *zap.SugaredLogger
	tracer   trace.Tracer
	meter    metric.Meter
	shutdown func(context.Context) error
	services *internal.Services
	Version  = "dev" // Set at build time: go build -ldflags "-X github.com/Qubut/IP-Claim/packages/mica_doi/cmd.Version=v1.0.0"
)

var RootCmd = &cobra.Command{
	Use:           "mica-doi",
	Short:         "Register DataCite DOIs for Mica datasets",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := initObservability(); err != nil {
			return err
		}
		if err := promptCredentials(cmd, &cfg); err != nil {
			return err
		}
		services, err = internal.InitServices(cfg, tracer, logger, meter)
		if err != nil {
			return fmt.Errorf("init services: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		_ = logger.Sync()
		if shutdown != nil {
			if err := shutdown(context.Background()); err != nil {
				logger.Errorw("shutdown error", "err", err)
				return err
			}
		}
		return nil
	},
}

// initObservability sets up the OpenTelemetry pipeline when telemetry is
// enabled and a plain zap logger with no-op providers otherwise.
func initObservability() error {
	if !cfg.Telemetry.Enabled {
		var err error
		logger, err = log.NewLogger(cfg.Log.Dir, cfg.Log.Level)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		tracer = tracenoop.NewTracerProvider().Tracer(instrumentationName)
		meter = metricnoop.NewMeterProvider().Meter(instrumentationName)
		shutdown = nil
		return nil
	}

	var logFile string
	if cfg.Log.Dir != "" {
		// the file logger creates the directory
		logFile = filepath.Join(cfg.Log.Dir, log.FileName)
	}
	teleCfg := telemetry.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: Version,
		Exporter:       cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		Protocol:       cfg.Telemetry.Protocol,
		Insecure:       cfg.Telemetry.Insecure,
		Headers:        cfg.Telemetry.Headers,
		LogFile:        logFile,
		LogLevel:       cfg.Log.Level,
	}
	var err error
	tracer, meter, logger, shutdown, err = telemetry.InitOTEL(teleCfg)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of mica-doi",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config operations",
}

var printConfigCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the current loaded configuration with credentials masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg.Redacted(), "", "  ")
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

type flagDef struct {
	key, usage string
	def        any
}

// addConfigFlags registers one flag per configuration key, named after it
// with config.FlagName so that config.Load can bind it.
func addConfigFlags(fs *pflag.FlagSet, defs []flagDef) {
	for _, f := range defs {
		name := config.FlagName(f.key)
		switch def := f.def.(type) {
		case bool:
			fs.Bool(name, def, f.usage)
		case string:
			fs.String(name, def, f.usage)
		case time.Duration:
			fs.Duration(name, def, f.usage)
		}
	}
}

func init() {
	RootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "Path to config file (yaml/json/toml)")

	addConfigFlags(RootCmd.PersistentFlags(), []flagDef{
		{"log.level", "Log level (debug/info/warn/error)", "info"},
		{"log.dir", "Directory for JSON log files; empty logs to stderr", ""},
		{"telemetry.enabled", "Enable OpenTelemetry", false},
		{"telemetry.exporter", "Telemetry exporter (otlp|stdout)", "otlp"},
		{"telemetry.endpoint", "OTLP endpoint (host:port)", "localhost:4317"},
		{"telemetry.protocol", "OTLP protocol (grpc|http)", "grpc"},
		{"telemetry.insecure", "Allow insecure OTLP connection", true},
		{"telemetry.service_name", "Service name for telemetry", "mica-doi"},
		{"mica.host", "Mica base URL (prompted when empty)", ""},
		{"mica.username", "Mica user (prompted when empty)", ""},
		{"mica.password", "Mica password (prompted when empty)", ""},
		{"mica.locale", "Language used to resolve localized values", "en"},
		{"mica.timeout", "Mica request timeout", 30 * time.Second},
		{"datacite.host", "DataCite REST API base URL", "https://api.test.datacite.org"},
		{"datacite.username", "DataCite repository id (prompted for write operations)", ""},
		{"datacite.password", "DataCite repository password (prompted for write operations)", ""},
		{"datacite.timeout", "DataCite request timeout", 30 * time.Second},
	})

	configCmd.AddCommand(printConfigCmd)

	RootCmd.AddCommand(extractCmd)
	RootCmd.AddCommand(doiCmd)
	RootCmd.AddCommand(bundleCmd)
	RootCmd.AddCommand(versionCmd)
	RootCmd.AddCommand(configCmd)
}
