package internal

import (
	"io"
	"os"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/config"
	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/datacite"
	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/export"
	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/extract"
	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/mica"
	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/transport"
)

type Services struct {
	Extractor ExtractorInterface
	Exporter  ExporterInterface
	Registry  RegistryInterface
}

// progressWriter is where progress bars go, nil when they are disabled.
func progressWriter(cfg config.Config) io.Writer {
	if !cfg.Extract.Progress {
		return nil
	}
	return os.Stderr
}

func InitServices(
	cfg config.Config,
	tracer trace.Tracer,
	logger *zap.SugaredLogger,
	meter metric.Meter,
) (*Services, error) {
	micaTransport, err := transport.NewClient(
		"mica",
		cfg.Mica.Host,
		transport.Credentials{Username: cfg.Mica.Username, Password: cfg.Mica.Password},
		transport.NewHTTPClient(cfg.Mica.Timeout),
		tracer,
		logger,
		meter,
	)
	if err != nil {
		return nil, err
	}
	dataciteTransport, err := transport.NewClient(
		"datacite",
		cfg.DataCite.Host,
		transport.Credentials{Username: cfg.DataCite.Username, Password: cfg.DataCite.Password},
		transport.NewHTTPClient(cfg.DataCite.Timeout),
		tracer,
		logger,
		meter,
	)
	if err != nil {
		return nil, err
	}

	e, err := extract.NewExtractor(
		mica.NewClient(micaTransport, cfg.Mica.Locale, logger),
		cfg.Mica.Host,
		progressWriter(cfg),
		tracer,
		logger,
		meter,
	)
	if err != nil {
		return nil, err
	}
	x, err := export.NewExporter(cfg.Mica.Locale, progressWriter(cfg), tracer, logger, meter)
	if err != nil {
		return nil, err
	}
	return &Services{
		Extractor: e,
		Exporter:  x,
		Registry:  datacite.NewClient(dataciteTransport, logger),
	}, nil
}
