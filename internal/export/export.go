package export

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	ET "github.com/IBM/fp-go/v2/either"
	F "github.com/IBM/fp-go/v2/function"
	IOE "github.com/IBM/fp-go/v2/ioeither"
	"github.com/IBM/fp-go/v2/option"
	"github.com/schollz/progressbar/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/mica"
	T "github.com/Qubut/IP-Claim/packages/mica_doi/internal/typing"
)

var header = []string{"id", "name", "variableType", "valueType", "label"}

// Exporter writes the variable catalog of a bundle as CSV.
type Exporter struct {
	Locale string
	// ProgressWriter receives the progress bar. Nil disables it.
	ProgressWriter  io.Writer
	Logger          *zap.SugaredLogger
	Tracer          trace.Tracer
	Meter           metric.Meter
	sessionDuration metric.Int64Histogram
	recordsTotal    metric.Int64Counter
}

func NewExporter(
	locale string,
	progressWriter io.Writer,
	tracer trace.Tracer,
	logger *zap.SugaredLogger,
	meter metric.Meter,
) (*Exporter, error) {
	x := &Exporter{
		Locale:         locale,
		ProgressWriter: progressWriter,
		Logger:         logger,
		Tracer:         tracer,
		Meter:          meter,
	}

	var err error
	x.sessionDuration, err = meter.Int64Histogram(
		"export.session.duration",
		metric.WithDescription("Duration of a variable catalog export"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	x.recordsTotal, err = meter.Int64Counter(
		"export.records.total",
		metric.WithDescription("Total number of variables written to CSV"),
	)
	if err != nil {
		return nil, err
	}

	return x, nil
}

// Row is the CSV projection of a variable. Labels missing in the locale are
// left empty.
func Row(v mica.VariableSummary, locale string) []string {
	label := option.MonadGetOrElse(v.Label(locale), F.Constant(""))
	return []string{v.ID, v.Name, v.VariableType, v.ValueType, label}
}

func (x *Exporter) VariablesToCSV(ctx context.Context, variables []mica.VariableSummary, outputCSV string) error {
	ctx, span := x.Tracer.Start(ctx, "export.variables", trace.WithAttributes(
		attribute.String("output_csv", outputCSV),
		attribute.Int("variables", len(variables)),
	))
	defer span.End()
	startTime := time.Now()
	x.Logger.Infow("Writing variable catalog", "output_csv", outputCSV, "variables", len(variables))

	file, err := os.Create(outputCSV)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create CSV: %w", err)
	}
	if err := x.Save(file, variables); err != nil {
		span.RecordError(err)
		return err
	}

	x.recordsTotal.Add(ctx, int64(len(variables)))
	x.sessionDuration.Record(ctx, time.Since(startTime).Milliseconds(),
		metric.WithAttributes(attribute.String("status", "success")),
	)
	x.Logger.Infow("Variable catalog written", "output_csv", outputCSV, "records", len(variables))
	return nil
}

// Save writes the catalog to wc and closes it. A failed close is reported
// like any write error since the file may be incomplete.
func (x *Exporter) Save(wc io.WriteCloser, variables []mica.VariableSummary) error {
	_, err := ET.UnwrapError(IOE.Bracket(
		IOE.Of[error](wc),
		func(wc io.WriteCloser) IOE.IOEither[error, T.Unit] {
			return IOE.TryCatchError(func() (T.Unit, error) {
				buffered := bufio.NewWriter(wc)
				if err := x.Write(buffered, variables); err != nil {
					return T.Unit{}, err
				}
				if err := buffered.Flush(); err != nil {
					return T.Unit{}, fmt.Errorf("failed to flush CSV: %w", err)
				}
				return T.Unit{}, nil
			})
		},
		func(wc io.WriteCloser, _ ET.Either[error, T.Unit]) IOE.IOEither[error, T.Unit] {
			return IOE.TryCatchError(func() (T.Unit, error) {
				if err := wc.Close(); err != nil {
					return T.Unit{}, fmt.Errorf("failed to close CSV: %w", err)
				}
				return T.Unit{}, nil
			})
		},
	)())
	return err
}

// Write renders the header and one row per variable to w.
func (x *Exporter) Write(w io.Writer, variables []mica.VariableSummary) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	var progress *progressbar.ProgressBar
	if x.ProgressWriter != nil {
		progress = progressbar.NewOptions(len(variables),
			progressbar.OptionSetWriter(x.ProgressWriter),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("Writing variables"),
			progressbar.OptionThrottle(50*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}

	res := F.Pipe1(
		variables,
		ET.TraverseArray(func(v mica.VariableSummary) ET.Either[error, []string] {
			return ET.FromError(func(row []string) error {
				if progress != nil {
					_ = progress.Add(1)
				}
				return writer.Write(row)
			})(Row(v, x.Locale))
		}),
	)
	if _, err := ET.UnwrapError(res); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}

	writer.Flush()
	if progress != nil {
		_ = progress.Finish()
	}
	return writer.Error()
}
