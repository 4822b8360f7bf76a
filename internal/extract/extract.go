package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	ET "github.com/IBM/fp-go/v2/either"
	"github.com/IBM/fp-go/v2/function"
	IOE "github.com/IBM/fp-go/v2/ioeither"
	"github.com/schollz/progressbar/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/mica"
	T "github.com/Qubut/IP-Claim/packages/mica_doi/internal/typing"
)

// steps is the number of progress increments of one extraction.
const steps = 3

// Source is the subset of the Mica API an extraction reads from.
type Source interface {
	Dataset(ctx context.Context, id string) IOE.IOEither[error, mica.Dataset]
	Study(ctx context.Context, id string) IOE.IOEither[error, mica.Study]
	Variables(ctx context.Context, datasetID string) IOE.IOEither[error, []mica.VariableSummary]
}

// Extractor assembles a bundle for one dataset: the dataset itself, the
// summaries of its variables and the study it belongs to, fetched one after
// the other.
type Extractor struct {
	Source Source
	Host   string
	// ProgressWriter receives the progress bar. Nil disables it.
	ProgressWriter  io.Writer
	Logger          *zap.SugaredLogger
	Tracer          trace.Tracer
	Meter           metric.Meter
	progress        *progressbar.ProgressBar
	sessionDuration metric.Int64Histogram
	stepDuration    metric.Int64Histogram
	variablesTotal  metric.Int64Counter
	sessionsFailed  metric.Int64Counter
}

func NewExtractor(
	source Source,
	host string,
	progressWriter io.Writer,
	tracer trace.Tracer,
	logger *zap.SugaredLogger,
	meter metric.Meter,
) (*Extractor, error) {
	e := &Extractor{
		Source:         source,
		Host:           host,
		ProgressWriter: progressWriter,
		Logger:         logger,
		Tracer:         tracer,
		Meter:          meter,
	}

	var err error

	e.sessionDuration, err = meter.Int64Histogram(
		"extraction.session.duration",
		metric.WithDescription("Duration of a full dataset extraction"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	e.stepDuration, err = meter.Int64Histogram(
		"extraction.step.duration",
		metric.WithDescription("Duration of individual extraction steps"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	e.variablesTotal, err = meter.Int64Counter(
		"extraction.variables.total",
		metric.WithDescription("Total number of variables summarized"),
	)
	if err != nil {
		return nil, err
	}

	e.sessionsFailed, err = meter.Int64Counter(
		"extraction.sessions.failed",
		metric.WithDescription("Number of extractions that did not produce a bundle"),
	)
	if err != nil {
		return nil, err
	}

	return e, nil
}

type partial struct {
	dataset   mica.Dataset
	variables []mica.VariableSummary
}

func (e *Extractor) Extract(ctx context.Context, datasetID string) IOE.IOEither[error, mica.Bundle] {
	return func() ET.Either[error, mica.Bundle] {
		ctx, span := e.Tracer.Start(ctx, "extraction.session", trace.WithAttributes(
			attribute.String("dataset_id", datasetID),
		))
		defer span.End()
		startTime := time.Now()
		e.Logger.Infow("Starting extraction", "dataset", datasetID, "host", e.Host)
		e.startProgress(datasetID)

		result := function.Pipe3(
			step(ctx, e, "dataset", func(ctx context.Context) IOE.IOEither[error, mica.Dataset] {
				return function.Pipe1(
					e.Source.Dataset(ctx, datasetID),
					IOE.Chain(func(ds mica.Dataset) IOE.IOEither[error, mica.Dataset] {
						return IOE.TryCatchError(func() (mica.Dataset, error) {
							err := mica.NormalizeDataset(&ds)
							return ds, err
						})
					}),
				)
			}),
			IOE.Chain(func(ds mica.Dataset) IOE.IOEither[error, partial] {
				return function.Pipe1(
					step(ctx, e, "variables", func(ctx context.Context) IOE.IOEither[error, []mica.VariableSummary] {
						return e.Source.Variables(ctx, datasetID)
					}),
					IOE.Map[error](func(vars []mica.VariableSummary) partial {
						e.variablesTotal.Add(ctx, int64(len(vars)))
						e.Logger.Infow("Summarized variables", "dataset", datasetID, "count", len(vars))
						return partial{dataset: ds, variables: vars}
					}),
				)
			}),
			IOE.Chain(func(p partial) IOE.IOEither[error, mica.Bundle] {
				studyID := p.dataset.StudyID()
				return function.Pipe1(
					step(ctx, e, "study", func(ctx context.Context) IOE.IOEither[error, mica.Study] {
						return function.Pipe1(
							e.Source.Study(ctx, studyID),
							IOE.Chain(func(st mica.Study) IOE.IOEither[error, mica.Study] {
								return IOE.TryCatchError(func() (mica.Study, error) {
									err := mica.NormalizeStudy(&st)
									return st, err
								})
							}),
						)
					}),
					IOE.Map[error](func(st mica.Study) mica.Bundle {
						return mica.Bundle{
							Metadata:  mica.Metadata{URL: mica.DatasetURL(e.Host, datasetID)},
							Dataset:   p.dataset,
							Study:     st,
							Variables: p.variables,
						}
					}),
				)
			}),
			IOE.Tap(func(b mica.Bundle) IOE.IOEither[error, T.Unit] {
				e.Logger.Infow("Extraction completed",
					"dataset", datasetID,
					"study", b.Study.ID,
					"variables", len(b.Variables),
				)
				return IOE.Of[error](T.Unit{})
			}),
		)()

		status := "success"
		if _, err := ET.UnwrapError(result); err != nil {
			status = "failed"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			e.sessionsFailed.Add(ctx, 1)
			e.Logger.Errorw("Extraction failed", "dataset", datasetID, "error", err)
		}
		e.sessionDuration.Record(ctx, time.Since(startTime).Milliseconds(),
			metric.WithAttributes(attribute.String("status", status)),
		)
		e.finishProgress(status)
		return result
	}
}

// step runs one fetch inside its own span and advances the progress bar once
// it succeeds.
func step[A any](
	ctx context.Context,
	e *Extractor,
	name string,
	run func(context.Context) IOE.IOEither[error, A],
) IOE.IOEither[error, A] {
	return func() ET.Either[error, A] {
		ctx, span := e.Tracer.Start(ctx, "extraction."+name)
		defer span.End()
		startTime := time.Now()
		e.describe(fmt.Sprintf("Fetching %s", name))

		result := run(ctx)()

		status := "success"
		if ET.IsLeft(result) {
			status = "failed"
			span.SetStatus(codes.Error, name+" failed")
		} else if e.progress != nil {
			_ = e.progress.Add(1)
		}
		e.stepDuration.Record(ctx, time.Since(startTime).Milliseconds(),
			metric.WithAttributes(
				attribute.String("step", name),
				attribute.String("status", status),
			),
		)
		return result
	}
}

func (e *Extractor) startProgress(datasetID string) {
	if e.ProgressWriter == nil {
		return
	}
	e.progress = progressbar.NewOptions(steps,
		progressbar.OptionSetWriter(e.ProgressWriter),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(fmt.Sprintf("Extracting %s", datasetID)),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionThrottle(50*time.Millisecond),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionClearOnFinish(),
	)
}

func (e *Extractor) describe(desc string) {
	if e.progress != nil {
		e.progress.Describe(desc)
	}
}

func (e *Extractor) finishProgress(status string) {
	if e.progress == nil {
		return
	}
	e.progress.Describe("Extraction " + status)
	_ = e.progress.Finish()
	e.progress = nil
}

// WriteBundle writes b as indented JSON to path, or to stdout when path is
// empty.
func WriteBundle(path string, stdout io.Writer, b mica.Bundle) IOE.IOEither[error, T.Unit] {
	data, err := b.Encode()
	if err != nil {
		return IOE.Left[T.Unit](fmt.Errorf("encode bundle: %w", err))
	}
	if path == "" {
		return IOE.TryCatchError(func() (T.Unit, error) {
			_, err := stdout.Write(data)
			return T.Unit{}, err
		})
	}
	return IOE.Bracket(
		IOE.TryCatchError(func() (*os.File, error) {
			return os.Create(path)
		}),
		func(f *os.File) IOE.IOEither[error, T.Unit] {
			return IOE.TryCatchError(func() (T.Unit, error) {
				_, err := f.Write(data)
				return T.Unit{}, err
			})
		},
		func(f *os.File, _ ET.Either[error, T.Unit]) IOE.IOEither[error, T.Unit] {
			return IOE.TryCatchError(func() (T.Unit, error) {
				return T.Unit{}, f.Close()
			})
		},
	)
}
