package internal

import (
	"context"

	"github.com/IBM/fp-go/v2/ioeither"

	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/datacite"
	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/mica"
)

type ExtractorInterface interface {
	Extract(ctx context.Context, datasetID string) ioeither.IOEither[error, mica.Bundle]
}

type ExporterInterface interface {
	VariablesToCSV(ctx context.Context, variables []mica.VariableSummary, outputCSV string) error
}

type RegistryInterface interface {
	Create(ctx context.Context, s datacite.Submission) ioeither.IOEither[error, []byte]
	Get(ctx context.Context, doi string) ioeither.IOEither[error, []byte]
	Update(ctx context.Context, doi string, attributes any) ioeither.IOEither[error, []byte]
	Publish(ctx context.Context, doi string) ioeither.IOEither[error, []byte]
}
