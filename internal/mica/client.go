package mica

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	F "github.com/IBM/fp-go/v2/function"
	IOE "github.com/IBM/fp-go/v2/ioeither"
	"go.uber.org/zap"

	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/transport"
)

const (
	datasetPath = "/ws/draft/collected-dataset/%s"
	studyPath   = "/ws/draft/individual-study/%s"
)

// Client reads datasets, studies and variables from Mica's REST API.
type Client struct {
	Transport *transport.Client
	Locale    string
	Logger    *zap.SugaredLogger
}

func NewClient(t *transport.Client, locale string, logger *zap.SugaredLogger) *Client {
	return &Client{Transport: t, Locale: locale, Logger: logger}
}

func (c *Client) Dataset(ctx context.Context, id string) IOE.IOEither[error, Dataset] {
	return F.Pipe1(
		c.Transport.Get(ctx, fmt.Sprintf(datasetPath, url.PathEscape(id)), http.StatusOK),
		IOE.Chain(func(body []byte) IOE.IOEither[error, Dataset] {
			return IOE.TryCatchError(func() (Dataset, error) {
				return ParseDataset(body)
			})
		}),
	)
}

func (c *Client) Study(ctx context.Context, id string) IOE.IOEither[error, Study] {
	return F.Pipe1(
		c.Transport.Get(ctx, fmt.Sprintf(studyPath, url.PathEscape(id)), http.StatusOK),
		IOE.Chain(func(body []byte) IOE.IOEither[error, Study] {
			return IOE.TryCatchError(func() (Study, error) {
				return ParseStudy(body)
			})
		}),
	)
}

// VariableCount asks for a single hit to learn how many variables the
// dataset has.
func (c *Client) VariableCount(ctx context.Context, datasetID string) IOE.IOEither[error, int] {
	return F.Pipe1(
		c.Transport.Get(ctx, VariablesPath(datasetID, 1, c.Locale), http.StatusOK),
		IOE.Chain(func(body []byte) IOE.IOEither[error, int] {
			return IOE.TryCatchError(func() (int, error) {
				return totalHits(body)
			})
		}),
	)
}

// Variables fetches every variable of a dataset in one page sized by a
// preceding count query. The count query already carries the first hit, so
// datasets with at most one variable cost a single call.
func (c *Client) Variables(ctx context.Context, datasetID string) IOE.IOEither[error, []VariableSummary] {
	return F.Pipe1(
		c.Transport.Get(ctx, VariablesPath(datasetID, 1, c.Locale), http.StatusOK),
		IOE.Chain(func(body []byte) IOE.IOEither[error, []VariableSummary] {
			count, err := totalHits(body)
			if err != nil {
				return IOE.Left[[]VariableSummary](err)
			}
			c.Logger.Debugw("Counted variables", "dataset", datasetID, "count", count)
			switch {
			case count <= 0:
				return IOE.Of[error]([]VariableSummary{})
			case count == 1:
				return IOE.TryCatchError(func() ([]VariableSummary, error) {
					return summaries(body)
				})
			}
			return F.Pipe1(
				c.Transport.Get(ctx, VariablesPath(datasetID, count, c.Locale), http.StatusOK),
				IOE.Chain(func(body []byte) IOE.IOEither[error, []VariableSummary] {
					return IOE.TryCatchError(func() ([]VariableSummary, error) {
						return summaries(body)
					})
				}),
			)
		}),
	)
}
