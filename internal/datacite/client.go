package datacite

import (
	"context"
	"fmt"
	"net/http"

	F "github.com/IBM/fp-go/v2/function"
	IOE "github.com/IBM/fp-go/v2/ioeither"
	"go.uber.org/zap"

	"github.com/Qubut/IP-Claim/packages/mica_doi/internal/transport"
)

const (
	doisPath = "/dois/"
	doiPath  = "/dois/%s"
)

// Client talks to the DataCite REST API. Responses are returned raw so the
// caller can echo them.
type Client struct {
	Transport *transport.Client
	Logger    *zap.SugaredLogger
}

func NewClient(t *transport.Client, logger *zap.SugaredLogger) *Client {
	return &Client{Transport: t, Logger: logger}
}

// Create registers a new DOI in draft state.
func (c *Client) Create(ctx context.Context, s Submission) IOE.IOEither[error, []byte] {
	return F.Pipe1(
		c.Transport.Post(ctx, doisPath, NewCreateRequest(s), http.StatusCreated),
		IOE.Tap(func(_ []byte) IOE.IOEither[error, []byte] {
			c.Logger.Infow("Created DOI", "doi", s.Prefix+"/"+s.Suffix, "url", s.URL)
			return IOE.Of[error]([]byte(nil))
		}),
	)
}

func (c *Client) Get(ctx context.Context, doi string) IOE.IOEither[error, []byte] {
	return c.Transport.Get(ctx, fmt.Sprintf(doiPath, doi), http.StatusOK)
}

// Update replaces the given attributes of an existing DOI.
func (c *Client) Update(ctx context.Context, doi string, attributes any) IOE.IOEither[error, []byte] {
	return F.Pipe1(
		c.Transport.Put(ctx, fmt.Sprintf(doiPath, doi), UpdateRequest{Data: UpdateData{Attributes: attributes}}, http.StatusOK),
		IOE.Tap(func(_ []byte) IOE.IOEither[error, []byte] {
			c.Logger.Infow("Updated DOI", "doi", doi)
			return IOE.Of[error]([]byte(nil))
		}),
	)
}

// Publish moves a draft DOI to the findable state.
func (c *Client) Publish(ctx context.Context, doi string) IOE.IOEither[error, []byte] {
	return c.Update(ctx, doi, map[string]string{"event": "publish"})
}
