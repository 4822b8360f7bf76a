package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ET "github.com/IBM/fp-go/v2/either"
	"github.com/IBM/fp-go/v2/function"
	IOE "github.com/IBM/fp-go/v2/ioeither"
	Http "github.com/IBM/fp-go/v2/ioeither/http"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	T "github.com/Qubut/IP-Claim/packages/mica_doi/internal/typing"
)

const (
	DefaultTimeout  = 30 * time.Second
	mediaTypeJSON   = "application/json"
	defaultAccept   = "application/json, */*"
	headerUserAgent = "mica-doi"
)

// Credentials are sent as HTTP basic auth on every call. Empty credentials
// mean anonymous calls.
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) Empty() bool {
	return c.Username == "" && c.Password == ""
}

// Client performs authenticated calls against a single base URL.
type Client struct {
	Name            string
	BaseURL         string
	Accept          string
	Credentials     Credentials
	Logger          *zap.SugaredLogger
	Tracer          trace.Tracer
	client          Http.Client
	requestsTotal   metric.Int64Counter
	requestsFailed  metric.Int64Counter
	requestDuration metric.Int64Histogram
}

// NewHTTPClient returns a client bounded by timeout, falling back to
// DefaultTimeout for non-positive values.
func NewHTTPClient(timeout time.Duration) *http.Client {
	timeout = function.Ternary(
		func(t time.Duration) bool { return t > 0 },
		function.Identity[time.Duration],
		function.Constant1[time.Duration, time.Duration](DefaultTimeout),
	)(timeout)
	return &http.Client{Timeout: timeout}
}

func NewClient(
	name, baseURL string,
	creds Credentials,
	httpClient *http.Client,
	tracer trace.Tracer,
	logger *zap.SugaredLogger,
	meter metric.Meter,
) (*Client, error) {
	if httpClient == nil {
		httpClient = NewHTTPClient(DefaultTimeout)
	}
	c := &Client{
		Name:        name,
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Accept:      defaultAccept,
		Credentials: creds,
		Logger:      logger,
		Tracer:      tracer,
		client:      Http.MakeClient(httpClient),
	}

	var err error
	c.requestsTotal, err = meter.Int64Counter(
		name+".requests.total",
		metric.WithDescription("Total number of HTTP requests issued"),
	)
	if err != nil {
		return nil, err
	}

	c.requestsFailed, err = meter.Int64Counter(
		name+".requests.failed",
		metric.WithDescription("Number of HTTP requests that did not return the expected status"),
	)
	if err != nil {
		return nil, err
	}

	c.requestDuration, err = meter.Int64Histogram(
		name+".request.duration",
		metric.WithDescription("Duration of individual HTTP requests"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Client) Get(ctx context.Context, path string, expect int) IOE.IOEither[error, []byte] {
	return c.Do(ctx, http.MethodGet, path, nil, expect)
}

func (c *Client) Post(ctx context.Context, path string, payload any, expect int) IOE.IOEither[error, []byte] {
	return c.Do(ctx, http.MethodPost, path, payload, expect)
}

func (c *Client) Put(ctx context.Context, path string, payload any, expect int) IOE.IOEither[error, []byte] {
	return c.Do(ctx, http.MethodPut, path, payload, expect)
}

// Do sends payload (JSON encoded, when not nil) to path relative to the base
// URL and yields the response body when the status equals expect. The path
// is appended verbatim so hand-built query strings survive untouched.
func (c *Client) Do(
	ctx context.Context,
	method, path string,
	payload any,
	expect int,
) IOE.IOEither[error, []byte] {
	endpoint := c.BaseURL + path
	return func() ET.Either[error, []byte] {
		ctx, span := c.Tracer.Start(ctx, c.Name+".request", trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", endpoint),
			attribute.Int("http.expected_status", expect),
		))
		defer span.End()
		start := time.Now()
		c.Logger.Debugw("Sending request", "service", c.Name, "method", method, "url", endpoint)

		result := IOE.Bracket(
			c.send(c.request(ctx, method, endpoint, payload), method, endpoint),
			c.read(method, endpoint, expect),
			closeBody,
		)()

		attrs := metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("service", c.Name),
		)
		c.requestsTotal.Add(ctx, 1, attrs)
		c.requestDuration.Record(ctx, time.Since(start).Milliseconds(), attrs)
		if _, err := ET.UnwrapError(result); err != nil {
			c.requestsFailed.Add(ctx, 1, attrs)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.Logger.Debugw("Request failed", "service", c.Name, "method", method, "url", endpoint, "err", err)
		}
		return result
	}
}

func (c *Client) request(
	ctx context.Context,
	method, endpoint string,
	payload any,
) IOE.IOEither[error, *http.Request] {
	return IOE.TryCatchError(func() (*http.Request, error) {
		var body io.Reader = http.NoBody
		if payload != nil {
			data, err := json.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("encode request body: %w", err)
			}
			body = bytes.NewReader(data)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", c.Accept)
		req.Header.Set("User-Agent", headerUserAgent)
		if payload != nil {
			req.Header.Set("Content-Type", mediaTypeJSON)
		}
		if !c.Credentials.Empty() {
			req.SetBasicAuth(c.Credentials.Username, c.Credentials.Password)
		}
		return req, nil
	})
}

// send wraps anything that prevents a response from arriving into an Error.
func (c *Client) send(
	request IOE.IOEither[error, *http.Request],
	method, endpoint string,
) IOE.IOEither[error, *http.Response] {
	return func() ET.Either[error, *http.Response] {
		resp, err := ET.UnwrapError(c.client.Do(request)())
		if err != nil {
			return ET.Left[*http.Response](error(&Error{Method: method, Endpoint: endpoint, Err: err}))
		}
		return ET.Right[error](resp)
	}
}

func (c *Client) read(method, endpoint string, expect int) func(*http.Response) IOE.IOEither[error, []byte] {
	return func(resp *http.Response) IOE.IOEither[error, []byte] {
		return IOE.TryCatchError(func() ([]byte, error) {
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, &Error{Method: method, Endpoint: endpoint, StatusCode: resp.StatusCode, Err: err}
			}
			if resp.StatusCode != expect {
				return nil, &Error{
					Method:     method,
					Endpoint:   endpoint,
					StatusCode: resp.StatusCode,
					Body:       excerpt(bytes.TrimSpace(body)),
				}
			}
			return body, nil
		})
	}
}

func closeBody(resp *http.Response, _ ET.Either[error, []byte]) IOE.IOEither[error, T.Unit] {
	return IOE.TryCatchError(func() (T.Unit, error) {
		return T.Unit{}, resp.Body.Close()
	})
}
