package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/correlation"
)

var ErrNotFound = errors.New("upstream resource not found")

// StatusError is returned for non-2xx responses other than 404.
type StatusError struct {
	Upstream   string
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Upstream, e.Path, e.StatusCode)
}

type Client struct {
	Name    string
	BaseURL *url.URL
	HTTP    *http.Client
	tracer  trace.Tracer
}

func NewClient(name string, baseURL string, httpClient *http.Client) *Client {
	u, err := url.Parse(baseURL)
	if err != nil {
		// Fail fast: config error
		panic(fmt.Sprintf("invalid %s base url %q: %v", name, baseURL, err))
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		Name:    name,
		BaseURL: u,
		HTTP:    httpClient,
		tracer:  otel.Tracer("github.com/andreasstove999/ecommerce-system/cart-manager-go/internal/clients"),
	}
}

func (c *Client) Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	rel := &url.URL{Path: path}
	u := c.BaseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Ensure correlation id propagated downstream
	if cid := correlation.ID(ctx); cid != "" {
		req.Header.Set(correlation.Header, cid)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	return c.HTTP.Do(req)
}

// GetJSON fetches path and decodes the body into out. A 404 yields an error
// wrapping ErrNotFound.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	ctx, span := c.tracer.Start(ctx, c.Name+" GET", trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.target", path)))
	defer span.End()

	err := c.getJSON(ctx, path, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return errors.Wrapf(err, "%s GET %s", c.Name, path)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.Wrapf(ErrNotFound, "%s GET %s", c.Name, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &StatusError{Upstream: c.Name, Path: path, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "%s GET %s: decode body", c.Name, path)
	}
	return nil
}
