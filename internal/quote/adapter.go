package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/seenimoa/stockpredictor/internal/datasource"
)

// Adapter fetches a normalised quote for a canonical symbol.
type Adapter interface {
	Fetch(ctx context.Context, symbol string) (*Record, error)
}

var (
	// ErrNotFound means the adapter does not know the symbol.
	ErrNotFound = errors.New("quote: symbol not found")
	// ErrNoPrice means the adapter answered without a usable price.
	ErrNoPrice = errors.New("quote: no usable price")
)

// StatusError is returned by HTTPAdapter for non-success responses.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("quote: adapter returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("quote: adapter returned HTTP %d: %s", e.StatusCode, e.Message)
}

// ── In-process adapter ──

// DirectAdapter adapts a datasource.QuoteSource to the Adapter contract.
type DirectAdapter struct {
	source datasource.QuoteSource
}

// NewDirectAdapter wraps src.
func NewDirectAdapter(src datasource.QuoteSource) *DirectAdapter {
	return &DirectAdapter{source: src}
}

// Fetch implements Adapter.
func (a *DirectAdapter) Fetch(ctx context.Context, symbol string) (*Record, error) {
	q, err := a.source.GetQuote(ctx, symbol)
	switch {
	case errors.Is(err, datasource.ErrTickerNotFound):
		return nil, errors.Wrapf(ErrNotFound, "%s via %s", symbol, a.source.Name())
	case errors.Is(err, datasource.ErrNoPrice):
		return nil, errors.Wrapf(ErrNoPrice, "%s via %s", symbol, a.source.Name())
	case err != nil:
		return nil, errors.Wrapf(err, "fetch %s via %s", symbol, a.source.Name())
	}

	rec := FromQuote(q)
	if !rec.HasPrice() {
		return nil, errors.Wrap(ErrNoPrice, symbol)
	}
	return rec, nil
}

// ── Remote adapter ──

// StockPath is the adapter service route serving quotes.
const StockPath = "/api/v1/stock"

// HTTPAdapter calls a remote adapter service: GET {endpoint}/api/v1/stock?symbol=X.
type HTTPAdapter struct {
	client *resty.Client
}

// HTTPOption configures an HTTPAdapter.
type HTTPOption func(*resty.Client)

// WithHTTPTimeout sets the request timeout.
func WithHTTPTimeout(d time.Duration) HTTPOption {
	return func(c *resty.Client) { c.SetTimeout(d) }
}

// WithTransport sets the underlying round tripper.
func WithTransport(rt http.RoundTripper) HTTPOption {
	return func(c *resty.Client) { c.SetTransport(rt) }
}

// NewHTTPAdapter creates an adapter for the service at endpoint.
func NewHTTPAdapter(endpoint string, opts ...HTTPOption) *HTTPAdapter {
	c := resty.New().
		SetBaseURL(strings.TrimRight(endpoint, "/")).
		SetTimeout(10*time.Second).
		SetHeader("Accept", "application/json")
	for _, opt := range opts {
		opt(c)
	}
	return &HTTPAdapter{client: c}
}

type stockPayload struct {
	Record
	Error string `json:"error"`
}

// Fetch implements Adapter. Non-success statuses, error bodies and missing
// prices are all reported as errors; missing optional fields are not.
func (a *HTTPAdapter) Fetch(ctx context.Context, symbol string) (*Record, error) {
	var payload stockPayload
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		Get(StockPath)
	if err != nil {
		return nil, errors.Wrapf(err, "quote adapter request for %s", symbol)
	}

	// Error bodies are JSON too; decode best-effort before checking status.
	decodeErr := json.Unmarshal(resp.Body(), &payload)

	if resp.IsError() {
		if resp.StatusCode() == http.StatusNotFound {
			return nil, errors.Wrapf(ErrNotFound, "%s: %s", symbol, payload.Error)
		}
		return nil, &StatusError{StatusCode: resp.StatusCode(), Message: payload.Error}
	}
	if decodeErr != nil {
		return nil, errors.Wrapf(decodeErr, "decode quote for %s", symbol)
	}
	if payload.Error != "" {
		return nil, errors.Wrapf(ErrNotFound, "%s: %s", symbol, payload.Error)
	}

	rec := payload.Record
	if rec.Symbol == "" {
		rec.Symbol = symbol
	}
	rec.Currency = strings.ToUpper(rec.Currency)
	if !rec.HasPrice() {
		return nil, errors.Wrap(ErrNoPrice, symbol)
	}
	return &rec, nil
}
