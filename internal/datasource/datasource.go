// Package datasource fetches market data from upstream providers.
// The only source wired today is Yahoo Finance's v8 chart endpoint, which
// serves NSE (.NS), BSE (.BO), index (^NSEI) and foreign symbols alike.
package datasource

import (
	"context"
	"errors"
	"fmt"

	"github.com/seenimoa/stockpredictor/pkg/models"
)

// QuoteSource is implemented by upstream providers able to return a
// point-in-time quote for a canonical symbol.
type QuoteSource interface {
	// Name returns the human-readable name of this data source.
	Name() string

	// GetQuote returns the latest quote for symbol (e.g. "TCS.NS").
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// --- Sentinel errors ---

// ErrTickerNotFound is returned when the upstream does not know the symbol.
var ErrTickerNotFound = errors.New("ticker not found")

// ErrNoPrice is returned when the upstream answered without a usable price.
var ErrNoPrice = errors.New("no price in upstream response")

// ErrRateLimited is returned when the local limiter or the upstream refused the request.
var ErrRateLimited = errors.New("rate limited by data source")

// ErrHTTP wraps a non-success upstream response.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// DefaultUserAgent is sent with upstream requests; Yahoo rejects the Go default.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
