package agent

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seenimoa/stockpredictor/internal/agent/prompts"
	"github.com/seenimoa/stockpredictor/internal/infra"
	"github.com/seenimoa/stockpredictor/internal/quote"
)

// DefaultFetchTimeout bounds the single quote fetch per request.
const DefaultFetchTimeout = 10 * time.Second

// AugmentedContext is the request-specific part of the system message.
// Exactly one of LiveBlock and FallbackNotice is set.
type AugmentedContext struct {
	Ticker         string        `json:"ticker,omitempty"`
	Quote          *quote.Record `json:"quote,omitempty"`
	LiveBlock      string        `json:"live_block,omitempty"`
	FallbackNotice string        `json:"fallback_notice,omitempty"`
}

// Live reports whether a live quote block is present.
func (a AugmentedContext) Live() bool { return a.LiveBlock != "" }

// Segment returns the text appended to the static system prompt.
func (a AugmentedContext) Segment() string {
	if a.Live() {
		return a.LiveBlock
	}
	return a.FallbackNotice
}

// Fallback returns the context used when no live quote is available.
func Fallback(ticker string) AugmentedContext {
	return AugmentedContext{Ticker: ticker, FallbackNotice: prompts.FallbackNotice}
}

// Augmenter turns a resolved ticker into an AugmentedContext with one
// adapter call. Failures never escape: they become the fallback notice.
//
//go:generate mockgen -package=agent_test -destination=mock_adapter_test.go github.com/seenimoa/stockpredictor/internal/quote Adapter
type Augmenter struct {
	adapter quote.Adapter
	timeout time.Duration
	log     logrus.FieldLogger
	now     func() time.Time
}

// AugmenterOption configures an Augmenter.
type AugmenterOption func(*Augmenter)

// WithFetchTimeout overrides DefaultFetchTimeout. Non-positive values keep
// the default.
func WithFetchTimeout(d time.Duration) AugmenterOption {
	return func(a *Augmenter) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithAugmenterLogger sets the logger.
func WithAugmenterLogger(log logrus.FieldLogger) AugmenterOption {
	return func(a *Augmenter) { a.log = log }
}

// WithClock sets the time source used for the market-session line.
func WithClock(now func() time.Time) AugmenterOption {
	return func(a *Augmenter) { a.now = now }
}

// NewAugmenter creates an Augmenter over the given adapter.
func NewAugmenter(adapter quote.Adapter, opts ...AugmenterOption) *Augmenter {
	a := &Augmenter{
		adapter: adapter,
		timeout: DefaultFetchTimeout,
		log:     infra.DiscardLogger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.WithField("component", "augmenter")
	return a
}

// Augment fetches a quote for symbol and formats it. An empty symbol, a
// fetch error or a record without a usable price all yield Fallback.
func (a *Augmenter) Augment(ctx context.Context, symbol string) AugmentedContext {
	if symbol == "" || a.adapter == nil {
		return Fallback(symbol)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	rec, err := a.adapter.Fetch(fetchCtx, symbol)
	log := a.log.WithFields(logrus.Fields{"ticker": symbol, "elapsed": time.Since(start).Round(time.Millisecond)})
	if err != nil {
		log.WithError(err).Warn("live quote unavailable, using fallback notice")
		return Fallback(symbol)
	}
	if !rec.HasPrice() {
		log.Warn("live quote has no usable price, using fallback notice")
		return Fallback(symbol)
	}

	log.WithField("price", rec.LastPrice.String()).Debug("live quote fetched")
	return AugmentedContext{
		Ticker:    symbol,
		Quote:     rec,
		LiveBlock: prompts.LiveDataBlock(symbol, rec, a.now()),
	}
}
