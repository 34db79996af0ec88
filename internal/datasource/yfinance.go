package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/seenimoa/stockpredictor/internal/infra"
	"github.com/seenimoa/stockpredictor/pkg/models"
)

// DefaultYahooBaseURL is the Yahoo Finance query host.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

const chartPath = "/v8/finance/chart/{symbol}"

// YFinance implements QuoteSource using the Yahoo Finance chart API.
type YFinance struct {
	client  *resty.Client
	cache   *infra.Cache[*models.Quote]
	limiter *infra.RateLimiter
	group   singleflight.Group
	timeout time.Duration
	log     logrus.FieldLogger
}

// YFinanceOption configures the Yahoo Finance source.
type YFinanceOption func(*yfSettings)

type yfSettings struct {
	baseURL    string
	timeout    time.Duration
	cacheTTL   time.Duration
	rateLimit  int
	httpClient *http.Client
	log        logrus.FieldLogger
}

// WithBaseURL points the client at a different host (tests, proxies).
func WithBaseURL(url string) YFinanceOption {
	return func(s *yfSettings) { s.baseURL = strings.TrimRight(url, "/") }
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) YFinanceOption {
	return func(s *yfSettings) { s.timeout = d }
}

// WithCacheTTL sets how long quotes are reused. Zero disables caching.
func WithCacheTTL(d time.Duration) YFinanceOption {
	return func(s *yfSettings) { s.cacheTTL = d }
}

// WithRateLimit caps upstream requests per second. Zero disables limiting.
func WithRateLimit(perSecond int) YFinanceOption {
	return func(s *yfSettings) { s.rateLimit = perSecond }
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) YFinanceOption {
	return func(s *yfSettings) { s.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) YFinanceOption {
	return func(s *yfSettings) { s.log = log }
}

// NewYFinance creates a new Yahoo Finance data source.
func NewYFinance(opts ...YFinanceOption) *YFinance {
	s := yfSettings{
		baseURL:   DefaultYahooBaseURL,
		timeout:   10 * time.Second,
		cacheTTL:  5 * time.Minute,
		rateLimit: 5,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.log == nil {
		s.log = infra.DiscardLogger()
	}

	var client *resty.Client
	if s.httpClient != nil {
		client = resty.NewWithClient(s.httpClient)
	} else {
		client = resty.New()
	}
	client.
		SetBaseURL(s.baseURL).
		SetTimeout(s.timeout).
		SetHeader("User-Agent", DefaultUserAgent).
		SetHeader("Accept", "application/json")

	return &YFinance{
		client:  client,
		cache:   infra.NewCache[*models.Quote](s.cacheTTL),
		limiter: infra.NewRateLimiter(s.rateLimit, time.Second/time.Duration(max(s.rateLimit, 1))),
		timeout: s.timeout,
		log:     s.log.WithField("source", "yfinance"),
	}
}

// Name returns the data source name.
func (y *YFinance) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance v8 chart types ---

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol               string   `json:"symbol"`
	Currency             string   `json:"currency"`
	ExchangeName         string   `json:"exchangeName"`
	LongName             string   `json:"longName"`
	ShortName            string   `json:"shortName"`
	RegularMarketPrice   *float64 `json:"regularMarketPrice"`
	RegularMarketTime    int64    `json:"regularMarketTime"`
	ChartPreviousClose   *float64 `json:"chartPreviousClose"`
	PreviousClose        *float64 `json:"previousClose"`
	RegularMarketDayHigh *float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow  *float64 `json:"regularMarketDayLow"`
	FiftyTwoWeekHigh     *float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow      *float64 `json:"fiftyTwoWeekLow"`
}

type yfIndicators struct {
	Quote []yfOHLCV `json:"quote"`
}

type yfOHLCV struct {
	Open  []*float64 `json:"open"`
	High  []*float64 `json:"high"`
	Low   []*float64 `json:"low"`
	Close []*float64 `json:"close"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// --- Public methods ---

// GetQuote returns the latest quote for symbol. Identical concurrent calls
// share one upstream request; results are cached for the configured TTL.
func (y *YFinance) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", ErrTickerNotFound)
	}

	cacheKey := "quote:" + symbol
	if cached, ok := y.cache.Get(cacheKey); ok {
		return copyQuote(cached), nil
	}

	// The flight outlives any one caller: a cancelled waiter must not fail
	// the others sharing it.
	ch := y.group.DoChan(cacheKey, func() (any, error) {
		fctx, cancel := y.flightContext(ctx)
		defer cancel()
		q, err := y.fetchChart(fctx, symbol)
		if err != nil {
			return nil, err
		}
		y.cache.Set(cacheKey, q)
		return q, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		y.log.WithField("symbol", symbol).Debug("shared in-flight quote fetch")
	}
	return copyQuote(res.Val.(*models.Quote)), nil
}

// flightContext detaches from the caller's cancellation but keeps its
// values, bounded by the source's own timeout.
func (y *YFinance) flightContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if y.timeout <= 0 {
		return context.WithCancel(detached)
	}
	return context.WithTimeout(detached, y.timeout)
}

func (y *YFinance) fetchChart(ctx context.Context, symbol string) (*models.Quote, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
	}

	start := time.Now()
	resp, err := y.client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{"interval": "1d", "range": "1d"}).
		Get(chartPath)
	if err != nil {
		return nil, fmt.Errorf("yfinance chart %s: %w", symbol, err)
	}
	y.log.WithFields(logrus.Fields{
		"symbol":  symbol,
		"status":  resp.StatusCode(),
		"latency": time.Since(start).Round(time.Millisecond),
	}).Debug("yahoo chart response")

	var chart yfChartResponse
	decodeErr := json.Unmarshal(resp.Body(), &chart)

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
	case resp.StatusCode() == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, symbol)
	case resp.IsError():
		return nil, &ErrHTTP{
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       truncate(resp.String(), 512),
		}
	case decodeErr != nil:
		return nil, fmt.Errorf("parse yfinance chart: %w", decodeErr)
	}

	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
	}
	return parseChartQuote(chart.Chart.Result[0], symbol)
}

// --- Helpers ---

// parseChartQuote converts a chart result into a Quote. Meta fields win;
// the first OHLC bar fills in a missing price or day range.
func parseChartQuote(r yfChartResult, requested string) (*models.Quote, error) {
	m := r.Meta
	q := &models.Quote{
		Symbol:     coalesce(m.Symbol, requested),
		Name:       coalesce(m.LongName, m.ShortName, m.Symbol, requested),
		Currency:   m.Currency,
		Exchange:   m.ExchangeName,
		PrevClose:  firstNonNil(m.ChartPreviousClose, m.PreviousClose),
		High:       m.RegularMarketDayHigh,
		Low:        m.RegularMarketDayLow,
		WeekHigh52: m.FiftyTwoWeekHigh,
		WeekLow52:  m.FiftyTwoWeekLow,
	}
	if m.RegularMarketTime > 0 {
		q.Timestamp = time.Unix(m.RegularMarketTime, 0)
	}

	var bar yfOHLCV
	if len(r.Indicators.Quote) > 0 {
		bar = r.Indicators.Quote[0]
	}
	if q.High == nil {
		q.High = firstValue(bar.High)
	}
	if q.Low == nil {
		q.Low = firstValue(bar.Low)
	}

	price := m.RegularMarketPrice
	if price == nil {
		price = lastValue(bar.Close)
	}
	if price == nil || *price <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPrice, q.Symbol)
	}
	q.LastPrice = *price
	return q, nil
}

func firstNonNil(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstValue(series []*float64) *float64 {
	for _, v := range series {
		if v != nil {
			return v
		}
	}
	return nil
}

func lastValue(series []*float64) *float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if series[i] != nil {
			return series[i]
		}
	}
	return nil
}

func copyQuote(q *models.Quote) *models.Quote {
	c := *q
	return &c
}

func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// truncate caps s at n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
