package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/seenimoa/stockpredictor/internal/config"
	"github.com/seenimoa/stockpredictor/internal/datasource"
	"github.com/seenimoa/stockpredictor/internal/infra"
	"github.com/seenimoa/stockpredictor/internal/llm"
	"github.com/seenimoa/stockpredictor/internal/quote"
	"github.com/seenimoa/stockpredictor/internal/ticker"
)

// Stage is a step of the per-message pipeline.
type Stage string

const (
	StageIdle       Stage = "idle"
	StageResolving  Stage = "resolving"
	StageFetching   Stage = "fetching"
	StageSkipped    Stage = "skipped"
	StageAssembling Stage = "assembling"
	StageRequesting Stage = "requesting"
	StageCompleted  Stage = "completed"
	StageFailed     Stage = "failed"
)

// Completer sends an assembled conversation to the language model.
// *llm.CompletionClient implements it.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message) llm.Completion
}

// Result is the outcome of one Predict call. Text is always set: the model
// reply or a short error sentence.
type Result struct {
	RequestID string          `json:"request_id"`
	Text      string          `json:"content"`
	Ticker    string          `json:"ticker,omitempty"`
	LiveData  bool            `json:"live_data"`
	Failure   llm.FailureKind `json:"-"`
	Stage     Stage           `json:"stage"`
	Duration  time.Duration   `json:"duration"`
}

// Failed reports whether Text is an error sentence rather than a reply.
func (r Result) Failed() bool { return r.Failure != llm.FailureNone }

// Predictor runs the resolve, augment, assemble and complete pipeline.
// It holds no per-request state and is safe for concurrent use.
type Predictor struct {
	resolver  *ticker.Resolver
	augmenter *Augmenter
	completer Completer
	log       logrus.FieldLogger
}

// NewPredictor wires the pipeline components. A nil resolver uses the
// default alias table; a nil logger discards output.
func NewPredictor(resolver *ticker.Resolver, augmenter *Augmenter, completer Completer, log logrus.FieldLogger) *Predictor {
	if resolver == nil {
		resolver = ticker.NewResolver()
	}
	if augmenter == nil {
		augmenter = NewAugmenter(nil)
	}
	if log == nil {
		log = infra.DiscardLogger()
	}
	return &Predictor{
		resolver:  resolver,
		augmenter: augmenter,
		completer: completer,
		log:       log.WithField("component", "predictor"),
	}
}

// NewPredictorFromConfig builds the production pipeline: an in-process
// Yahoo adapter, or an HTTP adapter when quote.endpoint is set, and a
// completion client holding the configured credential.
func NewPredictorFromConfig(cfg *config.Config, log *logrus.Logger) (*Predictor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if log == nil {
		log = infra.DiscardLogger()
	}

	completer := llm.NewCompletionClient(llm.CompletionConfig{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.RequestTimeout(),
		Logger:      log,
	})

	augmenter := NewAugmenter(NewAdapterFromConfig(cfg.Quote, log),
		WithFetchTimeout(cfg.Quote.QuoteTimeout()),
		WithAugmenterLogger(log),
	)
	return NewPredictor(ticker.NewResolver(), augmenter, completer, log), nil
}

// NewAdapterFromConfig returns the quote adapter selected by cfg.
func NewAdapterFromConfig(cfg config.QuoteConfig, log logrus.FieldLogger) quote.Adapter {
	if cfg.Endpoint != "" {
		return quote.NewHTTPAdapter(cfg.Endpoint, quote.WithHTTPTimeout(cfg.QuoteTimeout()))
	}
	return quote.NewDirectAdapter(datasource.NewYFinance(
		datasource.WithBaseURL(cfg.BaseURL),
		datasource.WithTimeout(cfg.QuoteTimeout()),
		datasource.WithCacheTTL(cfg.CacheDuration()),
		datasource.WithRateLimit(cfg.RateLimit),
		datasource.WithLogger(log),
	))
}

// Resolver returns the ticker resolver in use.
func (p *Predictor) Resolver() *ticker.Resolver { return p.resolver }

// Predict answers one user message given the prior turns. The history is
// copied on entry; the caller may reuse its slice immediately.
func (p *Predictor) Predict(ctx context.Context, message string, history []Turn) Result {
	start := time.Now()
	res := Result{RequestID: uuid.NewString(), Stage: StageIdle}
	log := p.log.WithField("request_id", res.RequestID)

	if !p.hasCredential() {
		// No quote fetch either: the request cannot be answered.
		completion := p.complete(ctx, nil)
		res.Text, res.Failure, res.Stage = completion.String(), completion.Failure, StageFailed
		res.Duration = time.Since(start)
		log.Error("completion credential missing, request short-circuited")
		return res
	}

	turns := make([]Turn, 0, len(history))
	for _, t := range history {
		if t.Valid() {
			turns = append(turns, t)
		}
	}
	if dropped := len(history) - len(turns); dropped > 0 {
		log.WithField("dropped", dropped).Warn("history turns with unsupported role ignored")
	}

	res.Stage = p.enter(log, StageResolving)
	symbol, ok := p.resolver.Resolve(message)
	res.Ticker = symbol

	var aug AugmentedContext
	if ok {
		res.Stage = p.enter(log.WithField("ticker", symbol), StageFetching)
		aug = p.augmenter.Augment(ctx, symbol)
	} else {
		res.Stage = p.enter(log, StageSkipped)
		aug = Fallback("")
	}
	res.LiveData = aug.Live()

	res.Stage = p.enter(log, StageAssembling)
	msgs := Assemble(aug, turns, message)

	res.Stage = p.enter(log.WithField("messages", len(msgs)), StageRequesting)
	completion := p.complete(ctx, msgs)
	res.Text = completion.String()
	res.Failure = completion.Failure
	res.Duration = time.Since(start)

	fields := logrus.Fields{
		"ticker":    symbol,
		"live_data": res.LiveData,
		"duration":  res.Duration.Round(time.Millisecond),
	}
	if completion.OK() {
		res.Stage = StageCompleted
		log.WithFields(fields).Info("prediction completed")
	} else {
		res.Stage = StageFailed
		log.WithFields(fields).WithField("failure", completion.Failure.String()).Warn("prediction failed")
	}
	return res
}

// Reply is the text-only entry point: the model's report or an error sentence.
func (p *Predictor) Reply(ctx context.Context, message string, history []Turn) string {
	return p.Predict(ctx, message, history).Text
}

func (p *Predictor) complete(ctx context.Context, msgs []llm.Message) llm.Completion {
	if p.completer == nil {
		return llm.Completion{Failure: llm.FailureMissingCredential}
	}
	return p.completer.Complete(ctx, msgs)
}

// hasCredential reports false only when the completer says so.
func (p *Predictor) hasCredential() bool {
	if p.completer == nil {
		return false
	}
	if c, ok := p.completer.(interface{ HasCredential() bool }); ok {
		return c.HasCredential()
	}
	return true
}

func (p *Predictor) enter(log logrus.FieldLogger, s Stage) Stage {
	log.WithField("stage", s).Debug("pipeline stage")
	return s
}
