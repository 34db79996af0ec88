package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seenimoa/stockpredictor/internal/infra"
)

// MissingCredentialText is returned verbatim when no API key is configured.
const MissingCredentialText = "Error: API Key is missing. Please configure it in the settings."

// defaultFailureDetail is used when the provider failed without a message.
const defaultFailureDetail = "Failed to fetch prediction"

// FailureKind classifies a Completion.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureMissingCredential
	FailureCompletion
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureMissingCredential:
		return "missing_credential"
	case FailureCompletion:
		return "completion_failure"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

// Completion is the outcome of one CompletionClient call: either the
// model's text or a typed failure. String renders it for end users.
type Completion struct {
	Text    string
	Failure FailureKind
	Detail  string // underlying failure message, empty on success
	Usage   Usage
	Latency time.Duration
}

// OK reports whether the completion succeeded.
func (c Completion) OK() bool { return c.Failure == FailureNone }

// String returns the user-facing text: the model reply, or a short error sentence.
func (c Completion) String() string {
	switch c.Failure {
	case FailureMissingCredential:
		return MissingCredentialText
	case FailureCompletion:
		detail := c.Detail
		if detail == "" {
			detail = defaultFailureDetail
		}
		return fmt.Sprintf("Sorry, I encountered an error: %s. Please try again.", detail)
	default:
		return c.Text
	}
}

// CompletionConfig is injected at construction; the client never reads
// credentials from the environment itself.
type CompletionConfig struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	HTTPClient  *http.Client
	Logger      logrus.FieldLogger
}

// CompletionClient sends an assembled conversation and returns a Completion.
type CompletionClient struct {
	provider ChatProvider // nil when no credential is configured
	opts     ChatOptions
	log      logrus.FieldLogger
}

// NewCompletionClient builds a client over an OpenAI-compatible provider.
// An empty APIKey yields a client whose every call reports
// FailureMissingCredential without touching the network.
func NewCompletionClient(cfg CompletionConfig) *CompletionClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGroqBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Provider == "" {
		cfg.Provider = ProviderGroq
	}
	log := cfg.Logger
	if log == nil {
		log = infra.DiscardLogger()
	}

	var provider ChatProvider
	if cfg.APIKey != "" {
		hc := cfg.HTTPClient
		if hc == nil {
			timeout := cfg.Timeout
			if timeout <= 0 {
				timeout = 120 * time.Second
			}
			hc = &http.Client{Timeout: timeout}
		}
		// Only fails on an empty key, checked above.
		provider, _ = NewOpenAIProvider(cfg.APIKey,
			WithOpenAIName(cfg.Provider),
			WithOpenAIBaseURL(cfg.BaseURL),
			WithOpenAIModel(cfg.Model),
			WithOpenAIHTTPClient(hc),
		)
	}

	return NewCompletionClientWithProvider(provider, ChatOptions{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}, log)
}

// NewCompletionClientWithProvider wraps an existing provider. A nil provider
// behaves as a missing credential.
func NewCompletionClientWithProvider(p ChatProvider, opts ChatOptions, log logrus.FieldLogger) *CompletionClient {
	if log == nil {
		log = infra.DiscardLogger()
	}
	return &CompletionClient{provider: p, opts: opts, log: log.WithField("component", "completion")}
}

// HasCredential reports whether a provider is configured.
func (c *CompletionClient) HasCredential() bool { return c.provider != nil }

// Complete performs exactly one chat request, without retry.
func (c *CompletionClient) Complete(ctx context.Context, messages []Message) Completion {
	if c.provider == nil {
		c.log.Error("API key is missing; set STOCKPREDICTOR_LLM_API_KEY or GROQ_API_KEY")
		return Completion{Failure: FailureMissingCredential, Detail: ErrNoAPIKey.Error()}
	}

	opts := c.opts
	resp, err := c.provider.Chat(ctx, messages, &opts)
	if err != nil {
		detail := failureDetail(err)
		c.log.WithError(err).WithField("provider", c.provider.Name()).Error("completion request failed")
		return Completion{Failure: FailureCompletion, Detail: detail}
	}

	c.log.WithFields(logrus.Fields{
		"provider": resp.Provider,
		"model":    resp.Model,
		"tokens":   resp.Usage.TotalTokens,
		"latency":  resp.Latency.Round(time.Millisecond),
	}).Debug("completion received")

	return Completion{Text: resp.Content, Usage: resp.Usage, Latency: resp.Latency}
}

// Ping checks the provider, or returns ErrNoAPIKey.
func (c *CompletionClient) Ping(ctx context.Context) error {
	if c.provider == nil {
		return ErrNoAPIKey
	}
	return c.provider.Ping(ctx)
}

// failureDetail picks the message shown to the user: the provider's own
// error message when present, the generic detail for bare HTTP failures,
// otherwise the Go error text.
func failureDetail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return defaultFailureDetail
	}
	return err.Error()
}
