package api

import (
	"net/http"

	"github.com/seenimoa/stockpredictor/internal/config"
)

// ConfigView is the non-secret part of the running configuration.
type ConfigView struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	BaseURL     string  `json:"base_url"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`

	QuoteEndpoint string `json:"quote_endpoint,omitempty"`
	QuoteTimeout  int    `json:"quote_timeout_sec"`
}

func newConfigView(cfg *config.Config) ConfigView {
	return ConfigView{
		Provider:      cfg.LLM.Provider,
		Model:         cfg.LLM.Model,
		BaseURL:       cfg.LLM.BaseURL,
		Temperature:   cfg.LLM.Temperature,
		MaxTokens:     cfg.LLM.MaxTokens,
		QuoteEndpoint: cfg.Quote.Endpoint,
		QuoteTimeout:  cfg.Quote.TimeoutSec,
	}
}

// handleGetConfig returns the running configuration without credentials.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if s.cfg == nil {
		writeError(w, http.StatusServiceUnavailable, "configuration not loaded")
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    newConfigView(s.cfg),
	})
}

// handleGetConfigKeys returns the masked status of the API credentials.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	if s.cfg == nil {
		writeError(w, http.StatusServiceUnavailable, "configuration not loaded")
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckAPIKeys(s.cfg),
	})
}
