// Package api provides the HTTP REST API server for StockPredictor.
//
// It exposes the conversational predictor, the quote adapter surface,
// ticker resolution and a WebSocket stream of prediction events.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/seenimoa/stockpredictor/internal/agent"
	"github.com/seenimoa/stockpredictor/internal/config"
	"github.com/seenimoa/stockpredictor/internal/infra"
	"github.com/seenimoa/stockpredictor/internal/quote"
	"github.com/seenimoa/stockpredictor/internal/ticker"
	"github.com/seenimoa/stockpredictor/pkg/utils"
)

// Version is reported by the health endpoint.
var Version = "dev"

// Error bodies of the stock route.
const (
	msgSymbolRequired = "Symbol is required"
	msgStockNotFound  = "Stock not found"
	msgStockFailed    = "Failed to fetch stock data"
)

// Server is the HTTP API server.
type Server struct {
	router    chi.Router
	cfg       *config.Config
	predictor *agent.Predictor
	quotes    quote.Adapter
	wsHub     *WSHub
	validate  *validator.Validate
	log       *logrus.Logger
}

// NewServer creates a configured API server with all routes and middleware.
// A nil logger discards output.
func NewServer(cfg *config.Config, predictor *agent.Predictor, quotes quote.Adapter, log *logrus.Logger) *Server {
	if log == nil {
		log = infra.DiscardLogger()
	}
	if predictor == nil {
		predictor = agent.NewPredictor(nil, agent.NewAugmenter(quotes), nil, log)
	}
	srv := &Server{
		cfg:       cfg,
		predictor: predictor,
		quotes:    quotes,
		wsHub:     NewWSHub(log),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		log:       log,
	}
	srv.router = srv.buildRouter()
	return srv
}

// NewServerFromConfig builds the production predictor and quote adapter
// from cfg and returns a server around them.
func NewServerFromConfig(cfg *config.Config, log *logrus.Logger) (*Server, error) {
	predictor, err := agent.NewPredictorFromConfig(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("predictor setup failed: %w", err)
	}
	return NewServer(cfg, predictor, agent.NewAdapterFromConfig(cfg.Quote, log), log), nil
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WSHub {
	return s.wsHub
}

// ListenAndServe starts the HTTP server and blocks until SIGINT/SIGTERM,
// then shuts down gracefully.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go s.wsHub.Run()
	defer s.wsHub.Stop()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("HTTP server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-done:
	}
	s.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: s.log, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	origins := []string{"*"}
	if s.cfg != nil && len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Quote adapter surface
		r.Get("/stock", s.handleStock)

		r.Get("/resolve", s.handleResolve)
		r.Post("/chat", s.handleChat)

		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ChatRequest is the body for POST /api/v1/chat.
type ChatRequest struct {
	Message string        `json:"message" validate:"required"`
	History []ChatMessage `json:"history,omitempty" validate:"omitempty,dive"`
}

// ChatMessage represents a single prior turn.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content"`
}

// ChatResponse is the data of a POST /api/v1/chat reply. Content is always
// set; Failed marks it as an error sentence.
type ChatResponse struct {
	RequestID string `json:"request_id"`
	Content   string `json:"content"`
	Ticker    string `json:"ticker,omitempty"`
	LiveData  bool   `json:"live_data"`
	Failed    bool   `json:"failed"`
}

// ResolveResponse is the data of GET /api/v1/resolve.
type ResolveResponse struct {
	Query    string `json:"query"`
	Ticker   string `json:"ticker,omitempty"`
	Found    bool   `json:"found"`
	Exchange string `json:"exchange,omitempty"`
}

// stockError is the body of a failed stock lookup.
type stockError struct {
	Error string `json:"error"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":        "ok",
			"version":       Version,
			"market_status": utils.MarketStatus(),
			"time_ist":      utils.FormatDateTimeIST(utils.NowIST()),
			"ws_clients":    s.wsHub.ClientCount(),
		},
	})
}

// handleStock serves the adapter wire format directly, not the envelope.
func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		writeJSON(w, http.StatusBadRequest, stockError{Error: msgSymbolRequired})
		return
	}
	if s.quotes == nil {
		writeJSON(w, http.StatusInternalServerError, stockError{Error: msgStockFailed})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	rec, err := s.quotes.Fetch(ctx, symbol)
	switch {
	case errors.Is(err, quote.ErrNotFound), errors.Is(err, quote.ErrNoPrice):
		writeJSON(w, http.StatusNotFound, stockError{Error: msgStockNotFound})
	case err != nil:
		s.log.WithError(err).WithField("symbol", symbol).Warn("stock lookup failed")
		writeJSON(w, http.StatusInternalServerError, stockError{Error: msgStockFailed})
	default:
		writeJSON(w, http.StatusOK, rec)
	}
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	resp := ResolveResponse{Query: q}
	if symbol, ok := s.predictor.Resolver().Resolve(q); ok {
		resp.Ticker = symbol
		resp.Found = true
		resp.Exchange = ticker.Exchange(symbol)
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	history := make([]agent.Turn, 0, len(req.History))
	for _, m := range req.History {
		if m.Role == "user" {
			history = append(history, agent.UserTurn(m.Content))
		} else {
			history = append(history, agent.AssistantTurn(m.Content))
		}
	}

	result := s.predictor.Predict(ctx, req.Message, history)
	resp := ChatResponse{
		RequestID: result.RequestID,
		Content:   result.Text,
		Ticker:    result.Ticker,
		LiveData:  result.LiveData,
		Failed:    result.Failed(),
	}

	s.wsHub.Broadcast(WSMessage{
		Type: "prediction_complete",
		Data: map[string]interface{}{
			"request_id": resp.RequestID,
			"ticker":     resp.Ticker,
			"live_data":  resp.LiveData,
			"failed":     resp.Failed,
		},
	})

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

// validationMessage turns the first validator failure into a client message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request body"
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Message":
		return "message is required"
	case "Role":
		return "history role must be user or assistant"
	}
	return fmt.Sprintf("%s failed %s validation", fe.Namespace(), fe.Tag())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
