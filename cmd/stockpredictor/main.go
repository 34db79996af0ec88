// StockPredictor: conversational stock analysis for NSE/BSE and global tickers.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/seenimoa/stockpredictor/api"
	"github.com/seenimoa/stockpredictor/internal/agent"
	"github.com/seenimoa/stockpredictor/internal/agent/prompts"
	"github.com/seenimoa/stockpredictor/internal/config"
	"github.com/seenimoa/stockpredictor/internal/infra"
	"github.com/seenimoa/stockpredictor/internal/llm"
	"github.com/seenimoa/stockpredictor/internal/ticker"
	"github.com/seenimoa/stockpredictor/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set in PersistentPreRunE.
var (
	cfg    *config.Config
	logger *logrus.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stockpredictor",
	Short: "StockPredictor: conversational stock analysis",
	Long: `StockPredictor answers questions about listed companies.
It recognises the ticker in your message, pulls a live quote when one is
available, and asks a language model for a structured analysis report.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.Logging.Level
		if override, _ := cmd.Flags().GetString("log-level"); override != "" {
			level = override
		}
		logger = infra.NewLogger(level, cfg.Logging.Format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("StockPredictor %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Resolve Command ---

var resolveCmd = &cobra.Command{
	Use:   "resolve [text]",
	Short: "Show which ticker a message refers to",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		symbol, ok := ticker.NewResolver().Resolve(text)
		if !ok {
			fmt.Println(mutedStyle.Render("No ticker recognised; answers will be trend-based estimates."))
			return nil
		}
		fmt.Printf("%s %s (%s)\n", labelStyle.Render("Ticker:"), symbol, ticker.Exchange(symbol))
		return nil
	},
}

// --- Quote Command ---

var quoteCmd = &cobra.Command{
	Use:   "quote [symbol]",
	Short: "Fetch a live quote through the configured adapter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		symbol := strings.ToUpper(strings.TrimSpace(args[0]))
		adapter := agent.NewAdapterFromConfig(cfg.Quote, logger)

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Quote.QuoteTimeout())
		defer cancel()

		rec, err := adapter.Fetch(ctx, symbol)
		if err != nil {
			return fmt.Errorf("quote %s: %w", symbol, err)
		}
		fmt.Println(prompts.LiveDataBlock(symbol, rec, utils.NowIST()))
		return nil
	},
}

// --- Ask Command ---

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Ask a single question and print the report",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		predictor, err := agent.NewPredictorFromConfig(cfg, logger)
		if err != nil {
			return err
		}
		res := predictor.Predict(cmd.Context(), strings.Join(args, " "), nil)
		printResult(res)
		if res.Failed() {
			return fmt.Errorf("prediction failed (%s)", res.Failure)
		}
		return nil
	},
}

// --- Chat Command ---

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start interactive chat mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		predictor, err := agent.NewPredictorFromConfig(cfg, logger)
		if err != nil {
			return err
		}
		size, _ := cmd.Flags().GetInt("history")
		return runChat(cmd.Context(), predictor, agent.NewConversation(size))
	},
}

func init() {
	chatCmd.Flags().Int("history", agent.DefaultConversationSize, "number of turns kept as context")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.API.Port = port
		}
		api.Version = version

		srv, err := api.NewServerFromConfig(cfg, logger)
		if err != nil {
			return err
		}
		return srv.ListenAndServe(cfg.API.Addr())
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides api.port)")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  StockPredictor: System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Market Status: %s\n", utils.MarketStatus())
		fmt.Printf("  Time (IST):    %s\n", utils.FormatDateTimeIST(utils.NowIST()))
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    LLM Provider:  %s (model: %s)\n", cfg.LLM.Provider, cfg.LLM.Model)
		quoteSource := "in-process Yahoo chart"
		if cfg.Quote.Endpoint != "" {
			quoteSource = cfg.Quote.Endpoint
		}
		fmt.Printf("    Quote Source:  %s\n", quoteSource)
		fmt.Printf("    API Server:    %s\n", cfg.API.Addr())
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		if ping, _ := cmd.Flags().GetBool("ping"); ping {
			fmt.Println()
			fmt.Printf("    %-25s %s\n", "Completion endpoint:", pingCompletion(cmd.Context()))
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

func init() {
	statusCmd.Flags().Bool("ping", false, "check that the completion endpoint accepts the key")
}

func pingCompletion(ctx context.Context) string {
	client := llm.NewCompletionClient(llm.CompletionConfig{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Model:    cfg.LLM.Model,
		Timeout:  cfg.LLM.RequestTimeout(),
		Logger:   logger,
	})
	if !client.HasCredential() {
		return "⏭  skipped (no key)"
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	start := time.Now()
	if err := client.Ping(ctx); err != nil {
		return "❌ " + err.Error()
	}
	return fmt.Sprintf("✅ reachable (%s)", time.Since(start).Round(time.Millisecond))
}
