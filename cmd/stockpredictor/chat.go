package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/seenimoa/stockpredictor/internal/agent"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Background(lipgloss.Color("#1F2937")).
			Padding(0, 1).
			MarginBottom(1)

	reportStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#10B981")).
			Padding(1, 2).
			Width(100)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

// Chat commands typed at the prompt.
const (
	cmdExit  = "/exit"
	cmdClear = "/clear"
)

// runChat reads messages until the user exits, keeping successful
// exchanges as context for the next one.
func runChat(ctx context.Context, predictor *agent.Predictor, conv *agent.Conversation) error {
	fmt.Println(titleStyle.Render("💬 StockPredictor Chat"))
	fmt.Println(mutedStyle.Render(fmt.Sprintf("Ask about any stock. %s clears context, %s or Ctrl+C quits.", cmdClear, cmdExit)))
	fmt.Println()

	started := time.Now()
	for {
		var message string
		err := survey.AskOne(&survey.Input{
			Message: "You:",
			Help:    "e.g. \"Analyze TCS\", \"Is Reliance a buy this week?\", \"AAPL outlook\"",
		}, &message, survey.WithValidator(survey.Required))
		if errors.Is(err, terminal.InterruptErr) {
			break
		}
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		message = strings.TrimSpace(message)
		switch message {
		case cmdExit:
			fmt.Println(mutedStyle.Render(fmt.Sprintf("Session started %s.", humanize.Time(started))))
			return nil
		case cmdClear:
			conv.Clear()
			fmt.Println(mutedStyle.Render("Context cleared."))
			continue
		}

		res := predictor.Predict(ctx, message, conv.Snapshot())
		printResult(res)
		conv.Record(message, res)
	}
	return nil
}

func printResult(res agent.Result) {
	if res.Failed() {
		fmt.Println(errorStyle.Render(res.Text))
		return
	}

	source := "trend-based estimate"
	if res.LiveData {
		source = "live data"
	}
	meta := []string{source, res.Duration.Round(time.Millisecond).String()}
	if res.Ticker != "" {
		meta = append([]string{res.Ticker}, meta...)
	}
	fmt.Println(reportStyle.Render(res.Text))
	fmt.Println(mutedStyle.Render(strings.Join(meta, " · ")))
	fmt.Println()
}
