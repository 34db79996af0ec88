package prompts

import (
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/stockpredictor/internal/quote"
	"github.com/seenimoa/stockpredictor/pkg/utils"
)

// ── Static texts ──

func TestSystemPromptContent(t *testing.T) {
	for _, want := range []string{
		"You are StockPredictor AI",
		"## RESPONSE FORMAT:",
		"PREDICTION REPORT",
		"For Indian stocks, use ₹ symbol; for US stocks, use $",
		"## SIGNALS CRITERIA:",
		"⚠️ Disclaimer:",
	} {
		if !strings.Contains(SystemPrompt, want) {
			t.Errorf("SystemPrompt missing %q", want)
		}
	}
	if strings.HasSuffix(SystemPrompt, "\n") {
		t.Error("SystemPrompt should not end with a newline")
	}
}

func TestFallbackNotice(t *testing.T) {
	if !strings.Contains(FallbackNotice, "Trend-based Estimate") {
		t.Error("fallback notice must name the Trend-based Estimate label")
	}
	if strings.Contains(FallbackNotice, LiveHeaderPrefix) {
		t.Error("fallback notice must not look like a live block")
	}
}

func TestSection(t *testing.T) {
	if Section("") != SystemPrompt {
		t.Error("empty segment should return the bare prompt")
	}
	got := Section(FallbackNotice)
	if !strings.HasPrefix(got, SystemPrompt+"\n\n") || !strings.HasSuffix(got, FallbackNotice) {
		t.Errorf("unexpected section layout: ...%q", got[len(got)-80:])
	}
}

// ── Live block ──

var session = time.Date(2026, 2, 18, 10, 0, 0, 0, utils.IST)

func tcsRecord() *quote.Record {
	return &quote.Record{
		Symbol:           "TCS.NS",
		DisplayName:      "Tata Consultancy Services Limited",
		Currency:         "INR",
		LastPrice:        quote.NewValue(3820.50),
		Change:           quote.NewValue(12.3),
		ChangePercent:    quote.NewValue(0.323),
		DayLow:           quote.NewValue(3801),
		DayHigh:          quote.NewValue(3830.75),
		FiftyTwoWeekLow:  quote.NewValue(3056.05),
		FiftyTwoWeekHigh: quote.NewValue(4592.25),
	}
}

func TestLiveDataBlockDomestic(t *testing.T) {
	block := LiveDataBlock("TCS.NS", tcsRecord(), session)

	for _, want := range []string{
		"### [CRITICAL: LIVE MARKET DATA FOR TCS.NS]",
		"- **Current Price**: ₹3820.50",
		"- **Symbol**: TCS.NS",
		"- **Name**: Tata Consultancy Services Limited",
		"- **Exchange**: NSE",
		"- **Change**: +12.30 (+0.32%)",
		"- **Day Range**: ₹3801.00 - ₹3830.75",
		"- **52-Week Range**: ₹3056.05 - ₹4592.25",
		"- **Market Cap**: unavailable",
		"- **Sector**: IT (peers: INFY, WIPRO, HCLTECH, TECHM, LTIM)",
		"- **NSE Session**: OPEN (as of 2026-02-18 10:00:00 IST)",
		"connected to the live NSE/BSE market",
		`Use the price **₹3820.50** as the ABSOLUTE "Current Price"`,
		"DO NOT mention data cutoffs",
	} {
		if !strings.Contains(block, want) {
			t.Errorf("block missing %q\n%s", want, block)
		}
	}
	if !strings.Contains(block, "3820.5") {
		t.Error("block must embed the live price")
	}
	if strings.Contains(block, "$") {
		t.Error("INR quote must not use the dollar glyph")
	}
	if strings.Contains(block, "Trend-based Estimate") {
		t.Error("live block must not carry the fallback notice")
	}
}

func TestLiveDataBlockForeign(t *testing.T) {
	rec := &quote.Record{
		Symbol:        "AAPL",
		DisplayName:   "Apple Inc.",
		Currency:      "USD",
		LastPrice:     quote.NewValue(189.25),
		Change:        quote.NewValue(-1.5),
		ChangePercent: quote.NewValue(-0.7864),
		MarketCap:     quote.NewValue(2.95e12),
	}
	block := LiveDataBlock("AAPL", rec, session)

	for _, want := range []string{
		"- **Current Price**: $189.25",
		"- **Exchange**: OTHER",
		"- **Change**: -1.50 (-0.79%)",
		"- **Day Range**: unavailable",
		"- **52-Week Range**: unavailable",
		"- **Market Cap**: $2,950,000,000,000",
		"connected to the live market.",
	} {
		if !strings.Contains(block, want) {
			t.Errorf("block missing %q\n%s", want, block)
		}
	}
	if strings.Contains(block, "₹") {
		t.Error("USD quote must not use the rupee glyph")
	}
	if strings.Contains(block, "NSE Session") || strings.Contains(block, "Sector") {
		t.Error("foreign quote should not carry NSE-only lines")
	}
}

func TestLiveDataBlockPartialFields(t *testing.T) {
	rec := &quote.Record{
		Symbol:    "ZOMATO.NS",
		Currency:  "INR",
		LastPrice: quote.NewValue(231.4),
		DayLow:    quote.NewValue(229),
		MarketCap: quote.NewValue(2.04e12),
	}
	block := LiveDataBlock("ZOMATO.NS", rec, session)

	for _, want := range []string{
		"- **Name**: unavailable",
		"- **Change**: unavailable",
		"- **Day Range**: ₹229.00 - unavailable",
		"- **Market Cap**: ₹2.04 L Cr",
	} {
		if !strings.Contains(block, want) {
			t.Errorf("block missing %q\n%s", want, block)
		}
	}
	if strings.Contains(block, "<nil>") || strings.Contains(block, ": 0\n") {
		t.Error("missing fields must render as unavailable, never nil or zero")
	}
}

func TestGlyph(t *testing.T) {
	tests := map[string]string{"INR": "₹", "inr": "₹", "USD": "$", "EUR": "$", "": "$"}
	for in, want := range tests {
		if got := Glyph(in); got != want {
			t.Errorf("Glyph(%q) = %q, want %q", in, got, want)
		}
	}
}

// ── Sectors ──

func TestSectorForTicker(t *testing.T) {
	tests := map[string]string{"TCS": "IT", "sbin": "Banking", "LT": "Infra", "ZOMATO": ""}
	for in, want := range tests {
		if got := SectorForTicker(in); got != want {
			t.Errorf("SectorForTicker(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSectorPeers(t *testing.T) {
	peers := SectorPeers("BHARTIARTL")
	if len(peers) != 2 || peers[0] != "IDEA" || peers[1] != "TATACOMM" {
		t.Errorf("unexpected peers: %v", peers)
	}
	if SectorPeers("UNKNOWN") != nil {
		t.Error("unknown symbol should have no peers")
	}
}
