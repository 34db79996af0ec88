package prompts

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/seenimoa/stockpredictor/internal/quote"
	"github.com/seenimoa/stockpredictor/internal/ticker"
	"github.com/seenimoa/stockpredictor/pkg/utils"
)

// Currency glyphs used in the live block.
const (
	GlyphINR   = "₹"
	GlyphOther = "$"
)

// LiveHeaderPrefix opens every live-data block.
const LiveHeaderPrefix = "### [CRITICAL: LIVE MARKET DATA FOR "

// Glyph returns the currency glyph for an adapter-reported currency code.
func Glyph(currency string) string {
	if strings.EqualFold(currency, "INR") {
		return GlyphINR
	}
	return GlyphOther
}

// LiveDataBlock formats a fetched quote and the instruction that makes the
// model treat it as the authoritative current price. symbol is the ticker
// that was resolved from the user text; now stamps the market session.
func LiveDataBlock(symbol string, rec *quote.Record, now time.Time) string {
	g := Glyph(rec.Currency)
	price := money(g, rec.LastPrice)

	var b strings.Builder
	b.WriteString(LiveHeaderPrefix + symbol + "]\n")
	fmt.Fprintf(&b, "- **Current Price**: %s\n", price)
	fmt.Fprintf(&b, "- **Symbol**: %s\n", orUnavailable(rec.Symbol))
	fmt.Fprintf(&b, "- **Name**: %s\n", orUnavailable(rec.DisplayName))
	fmt.Fprintf(&b, "- **Exchange**: %s\n", ticker.Exchange(symbol))
	fmt.Fprintf(&b, "- **Change**: %s\n", change(rec))
	fmt.Fprintf(&b, "- **Day Range**: %s\n", valueRange(g, rec.DayLow, rec.DayHigh))
	fmt.Fprintf(&b, "- **52-Week Range**: %s\n", valueRange(g, rec.FiftyTwoWeekLow, rec.FiftyTwoWeekHigh))
	fmt.Fprintf(&b, "- **Market Cap**: %s\n", marketCap(rec))
	if sector := sectorLine(ticker.BaseSymbol(symbol)); sector != "" && ticker.IsDomestic(symbol) {
		fmt.Fprintf(&b, "- **Sector**: %s\n", sector)
	}
	if ticker.IsDomestic(symbol) || rec.IsDomesticCurrency() {
		fmt.Fprintf(&b, "- **NSE Session**: %s (as of %s)\n", utils.MarketStatusAt(now), utils.FormatDateTimeIST(now))
	}
	fmt.Fprintf(&b, "- **Target Price for today**: %s\n", price)

	market := "live market"
	if rec.IsDomesticCurrency() {
		market = "live NSE/BSE market"
	}
	fmt.Fprintf(&b, "\n**MANDATORY INSTRUCTION**: You are currently connected to the %s.\n", market)
	fmt.Fprintf(&b, "1. Use the price **%s** as the ABSOLUTE \"Current Price\" in your report.\n", price)
	b.WriteString("2. DO NOT mention data cutoffs or suggest the user verify elsewhere for this stock.\n")
	b.WriteString("3. Your analysis must center around this live price.")
	return b.String()
}

func money(glyph string, v quote.Value) string {
	if !v.Valid {
		return v.String()
	}
	if v.Amount.IsNegative() {
		return "-" + glyph + v.Amount.Abs().StringFixed(2)
	}
	return glyph + v.String()
}

func valueRange(glyph string, low, high quote.Value) string {
	if !low.Valid && !high.Valid {
		return quote.Unavailable
	}
	return money(glyph, low) + " - " + money(glyph, high)
}

func change(rec *quote.Record) string {
	abs, ok := rec.Change.Float()
	if !ok {
		return quote.Unavailable
	}
	pct, ok := rec.ChangePercent.Float()
	if !ok {
		return utils.FormatSigned(abs)
	}
	return fmt.Sprintf("%s (%s)", utils.FormatSigned(abs), utils.FormatPct(pct))
}

func marketCap(rec *quote.Record) string {
	mc, ok := rec.MarketCap.Float()
	if !ok || mc <= 0 {
		return quote.Unavailable
	}
	if rec.IsDomesticCurrency() {
		return utils.FormatINRCompact(mc)
	}
	return GlyphOther + humanize.Comma(int64(math.Round(mc)))
}

func orUnavailable(s string) string {
	if strings.TrimSpace(s) == "" {
		return quote.Unavailable
	}
	return s
}
