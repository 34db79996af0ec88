// Package ticker maps free-text mentions of Indian companies, indices and
// exchange symbols to a single canonical Yahoo-style ticker (e.g. "TCS.NS").
//
// Resolution is a pure function of the input text and an immutable, ordered
// alias table. No network access is performed here.
package ticker

import (
	"regexp"
	"strings"
)

// Exchange suffixes recognised on explicit symbols.
const (
	SuffixNSE = ".NS"
	SuffixBSE = ".BO"

	// DefaultSuffix is appended to bare symbols found in the domestic set.
	DefaultSuffix = SuffixNSE
)

// Exchange labels returned by Exchange.
const (
	ExchangeNSE   = "NSE"
	ExchangeBSE   = "BSE"
	ExchangeIndex = "INDEX"
	ExchangeOther = "OTHER"
)

// Alias maps a set of company names or shorthands to one canonical symbol.
type Alias struct {
	Names  []string
	Symbol string
}

// DefaultAliases is the built-in alias table. Order matters: the first entry
// whose name is a substring of the upper-cased text wins, so longer names that
// contain a shorter alias of another entry must come first ("BANK NIFTY"
// before "NIFTY"). Matching is plain containment, not whole words:
// "HDFCLIFE" contains "HDFC" and resolves to HDFCBANK.NS.
var DefaultAliases = []Alias{
	{Names: []string{"RELIANCE", "RIL"}, Symbol: "RELIANCE.NS"},
	{Names: []string{"TCS", "TATA CONSULTANCY"}, Symbol: "TCS.NS"},
	{Names: []string{"INFOSYS", "INFY"}, Symbol: "INFY.NS"},
	{Names: []string{"WIPRO"}, Symbol: "WIPRO.NS"},
	{Names: []string{"HDFC", "HDFCBANK", "HDFC BANK"}, Symbol: "HDFCBANK.NS"},
	{Names: []string{"ICICI", "ICICIBANK", "ICICI BANK"}, Symbol: "ICICIBANK.NS"},
	{Names: []string{"SBI", "SBIN", "STATE BANK OF INDIA"}, Symbol: "SBIN.NS"},
	{Names: []string{"TATA MOTORS", "TATAMOTORS"}, Symbol: "TATAMOTORS.NS"},
	{Names: []string{"TATA STEEL", "TATASTEEL"}, Symbol: "TATASTEEL.NS"},
	{Names: []string{"TATA POWER", "TATAPOWER"}, Symbol: "TATAPOWER.NS"},
	{Names: []string{"ADANI", "ADANIENT", "ADANI ENTERPRISES"}, Symbol: "ADANIENT.NS"},
	{Names: []string{"BHARTI AIRTEL", "AIRTEL", "BHARTIARTL"}, Symbol: "BHARTIARTL.NS"},
	{Names: []string{"AXIS", "AXISBANK"}, Symbol: "AXISBANK.NS"},
	{Names: []string{"ITC"}, Symbol: "ITC.NS"},
	{Names: []string{"MARUTI", "MARUTI SUZUKI"}, Symbol: "MARUTI.NS"},
	{Names: []string{"BAJAJ FINANCE", "BAJFINANCE"}, Symbol: "BAJFINANCE.NS"},
	{Names: []string{"LARSEN", "L&T", "LT"}, Symbol: "LT.NS"},
	{Names: []string{"SUN PHARMA", "SUNPHARMA"}, Symbol: "SUNPHARMA.NS"},
	{Names: []string{"KOTAK", "KOTAK BANK", "KOTAKMAHINDRA", "KOTAKBANK"}, Symbol: "KOTAKBANK.NS"},
	{Names: []string{"HCL TECH", "HCLTECH"}, Symbol: "HCLTECH.NS"},
	{Names: []string{"TECH MAHINDRA", "TECHM"}, Symbol: "TECHM.NS"},
	{Names: []string{"ASIAN PAINTS", "ASIANPAINT"}, Symbol: "ASIANPAINT.NS"},
	{Names: []string{"HINDUSTAN UNILEVER", "HINDUNILVR", "HUL"}, Symbol: "HINDUNILVR.NS"},
	{Names: []string{"COAL INDIA", "COALINDIA"}, Symbol: "COALINDIA.NS"},
	{Names: []string{"ULTRATECH", "ULTRACEMCO"}, Symbol: "ULTRACEMCO.NS"},
	{Names: []string{"NESTLE", "NESTLEIND"}, Symbol: "NESTLEIND.NS"},
	{Names: []string{"BANK NIFTY", "BANKNIFTY", "NIFTY BANK"}, Symbol: "^NSEBANK"},
	{Names: []string{"NIFTY IT", "NIFTYIT"}, Symbol: "^CNXIT"},
	{Names: []string{"NIFTY 50", "NIFTY50", "NIFTY"}, Symbol: "^NSEI"},
	{Names: []string{"SENSEX"}, Symbol: "^BSESN"},
}

// DefaultDomestic is the allow-list of bare symbols that get DefaultSuffix.
// Symbols outside this set are returned unchanged and may be foreign.
var DefaultDomestic = []string{"TCS", "RELIANCE", "INFY", "WIPRO", "SBIN", "HDFCBANK", "AXISBANK", "ITC"}

var bareTicker = regexp.MustCompile(`^[A-Z]{2,6}$`)

// stripped characters are replaced by spaces during normalisation. Dots are
// handled separately so that "ZOMATO.NS" survives as a single token.
var stripper = strings.NewReplacer("?", " ", "!", " ", ",", " ", "(", " ", ")", " ")

// Resolver resolves free text to a canonical ticker. A Resolver is immutable
// after construction and safe for concurrent use.
type Resolver struct {
	aliases  []Alias
	domestic map[string]struct{}
	suffixes []string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithAliases replaces the alias table.
func WithAliases(aliases []Alias) Option {
	return func(r *Resolver) { r.aliases = aliases }
}

// WithDomestic replaces the known-domestic allow-list.
func WithDomestic(symbols []string) Option {
	return func(r *Resolver) { r.domestic = toSet(symbols) }
}

// NewResolver creates a Resolver with the built-in tables.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		aliases:  DefaultAliases,
		domestic: toSet(DefaultDomestic),
		suffixes: []string{SuffixNSE, SuffixBSE},
	}
	for _, opt := range opts {
		opt(r)
	}

	// Copy and uppercase so callers cannot mutate the table afterwards.
	aliases := make([]Alias, len(r.aliases))
	for i, a := range r.aliases {
		names := make([]string, len(a.Names))
		for j, n := range a.Names {
			names[j] = strings.ToUpper(strings.TrimSpace(n))
		}
		aliases[i] = Alias{Names: names, Symbol: strings.ToUpper(a.Symbol)}
	}
	r.aliases = aliases
	return r
}

// Resolve returns the canonical ticker mentioned in text, or ok=false when
// nothing qualifies. Only the first match by priority is returned; messages
// naming several companies are not split.
func (r *Resolver) Resolve(text string) (string, bool) {
	raw := tokenize(text)
	if len(raw) == 0 {
		return "", false
	}
	upper := make([]string, len(raw))
	for i, tok := range raw {
		upper[i] = strings.ToUpper(tok)
	}
	normalized := strings.Join(upper, " ")

	// 1. Alias table, in order.
	for _, a := range r.aliases {
		for _, name := range a.Names {
			if strings.Contains(normalized, name) {
				return a.Symbol, true
			}
		}
	}

	// 2. Explicit exchange suffixes.
	for _, tok := range upper {
		for _, sfx := range r.suffixes {
			if len(tok) > len(sfx) && strings.HasSuffix(tok, sfx) {
				return tok, true
			}
		}
	}

	// 3. Bare all-caps symbols as typed by the user.
	for _, tok := range raw {
		if !bareTicker.MatchString(tok) {
			continue
		}
		if _, ok := r.domestic[tok]; ok {
			return tok + DefaultSuffix, true
		}
		return tok, true
	}

	return "", false
}

// Aliases returns a copy of the resolver's alias table.
func (r *Resolver) Aliases() []Alias {
	out := make([]Alias, len(r.aliases))
	copy(out, r.aliases)
	return out
}

// Exchange classifies a canonical symbol by its suffix.
func Exchange(symbol string) string {
	symbol = strings.ToUpper(symbol)
	switch {
	case strings.HasPrefix(symbol, "^"):
		return ExchangeIndex
	case strings.HasSuffix(symbol, SuffixNSE):
		return ExchangeNSE
	case strings.HasSuffix(symbol, SuffixBSE):
		return ExchangeBSE
	default:
		return ExchangeOther
	}
}

// IsDomestic reports whether the symbol trades on an Indian exchange or is
// an Indian index.
func IsDomestic(symbol string) bool {
	switch strings.ToUpper(symbol) {
	case "^NSEI", "^NSEBANK", "^CNXIT", "^BSESN":
		return true
	}
	ex := Exchange(symbol)
	return ex == ExchangeNSE || ex == ExchangeBSE
}

// BaseSymbol strips the exchange suffix ("TCS.NS" -> "TCS").
func BaseSymbol(symbol string) string {
	symbol = strings.ToUpper(symbol)
	symbol = strings.TrimSuffix(symbol, SuffixNSE)
	return strings.TrimSuffix(symbol, SuffixBSE)
}

// tokenize strips punctuation and splits on whitespace, preserving case.
// Leading and trailing dots are dropped from each token; inner dots stay.
func tokenize(text string) []string {
	fields := strings.Fields(stripper.Replace(text))
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func toSet(symbols []string) map[string]struct{} {
	set := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		set[strings.ToUpper(s)] = struct{}{}
	}
	return set
}
