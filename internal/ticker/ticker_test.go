package ticker

import "testing"

func TestResolve(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"alias ticker", "Predict TCS stock price for the next 30 days", "TCS.NS", true},
		{"company name lowercase", "what do you think about reliance?", "RELIANCE.NS", true},
		{"short alias", "Is RIL a buy", "RELIANCE.NS", true},
		{"multi-word alias", "Tata Motors outlook for Q3", "TATAMOTORS.NS", true},
		{"multi-word alias not shadowed", "tata steel vs tata motors", "TATAMOTORS.NS", true},
		{"state bank phrase", "state bank of india target", "SBIN.NS", true},
		{"ampersand alias", "L&T order book", "LT.NS", true},
		{"punctuation stripped", "(Infosys), again!", "INFY.NS", true},
		{"bank nifty before nifty", "bank nifty expiry view", "^NSEBANK", true},
		{"nifty index", "where is nifty heading", "^NSEI", true},
		{"sensex", "Sensex today", "^BSESN", true},
		{"table order breaks ties", "compare wipro and tcs", "TCS.NS", true},
		{"suffix token NSE", "zomato.ns price", "ZOMATO.NS", true},
		{"suffix token BSE", "What about IRFC.BO?", "IRFC.BO", true},
		{"suffix before sentence dot", "Check PAYTM.NS.", "PAYTM.NS", true},
		{"foreign bare ticker", "Should I buy AAPL", "AAPL", true},
		{"first bare ticker wins", "NVDA or MSFT", "NVDA", true},
		{"lowercase words are not tickers", "How's the weather today?", "", false},
		{"no alphabetic tokens", "123 456 ?!", "", false},
		{"empty", "", "", false},
		{"alias inside longer word", "HDFCLIFE outlook", "HDFCBANK.NS", true},
		{"alias prefix of symbol", "Is SBILIFE a buy", "SBIN.NS", true},
		{"table order over text order", "TATA MOTORS vs TCS", "TCS.NS", true},
		{"too long for bare ticker", "BAJAJFINSERV please", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Resolve(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestResolveDomesticAllowList(t *testing.T) {
	// Aliases disabled so the bare-ticker path is exercised directly.
	r := NewResolver(WithAliases(nil))

	tests := []struct {
		input string
		want  string
	}{
		{"TCS results", "TCS.NS"},
		{"SBIN dividend", "SBIN.NS"},
		// Unknown domestic symbols are returned bare.
		{"ZOMATO results", "ZOMATO"},
	}
	for _, tt := range tests {
		got, ok := r.Resolve(tt.input)
		if !ok || got != tt.want {
			t.Errorf("Resolve(%q) = (%q, %v), want %q", tt.input, got, ok, tt.want)
		}
	}
}

func TestResolveCustomTables(t *testing.T) {
	r := NewResolver(
		WithAliases([]Alias{{Names: []string{"zomato", "eternal"}, Symbol: "eternal.ns"}}),
		WithDomestic([]string{"irctc"}),
	)

	if got, _ := r.Resolve("eternal q2 numbers"); got != "ETERNAL.NS" {
		t.Errorf("custom alias: got %q, want ETERNAL.NS", got)
	}
	if got, _ := r.Resolve("IRCTC target"); got != "IRCTC.NS" {
		t.Errorf("custom domestic: got %q, want IRCTC.NS", got)
	}
	if got, ok := r.Resolve("TCS target"); !ok || got != "TCS" {
		t.Errorf("default tables replaced: got (%q, %v), want TCS", got, ok)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	r := NewResolver()
	first, _ := r.Resolve("kotak bank and axis bank")
	for i := 0; i < 20; i++ {
		if got, _ := r.Resolve("kotak bank and axis bank"); got != first {
			t.Fatalf("iteration %d: got %q, want %q", i, got, first)
		}
	}
	if first != "AXISBANK.NS" {
		t.Errorf("got %q, want AXISBANK.NS (earlier table entry)", first)
	}
}

func TestAliasesReturnsCopy(t *testing.T) {
	r := NewResolver()
	a := r.Aliases()
	a[0].Symbol = "MUTATED"
	if got, _ := r.Resolve("reliance"); got != "RELIANCE.NS" {
		t.Errorf("resolver mutated through Aliases(): got %q", got)
	}
}

func TestExchange(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
	}{
		{"TCS.NS", ExchangeNSE},
		{"tcs.ns", ExchangeNSE},
		{"500325.BO", ExchangeBSE},
		{"^NSEI", ExchangeIndex},
		{"AAPL", ExchangeOther},
	}
	for _, tt := range tests {
		if got := Exchange(tt.symbol); got != tt.want {
			t.Errorf("Exchange(%q) = %q, want %q", tt.symbol, got, tt.want)
		}
	}
}

func TestIsDomestic(t *testing.T) {
	for _, s := range []string{"TCS.NS", "RELIANCE.BO", "^NSEBANK", "^BSESN"} {
		if !IsDomestic(s) {
			t.Errorf("IsDomestic(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"AAPL", "^GSPC"} {
		if IsDomestic(s) {
			t.Errorf("IsDomestic(%q) = true, want false", s)
		}
	}
}

func TestBaseSymbol(t *testing.T) {
	if got := BaseSymbol("tcs.ns"); got != "TCS" {
		t.Errorf("BaseSymbol(tcs.ns) = %q", got)
	}
	if got := BaseSymbol("IRFC.BO"); got != "IRFC" {
		t.Errorf("BaseSymbol(IRFC.BO) = %q", got)
	}
}
