package prompts

import "strings"

// NSESectors lists sector membership for common NSE symbols (base symbol,
// no exchange suffix).
var NSESectors = map[string][]string{
	"IT":            {"TCS", "INFY", "WIPRO", "HCLTECH", "TECHM", "LTIM", "MPHASIS", "COFORGE", "PERSISTENT"},
	"Banking":       {"HDFCBANK", "ICICIBANK", "KOTAKBANK", "SBIN", "AXISBANK", "INDUSINDBK", "BANDHANBNK", "FEDERALBNK"},
	"NBFC":          {"BAJFINANCE", "BAJAJFINSV", "CHOLAFIN", "MUTHOOTFIN", "LICHSGFIN"},
	"Pharma":        {"SUNPHARMA", "DRREDDY", "CIPLA", "DIVISLAB", "BIOCON", "AUROPHARMA", "LUPIN", "TORNTPHARM"},
	"Auto":          {"MARUTI", "TATAMOTORS", "M&M", "BAJAJ-AUTO", "HEROMOTOCO", "ASHOKLEY", "EICHERMOT"},
	"Oil & Gas":     {"RELIANCE", "ONGC", "IOC", "BPCL", "HINDPETRO", "GAIL", "PETRONET"},
	"Metal":         {"TATASTEEL", "HINDALCO", "JSWSTEEL", "VEDL", "NATIONALUM", "COALINDIA", "NMDC"},
	"FMCG":          {"HINDUNILVR", "ITC", "NESTLEIND", "BRITANNIA", "DABUR", "GODREJCP", "MARICO", "COLPAL"},
	"Cement":        {"ULTRACEMCO", "GRASIM", "SHREECEM", "AMBUJACEM", "ACC", "DALBHARAT", "RAMCOCEM"},
	"Telecom":       {"BHARTIARTL", "IDEA", "TATACOMM"},
	"Power":         {"NTPC", "POWERGRID", "TATAPOWER", "ADANIPOWER", "NHPC", "SJVN"},
	"Infra":         {"LT", "ADANIENT", "ADANIPORTS", "IRB", "NBCC", "KEC"},
	"Paints":        {"ASIANPAINT", "BERGEPAINT", "KANSAINER"},
	"Insurance":     {"SBILIFE", "HDFCLIFE", "ICICIPRULI", "STARHEALTH", "NIACL"},
	"Capital Goods": {"ABB", "SIEMENS", "HAL", "BEL", "BHEL", "CUMMINSIND"},
}

// SectorForTicker returns the sector of an NSE base symbol, or "".
func SectorForTicker(symbol string) string {
	symbol = strings.ToUpper(symbol)
	for sector, tickers := range NSESectors {
		for _, t := range tickers {
			if t == symbol {
				return sector
			}
		}
	}
	return ""
}

// SectorPeers returns the other members of the symbol's sector, in table order.
func SectorPeers(symbol string) []string {
	symbol = strings.ToUpper(symbol)
	sector := SectorForTicker(symbol)
	if sector == "" {
		return nil
	}
	tickers := NSESectors[sector]
	peers := make([]string, 0, len(tickers)-1)
	for _, t := range tickers {
		if t != symbol {
			peers = append(peers, t)
		}
	}
	return peers
}

// sectorLine renders "IT (peers: INFY, WIPRO, ...)" with at most five peers.
func sectorLine(symbol string) string {
	sector := SectorForTicker(symbol)
	if sector == "" {
		return ""
	}
	peers := SectorPeers(symbol)
	if len(peers) > 5 {
		peers = peers[:5]
	}
	if len(peers) == 0 {
		return sector
	}
	return sector + " (peers: " + strings.Join(peers, ", ") + ")"
}
