// Package models defines the data structures shared between the upstream
// market-data client and the rest of StockPredictor.
package models

import "time"

// Quote is a single snapshot of an instrument as reported by the upstream
// chart endpoint. Optional fields are nil when the source omitted them.
type Quote struct {
	Symbol     string    `json:"symbol"`             // e.g., "TCS.NS"
	Name       string    `json:"name"`               // e.g., "Tata Consultancy Services Limited"
	Currency   string    `json:"currency"`           // ISO code, e.g., "INR"
	Exchange   string    `json:"exchange,omitempty"` // upstream exchange name, e.g., "NSI"
	LastPrice  float64   `json:"last_price"`
	PrevClose  *float64  `json:"prev_close,omitempty"`
	High       *float64  `json:"high,omitempty"`
	Low        *float64  `json:"low,omitempty"`
	WeekHigh52 *float64  `json:"week_high_52,omitempty"`
	WeekLow52  *float64  `json:"week_low_52,omitempty"`
	MarketCap  *float64  `json:"market_cap,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Change returns the absolute move against the previous close.
func (q *Quote) Change() (float64, bool) {
	if q.PrevClose == nil {
		return 0, false
	}
	return q.LastPrice - *q.PrevClose, true
}

// ChangePct returns the percentage move against the previous close.
func (q *Quote) ChangePct() (float64, bool) {
	if q.PrevClose == nil || *q.PrevClose == 0 {
		return 0, false
	}
	return (q.LastPrice - *q.PrevClose) / *q.PrevClose * 100, true
}
