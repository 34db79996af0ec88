// Package quote defines the quote adapter boundary: the Record handed to the
// prediction pipeline and the adapters that produce it, either in-process
// from a datasource or over HTTP from a remote adapter service.
package quote

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/seenimoa/stockpredictor/pkg/models"
)

// Unavailable is how a missing field is rendered and serialised.
const Unavailable = "unavailable"

// Value is an optional decimal amount. The zero Value is unavailable.
type Value struct {
	Amount decimal.Decimal
	Valid  bool
}

// NewValue returns a valid Value.
func NewValue(f float64) Value {
	return Value{Amount: decimal.NewFromFloat(f), Valid: true}
}

// ValueOf returns a valid Value for non-nil p, otherwise an unavailable one.
func ValueOf(p *float64) Value {
	if p == nil {
		return Value{}
	}
	return NewValue(*p)
}

// String renders the amount with two decimals, or "unavailable".
func (v Value) String() string {
	if !v.Valid {
		return Unavailable
	}
	return v.Amount.StringFixed(2)
}

// Float returns the amount as float64 and whether it is valid.
func (v Value) Float() (float64, bool) {
	if !v.Valid {
		return 0, false
	}
	f, _ := v.Amount.Float64()
	return f, true
}

// MarshalJSON writes a bare JSON number, or the string "unavailable".
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte(`"` + Unavailable + `"`), nil
	}
	return []byte(v.Amount.String()), nil
}

// UnmarshalJSON accepts numbers, numeric strings, null, and the
// placeholders "unavailable", "N/A" and "" (all treated as unavailable).
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.Wrap(err, "quote value")
		}
		s = strings.TrimSpace(s)
		switch strings.ToLower(s) {
		case "", Unavailable, "n/a", "na", "-":
			*v = Value{}
			return nil
		}
		raw = s
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return errors.Wrapf(err, "quote value %q", raw)
	}
	*v = Value{Amount: d, Valid: true}
	return nil
}

// Record is one normalised quote. Every numeric field is always present;
// fields the upstream did not supply are unavailable, never zero.
type Record struct {
	Symbol           string `json:"symbol"`
	DisplayName      string `json:"name"`
	Currency         string `json:"currency"`
	LastPrice        Value  `json:"price"`
	Change           Value  `json:"change"`
	ChangePercent    Value  `json:"changePercent"`
	DayLow           Value  `json:"dayLow"`
	DayHigh          Value  `json:"dayHigh"`
	FiftyTwoWeekLow  Value  `json:"fiftyTwoWeekLow"`
	FiftyTwoWeekHigh Value  `json:"fiftyTwoWeekHigh"`
	MarketCap        Value  `json:"marketCap"`
}

// HasPrice reports whether the record carries a usable last price.
func (r *Record) HasPrice() bool {
	return r != nil && r.LastPrice.Valid && r.LastPrice.Amount.IsPositive()
}

// IsDomesticCurrency reports whether the quote is priced in Indian rupees.
func (r *Record) IsDomesticCurrency() bool {
	return strings.EqualFold(r.Currency, "INR")
}

// FromQuote converts an upstream quote into a Record. Change and percent
// change are derived from the previous close when the upstream has one.
func FromQuote(q *models.Quote) *Record {
	if q == nil {
		return nil
	}
	r := &Record{
		Symbol:           q.Symbol,
		DisplayName:      q.Name,
		Currency:         strings.ToUpper(q.Currency),
		LastPrice:        NewValue(q.LastPrice),
		DayLow:           ValueOf(q.Low),
		DayHigh:          ValueOf(q.High),
		FiftyTwoWeekLow:  ValueOf(q.WeekLow52),
		FiftyTwoWeekHigh: ValueOf(q.WeekHigh52),
		MarketCap:        ValueOf(q.MarketCap),
	}
	if q.PrevClose != nil && *q.PrevClose != 0 {
		last := decimal.NewFromFloat(q.LastPrice)
		prev := decimal.NewFromFloat(*q.PrevClose)
		change := last.Sub(prev)
		r.Change = Value{Amount: change, Valid: true}
		r.ChangePercent = Value{Amount: change.Div(prev).Mul(decimal.NewFromInt(100)), Valid: true}
	}
	return r
}
