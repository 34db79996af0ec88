package utils

import "time"

// IST is the Indian Standard Time location (UTC+5:30).
var IST = loadIST()

func loadIST() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// tz database missing (e.g. scratch containers)
		return time.FixedZone("IST", 5*60*60+30*60)
	}
	return loc
}

// Market session states reported by MarketStatusAt.
const (
	StatusOpen      = "OPEN"
	StatusClosed    = "CLOSED"
	StatusPreMarket = "PRE-MARKET"
	StatusPreOpen   = "PRE-OPEN SESSION"
)

// NowIST returns the current time in IST.
func NowIST() time.Time {
	return time.Now().In(IST)
}

// FormatDateTimeIST formats t as "2006-01-02 15:04:05 IST".
func FormatDateTimeIST(t time.Time) string {
	return t.In(IST).Format("2006-01-02 15:04:05") + " IST"
}

func atIST(date time.Time, hour, minute int) time.Time {
	d := date.In(IST)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, IST)
}

// MarketOpenTime returns 09:15 IST on the given date.
func MarketOpenTime(date time.Time) time.Time { return atIST(date, 9, 15) }

// MarketCloseTime returns 15:30 IST on the given date.
func MarketCloseTime(date time.Time) time.Time { return atIST(date, 15, 30) }

// PreOpenStart returns 09:00 IST on the given date.
func PreOpenStart(date time.Time) time.Time { return atIST(date, 9, 0) }

// HolidayName returns the NSE holiday falling on t, if any.
func HolidayName(t time.Time) (string, bool) {
	name, ok := nseHolidays[t.In(IST).Format("2006-01-02")]
	return name, ok
}

// IsTradingDay reports whether t falls on a weekday that is not an NSE holiday.
func IsTradingDay(t time.Time) bool {
	t = t.In(IST)
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	_, holiday := HolidayName(t)
	return !holiday
}

// IsMarketOpenAt reports whether the NSE cash market is in its normal
// session (09:15 to 15:30 IST) at t.
func IsMarketOpenAt(t time.Time) bool {
	return MarketStatusAt(t) == StatusOpen
}

// MarketStatus returns the current NSE session state.
func MarketStatus() string {
	return MarketStatusAt(NowIST())
}

// MarketStatusAt returns the NSE session state at t, e.g. "OPEN",
// "PRE-OPEN SESSION" or "CLOSED (Diwali (Laxmi Pujan))".
func MarketStatusAt(t time.Time) string {
	t = t.In(IST)

	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return StatusClosed + " (Weekend)"
	}
	if name, ok := HolidayName(t); ok {
		return StatusClosed + " (" + name + ")"
	}

	switch {
	case t.Before(PreOpenStart(t)):
		return StatusPreMarket
	case t.Before(MarketOpenTime(t)):
		return StatusPreOpen
	case !t.After(MarketCloseTime(t)):
		return StatusOpen
	default:
		return StatusClosed
	}
}

// nseHolidays lists NSE trading holidays. Refresh each year from the
// exchange circular.
var nseHolidays = map[string]string{
	"2026-01-26": "Republic Day",
	"2026-02-17": "Mahashivratri",
	"2026-03-10": "Holi",
	"2026-03-30": "Id-ul-Fitr (Ramadan)",
	"2026-04-02": "Ram Navami",
	"2026-04-03": "Good Friday",
	"2026-04-14": "Dr. Ambedkar Jayanti",
	"2026-05-01": "Maharashtra Day",
	"2026-05-25": "Buddha Purnima",
	"2026-06-05": "Id-ul-Zuha (Bakri Id)",
	"2026-07-06": "Muharram",
	"2026-08-15": "Independence Day",
	"2026-08-18": "Parsi New Year",
	"2026-09-04": "Milad-un-Nabi",
	"2026-10-02": "Mahatma Gandhi Jayanti",
	"2026-10-20": "Dussehra",
	"2026-11-09": "Diwali (Laxmi Pujan)",
	"2026-11-10": "Diwali (Balipratipada)",
	"2026-11-30": "Guru Nanak Jayanti",
	"2026-12-25": "Christmas",
}
