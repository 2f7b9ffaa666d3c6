package models

import "time"

// IntervalDuration maps an interval token to its bar length.
// Binance ("5m"), Twelve Data ("5min") and MT5 ("M5") spellings are accepted.
func IntervalDuration(interval string) (time.Duration, bool) {
	switch interval {
	case "1m", "1min", "M1":
		return time.Minute, true
	case "3m", "3min":
		return 3 * time.Minute, true
	case "5m", "5min", "M5":
		return 5 * time.Minute, true
	case "15m", "15min", "M15":
		return 15 * time.Minute, true
	case "30m", "30min", "M30":
		return 30 * time.Minute, true
	case "45min":
		return 45 * time.Minute, true
	case "1h", "H1":
		return time.Hour, true
	case "2h":
		return 2 * time.Hour, true
	case "4h", "H4":
		return 4 * time.Hour, true
	case "8h":
		return 8 * time.Hour, true
	case "1d", "1day", "D1":
		return 24 * time.Hour, true
	case "1w", "1week", "W1":
		return 7 * 24 * time.Hour, true
	case "1M", "1month", "MN1":
		return 30 * 24 * time.Hour, true
	}
	return 0, false
}

// CandlesForDays estimates how many candles cover the given number of days,
// with a 10% buffer. Unknown intervals fall back to one candle per day.
func CandlesForDays(interval string, days int) int {
	if days < 1 {
		days = 1
	}
	d, ok := IntervalDuration(interval)
	if !ok || d >= 24*time.Hour {
		n := days
		if ok {
			n = int(time.Duration(days) * 24 * time.Hour / d)
		}
		if n < 1 {
			n = 1
		}
		return n
	}

	perDay := int(24 * time.Hour / d)
	return int(float64(perDay) * float64(days) * 1.1)
}
