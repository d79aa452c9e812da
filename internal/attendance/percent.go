package attendance

import "github.com/shopspring/decimal"

// Percentage returns part/whole*100 rounded to one decimal place. It is
// undefined (nil) when whole is zero so an empty population is never reported
// as zero attendance.
func Percentage(part, whole int) *float64 {
	if whole <= 0 {
		return nil
	}
	pct, _ := decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(whole)), 1).
		Float64()
	return &pct
}

// Average returns total/days rounded to one decimal place, or nil when days is
// zero.
func Average(total, days int) *float64 {
	if days <= 0 {
		return nil
	}
	avg, _ := decimal.NewFromInt(int64(total)).
		DivRound(decimal.NewFromInt(int64(days)), 1).
		Float64()
	return &avg
}
