package aggregator

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// DefaultRate returns defaults/count as a percentage rounded to two decimals
func DefaultRate(defaults, count int) float64 {
	if count == 0 {
		return 0
	}
	rate := decimal.NewFromInt(int64(defaults)).
		Mul(hundred).
		DivRound(decimal.NewFromInt(int64(count)), 2)
	f, _ := rate.Float64()
	return f
}

// Mean returns sum/n rounded to two decimals
func Mean(sum decimal.Decimal, n int) float64 {
	if n == 0 {
		return 0
	}
	f, _ := sum.DivRound(decimal.NewFromInt(int64(n)), 2).Float64()
	return f
}

// Round2 rounds f half away from zero to two decimals
func Round2(f float64) float64 {
	r, _ := decimal.NewFromFloat(f).Round(2).Float64()
	return r
}
