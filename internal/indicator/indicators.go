package indicator

import (
	"math"

	"CycleWatch/internal/model"
)

// Model constants. The S2F parameters are PlanB's 2019 regression
// (market value = exp(14.607) * SF^3.3168); issuance assumes the
// post-April-2024 halving reward.
const (
	piShortWindow = 111
	piLongWindow  = 350

	wmaWeeks = 200

	puellWindow = 365

	blockRewardBTC = 3.125
	blocksPerDay   = 144
	daysPerYear    = 365.25

	s2fModelLogCoeff = 14.607
	s2fModelExponent = 3.3168
)

// PiCycleRatio returns SMA111 / (2 * SMA350) of the daily price series.
// The Pi Cycle Top counts as triggered at ratio >= 1.0, boundary
// inclusive. Needs at least 350 daily points.
func PiCycleRatio(daily []model.RawPoint) (float64, bool) {
	closes := model.Values(daily)
	short, ok := SMA(closes, piShortWindow)
	if !ok {
		return 0, false
	}
	long, ok := SMA(closes, piLongWindow)
	if !ok || long == 0 {
		return 0, false
	}
	return short / (2 * long), true
}

// WMA200Deviation resamples the daily price series to weekly closes and
// returns (latest - mean of trailing 200 weekly closes) / mean. Needs at
// least 200 weekly points after resampling.
func WMA200Deviation(daily []model.RawPoint) (float64, bool) {
	weekly := ResampleWeekly(daily)
	closes := model.Values(weekly)
	mean, ok := SMA(closes, wmaWeeks)
	if !ok || mean == 0 {
		return 0, false
	}
	latest := closes[len(closes)-1]
	return (latest - mean) / mean, true
}

// PuellMultiple returns today's issuance value (price * daily coins
// issued) divided by its trailing 365-day average. A constant price
// series yields exactly 1.0. Needs at least 365 daily points.
func PuellMultiple(daily []model.RawPoint) (float64, bool) {
	issuance := make([]float64, len(daily))
	for i, p := range daily {
		issuance[i] = p.Value * blockRewardBTC * blocksPerDay
	}
	mean, ok := SMA(issuance, puellWindow)
	if !ok || mean == 0 {
		return 0, false
	}
	return issuance[len(issuance)-1] / mean, true
}

// S2FModelPrice evaluates the stock-to-flow power-law model price for the
// given circulating supply.
func S2FModelPrice(supply float64) float64 {
	flow := blockRewardBTC * blocksPerDay * daysPerYear
	s2f := supply / flow
	return math.Exp(s2fModelLogCoeff) * math.Pow(s2f, s2fModelExponent) / supply
}

// S2FDeviation returns actual price / S2F model price. Needs current
// price and circulating supply snapshots.
func S2FDeviation(price, supply float64) (float64, bool) {
	if price <= 0 || supply <= 0 {
		return 0, false
	}
	modelPrice := S2FModelPrice(supply)
	if modelPrice <= 0 {
		return 0, false
	}
	return price / modelPrice, true
}
