package indicator

import "CycleWatch/internal/model"

// SMA computes the simple moving average of the trailing `period` values.
// ok is false when there are fewer values than the period requires;
// missing history is a result state here, never an error.
func SMA(values []float64, period int) (avg float64, ok bool) {
	if period <= 0 || len(values) < period {
		return 0, false
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), true
}

// ResampleWeekly collapses a daily series to one observation per week,
// keeping the last value of each week ending Sunday. Input must be
// date-ascending; output is too.
func ResampleWeekly(points []model.RawPoint) []model.RawPoint {
	if len(points) == 0 {
		return nil
	}
	weekly := make([]model.RawPoint, 0, len(points)/7+1)
	for _, p := range points {
		bucket := p.Date.WeekEnding()
		if n := len(weekly); n > 0 && weekly[n-1].Date == bucket {
			weekly[n-1].Value = p.Value
			continue
		}
		weekly = append(weekly, model.RawPoint{Date: bucket, Value: p.Value})
	}
	return weekly
}
