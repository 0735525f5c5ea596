package model

// RawPoint is a single (date, value) observation produced by a fetch
// adapter. Immutable once produced.
type RawPoint struct {
	Date  Date    `json:"date"`
	Value float64 `json:"value"`
}

// Values extracts the value column of an ordered point slice.
func Values(points []RawPoint) []float64 {
	vals := make([]float64, len(points))
	for i, p := range points {
		vals[i] = p.Value
	}
	return vals
}

// Latest returns the last point of an ordered slice, or false when empty.
func Latest(points []RawPoint) (RawPoint, bool) {
	if len(points) == 0 {
		return RawPoint{}, false
	}
	return points[len(points)-1], true
}
