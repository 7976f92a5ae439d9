package progress

import "math"

type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendStable  Trend = "stable"
	TrendUnknown Trend = "unknown"
)

// sparkLength is the number of most recent entries shown in the spark line.
const sparkLength = 5

// Summary compares the first and the latest measurement.
type Summary struct {
	First  *Measurement
	Latest *Measurement
	// DifferenceKg is Latest minus First rounded to 0.1 kg.
	DifferenceKg float64
	Trend        Trend
	// Recent holds up to the last five entries, oldest first.
	Recent []Measurement
}

// Summarize expects entries sorted by date as returned by [Service.List]. The trend is unknown until there are two
// entries.
func Summarize(entries []Measurement) Summary {
	s := Summary{
		First:        nil,
		Latest:       nil,
		DifferenceKg: 0,
		Trend:        TrendUnknown,
		Recent:       entries[max(len(entries)-sparkLength, 0):],
	}
	if len(entries) == 0 {
		return s
	}
	s.First = &entries[0]
	s.Latest = &entries[len(entries)-1]
	if len(entries) < 2 { //nolint:mnd // a trend needs two points.
		return s
	}

	s.DifferenceKg = math.Round((s.Latest.WeightKg-s.First.WeightKg)*10) / 10 //nolint:mnd // one decimal.
	switch {
	case s.DifferenceKg > 0:
		s.Trend = TrendUp
	case s.DifferenceKg < 0:
		s.Trend = TrendDown
	default:
		s.Trend = TrendStable
	}
	return s
}

// SparkHeights scales the weights of Recent between 12 and 82 so that the lightest entry is the shortest bar.
func (s Summary) SparkHeights() []float64 {
	if len(s.Recent) == 0 {
		return nil
	}
	lo, hi := s.Recent[0].WeightKg, s.Recent[0].WeightKg
	for _, m := range s.Recent {
		lo = min(lo, m.WeightKg)
		hi = max(hi, m.WeightKg)
	}
	spread := hi - lo
	if spread == 0 {
		spread = 1
	}
	const base, span = 12, 70
	heights := make([]float64, len(s.Recent))
	for i, m := range s.Recent {
		heights[i] = base + (m.WeightKg-lo)/spread*span
	}
	return heights
}
