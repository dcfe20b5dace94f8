package metrics

import (
	"github.com/samber/lo"

	"coachlens/internal/app/model"
)

// Trend directions for the two-point classification.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// trendThreshold is the relative delta below which first-vs-last movement is
// treated as noise.
const trendThreshold = 0.05

// Aggregate computes average, range, and trend per tracked metric over an
// ordered (by creation time) sequence of metric sets, one per evaluation.
// Missing values are excluded from both numerator and denominator, never
// treated as zero. Metrics present in fewer than two sets carry no trend.
func Aggregate(sets []map[string]float64) map[string]model.MetricSummary {
	out := make(map[string]model.MetricSummary)
	for _, def := range Definitions() {
		values := lo.FilterMap(sets, func(set map[string]float64, _ int) (float64, bool) {
			v, ok := set[def.Key]
			return v, ok
		})
		if len(values) == 0 {
			continue
		}
		summary := model.MetricSummary{
			Average: lo.Sum(values) / float64(len(values)),
			Min:     lo.Min(values),
			Max:     lo.Max(values),
			Count:   len(values),
		}
		if dir, ok := Trend(values); ok {
			summary.Trend = dir
		}
		out[def.Key] = summary
	}
	return out
}

// Trend classifies the direction of a chronologically ordered value series by
// comparing only its first and last points. Deliberately not a regression:
// the two-point rule stays explainable to non-technical readers. Returns
// false when fewer than two values qualify.
func Trend(values []float64) (string, bool) {
	if len(values) < 2 {
		return "", false
	}
	first, last := values[0], values[len(values)-1]
	if first == 0 {
		return TrendStable, true
	}
	delta := (last - first) / first
	switch {
	case delta > trendThreshold:
		return TrendIncreasing, true
	case delta < -trendThreshold:
		return TrendDecreasing, true
	default:
		return TrendStable, true
	}
}

// Improvement maps a trend direction onto improving/declining/stable for a
// metric, using its better-direction. Range-targeted metrics (no direction)
// always read stable.
func Improvement(direction string, higherIsBetter *bool) string {
	if direction == TrendStable || direction == "" || higherIsBetter == nil {
		return "stable"
	}
	if (direction == TrendIncreasing) == *higherIsBetter {
		return "improving"
	}
	return "declining"
}
