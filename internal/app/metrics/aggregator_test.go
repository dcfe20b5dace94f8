package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateSkipsMissingValues(t *testing.T) {
	sets := []map[string]float64{
		{"wpm": 120},
		{"wpm": 140},
		{},
	}

	out := Aggregate(sets)

	summary, ok := out["wpm"]
	require.True(t, ok)
	// The empty set must not drag the average down.
	assert.InDelta(t, 130.0, summary.Average, 1e-9)
	assert.Equal(t, 120.0, summary.Min)
	assert.Equal(t, 140.0, summary.Max)
	assert.Equal(t, 2, summary.Count)
}

func TestAggregateIgnoresUntrackedKeys(t *testing.T) {
	out := Aggregate([]map[string]float64{
		{"wpm": 130, "made_up_metric": 7},
		{"wpm": 130, "made_up_metric": 9},
	})

	assert.Contains(t, out, "wpm")
	assert.NotContains(t, out, "made_up_metric")
}

func TestAggregateSingleValueHasNoTrend(t *testing.T) {
	out := Aggregate([]map[string]float64{
		{"wpm": 120},
		{"filler_words_per_min": 2},
	})

	assert.Empty(t, out["wpm"].Trend)
	assert.Equal(t, 1, out["wpm"].Count)
	assert.Empty(t, out["filler_words_per_min"].Trend)
}

func TestTrendTwoPointRule(t *testing.T) {
	testCases := []struct {
		name   string
		values []float64
		want   string
		ok     bool
	}{
		{"clear increase", []float64{100, 106}, TrendIncreasing, true},
		{"within noise band up", []float64{100, 104}, TrendStable, true},
		{"within noise band down", []float64{100, 96}, TrendStable, true},
		{"clear decrease", []float64{100, 94}, TrendDecreasing, true},
		{"exactly plus five percent is stable", []float64{100, 105}, TrendStable, true},
		{"exactly minus five percent is stable", []float64{100, 95}, TrendStable, true},
		{"zero baseline is stable", []float64{0, 50}, TrendStable, true},
		{"middle values ignored", []float64{100, 500, 1, 106}, TrendIncreasing, true},
		{"single value has no trend", []float64{42}, "", false},
		{"empty has no trend", nil, "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Trend(tc.values)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestImprovement(t *testing.T) {
	higher := true
	lower := false

	assert.Equal(t, "improving", Improvement(TrendIncreasing, &higher))
	assert.Equal(t, "declining", Improvement(TrendDecreasing, &higher))
	assert.Equal(t, "improving", Improvement(TrendDecreasing, &lower))
	assert.Equal(t, "declining", Improvement(TrendIncreasing, &lower))
	assert.Equal(t, "stable", Improvement(TrendStable, &higher))
	// Range-targeted metrics carry no better-direction.
	assert.Equal(t, "stable", Improvement(TrendIncreasing, nil))
	assert.Equal(t, "stable", Improvement("", &higher))
}

func TestDefinitionsLoaded(t *testing.T) {
	defs := Definitions()
	require.NotEmpty(t, defs)

	keys := make([]string, 0, len(defs))
	for _, def := range defs {
		keys = append(keys, def.Key)
	}
	assert.Contains(t, keys, "wpm")
	assert.Contains(t, keys, "pauses_per_10min")
	assert.Contains(t, keys, "filler_words_per_min")
	assert.Contains(t, keys, "questions_per_5min")
	assert.Contains(t, keys, "tangent_percentage")

	wpm, ok := DefinitionFor("wpm")
	require.True(t, ok)
	assert.Equal(t, "Speaking Pace", wpm.DisplayName)
	assert.Nil(t, wpm.HigherIsBetter)

	filler, ok := DefinitionFor("filler_words_per_min")
	require.True(t, ok)
	require.NotNil(t, filler.HigherIsBetter)
	assert.False(t, *filler.HigherIsBetter)

	_, ok = DefinitionFor("nope")
	assert.False(t, ok)
}
