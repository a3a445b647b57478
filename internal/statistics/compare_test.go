package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func record(games, wins int) *Statistics {
	s := &Statistics{}
	for i := 0; i < games; i++ {
		s.Add(MatchResult{Won: i < wins})
	}
	return s
}

func TestCompareDetectsClearDifference(t *testing.T) {
	c := Compare(record(100, 80), record(100, 20))
	assert.InDelta(t, 0.6, c.Difference, 1e-12)
	assert.Positive(t, c.TStatistic)
	assert.Less(t, c.PValue, 0.001)
	assert.True(t, c.Significant(0.05))
	assert.Equal(t, "large", InterpretEffectSize(c.EffectSize))
	assert.Equal(t, "highly significant", InterpretPValue(c.PValue, 0.05))
	assert.Less(t, c.CI95Low, 0.6)
	assert.Greater(t, c.CI95High, 0.6)
}

func TestCompareEqualRates(t *testing.T) {
	c := Compare(record(50, 25), record(50, 25))
	assert.Zero(t, c.Difference)
	assert.InDelta(t, 1.0, c.PValue, 1e-9)
	assert.False(t, c.Significant(0.05))
	assert.Equal(t, "negligible", InterpretEffectSize(c.EffectSize))
}

func TestCompareDegenerateSamples(t *testing.T) {
	c := Compare(record(1, 1), record(10, 0))
	assert.Equal(t, 1.0, c.PValue)

	c = Compare(record(10, 10), record(10, 0))
	assert.Zero(t, c.PValue)
	assert.Equal(t, 1.0, c.CI95Low)

	c = Compare(record(10, 5), record(10, 5))
	assert.Equal(t, "not significant", InterpretPValue(c.PValue, 0.05))
}
