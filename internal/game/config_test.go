package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []int{10, 10}, cfg.Distribution())
	assert.Equal(t, 20, cfg.TotalDice())
	assert.Equal(t, 64, cfg.MaxTurns)
	assert.Equal(t, int64(69), cfg.RNGSeed)
}

func TestDistributionOverridesAndCycles(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.DiceDistribution = []int{3}
	assert.Equal(t, []int{3, 3}, cfg.Distribution())

	cfg.DiceDistribution = []int{2, 1}
	assert.Equal(t, []int{2, 1}, cfg.Distribution())
	assert.Equal(t, 3, cfg.TotalDice())
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"three players", func(c *Config) { c.NumPlayers = 3 }},
		{"no faces", func(c *Config) { c.Faces = nil }},
		{"duplicate face", func(c *Config) { c.Faces = []int{1, 2, 2} }},
		{"zero face", func(c *Config) { c.Faces = []int{0, 1} }},
		{"empty hand", func(c *Config) { c.DiceDistribution = []int{0, 2} }},
		{"bad ordering", func(c *Config) { c.BidOrdering = "face_then_quantity" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestConfigCloneIsDeep(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Faces[0] = 9
	assert.Equal(t, 1, cfg.Faces[0])
}
