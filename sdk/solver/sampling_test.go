package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/liarsdice/internal/randutil"
)

func TestUniformDealerRecordsVisits(t *testing.T) {
	cfg := smallConfig([]int{2, 1}, []int{1, 2, 3})
	d := newDealer(cfg)
	rng := randutil.New(7)

	const n = 500
	for i := 0; i < n; i++ {
		deal := d.next(rng)
		assert.Equal(t, 2, deal[0].Len())
		assert.Equal(t, 1, deal[1].Len())
		for _, die := range deal.Dice()[0] {
			assert.Contains(t, cfg.Faces, die)
		}
	}

	var total int64
	for _, v := range d.visits {
		total += v
	}
	assert.Equal(t, int64(2*n), total)
}

func TestUniformDealerCoversFaces(t *testing.T) {
	cfg := smallConfig([]int{1, 1}, []int{2, 4, 6})
	d := newDealer(cfg)
	rng := randutil.New(11)

	seen := map[int]int{}
	for i := 0; i < 3000; i++ {
		deal := d.roll(rng)
		seen[deal[0].Dice()[0]]++
	}
	assert.Len(t, seen, 3)
	for face, n := range seen {
		assert.InDelta(t, 1000, n, 150, "face %d", face)
	}
}

func TestAdaptiveDealerFavoursUnvisitedHands(t *testing.T) {
	cfg := smallConfig([]int{1, 1}, []int{1, 2})
	cfg.Sampling = SamplingAdaptive
	cfg.ExplorationBonus = 0
	cfg.AdaptiveCandidates = 8
	d := newDealer(cfg)
	d.visits[NewHand([]int{1})] = 1_000_000
	rng := randutil.New(3)

	const n = 2000
	fresh := 0
	for i := 0; i < n; i++ {
		deal := d.adaptive(rng)
		if deal[0].Count(2) == 1 && deal[1].Count(2) == 1 {
			fresh++
		}
	}
	assert.GreaterOrEqual(t, float64(fresh)/n, 0.8)
}

func TestAdaptiveDealerBonusKeepsVisitedHandsReachable(t *testing.T) {
	cfg := smallConfig([]int{1, 1}, []int{1, 2})
	cfg.Sampling = SamplingAdaptive
	cfg.ExplorationBonus = 10
	cfg.AdaptiveCandidates = 4
	d := newDealer(cfg)
	d.visits[NewHand([]int{1})] = 1_000_000
	rng := randutil.New(5)

	stale := 0
	for i := 0; i < 2000; i++ {
		deal := d.adaptive(rng)
		if deal[0].Count(1) == 1 && deal[1].Count(1) == 1 {
			stale++
		}
	}
	// With the bonus dominating, selection is close to uniform over the pool.
	assert.InDelta(t, 500, stale, 100)
}
