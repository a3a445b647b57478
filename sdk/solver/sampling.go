package solver

import (
	rand "math/rand/v2"
)

// Deal is one hand per player.
type Deal [2]Hand

// Dice returns the deal in the shape game.Resolve expects.
func (d Deal) Dice() [][]int {
	return [][]int{d[0].Dice(), d[1].Dice()}
}

// dealer picks the deal for each iteration and tracks how often each hand
// has been dealt.
type dealer struct {
	counts     []int
	faces      []int
	mode       SamplingMode
	bonus      float64
	candidates int
	visits     map[Hand]int64

	dice    []int
	pool    []Deal
	weights []float64
}

func newDealer(cfg TrainingConfig) *dealer {
	return &dealer{
		counts:     cfg.DiceCounts,
		faces:      cfg.Faces,
		mode:       cfg.Sampling,
		bonus:      cfg.ExplorationBonus,
		candidates: cfg.AdaptiveCandidates,
		visits:     make(map[Hand]int64),
	}
}

// roll draws a deal with every die uniform over the faces.
func (d *dealer) roll(rng *rand.Rand) Deal {
	var deal Deal
	for p, n := range d.counts {
		d.dice = d.dice[:0]
		for i := 0; i < n; i++ {
			d.dice = append(d.dice, d.faces[rng.IntN(len(d.faces))])
		}
		deal[p] = NewHand(d.dice)
	}
	return deal
}

// next returns the deal for the coming iteration and records its visit.
func (d *dealer) next(rng *rand.Rand) Deal {
	var deal Deal
	switch d.mode {
	case SamplingAdaptive:
		deal = d.adaptive(rng)
	default:
		deal = d.roll(rng)
	}
	d.visits[deal[0]]++
	d.visits[deal[1]]++
	return deal
}

// adaptive draws a candidate pool and picks one with probability
// proportional to 1/(1+visits) + bonus, where visits counts how often the
// candidate's hands have already been trained.
func (d *dealer) adaptive(rng *rand.Rand) Deal {
	d.pool = d.pool[:0]
	d.weights = d.weights[:0]
	total := 0.0
	for i := 0; i < d.candidates; i++ {
		deal := d.roll(rng)
		w := 1/(1+float64(d.visits[deal[0]]+d.visits[deal[1]])) + d.bonus
		d.pool = append(d.pool, deal)
		d.weights = append(d.weights, w)
		total += w
	}
	r := rng.Float64() * total
	for i, w := range d.weights {
		r -= w
		if r < 0 {
			return d.pool[i]
		}
	}
	return d.pool[len(d.pool)-1]
}

// handVisits returns how often hand has been dealt.
func (d *dealer) handVisits(h Hand) int64 {
	return d.visits[h]
}
