package bot

import (
	rand "math/rand/v2"

	"github.com/lox/liarsdice/internal/game"
)

// RandBot picks uniformly among the legal actions.
type RandBot struct {
	rng *rand.Rand
}

// NewRandBot creates a new RandBot instance
func NewRandBot(rng *rand.Rand) *RandBot {
	return &RandBot{rng: rng}
}

func (r *RandBot) ChooseAction(view game.View) game.Action {
	legal := view.LegalActions()
	if len(legal) == 0 {
		return game.CallLiar()
	}
	return legal[r.rng.IntN(len(legal))]
}

// BluffParams tunes a BluffBot.
type BluffParams struct {
	// BaseCallProb is the chance of challenging on the first reply.
	BaseCallProb float64
	// ExtraPerTurn is added per elapsed turn, capped at +0.5.
	ExtraPerTurn float64
	MaxCallProb  float64
	// RaiseAmount is the quantity step when raising.
	RaiseAmount int
	// AllowDifferentFace lets a raise switch face; KeepFaceProb is the chance
	// of keeping the current face when switching is allowed.
	AllowDifferentFace bool
	KeepFaceProb       float64
	// ExtraCallNoFace is added when the player holds none of the bid face.
	ExtraCallNoFace float64
}

func DefaultBluffParams() BluffParams {
	return BluffParams{
		BaseCallProb:       0.10,
		ExtraPerTurn:       0.02,
		MaxCallProb:        0.9,
		RaiseAmount:        1,
		AllowDifferentFace: true,
		KeepFaceProb:       0.7,
		ExtraCallNoFace:    0.05,
	}
}

// CautiousBluffParams challenges less and never changes face.
func CautiousBluffParams() BluffParams {
	p := DefaultBluffParams()
	p.BaseCallProb = 0.05
	p.ExtraPerTurn = 0.01
	p.MaxCallProb = 0.5
	p.AllowDifferentFace = false
	return p
}

// AggressiveBluffParams challenges more and raises by two.
func AggressiveBluffParams() BluffParams {
	p := DefaultBluffParams()
	p.BaseCallProb = 0.20
	p.ExtraPerTurn = 0.05
	p.MaxCallProb = 0.95
	p.RaiseAmount = 2
	return p
}

func FaceFixedBluffParams() BluffParams {
	p := DefaultBluffParams()
	p.AllowDifferentFace = false
	return p
}

// BluffBot opens with a random bid, challenges impossible bids outright and
// otherwise challenges with a probability that grows as the round goes on.
type BluffBot struct {
	rng    *rand.Rand
	params BluffParams
}

func NewBluffBot(rng *rand.Rand, params BluffParams) *BluffBot {
	if params.RaiseAmount < 1 {
		params.RaiseAmount = 1
	}
	return &BluffBot{rng: rng, params: params}
}

// CallProbability is the chance of challenging in view, before the
// impossible-bid check.
func (b *BluffBot) CallProbability(view game.View) float64 {
	last := view.LastBid()
	if last == nil {
		return 0
	}
	p := b.params.BaseCallProb + min(0.5, float64(view.Public.TurnIndex)*b.params.ExtraPerTurn)
	if view.MyCount(last.Face) == 0 {
		p += b.params.ExtraCallNoFace
	}
	return min(b.params.MaxCallProb, p)
}

func (b *BluffBot) ChooseAction(view game.View) game.Action {
	faces := view.Config.Faces
	total := view.TotalDice()
	last := view.LastBid()
	if last == nil {
		q := 1 + b.rng.IntN(max(total, 1))
		return game.BidAction(q, faces[b.rng.IntN(len(faces))])
	}
	if forcedCall(view) || view.CallLiarDeterministic() {
		return game.CallLiar()
	}
	if b.rng.Float64() < b.CallProbability(view) {
		return game.CallLiar()
	}

	q := min(last.Quantity+b.params.RaiseAmount, total)
	face := last.Face
	if b.params.AllowDifferentFace && b.rng.Float64() >= b.params.KeepFaceProb {
		face = faces[b.rng.IntN(len(faces))]
	}
	return bidOrCall(view, game.Bid{Quantity: q, Face: face})
}
