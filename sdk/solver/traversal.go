package solver

import (
	"time"

	"github.com/lox/liarsdice/internal/game"
)

// TraversalStats captures instrumentation metrics for a single CFR iteration.
type TraversalStats struct {
	NodesVisited  int64         `json:"nodes_visited"`
	TerminalNodes int64         `json:"terminal_nodes"`
	MaxDepth      int           `json:"max_depth"`
	IterationTime time.Duration `json:"iteration_time"`
}

// bidTree is the static shape of the bidding game for one configuration.
// Bids are indexed in ascending order; index -1 stands for "no bid yet" and
// is stored at slot 0 of the per-bid slices.
type bidTree struct {
	faces    []int
	total    int
	onesWild bool
	bids     []game.Bid
	// actions[b+1] lists the legal actions facing bid b.
	actions [][]game.Action
	// children[b+1][i] is the bid index reached by actions[b+1][i], or -1 for
	// a challenge.
	children [][]int
	faceSlot map[int]int
}

func newBidTree(cfg TrainingConfig) *bidTree {
	t := &bidTree{
		faces:    cfg.Faces,
		total:    cfg.TotalDice(),
		onesWild: cfg.OnesWild,
		faceSlot: make(map[int]int, len(cfg.Faces)),
	}
	for i, f := range cfg.Faces {
		t.faceSlot[f] = i
	}
	for q := 1; q <= t.total; q++ {
		for _, f := range cfg.Faces {
			t.bids = append(t.bids, game.Bid{Quantity: q, Face: f})
		}
	}

	t.actions = make([][]game.Action, len(t.bids)+1)
	t.children = make([][]int, len(t.bids)+1)
	for b := -1; b < len(t.bids); b++ {
		actions := game.LegalActions(t.bid(b), t.faces, t.total)
		children := make([]int, len(actions))
		for i, a := range actions {
			if a.IsCall() {
				children[i] = -1
				continue
			}
			children[i] = t.index(a.Bid)
		}
		t.actions[b+1] = actions
		t.children[b+1] = children
	}
	return t
}

func (t *bidTree) bid(b int) *game.Bid {
	if b < 0 {
		return nil
	}
	return &t.bids[b]
}

func (t *bidTree) index(bid game.Bid) int {
	return (bid.Quantity-1)*len(t.faces) + t.faceSlot[bid.Face]
}

// truth reports, for every bid, whether it holds under deal.
func (t *bidTree) truth(deal Deal, out []bool) []bool {
	dice := deal.Dice()
	matches := make([]int, len(t.faces))
	for i, f := range t.faces {
		matches[i] = game.CountMatches(dice, f, t.onesWild)
	}
	out = out[:0]
	for _, b := range t.bids {
		out = append(out, matches[t.faceSlot[b.Face]] >= b.Quantity)
	}
	return out
}

// callUtility is the caller's payoff for challenging a bid.
func callUtility(bidTrue bool) float64 {
	if bidTrue {
		return -1
	}
	return 1
}

// iteration holds the per-deal working state of one traversal.
type iteration struct {
	tree     *bidTree
	table    *RegretTable
	deal     Deal
	truth    []bool
	stats    TraversalStats
	maxDepth int
}

// treeCFR is the recursive counterfactual value of the node facing bid
// lastIdx with player to act, from that player's perspective. r0 and r1 are
// the players' own reach probabilities.
func (it *iteration) treeCFR(lastIdx, player, depth int, r0, r1 float64) float64 {
	it.stats.NodesVisited++
	if depth > it.stats.MaxDepth {
		it.stats.MaxDepth = depth
	}
	if lastIdx >= 0 && it.maxDepth > 0 && depth >= it.maxDepth {
		it.stats.TerminalNodes++
		return callUtility(it.truth[lastIdx])
	}

	actions := it.tree.actions[lastIdx+1]
	children := it.tree.children[lastIdx+1]
	node := it.table.Get(keyFor(it.deal[player], it.tree.bid(lastIdx)), actions)
	strategy := node.Strategy()

	util := make([]float64, len(actions))
	nodeUtil := 0.0
	for i, child := range children {
		if child < 0 {
			it.stats.TerminalNodes++
			util[i] = callUtility(it.truth[lastIdx])
		} else if player == 0 {
			util[i] = -it.treeCFR(child, 1, depth+1, r0*strategy[i], r1)
		} else {
			util[i] = -it.treeCFR(child, 0, depth+1, r0, r1*strategy[i])
		}
		nodeUtil += strategy[i] * util[i]
	}

	own, opp := r0, r1
	if player == 1 {
		own, opp = r1, r0
	}
	for i := range util {
		util[i] = opp * (util[i] - nodeUtil)
	}
	node.Update(util, strategy, own)
	node.Visits++
	return nodeUtil
}

// mergedState is one (last bid, player to act) position of the bidding DAG.
type mergedState struct {
	node     *Node
	strategy []float64
	util     []float64
	value    float64
	reach    [2]float64
	depth    int
}

// mergedCFR runs one iteration over the bidding DAG. A state's subtree
// depends only on the last bid and the player to act, so histories that
// reach the same state share one utility computation; their reach
// probabilities are summed per player before regrets are accumulated.
// Strategies are read from the table before any update is applied.
func (it *iteration) mergedCFR(states []mergedState) {
	tree := it.tree
	n := len(tree.bids)

	for b := -1; b < n; b++ {
		for p := 0; p < 2; p++ {
			s := &states[stateIndex(b, p)]
			s.reach = [2]float64{}
			s.depth = 0
			if b < 0 && p == 1 {
				s.node = nil
				continue
			}
			actions := tree.actions[b+1]
			s.node = it.table.Get(keyFor(it.deal[p], tree.bid(b)), actions)
			if cap(s.strategy) < len(actions) {
				s.strategy = make([]float64, len(actions))
				s.util = make([]float64, len(actions))
			}
			s.strategy = s.strategy[:len(actions)]
			s.util = s.util[:len(actions)]
			s.node.strategyInto(s.strategy)
		}
	}

	// Forward pass in bid order, which is topological.
	states[stateIndex(-1, 0)].reach = [2]float64{1, 1}
	for b := -1; b < n; b++ {
		for p := 0; p < 2; p++ {
			s := &states[stateIndex(b, p)]
			if s.node == nil || (s.reach[0] == 0 && s.reach[1] == 0) {
				continue
			}
			if s.depth > it.stats.MaxDepth {
				it.stats.MaxDepth = s.depth
			}
			for i, child := range tree.children[b+1] {
				if child < 0 {
					continue
				}
				c := &states[stateIndex(child, 1-p)]
				c.reach[p] += s.reach[p] * s.strategy[i]
				c.reach[1-p] += s.reach[1-p]
				if s.depth+1 > c.depth {
					c.depth = s.depth + 1
				}
			}
		}
	}

	// Backward pass: utilities from the acting player's perspective.
	for b := n - 1; b >= -1; b-- {
		for p := 0; p < 2; p++ {
			s := &states[stateIndex(b, p)]
			if s.node == nil {
				continue
			}
			it.stats.NodesVisited++
			value := 0.0
			for i, child := range tree.children[b+1] {
				if child < 0 {
					it.stats.TerminalNodes++
					s.util[i] = callUtility(it.truth[b])
				} else {
					s.util[i] = -states[stateIndex(child, 1-p)].value
				}
				value += s.strategy[i] * s.util[i]
			}
			s.value = value
		}
	}

	for b := -1; b < n; b++ {
		for p := 0; p < 2; p++ {
			s := &states[stateIndex(b, p)]
			if s.node == nil || (s.reach[0] == 0 && s.reach[1] == 0) {
				continue
			}
			own, opp := s.reach[p], s.reach[1-p]
			for i := range s.util {
				s.util[i] = opp * (s.util[i] - s.value)
			}
			s.node.Update(s.util, s.strategy, own)
			s.node.Visits++
		}
	}
}

func stateIndex(b, p int) int {
	return (b+1)*2 + p
}

// rootValue is player 0's expected utility at the opening under the current
// iteration's strategies; valid after mergedCFR.
func rootValue(states []mergedState) float64 {
	return states[stateIndex(-1, 0)].value
}
