package solver

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/lox/liarsdice/internal/game"
)

// Node accumulates regrets and strategy sums for one information set. Values
// are kept in slices parallel to Actions to avoid map churn during traversal.
type Node struct {
	Actions     []game.Action
	RegretSum   []float64
	StrategySum []float64
	Visits      int64
}

func newNode(actions []game.Action) *Node {
	return &Node{
		Actions:     actions,
		RegretSum:   make([]float64, len(actions)),
		StrategySum: make([]float64, len(actions)),
	}
}

// Strategy returns the current regret-matching distribution for the node.
func (n *Node) Strategy() []float64 {
	strat := make([]float64, len(n.RegretSum))
	n.strategyInto(strat)
	return strat
}

func (n *Node) strategyInto(strat []float64) {
	total := 0.0
	for i, r := range n.RegretSum {
		if r > 0 {
			strat[i] = r
			total += r
		} else {
			strat[i] = 0
		}
	}
	if total <= 0 {
		uniform(strat)
		return
	}
	floats.Scale(1/total, strat)
}

// AverageStrategy returns the normalised strategy sum; uniform when no mass
// has accumulated.
func (n *Node) AverageStrategy() []float64 {
	strat := slices.Clone(n.StrategySum)
	total := floats.Sum(strat)
	if total <= 0 {
		uniform(strat)
		return strat
	}
	floats.Scale(1/total, strat)
	return strat
}

// Update adds counterfactual regrets and the reach-weighted strategy.
func (n *Node) Update(regret []float64, strategy []float64, reachWeight float64) {
	floats.Add(n.RegretSum, regret)
	floats.AddScaled(n.StrategySum, reachWeight, strategy)
}

// ActionIndex returns the position of a in Actions, or -1.
func (n *Node) ActionIndex(a game.Action) int {
	return slices.Index(n.Actions, a)
}

func uniform(xs []float64) {
	if len(xs) == 0 {
		return
	}
	v := 1.0 / float64(len(xs))
	for i := range xs {
		xs[i] = v
	}
}

// RegretTable maps information sets to nodes. It grows monotonically and is
// not safe for concurrent use; the trainer is single-threaded.
type RegretTable struct {
	nodes map[InfoSetKey]*Node
}

// NewRegretTable returns an empty regret table ready for use.
func NewRegretTable() *RegretTable {
	return &RegretTable{nodes: make(map[InfoSetKey]*Node)}
}

// Get returns the node for key, creating it with actions if missing.
func (t *RegretTable) Get(key InfoSetKey, actions []game.Action) *Node {
	if n, ok := t.nodes[key]; ok {
		return n
	}
	n := newNode(actions)
	t.nodes[key] = n
	return n
}

// Lookup returns the node for key without creating it.
func (t *RegretTable) Lookup(key InfoSetKey) (*Node, bool) {
	n, ok := t.nodes[key]
	return n, ok
}

// Size returns the number of info sets tracked.
func (t *RegretTable) Size() int { return len(t.nodes) }

// Keys returns every tracked key in a stable order.
func (t *RegretTable) Keys() []InfoSetKey {
	keys := make([]InfoSetKey, 0, len(t.nodes))
	for k := range t.nodes {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}

// AverageAbsRegret is the mean absolute cumulative regret over all
// (info set, action) pairs.
func (t *RegretTable) AverageAbsRegret() float64 {
	sum, n := 0.0, 0
	for _, node := range t.nodes {
		for _, r := range node.RegretSum {
			sum += math.Abs(r)
		}
		n += len(node.RegretSum)
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func compareKeys(a, b InfoSetKey) int {
	if c := slices.Compare(a.Hand.dice[:a.Hand.n], b.Hand.dice[:b.Hand.n]); c != 0 {
		return c
	}
	if a.Quantity != b.Quantity {
		return a.Quantity - b.Quantity
	}
	return a.Face - b.Face
}
