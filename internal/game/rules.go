package game

// CountMatches counts dice showing face across all hands. When onesWild is
// set and face is not 1, ones also count.
func CountMatches(allDice [][]int, face int, onesWild bool) int {
	count := 0
	for _, hand := range allDice {
		for _, d := range hand {
			if d == face || (onesWild && face != 1 && d == 1) {
				count++
			}
		}
	}
	return count
}

// Resolve reports how many dice match the bid's face and whether the bid held.
func Resolve(allDice [][]int, bid Bid, onesWild bool) (matchCount int, wasTrue bool) {
	matchCount = CountMatches(allDice, bid.Face, onesWild)
	return matchCount, matchCount >= bid.Quantity
}

// LegalActions enumerates the moves available after last. With no bid the
// options are the minimal opening bids (1, f) for each face; otherwise every
// strictly higher bid with quantity in [last.Quantity, totalDice], followed by
// CallLiar. Faces are visited in the order given.
func LegalActions(last *Bid, faces []int, totalDice int) []Action {
	if last == nil {
		out := make([]Action, 0, len(faces))
		for _, f := range faces {
			out = append(out, BidAction(1, f))
		}
		return out
	}
	out := make([]Action, 0, (totalDice-last.Quantity+1)*len(faces)+1)
	for q := last.Quantity; q <= totalDice; q++ {
		for _, f := range faces {
			b := Bid{Quantity: q, Face: f}
			if b.IsHigherThan(last) {
				out = append(out, Action{Kind: ActionBid, Bid: b})
			}
		}
	}
	return append(out, CallLiar())
}
