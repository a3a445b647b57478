package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatisticsAdd(t *testing.T) {
	var s Statistics
	s.Add(MatchResult{Agent: "a", Seat: 0, Won: true, Rounds: 7, Bids: 10, Calls: 2, CaughtBluffs: 1})
	s.Add(MatchResult{Agent: "a", Seat: 1, Won: false, Rounds: 5, Bids: 4, Calls: 3, CaughtBluffs: 3})
	s.Add(MatchResult{Agent: "a", Seat: 1, Won: true, Rounds: 6})

	assert.Equal(t, 3, s.Games)
	assert.Equal(t, 2, s.Wins)
	assert.InDelta(t, 2.0/3, s.WinRate(), 1e-12)
	assert.InDelta(t, 6.0, s.MeanRounds(), 1e-12)
	assert.InDelta(t, 0.8, s.CallAccuracy(), 1e-12)
	assert.Equal(t, 1.0, s.SeatWinRate(0))
	assert.Equal(t, 0.5, s.SeatWinRate(1))
	assert.Zero(t, s.SeatWinRate(5))
	require.NoError(t, s.Validate())
}

func TestStatisticsEmpty(t *testing.T) {
	var s Statistics
	assert.Zero(t, s.WinRate())
	assert.Zero(t, s.StdError())
	assert.Zero(t, s.CallAccuracy())
	lo, hi := s.ConfidenceInterval95()
	assert.Zero(t, lo)
	assert.Zero(t, hi)
	assert.Error(t, s.Validate())
}

func TestConfidenceInterval(t *testing.T) {
	var s Statistics
	for i := 0; i < 100; i++ {
		s.Add(MatchResult{Won: i%2 == 0})
	}
	// Sample std dev of a balanced 0/1 series of 100 is sqrt(25/99).
	assert.InDelta(t, 0.50252, s.StdDev(), 1e-4)
	lo, hi := s.ConfidenceInterval95()
	assert.InDelta(t, 0.5-1.96*0.050252, lo, 1e-4)
	assert.InDelta(t, 0.5+1.96*0.050252, hi, 1e-4)

	var perfect Statistics
	for i := 0; i < 10; i++ {
		perfect.Add(MatchResult{Won: true})
	}
	lo, hi = perfect.ConfidenceInterval95()
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 1.0, hi)
}

func TestValidateCatchesInconsistency(t *testing.T) {
	s := Statistics{Games: 2, Wins: 1, Values: []float64{1}}
	assert.ErrorContains(t, s.Validate(), "values array length")

	s = Statistics{Games: 1, Values: []float64{0}, Calls: 1, CaughtBluffs: 2, SeatResults: [2]SeatStats{{Games: 1}}}
	assert.ErrorContains(t, s.Validate(), "caught bluffs")
}

func TestTableLeaderboard(t *testing.T) {
	table := NewTable()
	add := func(winner, loser string) {
		table.Add(MatchResult{Agent: winner, Opponent: loser, Seat: 0, Won: true})
		table.Add(MatchResult{Agent: loser, Opponent: winner, Seat: 1, Won: false})
	}
	add("alpha", "beta")
	add("alpha", "gamma")
	add("beta", "gamma")
	add("gamma", "beta")

	assert.Equal(t, []string{"alpha", "beta", "gamma"}, table.Agents())
	assert.Equal(t, 1, table.Wins("alpha", "beta"))
	assert.Equal(t, 0, table.Wins("beta", "alpha"))

	board := table.Leaderboard()
	require.Len(t, board, 3)
	assert.Equal(t, "alpha", board[0].Agent)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, 1.0, board[0].WinRate)
	// beta and gamma tie on rate and wins; name breaks the tie.
	assert.Equal(t, "beta", board[1].Agent)
	assert.Equal(t, "gamma", board[2].Agent)
	assert.Equal(t, 3, board[2].Rank)

	require.NoError(t, table.Validate())
	assert.Contains(t, table.Summary(), "alpha")
}
