package statistics

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// MatchResult is one agent's outcome in a single match.
type MatchResult struct {
	Agent    string
	Opponent string
	Seat     int   // 0 opens every round, 1 replies
	Seed     int64 // match seed (for replay)
	Won      bool
	Rounds   int
	Bids     int // bids this agent placed
	Calls    int // challenges this agent made
	// CaughtBluffs counts this agent's challenges against false bids.
	CaughtBluffs int
	IllegalMoves int
	DiceLeft     int
}

// SeatStats tracks results for one seat.
type SeatStats struct {
	Games int
	Wins  int
}

// Statistics tracks one agent's results across matches.
type Statistics struct {
	Games  int
	Wins   int
	Values []float64 // 1 for a win, 0 for a loss, per match

	Rounds       int
	Bids         int
	Calls        int
	CaughtBluffs int
	IllegalMoves int

	SeatResults [2]SeatStats
}

// Add incorporates a new match result into the statistics
func (s *Statistics) Add(result MatchResult) {
	s.Games++
	v := 0.0
	if result.Won {
		s.Wins++
		v = 1
	}
	s.Values = append(s.Values, v)
	s.Rounds += result.Rounds
	s.Bids += result.Bids
	s.Calls += result.Calls
	s.CaughtBluffs += result.CaughtBluffs
	s.IllegalMoves += result.IllegalMoves

	if seat := result.Seat; seat >= 0 && seat < len(s.SeatResults) {
		s.SeatResults[seat].Games++
		if result.Won {
			s.SeatResults[seat].Wins++
		}
	}
}

// WinRate is the fraction of matches won.
func (s *Statistics) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Games)
}

// StdDev returns the sample standard deviation of the per-match win indicator
func (s *Statistics) StdDev() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	_, std := stat.MeanStdDev(s.Values, nil)
	return std
}

// StdError returns the standard error of the win rate
func (s *Statistics) StdError() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Games))
}

// ConfidenceInterval95 returns the normal-approximation 95% interval for the
// win rate, clamped to [0, 1].
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.WinRate()
	margin := 1.96 * s.StdError()
	return math.Max(0, mean-margin), math.Min(1, mean+margin)
}

// CallAccuracy is the fraction of challenges that caught a false bid.
func (s *Statistics) CallAccuracy() float64 {
	if s.Calls == 0 {
		return 0
	}
	return float64(s.CaughtBluffs) / float64(s.Calls)
}

// MeanRounds is the average match length in rounds.
func (s *Statistics) MeanRounds() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Rounds) / float64(s.Games)
}

// SeatWinRate returns the win rate from one seat.
func (s *Statistics) SeatWinRate(seat int) float64 {
	if seat < 0 || seat >= len(s.SeatResults) {
		return 0
	}
	ss := s.SeatResults[seat]
	if ss.Games == 0 {
		return 0
	}
	return float64(ss.Wins) / float64(ss.Games)
}

// Validate performs consistency checks on the accumulated data
func (s *Statistics) Validate() error {
	if s.Games <= 0 {
		return fmt.Errorf("invalid games count: %d", s.Games)
	}
	if len(s.Values) != s.Games {
		return fmt.Errorf("values array length (%d) does not match games count (%d)", len(s.Values), s.Games)
	}
	if s.Wins > s.Games {
		return fmt.Errorf("wins (%d) exceeds games (%d)", s.Wins, s.Games)
	}
	if s.CaughtBluffs > s.Calls {
		return fmt.Errorf("caught bluffs (%d) exceeds calls (%d)", s.CaughtBluffs, s.Calls)
	}
	seatGames := 0
	for _, ss := range s.SeatResults {
		seatGames += ss.Games
	}
	if seatGames != s.Games {
		return fmt.Errorf("seat games total (%d) does not match games (%d)", seatGames, s.Games)
	}
	return nil
}

// Table aggregates results for every agent in a tournament.
type Table struct {
	agents     map[string]*Statistics
	headToHead map[[2]string]int
}

func NewTable() *Table {
	return &Table{
		agents:     make(map[string]*Statistics),
		headToHead: make(map[[2]string]int),
	}
}

// Add records result under its agent.
func (t *Table) Add(result MatchResult) {
	s, ok := t.agents[result.Agent]
	if !ok {
		s = &Statistics{}
		t.agents[result.Agent] = s
	}
	s.Add(result)
	if result.Won {
		t.headToHead[[2]string{result.Agent, result.Opponent}]++
	}
}

// Get returns the statistics for agent.
func (t *Table) Get(agent string) (*Statistics, bool) {
	s, ok := t.agents[agent]
	return s, ok
}

// Agents lists every agent seen, sorted by name.
func (t *Table) Agents() []string {
	names := make([]string, 0, len(t.agents))
	for name := range t.agents {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Wins is how many matches agent won against opponent.
func (t *Table) Wins(agent, opponent string) int {
	return t.headToHead[[2]string{agent, opponent}]
}

// Validate checks every agent's statistics.
func (t *Table) Validate() error {
	for _, name := range t.Agents() {
		if err := t.agents[name].Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Standing is one leaderboard row.
type Standing struct {
	Rank    int
	Agent   string
	Games   int
	Wins    int
	WinRate float64
	CILow   float64
	CIHigh  float64
}

// Leaderboard ranks agents by win rate, then wins, then name.
func (t *Table) Leaderboard() []Standing {
	rows := make([]Standing, 0, len(t.agents))
	for name, s := range t.agents {
		lo, hi := s.ConfidenceInterval95()
		rows = append(rows, Standing{
			Agent:   name,
			Games:   s.Games,
			Wins:    s.Wins,
			WinRate: s.WinRate(),
			CILow:   lo,
			CIHigh:  hi,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].WinRate != rows[j].WinRate {
			return rows[i].WinRate > rows[j].WinRate
		}
		if rows[i].Wins != rows[j].Wins {
			return rows[i].Wins > rows[j].Wins
		}
		return rows[i].Agent < rows[j].Agent
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// Summary renders the leaderboard as a plain-text table.
func (t *Table) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-4s %-22s %6s %6s %8s %17s\n", "#", "agent", "games", "wins", "win%", "95% CI")
	for _, row := range t.Leaderboard() {
		fmt.Fprintf(&b, "%-4d %-22s %6d %6d %7.1f%% [%5.1f%%, %5.1f%%]\n",
			row.Rank, row.Agent, row.Games, row.Wins, row.WinRate*100, row.CILow*100, row.CIHigh*100)
	}
	return b.String()
}
