package statistics

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// GameResult represents the outcome of a single simulated game
type GameResult struct {
	Seed       int64         // RNG seed for this game (for replay)
	Scores     []int         // Final score per seat
	Winners    []int         // Seats tied at the top score
	Penalties  int           // Rejected claims
	Reshuffles int           // Times the grid went back into the deck
	Deals      int           // Deals that placed at least one card
	Duration   time.Duration // Wall time of the game
}

// Points returns the total score of the game.
func (r GameResult) Points() int {
	total := 0
	for _, s := range r.Scores {
		total += s
	}
	return total
}

// SeatStats tracks statistics for one seat across games
type SeatStats struct {
	Games  int
	Points int
	Wins   float64 // Shared wins count fractionally
}

// Statistics tracks points per game across a simulation run
type Statistics struct {
	Games      int
	SumPoints  float64
	SumPoints2 float64   // Sum of squares for variance calculation
	Values     []float64 // Store all values for median/percentile calculation

	Penalties    int
	Reshuffles   int
	Deals        int
	Ties         int // Games with more than one winner
	TotalTime    time.Duration
	LongestGame  time.Duration
	ShortestGame time.Duration

	Seats []SeatStats
}

// Mean returns the arithmetic mean of points per game
func (s *Statistics) Mean() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.SumPoints / float64(s.Games)
}

// Variance returns the sample variance of points per game
func (s *Statistics) Variance() float64 {
	if s.Games < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumPoints2 - float64(s.Games)*mean*mean) / float64(s.Games-1)
}

// StdDev returns the sample standard deviation of points per game
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Games))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError() // 95% confidence
	return mean - margin, mean + margin
}

// Add incorporates a new game result into the statistics
func (s *Statistics) Add(result GameResult) {
	points := float64(result.Points())
	s.Games++
	s.SumPoints += points
	s.SumPoints2 += points * points
	s.Values = append(s.Values, points)

	s.Penalties += result.Penalties
	s.Reshuffles += result.Reshuffles
	s.Deals += result.Deals

	s.TotalTime += result.Duration
	if result.Duration > s.LongestGame {
		s.LongestGame = result.Duration
	}
	if s.Games == 1 || result.Duration < s.ShortestGame {
		s.ShortestGame = result.Duration
	}

	for len(s.Seats) < len(result.Scores) {
		s.Seats = append(s.Seats, SeatStats{})
	}
	for seat, score := range result.Scores {
		s.Seats[seat].Games++
		s.Seats[seat].Points += score
	}
	if len(result.Winners) > 1 {
		s.Ties++
	}
	for _, w := range result.Winners {
		if w >= 0 && w < len(s.Seats) {
			s.Seats[w].Wins += 1 / float64(len(result.Winners))
		}
	}
}

// Median returns the median points per game
func (s *Statistics) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := s.sorted()
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := s.sorted()

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

func (s *Statistics) sorted() []float64 {
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)
	return sorted
}

// SeatMean returns the mean score of a seat
func (s *Statistics) SeatMean(seat int) float64 {
	if seat < 0 || seat >= len(s.Seats) || s.Seats[seat].Games == 0 {
		return 0
	}
	return float64(s.Seats[seat].Points) / float64(s.Seats[seat].Games)
}

// SeatWinRate returns the share of games a seat won, ties split evenly
func (s *Statistics) SeatWinRate(seat int) float64 {
	if seat < 0 || seat >= len(s.Seats) || s.Seats[seat].Games == 0 {
		return 0
	}
	return s.Seats[seat].Wins / float64(s.Seats[seat].Games)
}

// MeanDuration returns the average wall time per game
func (s *Statistics) MeanDuration() time.Duration {
	if s.Games == 0 {
		return 0
	}
	return s.TotalTime / time.Duration(s.Games)
}

// IsLedgerBalanced checks that seat points add up to the recorded totals
func (s *Statistics) IsLedgerBalanced() bool {
	seatPoints := 0
	for _, seat := range s.Seats {
		seatPoints += seat.Points
	}
	return math.Abs(float64(seatPoints)-s.SumPoints) <= 1e-6
}

// Validate performs comprehensive validation of statistics data
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: seat points do not sum to %.0f", s.SumPoints)
	}

	if s.Games <= 0 {
		return fmt.Errorf("invalid games count: %d", s.Games)
	}

	if len(s.Values) != s.Games {
		return fmt.Errorf("values array length (%d) does not match games count (%d)",
			len(s.Values), s.Games)
	}

	// Every finished game has at least one winner, ties share one win.
	wins := 0.0
	for _, seat := range s.Seats {
		wins += seat.Wins
	}
	if math.Abs(wins-float64(s.Games)) > 1e-6 {
		return fmt.Errorf("total wins (%.2f) does not match games (%d)", wins, s.Games)
	}

	return nil
}
