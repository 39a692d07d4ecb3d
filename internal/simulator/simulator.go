package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/lox/setforbots/internal/game"
	"github.com/lox/setforbots/internal/statistics"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrTimeout is returned when a game does not finish within Config.Timeout.
var ErrTimeout = errors.New("game timed out")

// Config holds configuration for running simulations
type Config struct {
	Games    int
	Parallel int           // Games run at once, defaults to GOMAXPROCS
	Seed     int64         // Seed of the first game, each game adds its index
	Timeout  time.Duration // Per game, zero means no limit
	Game     game.Config   // Template for every game; human seats are ignored
	Logger   zerolog.Logger
}

// Simulator runs headless all-AI games
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Parallel <= 0 {
		config.Parallel = runtime.GOMAXPROCS(0)
	}
	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}
	config.Game.HumanPlayers = 0
	return &Simulator{config: config}
}

// Run plays every game and returns the aggregated statistics. Results are
// added in game order, so a seed always yields the same statistics.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	if s.config.Games <= 0 {
		return nil, fmt.Errorf("games must be positive, got %d", s.config.Games)
	}
	if err := s.config.Game.Validate(); err != nil {
		return nil, err
	}

	results := make([]statistics.GameResult, s.config.Games)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Parallel)

	for i := range s.config.Games {
		g.Go(func() error {
			res, err := s.playGame(ctx, s.config.Seed+int64(i))
			if err != nil {
				return fmt.Errorf("game %d: %w", i+1, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, res := range results {
		stats.Add(res)
	}

	// Validate statistics before returning
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return stats, nil
}

// playGame runs a single game with timeout protection
func (s *Simulator) playGame(ctx context.Context, seed int64) (statistics.GameResult, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	cfg := s.config.Game
	cfg.Seed = seed
	g, err := game.NewGame(s.config.Logger, cfg, nil, nil, nil)
	if err != nil {
		return statistics.GameResult{}, err
	}

	res, err := g.Run(ctx)
	if err != nil {
		return statistics.GameResult{}, err
	}
	if res.Reason != game.EndExhausted {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return statistics.GameResult{}, fmt.Errorf("%w after %v (seed: %d)", ErrTimeout, s.config.Timeout, seed)
		}
		return statistics.GameResult{}, fmt.Errorf("game stopped (seed: %d): %w", seed, context.Cause(ctx))
	}

	s.config.Logger.Debug().
		Str("game_id", res.GameID).
		Int64("seed", seed).
		Ints("scores", res.Scores).
		Dur("duration", res.Duration).
		Msg("Simulated game")

	return statistics.GameResult{
		Seed:       seed,
		Scores:     res.Scores,
		Winners:    res.Winners,
		Penalties:  res.Stats.Penalties,
		Reshuffles: res.Stats.Reshuffles,
		Deals:      res.Stats.Deals,
		Duration:   res.Duration,
	}, nil
}

// Summary is the machine readable form of a simulation run.
type Summary struct {
	Games          int           `json:"games"`
	MeanPoints     float64       `json:"mean_points"`
	MedianPoints   float64       `json:"median_points"`
	StdDevPoints   float64       `json:"stddev_points"`
	CI95           [2]float64    `json:"ci95"`
	Deals          int           `json:"deals"`
	Reshuffles     int           `json:"reshuffles"`
	Penalties      int           `json:"penalties"`
	Ties           int           `json:"ties"`
	MeanDurationMS int64         `json:"mean_duration_ms"`
	Seats          []SeatSummary `json:"seats"`
}

// SeatSummary is one seat of a Summary.
type SeatSummary struct {
	Seat       int     `json:"seat"`
	MeanPoints float64 `json:"mean_points"`
	WinRate    float64 `json:"win_rate"`
}

// Summarize converts statistics into a Summary.
func Summarize(stats *statistics.Statistics) Summary {
	low, high := stats.ConfidenceInterval95()
	sum := Summary{
		Games:          stats.Games,
		MeanPoints:     stats.Mean(),
		MedianPoints:   stats.Median(),
		StdDevPoints:   stats.StdDev(),
		CI95:           [2]float64{low, high},
		Deals:          stats.Deals,
		Reshuffles:     stats.Reshuffles,
		Penalties:      stats.Penalties,
		Ties:           stats.Ties,
		MeanDurationMS: stats.MeanDuration().Milliseconds(),
		Seats:          make([]SeatSummary, len(stats.Seats)),
	}
	for seat := range stats.Seats {
		sum.Seats[seat] = SeatSummary{
			Seat:       seat + 1,
			MeanPoints: stats.SeatMean(seat),
			WinRate:    stats.SeatWinRate(seat),
		}
	}
	return sum
}

// PrintSummary prints a summary of simulation results
func PrintSummary(w io.Writer, stats *statistics.Statistics) {
	low, high := stats.ConfidenceInterval95()

	fmt.Fprintf(w, "\n=== FINAL RESULTS ===\n")
	fmt.Fprintf(w, "Games played: %d\n", stats.Games)
	fmt.Fprintf(w, "Mean game time: %v (shortest %v, longest %v)\n",
		stats.MeanDuration().Round(time.Millisecond),
		stats.ShortestGame.Round(time.Millisecond),
		stats.LongestGame.Round(time.Millisecond))

	fmt.Fprintf(w, "\n=== POINTS PER GAME ===\n")
	fmt.Fprintf(w, "Mean: %.3f\n", stats.Mean())
	fmt.Fprintf(w, "Median: %.3f\n", stats.Median())
	fmt.Fprintf(w, "Std Dev: %.3f\n", stats.StdDev())
	fmt.Fprintf(w, "95%% CI: [%.3f, %.3f]\n", low, high)
	fmt.Fprintf(w, "Percentiles: P5=%.1f, P25=%.1f, P75=%.1f, P95=%.1f\n",
		stats.Percentile(0.05), stats.Percentile(0.25), stats.Percentile(0.75), stats.Percentile(0.95))

	games := float64(stats.Games)
	fmt.Fprintf(w, "\n=== DEALER ===\n")
	fmt.Fprintf(w, "Deals: %.1f/game, reshuffles: %.1f/game, penalties: %.1f/game\n",
		float64(stats.Deals)/games, float64(stats.Reshuffles)/games, float64(stats.Penalties)/games)
	fmt.Fprintf(w, "Tied games: %d (%.1f%%)\n", stats.Ties, float64(stats.Ties)/games*100)

	fmt.Fprintf(w, "\n=== SEATS ===\n")
	for seat := range stats.Seats {
		fmt.Fprintf(w, "Seat %d: %.2f points/game, %.1f%% wins\n",
			seat+1, stats.SeatMean(seat), stats.SeatWinRate(seat)*100)
	}
}
