// Package sweep runs the nested Monte Carlo loop of the experiment: for each
// rate of the grid and each repeat it generates a synthetic dataset, fits a
// random forest and records the importance of every candidate input.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/config"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/forest"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/logging"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/synth"
	"golang.org/x/sync/errgroup"
)

// ErrShape is returned when a result does not hold the configured number of
// rate steps and repeats.
var ErrShape = errors.New("sweep result has unexpected shape")

// Sample is the outcome of one fit.
type Sample struct {
	RateIndex  int       `json:"rate_index"`
	Rate       float64   `json:"rate"`
	Repeat     int       `json:"repeat"`
	Importance []float64 `json:"importance"`
	OOBMSE     float64   `json:"oob_mse"`
	RSquared   float64   `json:"r_squared"`
	SwitchRate float64   `json:"switch_rate"`
}

// Point holds every sample taken at one rate.
type Point struct {
	Index   int      `json:"index"`
	Rate    float64  `json:"rate"`
	Samples []Sample `json:"samples"`
}

// Result is the full output of a sweep.
type Result struct {
	Seed     uint64        `json:"seed"`
	Features []string      `json:"features"`
	Points   []Point       `json:"points"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Progress reports how many fits have completed.
type Progress struct {
	Done   int
	Total  int
	Rate   float64
	Repeat int
}

// Runner executes sweeps.
type Runner struct {
	// Config is the experiment configuration; it should already be validated.
	Config *config.ExperimentConfig

	// RunID tags fit log lines.
	RunID string

	// Logger receives operational output. Nil discards.
	Logger *slog.Logger

	// Fits receives one line per fit. Nil disables fit tracing.
	Fits *logging.FitLogger

	// OnProgress is called after every fit. Calls are serialized.
	OnProgress func(Progress)
}

// NewRunner creates a runner for cfg.
func NewRunner(cfg *config.ExperimentConfig) *Runner {
	return &Runner{Config: cfg}
}

// ForestConfig maps the experiment configuration onto forest hyperparameters.
func ForestConfig(cfg *config.ExperimentConfig) forest.Config {
	return forest.Config{
		Trees:          cfg.Forest.Trees,
		Mtry:           cfg.Forest.Mtry,
		NodeSize:       cfg.Forest.NodeSize,
		MaxDepth:       cfg.Forest.MaxDepth,
		SampleFraction: cfg.Forest.SampleFraction,
		Importance:     cfg.Importance.Type,
		Scale:          cfg.Importance.Scale,
	}
}

// Stream returns the PCG source for one fit. Each (rate index, repeat) pair
// gets its own stream so results do not depend on scheduling.
func Stream(seed uint64, rateIndex, repeat int) *rand.PCG {
	return rand.NewPCG(seed, uint64(rateIndex)<<32|uint64(uint32(repeat)))
}

// Run executes the sweep. The first failing fit cancels the remaining work
// and its error is returned.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	cfg := r.Config
	logger := r.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	rates, err := Grid(cfg.Sweep.RateStart, cfg.Sweep.RateStop, cfg.Sweep.RateStep)
	if err != nil {
		return nil, err
	}

	repeats := cfg.Sweep.Repeats
	workers := cfg.Sweep.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	result := &Result{
		Seed:     cfg.Sweep.Seed,
		Features: append([]string(nil), synth.FeatureNames...),
		Points:   make([]Point, len(rates)),
	}
	for i, rate := range rates {
		result.Points[i] = Point{Index: i, Rate: rate, Samples: make([]Sample, repeats)}
	}

	total := len(rates) * repeats
	logger.Info("starting sweep",
		"rates", len(rates), "repeats", repeats, "fits", total,
		"rows", cfg.Sweep.Rows, "trees", cfg.Forest.Trees,
		"importance", cfg.Importance.Type, "workers", workers, "seed", cfg.Sweep.Seed)

	fc := ForestConfig(cfg)
	start := time.Now()

	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

schedule:
	for ri, rate := range rates {
		for rep := 0; rep < repeats; rep++ {
			if gctx.Err() != nil {
				break schedule
			}
			g.Go(func() error {
				fitStart := time.Now()
				s, err := r.fit(gctx, ri, rate, rep, fc)
				if err != nil {
					return fmt.Errorf("rate %g repeat %d: %w", rate, rep, err)
				}
				result.Points[ri].Samples[rep] = s

				r.Fits.Log(logging.FitEvent{
					RunID:      r.RunID,
					RateIndex:  ri,
					Rate:       rate,
					Repeat:     rep,
					Importance: s.Importance,
					OOBMSE:     s.OOBMSE,
					RSquared:   s.RSquared,
					Elapsed:    time.Since(fitStart).String(),
				})
				logger.Log(gctx, logging.LevelTrace, "fit complete",
					"rate", rate, "repeat", rep, "importance", s.Importance, "oob_mse", s.OOBMSE)

				mu.Lock()
				done++
				p := Progress{Done: done, Total: total, Rate: rate, Repeat: rep}
				if r.OnProgress != nil {
					r.OnProgress(p)
				}
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		logger.Error("sweep aborted", "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Elapsed = time.Since(start)
	logger.Info("sweep complete", "fits", total, "elapsed", result.Elapsed.Round(time.Millisecond))

	return result, nil
}

func (r *Runner) fit(ctx context.Context, ri int, rate float64, rep int, fc forest.Config) (Sample, error) {
	src := Stream(r.Config.Sweep.Seed, ri, rep)

	ds, err := synth.Generate(rate, r.Config.Sweep.Rows, src)
	if err != nil {
		return Sample{}, fmt.Errorf("generating data: %w", err)
	}

	f, err := forest.Fit(ctx, ds, fc, rand.New(src))
	if err != nil {
		return Sample{}, fmt.Errorf("fitting forest: %w", err)
	}

	return Sample{
		RateIndex:  ri,
		Rate:       rate,
		Repeat:     rep,
		Importance: append([]float64(nil), f.Importance()...),
		OOBMSE:     f.OOBMSE,
		RSquared:   f.RSquared,
		SwitchRate: ds.SwitchRate(),
	}, nil
}

// Rates returns the swept rates in order.
func (r *Result) Rates() []float64 {
	rates := make([]float64, len(r.Points))
	for i, p := range r.Points {
		rates[i] = p.Rate
	}
	return rates
}

// Importances returns the importance of one feature across the repeats at a rate.
func (r *Result) Importances(rateIndex, feature int) []float64 {
	samples := r.Points[rateIndex].Samples
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Importance[feature]
	}
	return out
}

// Validate checks that the result holds exactly steps rates, each with
// exactly repeats complete samples.
func (r *Result) Validate(steps, repeats int) error {
	if len(r.Points) != steps {
		return fmt.Errorf("%w: %d rate steps, want %d", ErrShape, len(r.Points), steps)
	}
	for _, p := range r.Points {
		if len(p.Samples) != repeats {
			return fmt.Errorf("%w: rate %g has %d repeats, want %d", ErrShape, p.Rate, len(p.Samples), repeats)
		}
		for i, s := range p.Samples {
			if s.Repeat != i || len(s.Importance) != len(r.Features) {
				return fmt.Errorf("%w: rate %g repeat %d is incomplete", ErrShape, p.Rate, i)
			}
		}
	}
	return nil
}
