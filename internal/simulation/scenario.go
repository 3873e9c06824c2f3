package simulation

import (
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/config"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/constants"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/store"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/summary"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/sweep"
)

// Defaults sized so a scenario runs in a few seconds.
const (
	DefaultRows    = 200
	DefaultTrees   = 40
	DefaultRepeats = 8
)

// Grid is the start/stop/step of a scenario's rate sweep.
type Grid struct {
	Start, Stop, Step float64
}

// Rates builds a Grid.
func Rates(start, stop, step float64) Grid {
	return Grid{Start: start, Stop: stop, Step: step}
}

// Scenario defines one small sweep. Zero fields take the package defaults.
type Scenario struct {
	Name       string
	Rates      Grid
	Repeats    int
	Rows       int
	Trees      int
	Seed       uint64
	Workers    int
	Importance constants.ImportanceType

	// Configure, when non-nil, is applied to the configuration after the
	// fields above and before validation.
	Configure func(cfg *config.ExperimentConfig)
}

// Config builds the experiment configuration of the scenario.
func (s Scenario) Config() *config.ExperimentConfig {
	cfg := config.Default()
	cfg.Sweep.Repeats = orDefault(s.Repeats, DefaultRepeats)
	cfg.Sweep.Rows = orDefault(s.Rows, DefaultRows)
	cfg.Forest.Trees = orDefault(s.Trees, DefaultTrees)
	cfg.Sweep.Workers = s.Workers
	if s.Seed != 0 {
		cfg.Sweep.Seed = s.Seed
	}
	if s.Rates.Step > 0 {
		cfg.Sweep.RateStart, cfg.Sweep.RateStop, cfg.Sweep.RateStep = s.Rates.Start, s.Rates.Stop, s.Rates.Step
	} else {
		cfg.Sweep.RateStep = 0.5
	}
	if s.Importance != "" {
		cfg.Importance.Type = s.Importance
	}
	if s.Configure != nil {
		s.Configure(cfg)
	}
	return cfg
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// SimulationResult captures a finished scenario: the in-memory sweep, the
// summary table as reloaded from the store, and the evaluated checks.
type SimulationResult struct {
	Scenario Scenario
	Config   *config.ExperimentConfig
	Run      store.Run
	Result   *sweep.Result
	Table    *summary.Table
	Checks   []summary.Check
	Store    *store.SQLiteStore
}
