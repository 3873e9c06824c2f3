// Package config provides unified configuration loading for the importance experiment.
// It supports loading from YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/constants"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ExperimentConfig contains all experiment configuration settings.
type ExperimentConfig struct {
	// Sweep controls the rate grid and the Monte Carlo repeats.
	Sweep SweepConfig `json:"sweep" yaml:"sweep"`

	// Forest contains the random forest hyperparameters.
	Forest ForestConfig `json:"forest" yaml:"forest"`

	// Importance selects the importance measure.
	Importance ImportanceConfig `json:"importance" yaml:"importance"`

	// Percentiles defines the band reported for each rate and input.
	Percentiles PercentileConfig `json:"percentiles" yaml:"percentiles"`

	// Logging contains settings for operational and fit logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// SweepConfig configures the rate sweep.
type SweepConfig struct {
	// RateStart is the first rate of the grid.
	RateStart float64 `json:"rate_start" yaml:"rate_start" validate:"gte=0,lte=1"`

	// RateStop is the last rate of the grid. Must not be below RateStart.
	RateStop float64 `json:"rate_stop" yaml:"rate_stop" validate:"gte=0,lte=1,gtefield=RateStart"`

	// RateStep is the increment between rates.
	RateStep float64 `json:"rate_step" yaml:"rate_step" validate:"gt=0,lte=1"`

	// Repeats is the number of datasets fitted per rate.
	Repeats int `json:"repeats" yaml:"repeats" validate:"gte=2"`

	// Rows is the number of synthetic rows per dataset.
	Rows int `json:"rows" yaml:"rows" validate:"gte=10"`

	// Seed seeds every random stream of the experiment.
	Seed uint64 `json:"seed" yaml:"seed"`

	// Workers bounds the number of concurrent fits. 0 means one per CPU.
	Workers int `json:"workers" yaml:"workers" validate:"gte=0"`
}

// ForestConfig configures the random forest.
type ForestConfig struct {
	// Trees is the number of trees per forest.
	Trees int `json:"trees" yaml:"trees" validate:"gte=1"`

	// Mtry is the number of features tried at each split. 0 means max(floor(p/3), 1).
	Mtry int `json:"mtry" yaml:"mtry" validate:"gte=0,lte=3"`

	// NodeSize is the minimum size of terminal nodes.
	NodeSize int `json:"node_size" yaml:"node_size" validate:"gte=1"`

	// MaxDepth limits tree depth. 0 means unlimited.
	MaxDepth int `json:"max_depth" yaml:"max_depth" validate:"gte=0"`

	// SampleFraction is the bootstrap sample size as a fraction of the rows.
	SampleFraction float64 `json:"sample_fraction" yaml:"sample_fraction" validate:"gt=0,lte=1"`
}

// ImportanceConfig configures the importance measure.
type ImportanceConfig struct {
	// Type is "permutation" (%IncMSE) or "purity" (IncNodePurity).
	Type constants.ImportanceType `json:"type" yaml:"type" validate:"oneof=permutation purity"`

	// Scale divides permutation importance by its standard error.
	Scale bool `json:"scale" yaml:"scale"`
}

// PercentileConfig holds the three probabilities of the percentile band.
type PercentileConfig struct {
	Lower  float64 `json:"lower" yaml:"lower" validate:"gt=0,lt=1"`
	Median float64 `json:"median" yaml:"median" validate:"gt=0,lt=1,gtefield=Lower"`
	Upper  float64 `json:"upper" yaml:"upper" validate:"gt=0,lt=1,gtefield=Median"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables per-fit logging to .importance/fits.jsonl.
	Level string `json:"level" yaml:"level" validate:"omitempty,oneof=info debug trace"`
}

// Default returns an ExperimentConfig with the experiment's default design.
func Default() *ExperimentConfig {
	return &ExperimentConfig{
		Sweep: SweepConfig{
			RateStart: constants.DefaultRateStart,
			RateStop:  constants.DefaultRateStop,
			RateStep:  constants.DefaultRateStep,
			Repeats:   constants.DefaultRepeats,
			Rows:      constants.DefaultRows,
			Seed:      constants.DefaultSeed,
			Workers:   0,
		},
		Forest: ForestConfig{
			Trees:          constants.DefaultTrees,
			Mtry:           0,
			NodeSize:       constants.DefaultNodeSize,
			MaxDepth:       0,
			SampleFraction: constants.DefaultSampleFraction,
		},
		Importance: ImportanceConfig{
			Type:  constants.ImportancePermutation,
			Scale: true,
		},
		Percentiles: PercentileConfig{
			Lower:  constants.DefaultLowerPercentile,
			Median: constants.DefaultMedianPercentile,
			Upper:  constants.DefaultUpperPercentile,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Steps returns the number of rate steps the sweep covers.
func (c SweepConfig) Steps() int {
	if c.RateStep <= 0 {
		return 0
	}
	return int(math.Round((c.RateStop-c.RateStart)/c.RateStep)) + 1
}

// Path returns the project-local config file path under root.
func Path(root string) string {
	return filepath.Join(root, constants.DataDirName, constants.ConfigFileName)
}

// Load loads configuration from the project directory and environment variables.
// Order: defaults -> <root>/.importance/config.yaml -> environment variables
func Load(root string) (*ExperimentConfig, error) {
	return LoadPath(Path(root))
}

// LoadPath is Load with an explicit config file. A missing file leaves the defaults.
func LoadPath(configPath string) (*ExperimentConfig, error) {
	config := Default()

	if _, statErr := os.Stat(configPath); statErr == nil {
		fileConfig, loadErr := LoadFromFile(configPath)
		if loadErr != nil {
			return nil, fmt.Errorf("loading config file: %w", loadErr)
		}
		config = fileConfig
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
// Fields missing from the file keep their defaults.
func LoadFromFile(path string) (*ExperimentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Save writes the configuration as YAML to path, creating parent directories.
func (c *ExperimentConfig) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that the configuration is valid.
func (c *ExperimentConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fieldPath(fe.Namespace()), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	span := c.Sweep.RateStop - c.Sweep.RateStart
	steps := span / c.Sweep.RateStep
	if math.Abs(steps-math.Round(steps)) > 1e-6 {
		return fmt.Errorf("rate_step %g does not divide [%g, %g] evenly", c.Sweep.RateStep, c.Sweep.RateStart, c.Sweep.RateStop)
	}

	if c.Forest.NodeSize*2 > c.Sweep.Rows {
		return fmt.Errorf("node_size %d is too large for %d rows", c.Forest.NodeSize, c.Sweep.Rows)
	}

	return nil
}

// fieldPath turns "ExperimentConfig.Sweep.RateStep" into "sweep.rate_step".
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snakeCase(p)
	}
	return strings.Join(parts, ".")
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *ExperimentConfig) {
	if v := os.Getenv("IMPORTANCE_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			config.Sweep.Seed = n
		}
	}
	if v := os.Getenv("IMPORTANCE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Sweep.Workers = n
		}
	}
	if v := os.Getenv("IMPORTANCE_REPEATS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Sweep.Repeats = n
		}
	}
	if v := os.Getenv("IMPORTANCE_ROWS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Sweep.Rows = n
		}
	}
	if v := os.Getenv("IMPORTANCE_TREES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Forest.Trees = n
		}
	}
	if v := os.Getenv("IMPORTANCE_TYPE"); v != "" {
		config.Importance.Type = constants.ImportanceType(v)
	}
	if v := os.Getenv("IMPORTANCE_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}
