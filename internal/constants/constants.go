// Package constants provides named constants used throughout the importance experiment.
// This centralizes the experiment's default design parameters.
package constants

// Sweep defaults
const (
	// DefaultRateStart is the first rate of the sweep.
	DefaultRateStart = 0.0

	// DefaultRateStop is the last rate of the sweep.
	DefaultRateStop = 1.0

	// DefaultRateStep is the increment between consecutive rates.
	// With the default bounds this yields 11 rate steps.
	DefaultRateStep = 0.1

	// DefaultRepeats is the number of datasets generated and fitted per rate.
	DefaultRepeats = 50

	// DefaultRows is the number of synthetic rows per dataset.
	DefaultRows = 500

	// DefaultSeed seeds the experiment's random streams.
	DefaultSeed uint64 = 42
)

// Forest defaults
const (
	// DefaultTrees is the number of trees grown per forest.
	DefaultTrees = 200

	// DefaultNodeSize is the minimum size of terminal nodes for regression.
	DefaultNodeSize = 5

	// DefaultSampleFraction is the bootstrap sample size as a fraction of rows.
	DefaultSampleFraction = 1.0
)

// Percentile band defaults
const (
	// DefaultLowerPercentile is the lower edge of the percentile band.
	DefaultLowerPercentile = 0.05

	// DefaultMedianPercentile is the centre of the percentile band.
	DefaultMedianPercentile = 0.50

	// DefaultUpperPercentile is the upper edge of the percentile band.
	DefaultUpperPercentile = 0.95
)

// Storage layout
const (
	// DataDirName is the per-project directory holding the database, config and traces.
	DataDirName = ".importance"

	// DatabaseFileName is the SQLite database inside DataDirName.
	DatabaseFileName = "importance.db"

	// ConfigFileName is the YAML configuration file inside DataDirName.
	ConfigFileName = "config.yaml"

	// FitLogFileName is the JSONL per-fit trace inside DataDirName.
	FitLogFileName = "fits.jsonl"
)

// RateTolerance is the slack used when comparing rates for equality.
const RateTolerance = 1e-9
