// Package forest implements a regression random forest with out-of-bag
// variable importance.
//
// Trees are grown on bootstrap samples with mtry features tried at each
// split. Two importance measures are produced:
//   - permutation (%IncMSE): increase in out-of-bag MSE when a feature's
//     values are permuted among a tree's out-of-bag rows, averaged over trees
//     and optionally divided by its standard error
//   - purity (IncNodePurity): total RSS decrease from splits on a feature,
//     averaged over trees
package forest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/constants"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrDegenerateResponse is returned when the response has no variance.
	ErrDegenerateResponse = errors.New("response is constant")

	// ErrTooFewRows is returned when there are fewer than two rows to fit.
	ErrTooFewRows = errors.New("need at least two rows")

	// ErrInvalidConfig is returned for out-of-range hyperparameters.
	ErrInvalidConfig = errors.New("invalid forest config")
)

// Data is the training set a forest is fitted to.
type Data interface {
	Rows() int
	Features() int
	Feature(j int) []float64
	Response() []float64
}

// Config holds the forest hyperparameters.
type Config struct {
	// Trees is the number of trees to grow.
	Trees int

	// Mtry is the number of features tried per split. 0 means max(floor(p/3), 1).
	Mtry int

	// NodeSize is the minimum terminal node size; nodes this small are not split.
	NodeSize int

	// MaxDepth limits depth. 0 means unlimited.
	MaxDepth int

	// SampleFraction is the bootstrap size as a fraction of rows.
	SampleFraction float64

	// Importance selects which measure Forest.Importance reports.
	Importance constants.ImportanceType

	// Scale divides permutation importance by its standard error.
	Scale bool
}

// DefaultConfig returns the conventional regression forest settings.
func DefaultConfig() Config {
	return Config{
		Trees:          constants.DefaultTrees,
		NodeSize:       constants.DefaultNodeSize,
		SampleFraction: constants.DefaultSampleFraction,
		Importance:     constants.ImportancePermutation,
		Scale:          true,
	}
}

// resolve validates cfg against a p-feature dataset and fills in defaults.
func (c Config) resolve(p int) (Config, error) {
	if c.Trees < 1 {
		return c, fmt.Errorf("%w: trees must be positive, got %d", ErrInvalidConfig, c.Trees)
	}
	if c.NodeSize < 1 {
		return c, fmt.Errorf("%w: node_size must be positive, got %d", ErrInvalidConfig, c.NodeSize)
	}
	if c.MaxDepth < 0 {
		return c, fmt.Errorf("%w: max_depth must be non-negative, got %d", ErrInvalidConfig, c.MaxDepth)
	}
	if c.SampleFraction <= 0 || c.SampleFraction > 1 {
		return c, fmt.Errorf("%w: sample_fraction must be in (0, 1], got %g", ErrInvalidConfig, c.SampleFraction)
	}
	if c.Importance == "" {
		c.Importance = constants.ImportancePermutation
	}
	if !c.Importance.Valid() {
		return c, fmt.Errorf("%w: unknown importance type %q", ErrInvalidConfig, c.Importance)
	}
	if c.Mtry == 0 {
		c.Mtry = max(p/3, 1)
	}
	if c.Mtry < 1 || c.Mtry > p {
		return c, fmt.Errorf("%w: mtry must be in [1, %d], got %d", ErrInvalidConfig, p, c.Mtry)
	}
	return c, nil
}

// Forest is a fitted random forest.
type Forest struct {
	// Config is the resolved configuration the forest was grown with.
	Config Config

	// Trees are the fitted trees.
	Trees []*Tree

	// Permutation is %IncMSE per feature; nil for purity-only forests.
	Permutation []float64

	// PermutationSD is the per-feature standard deviation of the per-tree MSE increase.
	PermutationSD []float64

	// Purity is IncNodePurity per feature.
	Purity []float64

	// OOBMSE is the out-of-bag mean squared error.
	OOBMSE float64

	// RSquared is the out-of-bag share of response variance explained.
	RSquared float64

	// OOBRows is the number of rows that were out-of-bag for at least one tree.
	OOBRows int
}

// Fit grows a forest on d. The context is checked between trees.
func Fit(ctx context.Context, d Data, cfg Config, rng *rand.Rand) (*Forest, error) {
	n, p := d.Rows(), d.Features()
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewRows, n)
	}
	cfg, err := cfg.resolve(p)
	if err != nil {
		return nil, err
	}

	x := make([][]float64, p)
	for j := range x {
		x[j] = d.Feature(j)
	}
	y := d.Response()

	popVar := stat.PopVariance(y, nil)
	if popVar == 0 {
		return nil, ErrDegenerateResponse
	}

	sampleSize := max(int(math.Round(cfg.SampleFraction*float64(n))), 1)
	permute := cfg.Importance == constants.ImportancePermutation

	f := &Forest{
		Config: cfg,
		Trees:  make([]*Tree, 0, cfg.Trees),
		Purity: make([]float64, p),
	}

	oobSum := make([]float64, n)
	oobCount := make([]int, n)
	inBag := make([]int, n)
	idx := make([]int, sampleSize)
	oob := make([]int, 0, n)
	row := make([]float64, p)

	var diffs [][]float64
	if permute {
		diffs = make([][]float64, p)
		for j := range diffs {
			diffs[j] = make([]float64, 0, cfg.Trees)
		}
	}

	g := newGrower(x, y, cfg, rng)
	for t := 0; t < cfg.Trees; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		clear(inBag)
		for k := range idx {
			r := rng.IntN(n)
			idx[k] = r
			inBag[r]++
		}

		tree := g.grow(idx)
		f.Trees = append(f.Trees, tree)

		oob = oob[:0]
		for i, c := range inBag {
			if c == 0 {
				oob = append(oob, i)
			}
		}
		if len(oob) == 0 {
			continue
		}

		var mse float64
		for _, i := range oob {
			pred := tree.Predict(rowOf(x, i, row))
			oobSum[i] += pred
			oobCount[i]++
			r := y[i] - pred
			mse += r * r
		}
		mse /= float64(len(oob))

		if permute {
			for j := 0; j < p; j++ {
				diffs[j] = append(diffs[j], permutedMSE(tree, x, y, oob, j, rng, row)-mse)
			}
		}
	}

	for j := range f.Purity {
		f.Purity[j] = g.purity[j] / float64(cfg.Trees)
	}

	var sse float64
	for i := 0; i < n; i++ {
		if oobCount[i] == 0 {
			continue
		}
		r := y[i] - oobSum[i]/float64(oobCount[i])
		sse += r * r
		f.OOBRows++
	}
	if f.OOBRows > 0 {
		f.OOBMSE = sse / float64(f.OOBRows)
		f.RSquared = 1 - f.OOBMSE/popVar
	}

	if permute {
		f.Permutation = make([]float64, p)
		f.PermutationSD = make([]float64, p)
		for j := 0; j < p; j++ {
			f.Permutation[j], f.PermutationSD[j] = summarizeDiffs(diffs[j], cfg.Scale)
		}
	}

	return f, nil
}

// Importance returns the importance measure selected by the config.
func (f *Forest) Importance() []float64 {
	if f.Config.Importance == constants.ImportancePurity {
		return f.Purity
	}
	return f.Permutation
}

// Predict averages the trees' predictions for row.
func (f *Forest) Predict(row []float64) float64 {
	if len(f.Trees) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, t := range f.Trees {
		sum += t.Predict(row)
	}
	return sum / float64(len(f.Trees))
}

func rowOf(x [][]float64, i int, dst []float64) []float64 {
	for j := range x {
		dst[j] = x[j][i]
	}
	return dst
}
