package forest

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"
)

// permutedMSE returns the tree's MSE on the oob rows after shuffling
// feature j among those rows.
func permutedMSE(tree *Tree, x [][]float64, y []float64, oob []int, j int, rng *rand.Rand, row []float64) float64 {
	shuffled := make([]float64, len(oob))
	for k, i := range oob {
		shuffled[k] = x[j][i]
	}
	rng.Shuffle(len(shuffled), func(a, b int) {
		shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
	})

	var mse float64
	for k, i := range oob {
		rowOf(x, i, row)
		row[j] = shuffled[k]
		r := y[i] - tree.Predict(row)
		mse += r * r
	}
	return mse / float64(len(oob))
}

// summarizeDiffs reduces per-tree MSE increases to an importance score and
// the standard deviation of the increases. When scale is set the mean is
// divided by its standard error; a zero standard error leaves it unscaled.
func summarizeDiffs(diffs []float64, scale bool) (float64, float64) {
	if len(diffs) == 0 {
		return 0, 0
	}
	mean := stat.Mean(diffs, nil)
	if len(diffs) < 2 {
		return mean, 0
	}
	sd := stat.StdDev(diffs, nil)
	if !scale || sd == 0 || math.IsNaN(sd) {
		return mean, sd
	}
	return mean / (sd / math.Sqrt(float64(len(diffs)))), sd
}
