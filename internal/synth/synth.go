// Package synth generates the synthetic datasets of the importance experiment.
//
// Each row draws four independent Uniform(0,1) values x1, x2, x3 and a
// latent decoy d, plus a switch s ~ Bernoulli(rate). The response is
//
//	y = x1 + s*x2 + (1-s)*d
//
// so x1 always drives y, x2 drives it with probability rate, x3 never does,
// and d (never shown to the model) takes x2's place when the switch is off.
package synth

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// FeatureNames are the candidate inputs in column order.
var FeatureNames = []string{"x1", "x2", "x3"}

// NumFeatures is the number of candidate inputs visible to the model.
const NumFeatures = 3

// Column indexes of the candidate inputs.
const (
	AlwaysInformative = 0 // x1
	Switched          = 1 // x2
	NeverInformative  = 2 // x3
)

var (
	// ErrRate is returned when a rate falls outside [0, 1].
	ErrRate = errors.New("rate must be within [0, 1]")

	// ErrRows is returned when fewer than one row is requested.
	ErrRows = errors.New("rows must be positive")
)

// Dataset is a column-major synthetic dataset.
type Dataset struct {
	// Rate is the switch probability the dataset was drawn with.
	Rate float64

	// X holds the candidate columns; X[j][i] is feature j of row i.
	X [][]float64

	// Y is the response.
	Y []float64

	// Decoy is the latent fourth input.
	Decoy []float64

	// Switch records, per row, whether y used x2 instead of the decoy.
	Switch []bool
}

// Generate draws a dataset of the given size at the given rate from src.
func Generate(rate float64, rows int, src rand.Source) (*Dataset, error) {
	if rate < 0 || rate > 1 {
		return nil, fmt.Errorf("%w: got %g", ErrRate, rate)
	}
	if rows < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrRows, rows)
	}

	unif := distuv.Uniform{Min: 0, Max: 1, Src: src}
	coin := distuv.Bernoulli{P: rate, Src: src}

	ds := &Dataset{
		Rate:   rate,
		X:      make([][]float64, NumFeatures),
		Y:      make([]float64, rows),
		Decoy:  make([]float64, rows),
		Switch: make([]bool, rows),
	}
	for j := range ds.X {
		ds.X[j] = make([]float64, rows)
	}

	for i := 0; i < rows; i++ {
		x1 := unif.Rand()
		x2 := unif.Rand()
		x3 := unif.Rand()
		d := unif.Rand()
		on := coin.Rand() == 1

		ds.X[AlwaysInformative][i] = x1
		ds.X[Switched][i] = x2
		ds.X[NeverInformative][i] = x3
		ds.Decoy[i] = d
		ds.Switch[i] = on

		if on {
			ds.Y[i] = x1 + x2
		} else {
			ds.Y[i] = x1 + d
		}
	}

	return ds, nil
}

// Rows returns the number of rows.
func (d *Dataset) Rows() int {
	return len(d.Y)
}

// Features returns the number of candidate columns.
func (d *Dataset) Features() int {
	return len(d.X)
}

// Feature returns column j.
func (d *Dataset) Feature(j int) []float64 {
	return d.X[j]
}

// Row copies row i into dst (allocating when dst is too short) and returns it.
func (d *Dataset) Row(i int, dst []float64) []float64 {
	if cap(dst) < len(d.X) {
		dst = make([]float64, len(d.X))
	}
	dst = dst[:len(d.X)]
	for j := range d.X {
		dst[j] = d.X[j][i]
	}
	return dst
}

// SwitchRate returns the observed fraction of rows whose switch is on.
func (d *Dataset) SwitchRate() float64 {
	if len(d.Switch) == 0 {
		return 0
	}
	on := 0
	for _, s := range d.Switch {
		if s {
			on++
		}
	}
	return float64(on) / float64(len(d.Switch))
}

// Response returns the output column.
func (d *Dataset) Response() []float64 {
	return d.Y
}
