package sweep

import (
	"errors"
	"fmt"
	"math"
)

// ErrGrid is returned for rate bounds or steps that do not form a grid in [0, 1].
var ErrGrid = errors.New("invalid rate grid")

// Grid returns the rates start, start+step, ..., stop. The number of values
// is round((stop-start)/step)+1 and the last value is exactly stop.
func Grid(start, stop, step float64) ([]float64, error) {
	if start < 0 || stop > 1 || start > stop {
		return nil, fmt.Errorf("%w: bounds [%g, %g]", ErrGrid, start, stop)
	}
	if step <= 0 {
		return nil, fmt.Errorf("%w: step must be positive, got %g", ErrGrid, step)
	}

	steps := int(math.Round((stop-start)/step)) + 1
	rates := make([]float64, steps)
	for i := range rates {
		rates[i] = start + float64(i)*step
	}
	rates[steps-1] = stop
	for i := range rates {
		// Snap float noise such as 0.30000000000000004.
		rates[i] = math.Round(rates[i]*1e9) / 1e9
		if rates[i] > stop {
			rates[i] = stop
		}
	}
	return rates, nil
}
