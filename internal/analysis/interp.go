package analysis

import (
	"errors"
	"fmt"
)

var ErrDegenerateInterval = errors.New("analysis: degenerate interpolation interval")

// LinInterp returns the y value at x = 0 on the line through (x0, y0) and
// (x1, y1).
func LinInterp(x0, y0, x1, y1 float64) (float64, error) {
	if x1 == x0 {
		return 0, fmt.Errorf("%w: x0 == x1 == %v", ErrDegenerateInterval, x0)
	}
	return y0 - x0*(y1-y0)/(x1-x0), nil
}
