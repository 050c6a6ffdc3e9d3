package interpret

import (
	"gonum.org/v1/gonum/floats"

	"github.com/hed1ad/goexplainml/pkg/sample"
)

// Nearest returns the baseline point closest to x by Euclidean distance in
// normalized space. Ties go to the first-encountered point, so the result is
// deterministic given a stable baseline ordering. Linear scan: baseline sets
// are capped at a few hundred points, an index would not pay for itself.
func Nearest(x []float64, baseline []BaselinePoint) (BaselinePoint, error) {
	if len(baseline) == 0 {
		return BaselinePoint{}, sample.ErrEmptySample
	}

	best := baseline[0]
	bestDist := floats.Distance(x, baseline[0].Point, 2)
	for _, b := range baseline[1:] {
		if d := floats.Distance(x, b.Point, 2); d < bestDist {
			best = b
			bestDist = d
		}
	}
	return best, nil
}
