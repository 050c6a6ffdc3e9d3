package interpret

import (
	"github.com/hed1ad/goexplainml/pkg/sample"
)

// BlameResult is the raw output of the path integration: per-dimension blame
// indexed in canonical column order, the step-by-step gradient trace, and the
// completeness gap.
type BlameResult struct {
	// Blame is the un-renormalized attribution B_d(x) per dimension.
	Blame []float64

	// Trace holds one row per integration step, one column per dimension:
	// the classifier gradient evaluated along the path from x to the
	// baseline.
	Trace [][]float64

	// Score and BaselineScore are the classifier outputs at x and u*.
	Score         float64
	BaselineScore float64

	// CompletenessGap is Score(u*) - Score(x) - sum(Blame). The integration
	// is correct when this is near zero; it shrinks as numSteps grows.
	CompletenessGap float64
}

// Blame integrates the model's gradient along the straight line from x to
// baseline in numSteps discrete steps and multiplies the averaged gradient by
// the per-dimension displacement. Deterministic for fixed inputs and model.
//
// If x equals baseline in every dimension the blame is zero everywhere; that
// is a valid outcome, the point already reads as normal.
func Blame(x, baseline []float64, model Scorer, numSteps int) (*BlameResult, error) {
	if numSteps <= 0 {
		return nil, &sample.InvalidParameterError{Name: "num_steps_integrated_gradients", Reason: "must be > 0"}
	}
	if len(x) != len(baseline) {
		return nil, &sample.SchemaMismatchError{Detail: "point and baseline dimension counts differ"}
	}

	dims := len(x)
	sums := make([]float64, dims)
	trace := make([][]float64, numSteps)

	point := make([]float64, dims)
	for step := 1; step <= numSteps; step++ {
		alpha := float64(step) / float64(numSteps)
		for d := 0; d < dims; d++ {
			point[d] = x[d] + alpha*(baseline[d]-x[d])
		}
		grad, err := model.Gradient(point)
		if err != nil {
			return nil, err
		}
		trace[step-1] = grad
		for d := 0; d < dims; d++ {
			sums[d] += grad[d]
		}
	}

	blame := make([]float64, dims)
	for d := 0; d < dims; d++ {
		blame[d] = sums[d] / float64(numSteps) * (baseline[d] - x[d])
	}

	score, err := model.Score(x)
	if err != nil {
		return nil, err
	}
	baseScore, err := model.Score(baseline)
	if err != nil {
		return nil, err
	}

	var total float64
	for _, b := range blame {
		total += b
	}

	return &BlameResult{
		Blame:           blame,
		Trace:           trace,
		Score:           score,
		BaselineScore:   baseScore,
		CompletenessGap: baseScore - score - total,
	}, nil
}
