package nsnn

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/hed1ad/goexplainml/pkg/sample"
)

// SampleNegatives synthesizes an artificial negative (anomalous) sample in
// normalized space by drawing uniformly over the positive sample's bounding
// box expanded by delta on every side. Uniform draws give the negative class
// constant density over the extended support, which is what makes classifier
// confidence a proxy for positive-sample density during baseline selection.
//
// The result interleaves nothing: positive rows (label 1) come first, then
// round(ratio * len(positive)) negative rows (label 0). Row order carries no
// meaning downstream.
func SampleNegatives(positive *sample.Sample, ratio, delta float64, src rand.Source) (*sample.Labeled, error) {
	if ratio <= 0 {
		return nil, &sample.InvalidParameterError{Name: "sample_ratio", Reason: fmt.Sprintf("must be > 0, got %g", ratio)}
	}
	if delta < 0 {
		return nil, &sample.InvalidParameterError{Name: "sample_delta", Reason: fmt.Sprintf("must be >= 0, got %g", delta)}
	}
	if positive.NumDims() < 2 {
		return nil, &sample.InvalidParameterError{Name: "sample", Reason: "need at least 2 dimensions"}
	}
	if positive.NumRows() == 0 {
		return nil, sample.ErrEmptySample
	}

	dims := positive.NumDims()
	nNeg := int(math.Round(ratio * float64(positive.NumRows())))

	// Per-dimension uniform over [min-delta, max+delta].
	draws := make([]distuv.Uniform, dims)
	for d := 0; d < dims; d++ {
		lo, hi := positive.Rows[0][d], positive.Rows[0][d]
		for _, row := range positive.Rows[1:] {
			if row[d] < lo {
				lo = row[d]
			}
			if row[d] > hi {
				hi = row[d]
			}
		}
		draws[d] = distuv.Uniform{Min: lo - delta, Max: hi + delta, Src: src}
	}

	rows := make([][]float64, 0, positive.NumRows()+nNeg)
	labels := make([]float64, 0, positive.NumRows()+nNeg)
	for _, row := range positive.Rows {
		rows = append(rows, row)
		labels = append(labels, 1)
	}
	for i := 0; i < nNeg; i++ {
		row := make([]float64, dims)
		for d := 0; d < dims; d++ {
			row[d] = draws[d].Rand()
		}
		rows = append(rows, row)
		labels = append(labels, 0)
	}

	combined := &sample.Sample{Columns: positive.Columns, Rows: rows}
	return sample.NewLabeled(combined, labels)
}
