// Package evaluate provides detector quality metrics.
package evaluate

import (
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"github.com/hed1ad/goexplainml/pkg/sample"
)

// AUC computes the area under the ROC curve for the given scores, where
// labels[i] marks row i as belonging to the positive class. Scores need not
// be sorted.
func AUC(scores []float64, labels []bool) (float64, error) {
	if len(scores) == 0 {
		return 0, sample.ErrEmptySample
	}
	if len(scores) != len(labels) {
		return 0, &sample.SchemaMismatchError{Detail: "scores and labels length differ"}
	}

	y := make([]float64, len(scores))
	copy(y, scores)
	classes := make([]bool, len(labels))
	copy(classes, labels)

	// stat.ROC requires scores in ascending order with labels alongside.
	idx := make([]int, len(y))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] < scores[idx[b]] })
	for i, j := range idx {
		y[i] = scores[j]
		classes[i] = labels[j]
	}

	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr), nil
}
