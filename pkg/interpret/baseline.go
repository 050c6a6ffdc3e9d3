// Package interpret attributes an anomaly score to individual input
// dimensions by integrating the classifier's gradient along the path from an
// anomalous point to its nearest high-confidence normal baseline.
package interpret

import (
	"fmt"
	"sort"

	"github.com/hed1ad/goexplainml/pkg/sample"
)

// Scorer is the differentiable model the interpreter consumes. Any model
// family exposing a probability score and its input gradient can back the
// attribution, not only the NS-NN classifier.
type Scorer interface {
	// Score returns P(class = Normal) at a point in normalized space.
	Score(point []float64) (float64, error)

	// Gradient returns the partial derivative of the score with respect to
	// every input dimension, evaluable at arbitrary points.
	Gradient(point []float64) ([]float64, error)
}

// BaselinePoint is a member of the trusted normal set U*, tagged with the
// classifier confidence that qualified it.
type BaselinePoint struct {
	Point      []float64
	Confidence float64
}

// NoQualifyingBaselineError reports that no training row reached the
// confidence threshold. It carries the observed maximum so the caller can
// lower the threshold or retrain; this is a recoverable condition.
type NoQualifyingBaselineError struct {
	MinClassConfidence     float64
	HighestClassConfidence float64
}

func (e *NoQualifyingBaselineError) Error() string {
	return fmt.Sprintf("no baseline point reached confidence %g (highest observed %g)",
		e.MinClassConfidence, e.HighestClassConfidence)
}

// SelectBaseline scores every row of the normalized training sample and
// returns the rows with confidence >= minConfidence, sorted descending by
// confidence and truncated to maxSize.
func SelectBaseline(model Scorer, normalized *sample.Sample, minConfidence float64, maxSize int) ([]BaselinePoint, error) {
	if normalized.NumRows() == 0 {
		return nil, sample.ErrEmptySample
	}

	var qualifying []BaselinePoint
	highest := 0.0
	for _, row := range normalized.Rows {
		conf, err := model.Score(row)
		if err != nil {
			return nil, err
		}
		if conf > highest {
			highest = conf
		}
		if conf >= minConfidence {
			qualifying = append(qualifying, BaselinePoint{Point: row, Confidence: conf})
		}
	}

	if len(qualifying) == 0 {
		return nil, &NoQualifyingBaselineError{
			MinClassConfidence:     minConfidence,
			HighestClassConfidence: highest,
		}
	}

	// Stable sort keeps equal-confidence rows in sample order, which makes
	// truncation and downstream tie breaking deterministic.
	sort.SliceStable(qualifying, func(i, j int) bool {
		return qualifying[i].Confidence > qualifying[j].Confidence
	})
	if len(qualifying) > maxSize {
		qualifying = qualifying[:maxSize]
	}
	return qualifying, nil
}
