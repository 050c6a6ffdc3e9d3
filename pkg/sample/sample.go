// Package sample provides the tabular data model and z-score normalization
// used by the detector and the interpreter.
package sample

import (
	"fmt"
	"math"
)

// Sample is an ordered collection of rows over a fixed set of numeric columns.
// Rows are indexed positionally; Columns gives the dimension name for each
// position.
type Sample struct {
	Columns []string
	Rows    [][]float64
}

// New creates a Sample after validating its shape: at least two columns,
// rectangular rows, and no NaN or infinite values.
func New(columns []string, rows [][]float64) (*Sample, error) {
	if len(columns) < 2 {
		return nil, &InvalidParameterError{Name: "columns", Reason: fmt.Sprintf("need at least 2 dimensions, got %d", len(columns))}
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, &SchemaMismatchError{Column: "", Detail: fmt.Sprintf("row %d has %d values, want %d", i, len(row), len(columns))}
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &SchemaMismatchError{Column: columns[j], Detail: fmt.Sprintf("non-finite value at row %d", i)}
			}
		}
	}
	return &Sample{Columns: columns, Rows: rows}, nil
}

// NumRows returns the row count.
func (s *Sample) NumRows() int { return len(s.Rows) }

// NumDims returns the dimension count.
func (s *Sample) NumDims() int { return len(s.Columns) }

// Clone returns a deep copy.
func (s *Sample) Clone() *Sample {
	cols := make([]string, len(s.Columns))
	copy(cols, s.Columns)
	rows := make([][]float64, len(s.Rows))
	for i, row := range s.Rows {
		rows[i] = make([]float64, len(row))
		copy(rows[i], row)
	}
	return &Sample{Columns: cols, Rows: rows}
}

// Split partitions the rows into a head of n rows and the remainder. Useful
// for train/test splits. n is clamped to the row count.
func (s *Sample) Split(n int) (*Sample, *Sample) {
	if n > len(s.Rows) {
		n = len(s.Rows)
	}
	head := &Sample{Columns: s.Columns, Rows: s.Rows[:n]}
	tail := &Sample{Columns: s.Columns, Rows: s.Rows[n:]}
	return head, tail
}

// Labeled is a Sample whose rows carry a binary class label:
// 1 = positive/normal, 0 = negative/anomalous.
type Labeled struct {
	Sample
	Labels []float64
}

// NewLabeled pairs a sample with per-row labels.
func NewLabeled(s *Sample, labels []float64) (*Labeled, error) {
	if len(labels) != len(s.Rows) {
		return nil, &SchemaMismatchError{Detail: fmt.Sprintf("%d labels for %d rows", len(labels), len(s.Rows))}
	}
	return &Labeled{Sample: *s, Labels: labels}, nil
}
