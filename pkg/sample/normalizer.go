package sample

import (
	"gonum.org/v1/gonum/stat"
)

// minStd floors the per-dimension standard deviation. A dimension with zero
// (or near-zero) variance would otherwise divide by zero during
// normalization; the floor keeps the transform defined at the cost of that
// dimension carrying essentially no signal.
const minStd = 1e-9

// NormalizationInfo holds the per-dimension mean and standard deviation of a
// training sample. It is immutable once fitted and defines the canonical
// column order used wherever gradients and attributions are indexed by
// position.
type NormalizationInfo struct {
	Columns []string
	Means   []float64
	Stds    []float64
}

// Fit computes per-dimension mean and standard deviation over the sample.
func Fit(s *Sample) (*NormalizationInfo, error) {
	if s.NumRows() == 0 {
		return nil, ErrEmptySample
	}

	dims := s.NumDims()
	info := &NormalizationInfo{
		Columns: make([]string, dims),
		Means:   make([]float64, dims),
		Stds:    make([]float64, dims),
	}
	copy(info.Columns, s.Columns)

	col := make([]float64, s.NumRows())
	for d := 0; d < dims; d++ {
		for i, row := range s.Rows {
			col[i] = row[d]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if std < minStd || s.NumRows() < 2 {
			std = minStd
		}
		info.Means[d] = mean
		info.Stds[d] = std
	}

	return info, nil
}

// ColumnOrder returns the canonical dimension order, stable across calls.
func (info *NormalizationInfo) ColumnOrder() []string {
	out := make([]string, len(info.Columns))
	copy(out, info.Columns)
	return out
}

// checkSchema verifies the sample's columns match the fitted columns exactly,
// in order.
func (info *NormalizationInfo) checkSchema(s *Sample) error {
	if len(s.Columns) != len(info.Columns) {
		return &SchemaMismatchError{Detail: "column count differs from fitted info"}
	}
	for i, c := range s.Columns {
		if c != info.Columns[i] {
			return &SchemaMismatchError{Column: c, Detail: "not present at this position in fitted info"}
		}
	}
	return nil
}

// Normalize applies the z-score transform (x - mean) / std per dimension.
func (info *NormalizationInfo) Normalize(s *Sample) (*Sample, error) {
	if err := info.checkSchema(s); err != nil {
		return nil, err
	}
	out := s.Clone()
	for _, row := range out.Rows {
		info.normalizeInPlace(row)
	}
	return out, nil
}

// Denormalize reverses the z-score transform; Denormalize(Normalize(s))
// reproduces s within floating-point tolerance.
func (info *NormalizationInfo) Denormalize(s *Sample) (*Sample, error) {
	if err := info.checkSchema(s); err != nil {
		return nil, err
	}
	out := s.Clone()
	for _, row := range out.Rows {
		info.denormalizeInPlace(row)
	}
	return out, nil
}

// NormalizePoint transforms a single row to normalized space.
func (info *NormalizationInfo) NormalizePoint(point []float64) []float64 {
	out := make([]float64, len(point))
	copy(out, point)
	info.normalizeInPlace(out)
	return out
}

// DenormalizePoint transforms a single normalized row back to original units.
func (info *NormalizationInfo) DenormalizePoint(point []float64) []float64 {
	out := make([]float64, len(point))
	copy(out, point)
	info.denormalizeInPlace(out)
	return out
}

func (info *NormalizationInfo) normalizeInPlace(row []float64) {
	for d := range row {
		row[d] = (row[d] - info.Means[d]) / info.Stds[d]
	}
}

func (info *NormalizationInfo) denormalizeInPlace(row []float64) {
	for d := range row {
		row[d] = row[d]*info.Stds[d] + info.Means[d]
	}
}
