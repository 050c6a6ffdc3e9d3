package dataset

import (
	"fmt"
	"math/rand"

	"github.com/hed1ad/goexplainml/pkg/sample"
)

// GaussianMixture generates n rows from an isotropic Gaussian mixture with
// the given mode centers, one center chosen uniformly per row. Columns are
// named dim_0..dim_{D-1}. Centers must agree on dimension count and there
// must be at least two dimensions.
func GaussianMixture(name string, n int, centers [][]float64, sigma float64, seed int64) (*Dataset, error) {
	if len(centers) == 0 {
		return nil, &sample.InvalidParameterError{Name: "centers", Reason: "need at least one mode"}
	}
	dims := len(centers[0])
	if dims < 2 {
		return nil, &sample.InvalidParameterError{Name: "centers", Reason: "need at least 2 dimensions"}
	}
	for i, c := range centers {
		if len(c) != dims {
			return nil, &sample.InvalidParameterError{Name: "centers", Reason: fmt.Sprintf("center %d has %d dimensions, want %d", i, len(c), dims)}
		}
	}

	rng := rand.New(rand.NewSource(seed))
	rows := make([][]float64, n)
	for i := range rows {
		center := centers[rng.Intn(len(centers))]
		row := make([]float64, dims)
		for d := 0; d < dims; d++ {
			row[d] = center[d] + rng.NormFloat64()*sigma
		}
		rows[i] = row
	}

	columns := make([]string, dims)
	for d := range columns {
		columns[d] = fmt.Sprintf("dim_%d", d)
	}
	s, err := sample.New(columns, rows)
	if err != nil {
		return nil, err
	}

	return &Dataset{
		Name:        name,
		Description: fmt.Sprintf("%d-mode Gaussian mixture, %d dimensions, sigma %g", len(centers), dims, sigma),
		Sample:      s,
	}, nil
}

// Perturb returns a copy of point with the named dimension indexes shifted
// by amount. Used to make a controlled anomaly out of a normal row.
func Perturb(point []float64, dims []int, amount float64) []float64 {
	out := make([]float64, len(point))
	copy(out, point)
	for _, d := range dims {
		out[d] += amount
	}
	return out
}
