package nsnn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xrand "golang.org/x/exp/rand"

	"github.com/hed1ad/goexplainml/pkg/sample"
)

func TestSampleNegativesInvalidParameters(t *testing.T) {
	s, err := sample.New([]string{"a", "b"}, [][]float64{{0, 0}, {1, 1}})
	require.NoError(t, err)

	tests := []struct {
		name  string
		ratio float64
		delta float64
	}{
		{"zero ratio", 0, 1},
		{"negative ratio", -2, 1},
		{"negative delta", 1, -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SampleNegatives(s, tt.ratio, tt.delta, xrand.NewSource(1))
			var invalid *sample.InvalidParameterError
			assert.ErrorAs(t, err, &invalid)
		})
	}

	t.Run("empty positive sample", func(t *testing.T) {
		empty, err := sample.New([]string{"a", "b"}, nil)
		require.NoError(t, err)
		_, err = SampleNegatives(empty, 1, 0, xrand.NewSource(1))
		assert.ErrorIs(t, err, sample.ErrEmptySample)
	})
}

func TestSampleNegativesCount(t *testing.T) {
	rows := make([][]float64, 137)
	for i := range rows {
		rows[i] = []float64{float64(i), float64(-i)}
	}
	s, err := sample.New([]string{"a", "b"}, rows)
	require.NoError(t, err)

	for _, ratio := range []float64{1, 2.5, 10} {
		labeled, err := SampleNegatives(s, ratio, 0.5, xrand.NewSource(1))
		require.NoError(t, err)

		wantNeg := int(math.Round(ratio * float64(len(rows))))
		var neg, pos int
		for _, l := range labeled.Labels {
			if l == 0 {
				neg++
			} else {
				pos++
			}
		}
		assert.Equal(t, wantNeg, neg, "ratio %g", ratio)
		assert.Equal(t, len(rows), pos)
		assert.Equal(t, len(rows)+wantNeg, labeled.NumRows())
	}
}

func TestSampleNegativesBoundingBox(t *testing.T) {
	s, err := sample.New([]string{"a", "b"}, [][]float64{{-1, 10}, {1, 20}, {0, 15}})
	require.NoError(t, err)

	const delta = 0.5
	labeled, err := SampleNegatives(s, 50, delta, xrand.NewSource(7))
	require.NoError(t, err)

	lo := []float64{-1 - delta, 10 - delta}
	hi := []float64{1 + delta, 20 + delta}
	for i, row := range labeled.Rows {
		if labeled.Labels[i] == 1 {
			continue
		}
		for d := range row {
			assert.GreaterOrEqual(t, row[d], lo[d])
			assert.LessOrEqual(t, row[d], hi[d])
		}
	}
}

func TestSampleNegativesPreservesPositiveRows(t *testing.T) {
	s, err := sample.New([]string{"a", "b"}, [][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)

	labeled, err := SampleNegatives(s, 3, 1, xrand.NewSource(1))
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 2}, labeled.Rows[0])
	assert.Equal(t, []float64{3, 4}, labeled.Rows[1])
	assert.Equal(t, 1.0, labeled.Labels[0])
	assert.Equal(t, 1.0, labeled.Labels[1])
}
