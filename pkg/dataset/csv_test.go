package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hed1ad/goexplainml/pkg/sample"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFromCSV(t *testing.T) {
	t.Run("with header", func(t *testing.T) {
		path := writeTempCSV(t, "temp,pressure\n1.5,100\n2.5,101\n")

		ds, err := FromCSV(path, WithDescription("boiler sensors"))
		require.NoError(t, err)

		assert.Equal(t, "data", ds.Name)
		assert.Equal(t, "boiler sensors", ds.Description)
		assert.Equal(t, []string{"temp", "pressure"}, ds.Sample.Columns)
		require.Equal(t, 2, ds.Sample.NumRows())
		assert.Equal(t, []float64{1.5, 100}, ds.Sample.Rows[0])
	})

	t.Run("without header", func(t *testing.T) {
		path := writeTempCSV(t, "1,2\n3,4\n")

		ds, err := FromCSV(path, WithHeader(false))
		require.NoError(t, err)
		assert.Equal(t, []string{"col_0", "col_1"}, ds.Sample.Columns)
		assert.Equal(t, 2, ds.Sample.NumRows())
	})

	t.Run("non-numeric cell fails with column context", func(t *testing.T) {
		path := writeTempCSV(t, "temp,category\n1.5,red\n")

		_, err := FromCSV(path)
		var mismatch *sample.SchemaMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.Equal(t, "category", mismatch.Column)
	})

	t.Run("empty cell fails", func(t *testing.T) {
		path := writeTempCSV(t, "a,b\n1,\n")

		_, err := FromCSV(path)
		assert.Error(t, err)
	})

	t.Run("single column rejected", func(t *testing.T) {
		path := writeTempCSV(t, "a\n1\n2\n")

		_, err := FromCSV(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := FromCSV(filepath.Join(t.TempDir(), "missing.csv"))
		assert.Error(t, err)
	})
}
