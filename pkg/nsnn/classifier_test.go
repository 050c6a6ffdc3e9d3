package nsnn

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hed1ad/goexplainml/pkg/sample"
)

func TestHyperparametersValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Hyperparameters)
		wantErr bool
	}{
		{"defaults are valid", func(hp *Hyperparameters) {}, false},
		{"zero ratio", func(hp *Hyperparameters) { hp.SampleRatio = 0 }, true},
		{"negative delta", func(hp *Hyperparameters) { hp.SampleDelta = -1 }, true},
		{"zero batch size", func(hp *Hyperparameters) { hp.BatchSize = 0 }, true},
		{"zero steps per epoch", func(hp *Hyperparameters) { hp.StepsPerEpoch = 0 }, true},
		{"zero epochs", func(hp *Hyperparameters) { hp.Epochs = 0 }, true},
		{"dropout of one", func(hp *Hyperparameters) { hp.Dropout = 1 }, true},
		{"dropout just under one", func(hp *Hyperparameters) { hp.Dropout = 0.99 }, false},
		{"zero layer width", func(hp *Hyperparameters) { hp.LayerWidth = 0 }, true},
		{"zero hidden layers", func(hp *Hyperparameters) { hp.HiddenLayers = 0 }, true},
		{"zero learning rate", func(hp *Hyperparameters) { hp.LearningRate = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hp := DefaultHyperparameters()
			tt.mutate(&hp)
			err := hp.Validate()
			if tt.wantErr {
				var invalid *sample.InvalidParameterError
				assert.ErrorAs(t, err, &invalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewRejectsInvalidHyperparameters(t *testing.T) {
	hp := DefaultHyperparameters()
	hp.Epochs = -1
	_, err := New(hp)
	assert.Error(t, err)
}

func TestClassifierNotFitted(t *testing.T) {
	clf, err := New(DefaultHyperparameters())
	require.NoError(t, err)

	s := clusteredSample(t, 10, 3)
	_, err = clf.Predict(s)
	assert.ErrorIs(t, err, sample.ErrNotFitted)

	_, err = clf.Score([]float64{0, 0, 0})
	assert.ErrorIs(t, err, sample.ErrNotFitted)

	_, err = clf.Gradient([]float64{0, 0, 0})
	assert.ErrorIs(t, err, sample.ErrNotFitted)

	_, err = clf.Save()
	assert.ErrorIs(t, err, sample.ErrNotFitted)
}

func TestClassifierTrainPredict(t *testing.T) {
	s := clusteredSample(t, 600, 4)
	clf := trainedClassifier(t, s)

	probs, err := clf.Predict(s)
	require.NoError(t, err)
	require.Len(t, probs, s.NumRows())

	// Training rows should mostly read as normal.
	var high int
	for _, p := range probs {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
		if p > 0.5 {
			high++
		}
	}
	assert.Greater(t, high, s.NumRows()*7/10, "most training rows should score normal")

	// A point far outside the positive cluster should score anomalous.
	far, err := sample.New(s.Columns, [][]float64{{4, 4, 4, 4}})
	require.NoError(t, err)
	farProbs, err := clf.Predict(far)
	require.NoError(t, err)
	assert.Less(t, farProbs[0], 0.5)
}

func TestClassifierGradientShape(t *testing.T) {
	s := clusteredSample(t, 300, 3)
	clf := trainedClassifier(t, s)

	grad, err := clf.Gradient([]float64{0.5, -0.5, 1.0})
	require.NoError(t, err)
	assert.Len(t, grad, 3)
}

func TestClassifierSaveLoad(t *testing.T) {
	s := clusteredSample(t, 300, 3)
	original := trainedClassifier(t, s)

	origProbs, err := original.Predict(s)
	require.NoError(t, err)

	blob, err := original.Save()
	require.NoError(t, err)
	assert.NotEmpty(t, blob)

	loaded, err := New(DefaultHyperparameters())
	require.NoError(t, err)
	require.NoError(t, loaded.Load(blob))

	loadedProbs, err := loaded.Predict(s)
	require.NoError(t, err)
	assert.Equal(t, origProbs, loadedProbs)
	assert.Equal(t, original.Info().Columns, loaded.Info().Columns)
}

func TestClassifierSchemaMismatch(t *testing.T) {
	s := clusteredSample(t, 300, 3)
	clf := trainedClassifier(t, s)

	other, err := sample.New([]string{"x", "y", "z"}, [][]float64{{1, 2, 3}})
	require.NoError(t, err)

	_, err = clf.Predict(other)
	var mismatch *sample.SchemaMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestClassifierWritesLossHistory(t *testing.T) {
	dir := t.TempDir()

	hp := fastHyperparameters()
	hp.LogDir = dir
	clf, err := New(hp, WithSeed(42))
	require.NoError(t, err)
	require.NoError(t, clf.Train(clusteredSample(t, 200, 3)))

	data, err := os.ReadFile(filepath.Join(dir, "loss_history.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "epoch,loss")
}

func fastHyperparameters() Hyperparameters {
	hp := DefaultHyperparameters()
	hp.Epochs = 25
	hp.StepsPerEpoch = 30
	hp.BatchSize = 128
	hp.LayerWidth = 32
	hp.HiddenLayers = 2
	hp.Dropout = 0
	return hp
}

func trainedClassifier(t *testing.T, s *sample.Sample) *Classifier {
	t.Helper()
	clf, err := New(fastHyperparameters(), WithSeed(42))
	require.NoError(t, err)
	require.NoError(t, clf.Train(s))
	return clf
}

// clusteredSample draws rows around the origin with unit spread.
func clusteredSample(t *testing.T, n, dims int) *sample.Sample {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	columns := make([]string, dims)
	for d := range columns {
		columns[d] = string(rune('a' + d))
	}
	rows := make([][]float64, n)
	for i := range rows {
		row := make([]float64, dims)
		for d := range row {
			row[d] = rng.NormFloat64()
		}
		rows[i] = row
	}
	s, err := sample.New(columns, rows)
	require.NoError(t, err)
	return s
}
