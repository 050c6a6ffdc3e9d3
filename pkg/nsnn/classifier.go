// Package nsnn implements the negative-sampling neural network anomaly
// detector: a feed-forward binary classifier trained to separate an observed
// sample from a synthetically generated negative sample.
package nsnn

import (
	"bytes"
	"encoding/csv"
	"encoding/gob"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"go.uber.org/zap"
	xrand "golang.org/x/exp/rand"

	"github.com/hed1ad/goexplainml/pkg/sample"
)

// Classifier is the NS-NN detector. It owns the fitted NormalizationInfo and
// the trained network; both are immutable after Train returns, so concurrent
// read-only queries need no external synchronization.
type Classifier struct {
	mu sync.RWMutex

	hp     Hyperparameters
	seed   int64
	logger *zap.Logger

	info    *sample.NormalizationInfo
	net     *network
	trained bool
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithSeed sets the random seed for negative sampling, weight initialization
// and batch selection.
func WithSeed(seed int64) Option {
	return func(c *Classifier) {
		c.seed = seed
	}
}

// WithLogger injects a structured logger for training diagnostics. The
// default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Classifier) {
		c.logger = l
	}
}

// New creates a Classifier with the given hyperparameters.
func New(hp Hyperparameters, opts ...Option) (*Classifier, error) {
	if err := hp.Validate(); err != nil {
		return nil, err
	}
	c := &Classifier{
		hp:     hp,
		seed:   42,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Info returns the fitted NormalizationInfo, or nil before training.
func (c *Classifier) Info() *sample.NormalizationInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.info
}

// Train fits the normalizer on the training sample, synthesizes the negative
// sample, and trains the network to separate the two classes. A NaN loss
// aborts training; it is not retried, the caller adjusts hyperparameters and
// re-invokes.
func (c *Classifier) Train(s *sample.Sample) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.info == nil {
		info, err := sample.Fit(s)
		if err != nil {
			return err
		}
		c.info = info
	}
	normalized, err := c.info.Normalize(s)
	if err != nil {
		return err
	}

	labeled, err := SampleNegatives(normalized, c.hp.SampleRatio, c.hp.SampleDelta, xrand.NewSource(uint64(c.seed)))
	if err != nil {
		return err
	}
	c.logger.Info("negative sample synthesized",
		zap.Int("positive_rows", normalized.NumRows()),
		zap.Int("total_rows", labeled.NumRows()),
		zap.Float64("sample_ratio", c.hp.SampleRatio),
		zap.Float64("sample_delta", c.hp.SampleDelta))

	rng := rand.New(rand.NewSource(c.seed))
	net := newNetwork(s.NumDims(), c.hp.LayerWidth, c.hp.HiddenLayers, c.hp.Dropout, rng)
	adam := newAdamState(net)

	batch := make([][]float64, c.hp.BatchSize)
	batchLabels := make([]float64, c.hp.BatchSize)
	lossHistory := make([]float64, 0, c.hp.Epochs)

	for epoch := 0; epoch < c.hp.Epochs; epoch++ {
		var epochLoss float64
		for step := 0; step < c.hp.StepsPerEpoch; step++ {
			for i := range batch {
				j := rng.Intn(labeled.NumRows())
				batch[i] = labeled.Rows[j]
				batchLabels[i] = labeled.Labels[j]
			}
			loss := net.trainBatch(batch, batchLabels, adam, c.hp.LearningRate, rng)
			if math.IsNaN(loss) {
				return fmt.Errorf("training diverged: NaN loss at epoch %d step %d", epoch, step)
			}
			epochLoss += loss
		}
		epochLoss /= float64(c.hp.StepsPerEpoch)
		lossHistory = append(lossHistory, epochLoss)
		c.logger.Info("epoch complete", zap.Int("epoch", epoch), zap.Float64("loss", epochLoss))
	}

	if c.hp.LogDir != "" {
		if err := writeLossHistory(c.hp.LogDir, lossHistory); err != nil {
			return fmt.Errorf("persist training diagnostics: %w", err)
		}
	}

	c.net = net
	c.trained = true
	return nil
}

// Predict returns P(class = Normal) for every row of the sample, given in
// original units.
func (c *Classifier) Predict(s *sample.Sample) ([]float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.trained {
		return nil, sample.ErrNotFitted
	}
	normalized, err := c.info.Normalize(s)
	if err != nil {
		return nil, err
	}
	probs := make([]float64, normalized.NumRows())
	for i, row := range normalized.Rows {
		probs[i] = c.net.score(row)
	}
	return probs, nil
}

// Score returns P(class = Normal) at a single point in normalized space.
func (c *Classifier) Score(point []float64) (float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.trained {
		return 0, sample.ErrNotFitted
	}
	return c.net.score(point), nil
}

// Gradient returns the partial derivative of the class probability with
// respect to every input dimension at a point in normalized space. The point
// need not belong to the training sample.
func (c *Classifier) Gradient(point []float64) ([]float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.trained {
		return nil, sample.ErrNotFitted
	}
	return c.net.inputGradient(point), nil
}

// Save serializes the trained model and its normalization info.
func (c *Classifier) Save() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.trained {
		return nil, sample.ErrNotFitted
	}

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(c.hp); err != nil {
		return nil, err
	}
	if err := enc.Encode(c.info); err != nil {
		return nil, err
	}
	if err := enc.Encode(c.net); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load deserializes a trained model.
func (c *Classifier) Load(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	dec := gob.NewDecoder(bytes.NewBuffer(data))
	if err := dec.Decode(&c.hp); err != nil {
		return err
	}
	if err := dec.Decode(&c.info); err != nil {
		return err
	}
	if err := dec.Decode(&c.net); err != nil {
		return err
	}
	c.trained = true
	return nil
}

// writeLossHistory persists the per-epoch loss curve as CSV under dir.
func writeLossHistory(dir string, losses []float64) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, "loss_history.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"epoch", "loss"}); err != nil {
		return err
	}
	for i, loss := range losses {
		if err := w.Write([]string{strconv.Itoa(i), strconv.FormatFloat(loss, 'g', -1, 64)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
