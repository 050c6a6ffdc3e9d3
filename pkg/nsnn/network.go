package nsnn

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// netLayer is a fully connected layer. Weights are stored row-major as
// out x in; exported fields so gob can serialize a trained model.
type netLayer struct {
	W [][]float64
	B []float64
}

// network is a feed-forward binary classifier: HiddenLayers dense layers of
// LayerWidth units with ReLU activations, then a single sigmoid output unit
// producing P(class = Normal). Inverted dropout is applied to hidden
// activations during training only, so inference and input gradients are
// deterministic.
type network struct {
	Layers  []netLayer
	Dropout float64
}

func newNetwork(inDim, width, hidden int, dropout float64, rng *rand.Rand) *network {
	n := &network{Dropout: dropout}
	prev := inDim
	for l := 0; l < hidden; l++ {
		n.Layers = append(n.Layers, newLayer(width, prev, rng))
		prev = width
	}
	n.Layers = append(n.Layers, newLayer(1, prev, rng))
	return n
}

// newLayer applies He initialization, matching the ReLU activations.
func newLayer(out, in int, rng *rand.Rand) netLayer {
	scale := math.Sqrt(2.0 / float64(in))
	l := netLayer{
		W: make([][]float64, out),
		B: make([]float64, out),
	}
	for i := range l.W {
		l.W[i] = make([]float64, in)
		for j := range l.W[i] {
			l.W[i][j] = rng.NormFloat64() * scale
		}
	}
	return l
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// forward runs inference and returns the activations of every layer,
// including the input at index 0. When train is true, inverted dropout masks
// are drawn for the hidden layers and returned for use in backprop.
func (n *network) forward(x []float64, train bool, rng *rand.Rand) (acts [][]float64, masks [][]float64) {
	acts = make([][]float64, len(n.Layers)+1)
	acts[0] = x
	if train && n.Dropout > 0 {
		masks = make([][]float64, len(n.Layers)-1)
	}

	cur := x
	for li, l := range n.Layers {
		out := make([]float64, len(l.W))
		last := li == len(n.Layers)-1
		for i, w := range l.W {
			z := floats.Dot(w, cur) + l.B[i]
			if last {
				out[i] = sigmoid(z)
			} else if z > 0 {
				out[i] = z
			}
		}
		if !last && masks != nil {
			mask := make([]float64, len(out))
			keep := 1.0 - n.Dropout
			for i := range mask {
				if rng.Float64() < keep {
					mask[i] = 1.0 / keep
				}
				out[i] *= mask[i]
			}
			masks[li] = mask
		}
		acts[li+1] = out
		cur = out
	}
	return acts, masks
}

// score returns P(Normal) at x. Evaluable at any point, not only training
// rows, which is what lets the integrated-gradients path sample between an
// anomaly and its baseline.
func (n *network) score(x []float64) float64 {
	acts, _ := n.forward(x, false, nil)
	return acts[len(acts)-1][0]
}

// inputGradient returns the partial derivative of the output probability
// with respect to every input dimension at x.
func (n *network) inputGradient(x []float64) []float64 {
	acts, _ := n.forward(x, false, nil)

	p := acts[len(acts)-1][0]
	// d sigmoid(z) / dz at the output unit.
	delta := []float64{p * (1.0 - p)}

	for li := len(n.Layers) - 1; li >= 0; li-- {
		l := n.Layers[li]
		prev := make([]float64, len(acts[li]))
		for i, d := range delta {
			if d == 0 {
				continue
			}
			floats.AddScaled(prev, d, l.W[i])
		}
		if li > 0 {
			// ReLU gate: gradient only flows through active units.
			for j, a := range acts[li] {
				if a <= 0 {
					prev[j] = 0
				}
			}
		}
		delta = prev
	}
	return delta
}

// adamState carries first and second moment estimates mirroring the network
// weights.
type adamState struct {
	t      int
	mW, vW [][][]float64
	mB, vB [][]float64
}

const (
	adamBeta1 = 0.9
	adamBeta2 = 0.999
	adamEps   = 1e-8
)

func newAdamState(n *network) *adamState {
	s := &adamState{}
	for _, l := range n.Layers {
		mw := make([][]float64, len(l.W))
		vw := make([][]float64, len(l.W))
		for i := range l.W {
			mw[i] = make([]float64, len(l.W[i]))
			vw[i] = make([]float64, len(l.W[i]))
		}
		s.mW = append(s.mW, mw)
		s.vW = append(s.vW, vw)
		s.mB = append(s.mB, make([]float64, len(l.B)))
		s.vB = append(s.vB, make([]float64, len(l.B)))
	}
	return s
}

// trainBatch runs one gradient step on the given mini-batch and returns the
// mean binary cross-entropy loss over it.
func (n *network) trainBatch(rows [][]float64, labels []float64, adam *adamState, lr float64, rng *rand.Rand) float64 {
	gW := make([][][]float64, len(n.Layers))
	gB := make([][]float64, len(n.Layers))
	for li, l := range n.Layers {
		gW[li] = make([][]float64, len(l.W))
		for i := range l.W {
			gW[li][i] = make([]float64, len(l.W[i]))
		}
		gB[li] = make([]float64, len(l.B))
	}

	var loss float64
	for bi, x := range rows {
		y := labels[bi]
		acts, masks := n.forward(x, true, rng)
		p := acts[len(acts)-1][0]

		loss += bceLoss(p, y)

		// With a sigmoid output and cross-entropy loss the output delta
		// collapses to p - y.
		delta := []float64{p - y}
		for li := len(n.Layers) - 1; li >= 0; li-- {
			l := n.Layers[li]
			for i, d := range delta {
				if d == 0 {
					continue
				}
				floats.AddScaled(gW[li][i], d, acts[li])
				gB[li][i] += d
			}
			if li == 0 {
				break
			}
			prev := make([]float64, len(acts[li]))
			for i, d := range delta {
				if d == 0 {
					continue
				}
				floats.AddScaled(prev, d, l.W[i])
			}
			for j, a := range acts[li] {
				if a <= 0 {
					prev[j] = 0
				} else if masks != nil {
					prev[j] *= masks[li-1][j]
				}
			}
			delta = prev
		}
	}

	scale := 1.0 / float64(len(rows))
	adam.t++
	c1 := 1.0 - math.Pow(adamBeta1, float64(adam.t))
	c2 := 1.0 - math.Pow(adamBeta2, float64(adam.t))
	for li, l := range n.Layers {
		for i := range l.W {
			for j := range l.W[i] {
				g := gW[li][i][j] * scale
				adam.mW[li][i][j] = adamBeta1*adam.mW[li][i][j] + (1-adamBeta1)*g
				adam.vW[li][i][j] = adamBeta2*adam.vW[li][i][j] + (1-adamBeta2)*g*g
				l.W[i][j] -= lr * (adam.mW[li][i][j] / c1) / (math.Sqrt(adam.vW[li][i][j]/c2) + adamEps)
			}
			g := gB[li][i] * scale
			adam.mB[li][i] = adamBeta1*adam.mB[li][i] + (1-adamBeta1)*g
			adam.vB[li][i] = adamBeta2*adam.vB[li][i] + (1-adamBeta2)*g*g
			l.B[i] -= lr * (adam.mB[li][i] / c1) / (math.Sqrt(adam.vB[li][i]/c2) + adamEps)
		}
	}

	return loss / float64(len(rows))
}

// bceLoss is binary cross-entropy with the prediction clamped away from 0
// and 1 so the log stays finite.
func bceLoss(p, y float64) float64 {
	const eps = 1e-12
	if p < eps {
		p = eps
	} else if p > 1-eps {
		p = 1 - eps
	}
	return -(y*math.Log(p) + (1-y)*math.Log(1-p))
}
