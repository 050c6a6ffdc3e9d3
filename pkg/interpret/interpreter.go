package interpret

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/hed1ad/goexplainml/pkg/sample"
)

// Config holds the interpreter knobs, each with a validated range.
type Config struct {
	// MinClassConfidence is the score a training row must reach to join the
	// baseline set.
	MinClassConfidence float64 `validate:"gt=0,lte=1"`

	// MaxBaselineSize caps the baseline set; highest-confidence rows win.
	MaxBaselineSize int `validate:"gt=0"`

	// NumSteps is the integration step count. More steps means less
	// discretization error at linear cost.
	NumSteps int `validate:"gt=0"`
}

// DefaultConfig mirrors the settings that work well on low-thousands-of-rows
// datasets.
func DefaultConfig() Config {
	return Config{
		MinClassConfidence: 0.99,
		MaxBaselineSize:    500,
		NumSteps:           2000,
	}
}

var validate = validator.New()

// Validate checks every field against its range.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return &sample.InvalidParameterError{
				Name:   e.Field(),
				Reason: fmt.Sprintf("failed %q constraint (value %v)", e.Tag(), e.Value()),
			}
		}
		return err
	}
	return nil
}

// DimensionBlame explains one dimension of an attributed point, in original
// units.
type DimensionBlame struct {
	Name     string
	Observed float64
	Expected float64
	Blame    float64
}

// Attribution is the full answer to "why was this point flagged": one entry
// per dimension plus the diagnostics behind it. Results are ephemeral,
// recomputed per query point.
type Attribution struct {
	Dimensions []DimensionBlame

	// Score is P(Normal) at the observed point; BaselineScore at u*.
	Score         float64
	BaselineScore float64

	// BaselineConfidence is the classifier confidence that qualified u*.
	BaselineConfidence float64

	// CompletenessGap is BaselineScore - Score - sum of raw blame.
	CompletenessGap float64

	// Trace is the per-step, per-dimension gradient series along the
	// integration path, for diagnostic plotting.
	Trace [][]float64
}

// NormalizedBlame returns the blame vector rescaled to sum to 1, for
// display. The raw values in Dimensions are what the completeness property
// holds for.
func (a *Attribution) NormalizedBlame() []float64 {
	var total float64
	for _, d := range a.Dimensions {
		total += d.Blame
	}
	out := make([]float64, len(a.Dimensions))
	// Near-cancelling blames would turn the rescale into huge, meaningless
	// ratios; treat them like the degenerate all-zero case.
	if math.Abs(total) < 1e-12 {
		return out
	}
	for i, d := range a.Dimensions {
		out[i] = d.Blame / total
	}
	return out
}

// Interpreter owns the trained model, its normalization info and the
// selected baseline set. It is immutable after construction; the baseline is
// invalidated only by building a new Interpreter, which is how a model or
// threshold change propagates.
type Interpreter struct {
	model    Scorer
	info     *sample.NormalizationInfo
	baseline []BaselinePoint
	cfg      Config
}

// NewInterpreter selects the baseline set from the normalized training
// sample and returns an interpreter ready to attribute query points. The
// training sample must be normalized with the same info the model was
// trained against.
func NewInterpreter(model Scorer, info *sample.NormalizationInfo, normalized *sample.Sample, cfg Config) (*Interpreter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if info == nil {
		return nil, sample.ErrNotFitted
	}
	baseline, err := SelectBaseline(model, normalized, cfg.MinClassConfidence, cfg.MaxBaselineSize)
	if err != nil {
		return nil, err
	}
	return &Interpreter{model: model, info: info, baseline: baseline, cfg: cfg}, nil
}

// Baseline exposes the selected baseline set.
func (it *Interpreter) Baseline() []BaselinePoint {
	return it.baseline
}

// Attribute explains a single observed point given in original units:
// normalize, find the nearest baseline, integrate gradients along the path,
// and report per-dimension blame with observed and expected values back in
// original units.
func (it *Interpreter) Attribute(observed []float64) (*Attribution, error) {
	if len(observed) != len(it.info.Columns) {
		return nil, &sample.SchemaMismatchError{
			Detail: fmt.Sprintf("point has %d dimensions, fitted info has %d", len(observed), len(it.info.Columns)),
		}
	}

	x := it.info.NormalizePoint(observed)
	nearest, err := Nearest(x, it.baseline)
	if err != nil {
		return nil, err
	}
	res, err := Blame(x, nearest.Point, it.model, it.cfg.NumSteps)
	if err != nil {
		return nil, err
	}

	expected := it.info.DenormalizePoint(nearest.Point)
	dims := make([]DimensionBlame, len(it.info.Columns))
	for d, name := range it.info.Columns {
		dims[d] = DimensionBlame{
			Name:     name,
			Observed: observed[d],
			Expected: expected[d],
			Blame:    res.Blame[d],
		}
	}

	return &Attribution{
		Dimensions:         dims,
		Score:              res.Score,
		BaselineScore:      res.BaselineScore,
		BaselineConfidence: nearest.Confidence,
		CompletenessGap:    res.CompletenessGap,
		Trace:              res.Trace,
	}, nil
}
