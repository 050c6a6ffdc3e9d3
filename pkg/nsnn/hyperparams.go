package nsnn

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/hed1ad/goexplainml/pkg/sample"
)

// Hyperparameters enumerates every recognized training knob with its valid
// range. Unknown keys cannot exist: construction goes through this struct.
type Hyperparameters struct {
	// SampleRatio is the negative sample size relative to the positive
	// sample, e.g. 10.0 draws ten negative rows per observed row.
	SampleRatio float64 `validate:"gt=0"`

	// SampleDelta expands the negative sampling bounding box around the
	// observed data's per-dimension range, in normalized units.
	SampleDelta float64 `validate:"gte=0"`

	BatchSize     int     `validate:"gt=0"`
	StepsPerEpoch int     `validate:"gt=0"`
	Epochs        int     `validate:"gt=0"`
	Dropout       float64 `validate:"gte=0,lt=1"`
	LayerWidth    int     `validate:"gt=0"`
	HiddenLayers  int     `validate:"gte=1"`
	LearningRate  float64 `validate:"gt=0"`

	// LogDir, when non-empty, receives a per-epoch loss history CSV.
	LogDir string
}

// DefaultHyperparameters returns a configuration that trains a usable model
// on low-thousands-of-rows datasets without tuning.
func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		SampleRatio:   10.0,
		SampleDelta:   1.0,
		BatchSize:     256,
		StepsPerEpoch: 32,
		Epochs:        30,
		Dropout:       0.1,
		LayerWidth:    64,
		HiddenLayers:  3,
		LearningRate:  1e-3,
	}
}

var validate = validator.New()

// Validate checks every field against its range and reports the first
// offending field by name.
func (hp Hyperparameters) Validate() error {
	if err := validate.Struct(hp); err != nil {
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
