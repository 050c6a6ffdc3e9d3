// Package dataset provides tabular dataset providers: CSV files, PCAP
// captures and synthetic generators consumed by the detector and its tests.
package dataset

import (
	"github.com/hed1ad/goexplainml/pkg/sample"
)

// Dataset couples a sample with its identity. Providers guarantee the sample
// meets the detector's input contract: at least two numeric columns, no
// missing values.
type Dataset struct {
	Name        string
	Description string
	Sample      *sample.Sample
}
