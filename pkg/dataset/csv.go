package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hed1ad/goexplainml/pkg/sample"
)

// csvOptions configures CSV loading.
type csvOptions struct {
	hasHeader   bool
	description string
}

// CSVOption configures FromCSV.
type CSVOption func(*csvOptions)

// WithHeader indicates whether the first CSV row is a header. Without a
// header, columns are named col_0, col_1, ...
func WithHeader(has bool) CSVOption {
	return func(o *csvOptions) {
		o.hasHeader = has
	}
}

// WithDescription attaches a human-readable description to the dataset.
func WithDescription(desc string) CSVOption {
	return func(o *csvOptions) {
		o.description = desc
	}
}

// FromCSV loads a tabular dataset from a CSV file. Every cell must parse as
// a real number; a categorical or empty cell fails the load with its row and
// column, rather than being skipped, so schema problems surface before
// training.
func FromCSV(filename string, opts ...CSVOption) (*Dataset, error) {
	o := csvOptions{hasHeader: true}
	for _, opt := range opts {
		opt(&o)
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)

	var columns []string
	if o.hasHeader {
		header, err := reader.Read()
		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		columns = header
	}

	var rows [][]float64
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		if columns == nil {
			columns = make([]string, len(record))
			for i := range columns {
				columns[i] = fmt.Sprintf("col_%d", i)
			}
		}

		row := make([]float64, len(record))
		for i, cell := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				col := fmt.Sprintf("col_%d", i)
				if i < len(columns) {
					col = columns[i]
				}
				return nil, &sample.SchemaMismatchError{
					Column: col,
					Detail: fmt.Sprintf("non-numeric value %q at data row %d", cell, line),
				}
			}
			row[i] = v
		}
		rows = append(rows, row)
	}

	s, err := sample.New(columns, rows)
	if err != nil {
		return nil, err
	}

	return &Dataset{
		Name:        strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)),
		Description: o.description,
		Sample:      s,
	}, nil
}
