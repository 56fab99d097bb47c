// Package summary computes the per-column statistics shown in a dataset report.
package summary

import (
	"fmt"
	"path/filepath"

	"github.com/leapstack-labs/datareport/internal/dataset"
)

// NullsLevel grades the proportion of null values in a column.
type NullsLevel string

// Nulls levels.
const (
	NullsOK       NullsLevel = "ok"
	NullsWarning  NullsLevel = "warning"
	NullsCritical NullsLevel = "critical"
)

// Defaults for Options.
const (
	DefaultSampleSize               = 5
	DefaultPreviewRows              = 5
	DefaultHighCardinalityThreshold = 10
	DefaultMaxStringLength          = 100
)

// Options controls Summarize.
type Options struct {
	Title   string
	OrderBy string
	// FilePath is the data file the frame was read from, if any.
	FilePath string
	// Source describes a non-file origin such as a database query.
	Source                   string
	SampleSize               int
	PreviewRows              int
	HighCardinalityThreshold int
	MaxStringLength          int
	Seed                     uint64
	// WithPlots adds SVG charts to the column summaries.
	WithPlots bool
}

func (o Options) withDefaults() Options {
	if o.SampleSize <= 0 {
		o.SampleSize = DefaultSampleSize
	}
	if o.PreviewRows <= 0 {
		o.PreviewRows = DefaultPreviewRows
	}
	if o.HighCardinalityThreshold <= 0 {
		o.HighCardinalityThreshold = DefaultHighCardinalityThreshold
	}
	if o.MaxStringLength <= 0 {
		o.MaxStringLength = DefaultMaxStringLength
	}
	return o
}

// Summary describes a whole dataset.
type Summary struct {
	Title            string          `json:"title,omitempty" yaml:"title,omitempty"`
	FilePath         string          `json:"file_path,omitempty" yaml:"file_path,omitempty"`
	FileName         string          `json:"file_name,omitempty" yaml:"file_name,omitempty"`
	Source           string          `json:"source,omitempty" yaml:"source,omitempty"`
	OrderBy          string          `json:"order_by,omitempty" yaml:"order_by,omitempty"`
	NRows            int             `json:"n_rows" yaml:"n_rows"`
	NColumns         int             `json:"n_columns" yaml:"n_columns"`
	NConstantColumns int             `json:"n_constant_columns" yaml:"n_constant_columns"`
	FirstRow         []NamedValue    `json:"first_row,omitempty" yaml:"first_row,omitempty"`
	Head             Table           `json:"head" yaml:"head"`
	Tail             Table           `json:"tail" yaml:"tail"`
	Columns          []ColumnSummary `json:"columns" yaml:"columns"`
}

// NamedValue pairs a column name with a value.
type NamedValue struct {
	Name  string `json:"name" yaml:"name"`
	Value Value  `json:"value" yaml:"value"`
}

// Table is a slice of consecutive rows of the dataset.
type Table struct {
	Columns []string `json:"columns" yaml:"columns"`
	Rows    []Row    `json:"rows" yaml:"rows"`
}

// Row is one dataset row; Index is its position in the (ordered) dataset.
type Row struct {
	Index  int     `json:"index" yaml:"index"`
	Values []Value `json:"values" yaml:"values"`
}

// ValueCount is one entry of a column's most frequent values.
type ValueCount struct {
	Value Value `json:"value" yaml:"value"`
	Count int   `json:"count" yaml:"count"`
}

// Quantile is the value at probability Q.
type Quantile struct {
	Q     float64 `json:"q" yaml:"q"`
	Value float64 `json:"value" yaml:"value"`
}

// ColumnSummary describes one column.
type ColumnSummary struct {
	Position       int          `json:"position" yaml:"position"`
	Name           string       `json:"name" yaml:"name"`
	DType          string       `json:"dtype" yaml:"dtype"`
	Kind           dataset.Kind `json:"kind" yaml:"kind"`
	NullCount      int          `json:"null_count" yaml:"null_count"`
	NullProportion float64      `json:"null_proportion" yaml:"null_proportion"`
	NullsLevel     NullsLevel   `json:"nulls_level" yaml:"nulls_level"`
	SampleValues   []Value      `json:"sample_values,omitempty" yaml:"sample_values,omitempty"`

	HighCardinality  bool         `json:"high_cardinality" yaml:"high_cardinality"`
	NUnique          *int         `json:"n_unique,omitempty" yaml:"n_unique,omitempty"`
	UniqueProportion float64      `json:"unique_proportion,omitempty" yaml:"unique_proportion,omitempty"`
	ValueCounts      []ValueCount `json:"value_counts,omitempty" yaml:"value_counts,omitempty"`

	IsConstant    bool   `json:"value_is_constant" yaml:"value_is_constant"`
	ConstantValue *Value `json:"constant_value,omitempty" yaml:"constant_value,omitempty"`

	Mean              *float64   `json:"mean,omitempty" yaml:"mean,omitempty"`
	StandardDeviation *float64   `json:"standard_deviation,omitempty" yaml:"standard_deviation,omitempty"`
	Quantiles         []Quantile `json:"quantiles,omitempty" yaml:"quantiles,omitempty"`

	Min string `json:"min,omitempty" yaml:"min,omitempty"`
	Max string `json:"max,omitempty" yaml:"max,omitempty"`

	HistogramSVG   string `json:"histogram_plot,omitempty" yaml:"histogram_plot,omitempty"`
	ValueCountsSVG string `json:"value_counts_plot,omitempty" yaml:"value_counts_plot,omitempty"`
	LineSVG        string `json:"line_plot,omitempty" yaml:"line_plot,omitempty"`
}

// Summarize computes the summary of frame.
func Summarize(frame *dataset.Frame, opts Options) (*Summary, error) {
	opts = opts.withDefaults()
	if opts.OrderBy != "" {
		sorted, err := frame.SortBy(opts.OrderBy)
		if err != nil {
			return nil, err
		}
		frame = sorted
	}

	s := &Summary{
		Title:    opts.Title,
		Source:   opts.Source,
		OrderBy:  opts.OrderBy,
		NRows:    frame.NRows(),
		NColumns: frame.NColumns(),
	}
	if opts.FilePath != "" {
		abs, err := filepath.Abs(opts.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", opts.FilePath, err)
		}
		s.FilePath = abs
		s.FileName = filepath.Base(abs)
	}

	names := make([]string, frame.NColumns())
	for i, c := range frame.Columns {
		names[i] = c.Name
	}
	if s.NRows > 0 {
		for i, v := range frame.Row(0) {
			s.FirstRow = append(s.FirstRow, NamedValue{Name: names[i], Value: newEllided(v, opts.MaxStringLength)})
		}
	}
	head := min(opts.PreviewRows, s.NRows)
	s.Head = sliceRows(frame, names, 0, head)
	s.Tail = sliceRows(frame, names, max(s.NRows-opts.PreviewRows, 0), s.NRows)

	var orderCol *dataset.Column
	if opts.OrderBy != "" {
		orderCol, _ = frame.Column(opts.OrderBy)
	}
	for i := range frame.Columns {
		col := summarizeColumn(&frame.Columns[i], orderCol, i, s.NRows, opts)
		if col.IsConstant {
			s.NConstantColumns++
		}
		s.Columns = append(s.Columns, col)
	}
	return s, nil
}

func sliceRows(frame *dataset.Frame, names []string, from, to int) Table {
	t := Table{Columns: names}
	for i := from; i < to; i++ {
		row := Row{Index: i}
		for _, v := range frame.Row(i) {
			row.Values = append(row.Values, NewValue(v))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Column returns the summary of the named column.
func (s *Summary) Column(name string) (*ColumnSummary, bool) {
	for i := range s.Columns {
		if s.Columns[i].Name == name {
			return &s.Columns[i], true
		}
	}
	return nil, false
}

// DisplayTitle returns the title, falling back to the file name or source.
func (s *Summary) DisplayTitle() string {
	switch {
	case s.Title != "":
		return s.Title
	case s.FileName != "":
		return s.FileName
	case s.Source != "":
		return s.Source
	default:
		return "Dataframe"
	}
}
