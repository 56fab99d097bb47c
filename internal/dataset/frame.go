// Package dataset loads tabular data into memory for summarizing.
package dataset

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Kind is the coarse type of a column, used by filters and statistics.
type Kind string

// Column kinds.
const (
	KindNumeric     Kind = "numeric"
	KindString      Kind = "string"
	KindCategorical Kind = "categorical"
	KindDatetime    Kind = "datetime"
	KindBoolean     Kind = "boolean"
	KindOther       Kind = "other"
)

// Column is one named column of values. Values are normalized to nil, bool, int64,
// float64, string, time.Time or []byte.
type Column struct {
	Name   string
	DBType string
	Kind   Kind
	Values []any
}

// Frame is a column-oriented table.
type Frame struct {
	Columns []Column
}

// NRows returns the number of rows.
func (f *Frame) NRows() int {
	if len(f.Columns) == 0 {
		return 0
	}
	return len(f.Columns[0].Values)
}

// NColumns returns the number of columns.
func (f *Frame) NColumns() int {
	return len(f.Columns)
}

// Row returns the values of row i in column order.
func (f *Frame) Row(i int) []any {
	row := make([]any, len(f.Columns))
	for c := range f.Columns {
		row[c] = f.Columns[c].Values[i]
	}
	return row
}

// Column returns the column called name.
func (f *Frame) Column(name string) (*Column, bool) {
	for i := range f.Columns {
		if f.Columns[i].Name == name {
			return &f.Columns[i], true
		}
	}
	return nil, false
}

// SortBy returns a copy of the frame with rows ordered by the named column, ascending,
// nulls last. Rows with equal keys keep their order.
func (f *Frame) SortBy(name string) (*Frame, error) {
	key, ok := f.Column(name)
	if !ok {
		return nil, fmt.Errorf("cannot order by %q: no such column", name)
	}

	idx := make([]int, f.NRows())
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return CompareValues(key.Values[a], key.Values[b])
	})

	out := &Frame{Columns: make([]Column, len(f.Columns))}
	for c, col := range f.Columns {
		values := make([]any, len(idx))
		for i, src := range idx {
			values[i] = col.Values[src]
		}
		out.Columns[c] = Column{Name: col.Name, DBType: col.DBType, Kind: col.Kind, Values: values}
	}
	return out, nil
}

// CompareValues orders two normalized values. nil sorts after everything else and
// values of different types are ordered by their type name.
func CompareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return cmp.Compare(fa, fb)
		}
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	}
	return strings.Compare(fmt.Sprintf("%T", a), fmt.Sprintf("%T", b))
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}
