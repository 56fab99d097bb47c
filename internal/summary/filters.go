package summary

import (
	"fmt"
	"sort"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"

	"github.com/leapstack-labs/datareport/internal/dataset"
)

// Filter is a named set of columns offered in the report's column filter control.
type Filter struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []string `json:"columns" yaml:"columns"`
}

// FilterConfig holds user supplied filters.
type FilterConfig struct {
	// Lists maps a filter name to an explicit list of columns.
	Lists map[string][]string
	// Scripts maps a filter name to a Starlark expression evaluated once per column
	// with the column bound to `col`. Columns for which it is true are kept.
	Scripts map[string]string
}

// DefaultFilters returns the built-in filters for s, in display order.
func DefaultFilters(s *Summary) []Filter {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}

	var filters []Filter
	if len(names) > 10 {
		filters = append(filters, Filter{Name: "First 10", Columns: names[:10]})
	}
	filters = append(filters, Filter{Name: "all()", Columns: names})
	for _, k := range []struct {
		name string
		kind dataset.Kind
	}{
		{"numeric()", dataset.KindNumeric},
		{"string()", dataset.KindString},
		{"categorical()", dataset.KindCategorical},
		{"any_date()", dataset.KindDatetime},
	} {
		var in, out []string
		for _, c := range s.Columns {
			if c.Kind == k.kind {
				in = append(in, c.Name)
			} else {
				out = append(out, c.Name)
			}
		}
		filters = append(filters, Filter{Name: k.name, Columns: in}, Filter{Name: "~" + k.name, Columns: out})
	}
	return filters
}

// ColumnFilters returns the user filters, sorted by name with lists before scripts,
// followed by the built-in filters they do not override.
func ColumnFilters(s *Summary, cfg FilterConfig) ([]Filter, error) {
	var filters []Filter
	taken := make(map[string]bool)

	for _, name := range sortedNames(cfg.Lists) {
		filters = append(filters, Filter{Name: name, Columns: knownColumns(s, cfg.Lists[name])})
		taken[name] = true
	}
	for _, name := range sortedNames(cfg.Scripts) {
		if taken[name] {
			continue
		}
		cols, err := EvalFilter(s, name, cfg.Scripts[name])
		if err != nil {
			return nil, err
		}
		filters = append(filters, Filter{Name: name, Columns: cols})
		taken[name] = true
	}
	for _, f := range DefaultFilters(s) {
		if !taken[f.Name] {
			filters = append(filters, f)
		}
	}
	return filters, nil
}

// knownColumns drops names that are not columns of s.
func knownColumns(s *Summary, names []string) []string {
	var out []string
	for _, n := range names {
		if _, ok := s.Column(n); ok {
			out = append(out, n)
		}
	}
	return out
}

// EvalFilter evaluates a Starlark predicate against every column of s and returns the
// names of the columns it accepts.
func EvalFilter(s *Summary, name, expr string) ([]string, error) {
	thread := &starlark.Thread{
		Name:  "filter " + name,
		Print: func(_ *starlark.Thread, _ string) {},
	}
	opts := &syntax.FileOptions{}

	var accepted []string
	for i := range s.Columns {
		env := starlark.StringDict{"col": columnStruct(&s.Columns[i])}
		v, err := starlark.EvalOptions(opts, thread, name, expr, env)
		if err != nil {
			return nil, fmt.Errorf("filter %q on column %q: %w", name, s.Columns[i].Name, err)
		}
		if v.Truth() {
			accepted = append(accepted, s.Columns[i].Name)
		}
	}
	return accepted, nil
}

func columnStruct(c *ColumnSummary) *starlarkstruct.Struct {
	nUnique := starlark.Value(starlark.None)
	if c.NUnique != nil {
		nUnique = starlark.MakeInt(*c.NUnique)
	}
	return starlarkstruct.FromStringDict(starlark.String("column"), starlark.StringDict{
		"name":             starlark.String(c.Name),
		"dtype":            starlark.String(c.DType),
		"kind":             starlark.String(string(c.Kind)),
		"position":         starlark.MakeInt(c.Position),
		"null_count":       starlark.MakeInt(c.NullCount),
		"null_proportion":  starlark.Float(c.NullProportion),
		"n_unique":         nUnique,
		"is_constant":      starlark.Bool(c.IsConstant),
		"high_cardinality": starlark.Bool(c.HighCardinality),
	})
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
