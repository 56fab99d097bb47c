package summary

import (
	"math"
	"math/rand/v2"
	"slices"
	"sort"
	"time"

	"github.com/leapstack-labs/datareport/internal/dataset"
	"github.com/leapstack-labs/datareport/internal/snippet"
)

// QuantileProbs are the quantiles reported for numeric columns.
var QuantileProbs = []float64{0, 0.25, 0.5, 0.75, 1}

// summarizeColumn describes col. orderBy is the column the rows are sorted by, or nil.
func summarizeColumn(col, orderBy *dataset.Column, position, nRows int, opts Options) ColumnSummary {
	s := ColumnSummary{
		Position: position,
		Name:     col.Name,
		DType:    dtypeName(col),
		Kind:     col.Kind,
	}

	var nonNull []any
	for _, v := range col.Values {
		if v != nil {
			nonNull = append(nonNull, v)
		}
	}
	addNulls(&s, nRows-len(nonNull), nRows)
	addSampleValues(&s, nonNull, opts)

	switch col.Kind {
	case dataset.KindNumeric:
		s.HighCardinality = true
		values := addNumeric(&s, nonNull)
		if opts.WithPlots && s.Quantiles != nil {
			if orderBy == nil {
				s.HistogramSVG = histogramSVG(values, "Value distribution", PlotColors[0], formatTick)
			} else {
				s.LineSVG = lineSVG(orderBy, col, orderBy.Name)
			}
		}
	case dataset.KindDatetime:
		s.HighCardinality = true
		addDatetime(&s, nonNull)
		if opts.WithPlots && s.Min != "" {
			s.HistogramSVG = histogramSVG(datetimeValues(nonNull), "", PlotColors[0], formatDateTick)
		}
	default:
		addValueCounts(&s, nonNull, nRows, opts)
		if opts.WithPlots && s.NUnique != nil && *s.NUnique > 1 {
			s.ValueCountsSVG = valueCountsSVG(s.ValueCounts, *s.NUnique, PlotColors[1])
		}
	}
	return s
}

func addNulls(s *ColumnSummary, nullCount, nRows int) {
	s.NullCount = nullCount
	if nRows > 0 {
		s.NullProportion = float64(nullCount) / float64(nRows)
	}
	switch {
	case s.NullProportion == 0:
		s.NullsLevel = NullsOK
	case s.NullProportion == 1:
		s.NullsLevel = NullsCritical
	default:
		s.NullsLevel = NullsWarning
	}
}

// addSampleValues picks up to SampleSize non-null values at random positions with a
// fixed seed, keeping them in row order.
func addSampleValues(s *ColumnSummary, nonNull []any, opts Options) {
	if len(nonNull) == 0 {
		return
	}
	size := min(len(nonNull), opts.SampleSize)
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed)) //nolint:gosec // sampling for display, not security
	idx := rng.Perm(len(nonNull))[:size]
	sort.Ints(idx)
	for _, i := range idx {
		s.SampleValues = append(s.SampleValues, newEllided(nonNull[i], opts.MaxStringLength))
	}
}

func addValueCounts(s *ColumnSummary, nonNull []any, nRows int, opts Options) {
	type entry struct {
		value any
		count int
	}
	var order []string
	counts := make(map[string]*entry)
	for _, v := range nonNull {
		key := snippet.Repr(v)
		if e, ok := counts[key]; ok {
			e.count++
			continue
		}
		counts[key] = &entry{value: v, count: 1}
		order = append(order, key)
	}

	nUnique := len(order)
	s.NUnique = &nUnique
	if nRows > 0 {
		s.UniqueProportion = float64(nUnique) / float64(nRows)
	}
	s.HighCardinality = nUnique >= opts.HighCardinalityThreshold

	slices.SortStableFunc(order, func(a, b string) int {
		return counts[b].count - counts[a].count
	})
	for _, key := range order[:min(len(order), opts.HighCardinalityThreshold)] {
		e := counts[key]
		s.ValueCounts = append(s.ValueCounts, ValueCount{Value: newEllided(e.value, opts.MaxStringLength), Count: e.count})
	}

	if nUnique == 1 {
		s.IsConstant = true
		v := newEllided(counts[order[0]].value, opts.MaxStringLength)
		s.ConstantValue = &v
	}
}

// addNumeric fills the moments and quantiles of a numeric column and returns its
// non-NaN values.
func addNumeric(s *ColumnSummary, nonNull []any) []float64 {
	values := make([]float64, 0, len(nonNull))
	for _, v := range nonNull {
		if f, ok := numericValue(v); ok {
			values = append(values, f)
		}
	}
	if len(values) == 0 {
		return nil
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	s.Mean = &mean
	if len(values) > 1 {
		ss := 0.0
		for _, v := range values {
			ss += (v - mean) * (v - mean)
		}
		std := math.Sqrt(ss / float64(len(values)-1))
		s.StandardDeviation = &std
	}

	slices.Sort(values)
	quantiles := make([]Quantile, len(QuantileProbs))
	for i, q := range QuantileProbs {
		quantiles[i] = Quantile{Q: q, Value: nearestQuantile(values, q)}
	}
	if quantiles[0].Value == quantiles[len(quantiles)-1].Value {
		s.IsConstant = true
		v := NewValue(nonNull[0])
		s.ConstantValue = &v
		return values
	}
	s.Quantiles = quantiles
	return values
}

// nearestQuantile returns the sorted value closest to rank q*(n-1).
func nearestQuantile(sorted []float64, q float64) float64 {
	i := int(math.Round(q * float64(len(sorted)-1)))
	return sorted[i]
}

func addDatetime(s *ColumnSummary, nonNull []any) {
	var lo, hi time.Time
	found := false
	for _, v := range nonNull {
		t, ok := v.(time.Time)
		if !ok {
			continue
		}
		if !found || t.Before(lo) {
			lo = t
		}
		if !found || t.After(hi) {
			hi = t
		}
		found = true
	}
	if !found {
		return
	}
	if lo.Equal(hi) {
		s.IsConstant = true
		v := Value{Str: isoFormat(lo), Repr: snippet.Repr(lo)}
		s.ConstantValue = &v
		return
	}
	s.Min = isoFormat(lo)
	s.Max = isoFormat(hi)
}

func isoFormat(t time.Time) string {
	if t.Nanosecond() != 0 {
		return t.Format("2006-01-02T15:04:05.000000")
	}
	return t.Format("2006-01-02T15:04:05")
}

func dtypeName(col *dataset.Column) string {
	if col.DBType != "" {
		return col.DBType
	}
	switch col.Kind {
	case dataset.KindNumeric:
		for _, v := range col.Values {
			if _, ok := v.(float64); ok {
				return "Float64"
			}
		}
		return "Int64"
	case dataset.KindString:
		return "String"
	case dataset.KindCategorical:
		return "Categorical"
	case dataset.KindBoolean:
		return "Boolean"
	case dataset.KindDatetime:
		return "Datetime"
	default:
		return "Object"
	}
}
