package summary

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/datareport/internal/dataset"
)

func TestHistogramSVG(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	svg := histogramSVG(values, "Value distribution", PlotColors[0], formatTick)

	assert.True(t, strings.HasPrefix(svg, "<svg "))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.Equal(t, histogramBins, strings.Count(svg, "<rect"))
	assert.Contains(t, svg, ">Value distribution</text>")
	assert.Contains(t, svg, `fill="#4c72b0"`)
	assert.Contains(t, svg, ">1</text>")
	assert.Contains(t, svg, ">10</text>")

	assert.Empty(t, histogramSVG([]float64{2, 2}, "", PlotColors[0], formatTick))
	assert.Empty(t, histogramSVG(nil, "", PlotColors[0], formatTick))
}

func TestValueCountsSVG(t *testing.T) {
	counts := []ValueCount{
		{Value: Value{Str: "Paris"}, Count: 3},
		{Value: Value{Str: "<b>"}, Count: 2},
		{Value: Value{Str: "Oslo"}, Count: 1},
	}

	tests := []struct {
		name      string
		nUnique   int
		wantTitle bool
	}{
		{"all values shown", 3, false},
		{"most frequent only", 7, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svg := valueCountsSVG(counts, tt.nUnique, PlotColors[1])
			assert.Equal(t, 3, strings.Count(svg, "<rect"))
			assert.Contains(t, svg, `fill="#dd8452"`)
			assert.Contains(t, svg, ">&lt;b&gt;</text>")
			assert.Less(t, strings.Index(svg, ">Paris<"), strings.Index(svg, ">Oslo<"), "most frequent on top")
			if tt.wantTitle {
				assert.Contains(t, svg, ">3 most frequent</text>")
			} else {
				assert.NotContains(t, svg, "most frequent")
			}
		})
	}
}

func TestLineSVG(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	x := &dataset.Column{Name: "a_very_long_order_column", Kind: dataset.KindDatetime,
		Values: []any{day(1), day(2), day(3), nil}}
	y := &dataset.Column{Name: "price", Kind: dataset.KindNumeric,
		Values: []any{1.5, nil, 4.0, 2.0}}

	svg := lineSVG(x, y, x.Name)
	points := regexp.MustCompile(`points="([^"]*)"`).FindStringSubmatch(svg)
	require.Len(t, points, 2)
	assert.Len(t, strings.Fields(points[1]), 2, "rows with a missing value are skipped")
	assert.Contains(t, svg, ">2024-01-01</text>")
	assert.Contains(t, svg, ">2024-01-03</text>")
	assert.Contains(t, svg, ">a_very_long_ord…</text>")

	single := &dataset.Column{Name: "price", Kind: dataset.KindNumeric, Values: []any{1.5, nil, nil, nil}}
	assert.Empty(t, lineSVG(x, single, x.Name))
}

func TestColumnPlots(t *testing.T) {
	s, err := Summarize(testFrame(), Options{WithPlots: true})
	require.NoError(t, err)

	names := func(c *ColumnSummary) []string {
		var out []string
		for _, p := range c.Plots() {
			out = append(out, p.Name)
		}
		return out
	}

	id, _ := s.Column("id")
	assert.Equal(t, []string{PlotHistogram}, names(id))
	assert.Contains(t, id.HistogramSVG, "Value distribution")
	city, _ := s.Column("city")
	assert.Equal(t, []string{PlotValueCounts}, names(city))
	constant, _ := s.Column("constant")
	assert.Empty(t, names(constant))
	empty, _ := s.Column("empty")
	assert.Empty(t, names(empty))
	when, _ := s.Column("when")
	assert.Equal(t, []string{PlotHistogram}, names(when))
	assert.NotContains(t, when.HistogramSVG, "Value distribution")

	ordered, err := Summarize(testFrame(), Options{WithPlots: true, OrderBy: "when"})
	require.NoError(t, err)
	id, _ = ordered.Column("id")
	assert.Equal(t, []string{PlotLine}, names(id))

	plain, err := Summarize(testFrame(), Options{})
	require.NoError(t, err)
	for i := range plain.Columns {
		assert.Empty(t, plain.Columns[i].Plots(), plain.Columns[i].Name)
	}
}
