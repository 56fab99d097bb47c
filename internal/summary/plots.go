package summary

import (
	"fmt"
	"html"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/datareport/internal/dataset"
)

// PlotColors is the palette plots draw from.
var PlotColors = []string{
	"#4c72b0", "#dd8452", "#55a868", "#c44e52", "#8172b3",
	"#937860", "#da8bc3", "#8c8c8c", "#ccb974", "#64b5cd",
}

// Plot names, as listed by ColumnSummary.Plots.
const (
	PlotHistogram   = "histogram_plot"
	PlotValueCounts = "value_counts_plot"
	PlotLine        = "line_plot"
)

const (
	histogramBins = 10
	plotWidth     = 200.0
	plotHeight    = 100.0
	barHeight     = 20.0
	fontSize      = 8.0
	// labelLength bounds axis labels taken from data.
	labelLength = 15
)

// Plot is one rendered SVG chart of a column.
type Plot struct {
	Name string
	SVG  string
}

// Plots returns the charts computed for the column, in display order.
func (c *ColumnSummary) Plots() []Plot {
	var out []Plot
	for _, p := range []Plot{
		{Name: PlotValueCounts, SVG: c.ValueCountsSVG},
		{Name: PlotHistogram, SVG: c.HistogramSVG},
		{Name: PlotLine, SVG: c.LineSVG},
	} {
		if p.SVG != "" {
			out = append(out, p)
		}
	}
	return out
}

// canvas accumulates the SVG markup of one chart. The plotting area spans
// [left, right] x [top, bottom] in pixels.
type canvas struct {
	b                        strings.Builder
	width, height            float64
	left, top, right, bottom float64
}

func newCanvas(width, height, left, bottom float64, title string) *canvas {
	c := &canvas{width: width, height: height, left: left, top: 4, right: width - 6, bottom: height - bottom}
	fmt.Fprintf(&c.b, `<svg xmlns="http://www.w3.org/2000/svg" class="plot" width="%g" height="%g" viewBox="0 0 %g %g" font-family="sans-serif" font-size="%g">`,
		width, height, width, height, fontSize)
	if title != "" {
		c.top = 16
		c.text(width/2, 10, "middle", title)
	}
	return c
}

func (c *canvas) text(x, y float64, anchor, s string) {
	fmt.Fprintf(&c.b, `<text x="%.1f" y="%.1f" text-anchor="%s">%s</text>`, x, y, anchor, html.EscapeString(s))
}

func (c *canvas) rect(x, y, w, h float64, color string) {
	fmt.Fprintf(&c.b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"></rect>`, x, y, w, h, color)
}

// spines draws the left and bottom axes.
func (c *canvas) spines() {
	fmt.Fprintf(&c.b, `<path d="M%.1f %.1fV%.1fH%.1f" fill="none" stroke="#444" stroke-width="0.8"></path>`,
		c.left, c.top, c.bottom, c.right)
}

func (c *canvas) String() string {
	c.b.WriteString("</svg>")
	return c.b.String()
}

// histogramSVG bins values into equal-width bins between their minimum and maximum.
// It returns "" when there is nothing to spread.
func histogramSVG(values []float64, title, color string, label func(float64) string) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := slices.Min(values), slices.Max(values)
	if lo == hi {
		return ""
	}
	counts := make([]int, histogramBins)
	step := (hi - lo) / histogramBins
	for _, v := range values {
		i := min(int((v-lo)/step), histogramBins-1)
		counts[i]++
	}
	peak := slices.Max(counts)

	c := newCanvas(plotWidth, plotHeight, 28, 14, title)
	w := (c.right - c.left) / histogramBins
	for i, n := range counts {
		h := (c.bottom - c.top) * float64(n) / float64(peak)
		c.rect(c.left+float64(i)*w, c.bottom-h, w, h, color)
	}
	c.spines()
	c.text(c.left-3, c.bottom, "end", "0")
	c.text(c.left-3, c.top+fontSize, "end", strconv.Itoa(peak))
	c.text(c.left, c.bottom+fontSize+2, "start", label(lo))
	c.text(c.right, c.bottom+fontSize+2, "end", label(hi))
	return c.String()
}

// valueCountsSVG draws one horizontal bar per value, most frequent on top. The title
// notes when only the most frequent values are shown.
func valueCountsSVG(counts []ValueCount, nUnique int, color string) string {
	if len(counts) == 0 {
		return ""
	}
	title := ""
	if nUnique > len(counts) {
		title = fmt.Sprintf("%d most frequent", len(counts))
	}
	peak := 0
	for _, vc := range counts {
		peak = max(peak, vc.Count)
	}

	c := newCanvas(plotWidth, barHeight*float64(len(counts))+18, 80, 14, title)
	h := (c.bottom - c.top) / float64(len(counts))
	for i, vc := range counts {
		y := c.top + float64(i)*h
		c.rect(c.left, y+h*0.1, (c.right-c.left)*float64(vc.Count)/float64(peak), h*0.8, color)
		c.text(c.left-3, y+h/2+fontSize/3, "end", Ellide(vc.Value.Str, labelLength))
	}
	c.spines()
	c.text(c.left, c.bottom+fontSize+2, "start", "0")
	c.text(c.right, c.bottom+fontSize+2, "end", strconv.Itoa(peak))
	return c.String()
}

// lineSVG plots y against the order_by column x. Rows where either value is
// missing are skipped; x values that are neither numbers nor times use the row
// position.
func lineSVG(x, y *dataset.Column, xLabel string) string {
	type point struct{ x, y float64 }
	var points []point
	xTime := x.Kind == dataset.KindDatetime
	for i := range min(len(x.Values), len(y.Values)) {
		yv, ok := numericValue(y.Values[i])
		if !ok || x.Values[i] == nil {
			continue
		}
		xv := float64(i)
		switch v := x.Values[i].(type) {
		case time.Time:
			xv = unixSeconds(v)
		default:
			if f, ok := numericValue(v); ok && !xTime {
				xv = f
			}
		}
		points = append(points, point{xv, yv})
	}
	if len(points) < 2 {
		return ""
	}

	xlo, xhi, ylo, yhi := points[0].x, points[0].x, points[0].y, points[0].y
	for _, p := range points[1:] {
		xlo, xhi = math.Min(xlo, p.x), math.Max(xhi, p.x)
		ylo, yhi = math.Min(ylo, p.y), math.Max(yhi, p.y)
	}
	scale := func(v, lo, hi, from, to float64) float64 {
		if hi == lo {
			return (from + to) / 2
		}
		return from + (v-lo)/(hi-lo)*(to-from)
	}

	c := newCanvas(plotWidth, plotHeight+10, 28, 24, "")
	coords := make([]string, len(points))
	for i, p := range points {
		coords[i] = fmt.Sprintf("%.1f,%.1f", scale(p.x, xlo, xhi, c.left, c.right), scale(p.y, ylo, yhi, c.bottom, c.top))
	}
	fmt.Fprintf(&c.b, `<polyline points="%s" fill="none" stroke="%s" stroke-width="1"></polyline>`,
		strings.Join(coords, " "), PlotColors[0])
	c.spines()

	xTick := formatTick
	if xTime {
		xTick = formatDateTick
	}
	c.text(c.left-3, c.bottom, "end", formatTick(ylo))
	c.text(c.left-3, c.top+fontSize, "end", formatTick(yhi))
	c.text(c.left, c.bottom+fontSize+2, "start", xTick(xlo))
	c.text(c.right, c.bottom+fontSize+2, "end", xTick(xhi))
	c.text((c.left+c.right)/2, c.height-3, "middle", Ellide(xLabel, labelLength))
	return c.String()
}

func numericValue(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, !math.IsNaN(x)
	}
	return 0, false
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func datetimeValues(nonNull []any) []float64 {
	var out []float64
	for _, v := range nonNull {
		if t, ok := v.(time.Time); ok {
			out = append(out, unixSeconds(t))
		}
	}
	return out
}

func formatTick(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

func formatDateTick(v float64) string {
	sec, frac := math.Modf(v)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC().Format(time.DateOnly)
}
