package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/leapstack-labs/datareport/internal/summary"
)

// WriteMarkdown prints s as Markdown. The summary is first rendered as simple HTML
// and then converted.
func WriteMarkdown(w io.Writer, s *summary.Summary) error {
	var buf strings.Builder
	if err := summaryDocument(s).Render(context.Background(), &buf); err != nil {
		return err
	}
	md, err := htmltomarkdown.ConvertString(buf.String())
	if err != nil {
		return fmt.Errorf("failed to convert report to markdown: %w", err)
	}
	_, err = io.WriteString(w, strings.TrimSpace(md)+"\n")
	return err
}

type listItem struct {
	label, value string
}

func columnItems(c *summary.ColumnSummary) []listItem {
	items := []listItem{
		{"Type", c.DType},
		{"Null values", nullsText(c)},
	}
	if c.IsConstant && c.ConstantValue != nil {
		items = append(items, listItem{"Constant value", c.ConstantValue.Repr})
	}
	if c.NUnique != nil {
		items = append(items, listItem{"Unique values", FormatCount(*c.NUnique)})
	}
	if c.Mean != nil {
		items = append(items, listItem{"Mean", FormatNumber(*c.Mean)})
	}
	if c.StandardDeviation != nil {
		items = append(items, listItem{"Standard deviation", FormatNumber(*c.StandardDeviation)})
	}
	for _, q := range c.Quantiles {
		items = append(items, listItem{"Quantile " + quantileLabel(q.Q), FormatNumber(q.Value)})
	}
	if c.Min != "" {
		items = append(items, listItem{"Min", c.Min}, listItem{"Max", c.Max})
	}
	if len(c.ValueCounts) > 0 && !c.IsConstant {
		counts := make([]string, len(c.ValueCounts))
		for i, vc := range c.ValueCounts {
			counts[i] = fmt.Sprintf("%s (%d)", vc.Value.Str, vc.Count)
		}
		items = append(items, listItem{"Most frequent", strings.Join(counts, ", ")})
	}
	return items
}
