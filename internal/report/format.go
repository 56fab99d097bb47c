package report

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatCount prints an integer with thousands separators.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatNumber prints a float with three significant digits, keeping trailing zeros.
func FormatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Sprint(f)
	}
	return fmt.Sprintf("%#.3g", f)
}

// FormatPercent prints a proportion as a percentage with one decimal.
func FormatPercent(p float64) string {
	if p > 0 && p < 0.001 {
		return "< 0.1%"
	}
	return fmt.Sprintf("%.1f%%", p*100)
}

// quantileLabel names a quantile column: min, max or a percentage.
func quantileLabel(q float64) string {
	switch q {
	case 0:
		return "min"
	case 1:
		return "max"
	default:
		return fmt.Sprintf("%.0f%%", q*100)
	}
}
