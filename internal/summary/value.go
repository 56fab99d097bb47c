package summary

import (
	"fmt"
	"unicode/utf8"

	"github.com/leapstack-labs/datareport/internal/snippet"
)

// Value is a cell value prepared for display: its str() form, its source literal and
// whether it is null. Values survive a JSON round trip unchanged, which raw values do not.
type Value struct {
	Str  string `json:"str" yaml:"str"`
	Repr string `json:"repr" yaml:"repr"`
	Null bool   `json:"null,omitempty" yaml:"null,omitempty"`
}

// NewValue prepares v for display.
func NewValue(v any) Value {
	return Value{Str: snippet.Str(v), Repr: snippet.Repr(v), Null: v == nil}
}

// newEllided prepares v for display with long strings shortened to maxLen.
func newEllided(v any, maxLen int) Value {
	if s, ok := v.(string); ok {
		v = Ellide(s, maxLen)
	}
	return NewValue(v)
}

// Ellide shortens s when it has more than maxLen characters. Long limits keep the
// first maxLen-30 characters followed by a marker; short limits just cut and add an ellipsis.
func Ellide(s string, maxLen int) string {
	n := utf8.RuneCountInString(s)
	if maxLen <= 0 || n <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen > 30 {
		return string(runes[:maxLen-30]) + fmt.Sprintf("[… %d more chars]", n-maxLen)
	}
	return string(runes[:maxLen]) + "…"
}
