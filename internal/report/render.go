package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/datareport/internal/summary"
	"github.com/leapstack-labs/datareport/internal/view"
)

// Format is an output format of the report command.
type Format string

// Output formats.
const (
	FormatAuto     Format = "auto"
	FormatText     Format = "text"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// Formats lists the accepted format names.
func Formats() []Format {
	return []Format{FormatAuto, FormatText, FormatHTML, FormatMarkdown, FormatJSON, FormatYAML}
}

// ParseFormat normalizes a format name. Empty means auto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatAuto, nil
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	case FormatAuto, FormatText, FormatHTML, FormatMarkdown, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected one of: auto, text, html, markdown, json, yaml)", s)
	}
}

// Resolve turns auto into text for terminals and markdown otherwise.
func (f Format) Resolve(isTerminal bool) Format {
	if f != FormatAuto && f != "" {
		return f
	}
	if isTerminal {
		return FormatText
	}
	return FormatMarkdown
}

// WriteJSON prints s as indented JSON.
func WriteJSON(w io.Writer, s *summary.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteYAML prints s as YAML.
func WriteYAML(w io.Writer, s *summary.Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

// RenderOptions controls Render.
type RenderOptions struct {
	Format Format
	// Fragment renders HTML without the surrounding document.
	Fragment bool
	Text     TextOptions
}

// Render writes one report in the requested format. Format must be resolved.
func Render(w io.Writer, in *Input, opts RenderOptions) error {
	switch opts.Format {
	case FormatText:
		return WriteText(w, in.Summary, opts.Text)
	case FormatMarkdown:
		return WriteMarkdown(w, in.Summary)
	case FormatJSON:
		return WriteJSON(w, in.Summary)
	case FormatYAML:
		return WriteYAML(w, in.Summary)
	case FormatHTML:
		doc, _, err := Build(in)
		if err != nil {
			return err
		}
		return WriteHTML(w, doc, []*Input{in}, opts.Fragment, HTMLOptions{})
	default:
		return fmt.Errorf("unsupported format %q", opts.Format)
	}
}

// WriteHTML renders the reports as a page or a fragment.
func WriteHTML(w io.Writer, doc *view.Document, inputs []*Input, fragment bool, opts HTMLOptions) error {
	if fragment {
		return Fragment(doc, inputs, opts).Render(context.Background(), w)
	}
	title := "Report"
	if len(inputs) == 1 {
		title = inputs[0].Summary.DisplayTitle()
	}
	return Page(title, doc, inputs, opts).Render(context.Background(), w)
}
