package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/datareport/internal/report"
	"github.com/leapstack-labs/datareport/internal/snippet"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if _, err := snippet.ParseDialect(c.Dialect); err != nil {
		errs = append(errs, err)
	}
	if _, err := report.ParseFormat(c.Output); err != nil {
		errs = append(errs, err)
	}
	if c.SampleSize < 0 {
		errs = append(errs, fmt.Errorf("sample_size must not be negative, got %d", c.SampleSize))
	}
	if c.HighCardinalityThreshold < 0 {
		errs = append(errs, fmt.Errorf("high_cardinality_threshold must not be negative, got %d", c.HighCardinalityThreshold))
	}
	if c.MaxStringLength < 0 {
		errs = append(errs, fmt.Errorf("max_string_length must not be negative, got %d", c.MaxStringLength))
	}
	if c.StorePath == "" {
		errs = append(errs, errors.New("store_path is required"))
	}
	if c.UI.Port < 0 || c.UI.Port > 65535 {
		errs = append(errs, fmt.Errorf("ui.port out of range: %d", c.UI.Port))
	}
	if c.UI.CopyFlagDuration < 0 {
		errs = append(errs, fmt.Errorf("ui.copy_flag_duration must not be negative, got %s", c.UI.CopyFlagDuration))
	}
	for name, expr := range c.FilterScripts {
		if strings.TrimSpace(expr) == "" {
			errs = append(errs, fmt.Errorf("filter_scripts.%s: expression is empty", name))
		}
		if _, dup := c.Filters[name]; dup {
			errs = append(errs, fmt.Errorf("filter %q is defined both as a list and a script", name))
		}
	}
	if !c.Source.IsZero() && strings.TrimSpace(c.Source.Query) == "" {
		errs = append(errs, errors.New("source.query is required when a source is configured"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
