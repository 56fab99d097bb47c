// Package config provides configuration management for the datareport CLI.
package config

import (
	"time"

	"github.com/leapstack-labs/datareport/internal/dataset"
	"github.com/leapstack-labs/datareport/internal/snippet"
	"github.com/leapstack-labs/datareport/internal/summary"
	"github.com/leapstack-labs/datareport/internal/view"
)

// UIConfig holds configuration for the report server.
type UIConfig struct {
	Port             int           `koanf:"port"`
	AutoOpen         bool          `koanf:"auto_open"`
	CopyFlagDuration time.Duration `koanf:"copy_flag_duration"`
	CacheTTL         time.Duration `koanf:"cache_ttl"`
}

// Config holds all CLI configuration options.
type Config struct {
	Dialect                  string `koanf:"dialect"`
	OrderBy                  string `koanf:"order_by"`
	Title                    string `koanf:"title"`
	SampleSize               int    `koanf:"sample_size"`
	HighCardinalityThreshold int    `koanf:"high_cardinality_threshold"`
	MaxStringLength          int    `koanf:"max_string_length"`
	Plots                    bool   `koanf:"plots"`
	Output                   string `koanf:"output"`
	Verbose                  bool   `koanf:"verbose"`
	StorePath                string `koanf:"store_path"`

	// Filters maps a filter name to the columns it keeps.
	Filters map[string][]string `koanf:"filters"`
	// FilterScripts maps a filter name to a Starlark predicate over `col`.
	FilterScripts map[string]string `koanf:"filter_scripts"`

	Source dataset.Source `koanf:"source"`
	UI     UIConfig       `koanf:"ui"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// Config file names, in lookup order.
const (
	ConfigFileName    = "datareport.yaml"
	ConfigFileNameAlt = "datareport.yml"
)

// EnvPrefix is the prefix of environment variables read into the config.
const EnvPrefix = "DATAREPORT_"

// Default configuration values.
const (
	DefaultDialect          = string(snippet.DefaultDialect)
	DefaultOutput           = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultStoreFile        = ".datareport/reports.db"
	DefaultPort             = 8421
	DefaultCopyFlagDuration = view.DefaultCopyFlagDuration
	DefaultCacheTTL         = 10 * time.Minute
)

func defaults() map[string]any {
	return map[string]any{
		"dialect":                    DefaultDialect,
		"output":                     DefaultOutput,
		"verbose":                    false,
		"store_path":                 DefaultStoreFile,
		"sample_size":                0,
		"high_cardinality_threshold": 0,
		"max_string_length":          0,
		"plots":                      true,
		"ui.port":                    DefaultPort,
		"ui.auto_open":               true,
		"ui.copy_flag_duration":      DefaultCopyFlagDuration.String(),
		"ui.cache_ttl":               DefaultCacheTTL.String(),
	}
}

// SnippetDialect returns the configured dataframe library. Validate has already
// rejected unknown names.
func (c *Config) SnippetDialect() snippet.Dialect {
	d, err := snippet.ParseDialect(c.Dialect)
	if err != nil {
		return snippet.DefaultDialect
	}
	return d
}

// FilterConfig returns the user column filters.
func (c *Config) FilterConfig() summary.FilterConfig {
	return summary.FilterConfig{Lists: c.Filters, Scripts: c.FilterScripts}
}

// SummaryOptions returns the summary options for the configured title and limits.
func (c *Config) SummaryOptions() summary.Options {
	return summary.Options{
		Title:                    c.Title,
		OrderBy:                  c.OrderBy,
		SampleSize:               c.SampleSize,
		HighCardinalityThreshold: c.HighCardinalityThreshold,
		MaxStringLength:          c.MaxStringLength,
		WithPlots:                c.Plots,
	}
}
