// Package view keeps the interactive surfaces of a rendered report consistent.
//
// A Document holds typed node records (cards, table cells, preview bars, tabs...)
// indexed by stable IDs. The Engine applies user commands to it: every handler runs
// to completion and leaves the document consistent before returning, so a host can
// render straight from the node state after each Dispatch. The engine never creates
// or removes nodes; the report generator does that once.
//
// An Engine is not safe for concurrent use. Hosts drive it from a single goroutine
// and run deferred work through a QueueScheduler on that same goroutine.
package view

import (
	"log/slog"
	"time"
)

// DefaultCopyFlagDuration is how long a copied node keeps its BeingCopied flag.
const DefaultCopyFlagDuration = 200 * time.Millisecond

// ColumnFilter is a named list of accepted column names.
type ColumnFilter struct {
	Name    string
	Columns []string
}

// FilterSet is the ordered list of filters available in one report.
type FilterSet []ColumnFilter

// Lookup returns the filter called name.
func (s FilterSet) Lookup(name string) (ColumnFilter, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return ColumnFilter{}, false
}

// Names returns the filter names in order.
func (s FilterSet) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Config holds the engine's collaborators.
type Config struct {
	// Filters maps a report ID to the column filters offered in that report.
	Filters map[string]FilterSet
	// Clipboards are tried in order; the first available one is used.
	Clipboards []Clipboard
	// Scheduler runs the deferred clear of copy flags. Defaults to a QueueScheduler.
	Scheduler        Scheduler
	CopyFlagDuration time.Duration
	Logger           *slog.Logger
}

// Engine applies commands to a Document.
type Engine struct {
	doc        *Document
	filters    map[string]FilterSet
	clipboards []Clipboard
	sched      Scheduler
	copyFlag   time.Duration
	logger     *slog.Logger
}

// New creates an engine operating on doc.
func New(doc *Document, cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	sched := cfg.Scheduler
	if sched == nil {
		sched = NewQueueScheduler(nil)
	}
	copyFlag := cfg.CopyFlagDuration
	if copyFlag <= 0 {
		copyFlag = DefaultCopyFlagDuration
	}

	filters := make(map[string]FilterSet, len(cfg.Filters))
	for reportID, set := range cfg.Filters {
		filters[reportID] = append(FilterSet(nil), set...)
	}

	return &Engine{
		doc:        doc,
		filters:    filters,
		clipboards: cfg.Clipboards,
		sched:      sched,
		copyFlag:   copyFlag,
		logger:     logger,
	}
}

// Document returns the document the engine mutates.
func (e *Engine) Document() *Document {
	return e.doc
}

// Scheduler returns the scheduler used for deferred work.
func (e *Engine) Scheduler() Scheduler {
	return e.sched
}

// Filters returns the column filters offered in a report.
func (e *Engine) Filters(reportID string) FilterSet {
	return e.filters[reportID]
}
