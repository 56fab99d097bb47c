package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/datareport/internal/report"
	"github.com/leapstack-labs/datareport/internal/snippet"
	"github.com/leapstack-labs/datareport/internal/store"
	"github.com/leapstack-labs/datareport/internal/summary"
	"github.com/leapstack-labs/datareport/internal/ui/features/reports/pages"
	"github.com/leapstack-labs/datareport/internal/ui/notifier"
	"github.com/leapstack-labs/datareport/internal/view"
)

// Options configures the handlers.
type Options struct {
	Dialect          snippet.Dialect
	Filters          summary.FilterConfig
	CopyFlagDuration time.Duration
	CacheTTL         time.Duration
	DatastarSrc      string
	Logger           *slog.Logger
}

// Signals are the datastar signals posted with every report action.
// The view state lives only on the client; the server rebuilds it per request.
type Signals struct {
	View view.State `json:"view"`
}

// Handlers provides HTTP handlers for the reports feature.
type Handlers struct {
	catalog  Catalog
	reports  *reportCache
	notifier *notifier.Notifier
	opts     Options
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(catalog Catalog, notify *notifier.Notifier, opts Options) *Handlers {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.CopyFlagDuration <= 0 {
		opts.CopyFlagDuration = view.DefaultCopyFlagDuration
	}
	return &Handlers{
		catalog:  catalog,
		reports:  newReportCache(catalog, opts),
		notifier: notify,
		opts:     opts,
		logger:   logger,
	}
}

// Publish saves a report and tells open catalog pages about it.
func (h *Handlers) Publish(ctx context.Context, rec *store.Record) error {
	if err := h.catalog.Save(ctx, rec); err != nil {
		return err
	}
	h.reports.forget(rec.ID)
	h.notifier.Broadcast(notifier.Change{ReportID: rec.ID, Kind: notifier.Saved})
	return nil
}

// CatalogPage renders the list of stored reports.
func (h *Handlers) CatalogPage(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("q")
	records, err := h.catalog.List(r.Context(), store.ListOptions{Search: search})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := pages.CatalogPage(records, search, h.opts.DatastarSrc).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// CatalogUpdates is the long-lived SSE endpoint of the catalog page. It re-sends the
// list whenever a report is saved or deleted.
func (h *Handlers) CatalogUpdates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case change := <-updates:
			h.logger.Debug("catalog changed", "report", change.ReportID, "kind", change.Kind)
			if err := h.sendCatalog(ctx, sse); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

func (h *Handlers) sendCatalog(ctx context.Context, sse *datastar.ServerSentEventGenerator) error {
	records, err := h.catalog.List(ctx, store.ListOptions{})
	if err != nil {
		return err
	}
	return sse.PatchElementTempl(pages.CatalogList(records))
}

// ReportPage renders a stored report with its initial view state.
func (h *Handlers) ReportPage(w http.ResponseWriter, r *http.Request) {
	loaded, ok := h.loadReport(w, r)
	if !ok {
		return
	}
	doc, cfg, err := report.Build(loaded.input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	eng := view.New(doc, h.engineConfig(cfg, nil, nil))

	opts := report.HTMLOptions{
		ActionPath:  actionPath(loaded.record.ID),
		State:       eng.Snapshot(),
		DatastarSrc: h.opts.DatastarSrc,
	}
	page := report.Page(loaded.input.Summary.DisplayTitle(), doc, []*report.Input{loaded.input}, opts)
	if err := page.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ExportReport renders a stored report in a static format.
func (h *Handlers) ExportReport(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	format = format.Resolve(false)

	loaded, ok := h.loadReport(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	if err := report.Render(w, loaded.input, report.RenderOptions{Format: format}); err != nil {
		h.logger.Error("export failed", "report", loaded.record.ID, "format", format, "error", err)
	}
}

// DeleteReport removes a report from the catalog.
func (h *Handlers) DeleteReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.catalog.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.reports.forget(id)
	h.notifier.Broadcast(notifier.Change{ReportID: id, Kind: notifier.Deleted})

	sse := datastar.NewSSE(w, r)
	if err := h.sendCatalog(r.Context(), sse); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// ReportAction applies one view command. The posted view signal is restored onto a
// fresh document, the command is dispatched, and the re-rendered report and new view
// state are patched back. A copy also runs the deferred flag clear on the same stream.
func (h *Handlers) ReportAction(w http.ResponseWriter, r *http.Request) {
	// Read signals before creating the SSE, which consumes the request body.
	var signals Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "failed to read signals: "+err.Error(), http.StatusBadRequest)
		return
	}

	cmd, err := view.DecodeCommand(chi.URLParam(r, "action"), r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	loaded, ok := h.loadReport(w, r)
	if !ok {
		return
	}
	doc, cfg, err := report.Build(loaded.input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	clip := &browserClipboard{}
	sched := view.NewQueueScheduler(nil)
	eng := view.New(doc, h.engineConfig(cfg, clip, sched))

	if err := eng.Restore(signals.View); err != nil {
		http.Error(w, "stale view state: "+err.Error(), http.StatusConflict)
		return
	}
	if err := eng.Dispatch(cmd); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, view.ErrNodeNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	h.logger.Debug("report action", "report", loaded.record.ID, "action", cmd.Action())

	sse := datastar.NewSSE(w, r)
	if clip.written {
		if err := sse.ExecuteScript(clip.script()); err != nil {
			return
		}
	}
	if err := h.patchReport(sse, eng, loaded); err != nil {
		_ = sse.ConsoleError(err)
		return
	}

	due, ok := sched.Next()
	if !ok {
		return
	}
	timer := time.NewTimer(time.Until(due))
	defer timer.Stop()
	select {
	case <-r.Context().Done():
		return
	case <-timer.C:
	}
	sched.RunDue()
	if err := h.patchReport(sse, eng, loaded); err != nil {
		_ = sse.ConsoleError(err)
	}
}

func (h *Handlers) patchReport(sse *datastar.ServerSentEventGenerator, eng *view.Engine, loaded *loadedReport) error {
	opts := report.HTMLOptions{ActionPath: actionPath(loaded.record.ID), DatastarSrc: h.opts.DatastarSrc}
	if err := sse.PatchElementTempl(report.ReportSection(eng.Document(), loaded.input, opts)); err != nil {
		return fmt.Errorf("failed to patch report: %w", err)
	}
	if err := sse.MarshalAndPatchSignals(Signals{View: eng.Snapshot()}); err != nil {
		return fmt.Errorf("failed to patch view state: %w", err)
	}
	return nil
}

func (h *Handlers) loadReport(w http.ResponseWriter, r *http.Request) (*loadedReport, bool) {
	id := chi.URLParam(r, "id")
	loaded, err := h.reports.load(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return nil, false
		}
		h.logger.Error("failed to load report", "report", id, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return loaded, true
}

func (h *Handlers) engineConfig(cfg view.Config, clip view.Clipboard, sched view.Scheduler) view.Config {
	if clip != nil {
		cfg.Clipboards = []view.Clipboard{clip}
	}
	cfg.Scheduler = sched
	cfg.CopyFlagDuration = h.opts.CopyFlagDuration
	cfg.Logger = h.logger
	return cfg
}

func actionPath(id string) string {
	return "/reports/" + id + "/actions"
}

func contentType(f report.Format) string {
	switch f {
	case report.FormatHTML:
		return "text/html; charset=utf-8"
	case report.FormatJSON:
		return "application/json"
	case report.FormatYAML:
		return "application/yaml"
	case report.FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// browserClipboard records the copied text so the handler can forward it to the
// browser's clipboard API.
type browserClipboard struct {
	text    string
	written bool
}

func (c *browserClipboard) Available() bool { return true }

func (c *browserClipboard) WriteText(text string) error {
	c.text = text
	c.written = true
	return nil
}

func (c *browserClipboard) script() string {
	quoted, _ := json.Marshal(c.text)
	return fmt.Sprintf("navigator.clipboard.writeText(%s)", quoted)
}
