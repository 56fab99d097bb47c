// Package reports serves the report catalog and the interactive report pages.
package reports

import "github.com/go-chi/chi/v5"

// SetupRoutes configures routes for the reports feature.
func SetupRoutes(router chi.Router, h *Handlers) error {
	router.Get("/", h.CatalogPage)
	router.Get("/updates", h.CatalogUpdates)

	router.Route("/reports/{id}", func(r chi.Router) {
		r.Get("/", h.ReportPage)
		r.Delete("/", h.DeleteReport)
		r.Get("/export/{format}", h.ExportReport)
		r.Post("/actions/{action}", h.ReportAction)
	})
	return nil
}
